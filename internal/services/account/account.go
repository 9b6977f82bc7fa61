// Package account управляет счетами пользователя и считает итоги по ним.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/valuefmt"
	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
)

var (
	// ErrIDMismatch — ID в теле запроса не совпадает с ID в пути.
	ErrIDMismatch = errors.New("account id does not match")
	// ErrEmptyName — после очистки от разметки имя счёта оказалось пустым.
	ErrEmptyName = errors.New("account name is empty")
)

// Repository определяет методы хранилища, нужные сервису счетов.
type Repository interface {
	CreateAccount(ctx context.Context, acc models.Account) (*models.Account, error)
	GetAccount(ctx context.Context, userID, id string) (*models.Account, error)
	ListAccounts(ctx context.Context, userID string) ([]*models.Account, error)
	UpdateAccount(ctx context.Context, acc models.Account) (*models.Account, error)
	DeleteAccount(ctx context.Context, userID, id string) error
	ListOrders(ctx context.Context, userID string) ([]*models.Order, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// Service реализует бизнес-логику счетов.
type Service struct {
	repo   Repository
	log    *slog.Logger
	policy *bluemonday.Policy
}

// New создает Service.
func New(log *slog.Logger, repo Repository) *Service {
	return &Service{
		repo:   repo,
		log:    log,
		policy: bluemonday.StrictPolicy(),
	}
}

func (s *Service) build(userID string, req models.CreateAccountRequest) (models.Account, error) {
	name := strings.TrimSpace(s.policy.Sanitize(req.Name))
	if name == "" {
		return models.Account{}, ErrEmptyName
	}
	var platformID *string
	if req.PlatformID != nil {
		p := strings.TrimSpace(s.policy.Sanitize(*req.PlatformID))
		if p != "" {
			platformID = &p
		}
	}
	return models.Account{
		UserID:      userID,
		Name:        name,
		AccountType: models.AccountType(req.AccountType),
		Balance:     decimal.NewFromFloat(req.Balance),
		Currency:    req.Currency,
		PlatformID:  platformID,
		IsExcluded:  req.IsExcluded,
	}, nil
}

// Create создаёт счёт пользователя.
func (s *Service) Create(ctx context.Context, userID string, req models.CreateAccountRequest) (*models.Account, error) {
	const op = "account.Create"
	acc, err := s.build(userID, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	created, err := s.repo.CreateAccount(ctx, acc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// Update изменяет счёт id. Счета других пользователей не видны: возвращается storage.ErrNotFound.
func (s *Service) Update(ctx context.Context, userID, id string, req models.UpdateAccountRequest) (*models.Account, error) {
	const op = "account.Update"
	if req.ID != id {
		return nil, fmt.Errorf("%s: %w", op, ErrIDMismatch)
	}
	acc, err := s.build(userID, req.CreateAccountRequest)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	acc.ID = id
	updated, err := s.repo.UpdateAccount(ctx, acc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// Delete удаляет счёт пользователя.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	const op = "account.Delete"
	if err := s.repo.DeleteAccount(ctx, userID, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// List возвращает счета пользователя, итоги по валютам и число привязанных операций.
//
// Итог по валюте складывается из остатков неисключённых счетов и стоимости
// их операций: покупка добавляет q·p+fee, продажа вычитает q·p−fee.
func (s *Service) List(ctx context.Context, userID string) (*models.AccountsSummary, error) {
	const op = "account.List"
	accounts, err := s.repo.ListAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	orders, err := s.repo.ListOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	byAccount := make(map[string][]*models.Order)
	for _, o := range orders {
		if o.AccountID != nil {
			byAccount[*o.AccountID] = append(byAccount[*o.AccountID], o)
		}
	}

	totals := make(map[string]*models.AccountTotal)
	summary := &models.AccountsSummary{Accounts: accounts}
	if summary.Accounts == nil {
		summary.Accounts = []*models.Account{}
	}
	for _, acc := range accounts {
		accOrders := byAccount[acc.ID]
		summary.TransactionCount += len(accOrders)
		if acc.IsExcluded {
			continue
		}

		t, ok := totals[acc.Currency]
		if !ok {
			t = &models.AccountTotal{Currency: acc.Currency}
			totals[acc.Currency] = t
		}
		t.Balance = t.Balance.Add(acc.Balance)
		t.Value = t.Value.Add(acc.Balance).Add(ordersValue(accOrders))
	}

	locale := s.locale(ctx, userID)
	summary.Totals = make([]models.AccountTotal, 0, len(totals))
	for _, t := range totals {
		flags := valuefmt.Flags{IsCurrency: true, Locale: locale, Currency: t.Currency}
		t.Display = &models.TotalDisplay{
			Balance: valuefmt.Format(t.Balance, flags),
			Value:   valuefmt.Format(t.Value, flags),
		}
		summary.Totals = append(summary.Totals, *t)
	}
	sort.Slice(summary.Totals, func(i, j int) bool {
		return summary.Totals[i].Currency < summary.Totals[j].Currency
	})
	return summary, nil
}

func (s *Service) locale(ctx context.Context, userID string) string {
	const op = "account.locale"
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		s.log.Warn("failed to load user settings, using default locale",
			slog.String("op", op), sl.UserID(userID), sl.Err(err))
		return valuefmt.DefaultLocale
	}
	return user.Settings.Locale
}

func ordersValue(orders []*models.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		amount := o.Quantity.Mul(o.UnitPrice)
		switch o.Type {
		case models.OrderBuy:
			total = total.Add(amount).Add(o.Fee)
		case models.OrderSell:
			total = total.Sub(amount.Sub(o.Fee))
		}
	}
	return total
}
