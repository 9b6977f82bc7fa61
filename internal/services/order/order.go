// Package order управляет операциями пользователя: ручным вводом и импортом.
package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/valuefmt"
	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
	"github.com/magabrotheeeer/portfolio-tracker/internal/storage"
)

var (
	// ErrImportDisabled — импорт выключен флагом конфигурации.
	ErrImportDisabled = errors.New("import of orders is disabled")
	// ErrTooManyOrders — в импорте больше операций, чем разрешено.
	ErrTooManyOrders = errors.New("too many orders to import")
	// ErrAccountNotFound — указанный счёт не существует или принадлежит другому пользователю.
	ErrAccountNotFound = errors.New("account not found")
	// ErrIDMismatch — ID в теле запроса не совпадает с ID в пути.
	ErrIDMismatch = errors.New("order id does not match")
	// ErrInvalidDate — дата операции не разбирается как ISO-8601.
	ErrInvalidDate = errors.New("invalid order date")
	// ErrEmptySymbol — после очистки от разметки символ оказался пустым.
	ErrEmptySymbol = errors.New("order symbol is empty")
)

// Repository определяет методы хранилища, нужные сервису операций.
type Repository interface {
	CreateOrder(ctx context.Context, o models.Order) (*models.Order, error)
	ImportOrders(ctx context.Context, orders []models.Order) ([]*models.Order, error)
	ListOrders(ctx context.Context, userID string) ([]*models.Order, error)
	UpdateOrder(ctx context.Context, o models.Order) (*models.Order, error)
	DeleteOrder(ctx context.Context, userID, id string) error
	GetOrder(ctx context.Context, userID, id string) (*models.Order, error)
	GetAccount(ctx context.Context, userID, id string) (*models.Account, error)
}

// Service реализует бизнес-логику операций.
type Service struct {
	repo          Repository
	log           *slog.Logger
	policy        *bluemonday.Policy
	importEnabled bool
	maxImport     int
	dataSource    models.DataSource
}

// New создает Service. maxImport ограничивает размер одного импорта; 0 — без ограничения.
// dataSource подставляется в операции, для которых источник не указан.
func New(log *slog.Logger, repo Repository, importEnabled bool, maxImport int, dataSource models.DataSource) *Service {
	return &Service{
		repo:          repo,
		log:           log,
		policy:        bluemonday.StrictPolicy(),
		importEnabled: importEnabled,
		maxImport:     maxImport,
		dataSource:    dataSource,
	}
}

func (s *Service) build(userID string, req models.CreateOrderRequest) (models.Order, error) {
	date, ok := valuefmt.ParseISO(req.Date)
	if !ok {
		return models.Order{}, fmt.Errorf("%w: %q", ErrInvalidDate, req.Date)
	}
	symbol := strings.ToUpper(strings.TrimSpace(s.policy.Sanitize(req.Symbol)))
	if symbol == "" {
		return models.Order{}, ErrEmptySymbol
	}
	ds := models.DataSource(req.DataSource)
	if ds == "" {
		ds = s.dataSource
	}
	return models.Order{
		UserID:     userID,
		AccountID:  req.AccountID,
		Currency:   req.Currency,
		DataSource: ds,
		Date:       date.UTC(),
		Fee:        decimal.NewFromFloat(req.Fee),
		Quantity:   decimal.NewFromFloat(req.Quantity),
		Symbol:     symbol,
		Type:       models.OrderType(req.Type),
		UnitPrice:  decimal.NewFromFloat(req.UnitPrice),
	}, nil
}

// checkAccount проверяет, что счёт, если он указан, принадлежит пользователю.
func (s *Service) checkAccount(ctx context.Context, userID string, accountID *string) error {
	if accountID == nil {
		return nil
	}
	_, err := s.repo.GetAccount(ctx, userID, *accountID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrAccountNotFound
	}
	return err
}

// Create создаёт операцию пользователя.
func (s *Service) Create(ctx context.Context, userID string, req models.CreateOrderRequest) (*models.Order, error) {
	const op = "order.Create"
	o, err := s.build(userID, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.checkAccount(ctx, userID, o.AccountID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	created, err := s.repo.CreateOrder(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// Get возвращает операцию пользователя по ID.
func (s *Service) Get(ctx context.Context, userID, id string) (*models.Order, error) {
	const op = "order.Get"
	o, err := s.repo.GetOrder(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return o, nil
}

// Update изменяет операцию id.
func (s *Service) Update(ctx context.Context, userID, id string, req models.UpdateOrderRequest) (*models.Order, error) {
	const op = "order.Update"
	if req.ID != id {
		return nil, fmt.Errorf("%s: %w", op, ErrIDMismatch)
	}
	o, err := s.build(userID, req.CreateOrderRequest)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	o.ID = id
	if err := s.checkAccount(ctx, userID, o.AccountID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	updated, err := s.repo.UpdateOrder(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// Delete удаляет операцию пользователя.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	const op = "order.Delete"
	if err := s.repo.DeleteOrder(ctx, userID, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// List возвращает операции пользователя.
func (s *Service) List(ctx context.Context, userID string) ([]*models.Order, error) {
	const op = "order.List"
	orders, err := s.repo.ListOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return orders, nil
}

// Import сохраняет все операции одной транзакцией или не сохраняет ни одной.
func (s *Service) Import(ctx context.Context, userID string, req models.ImportOrdersRequest) ([]*models.Order, error) {
	const op = "order.Import"
	if !s.importEnabled {
		return nil, fmt.Errorf("%s: %w", op, ErrImportDisabled)
	}
	if s.maxImport > 0 && len(req.Orders) > s.maxImport {
		return nil, fmt.Errorf("%s: %w: %d > %d", op, ErrTooManyOrders, len(req.Orders), s.maxImport)
	}

	orders := make([]models.Order, 0, len(req.Orders))
	checked := make(map[string]struct{})
	for i, r := range req.Orders {
		o, err := s.build(userID, r)
		if err != nil {
			return nil, fmt.Errorf("%s: order %d: %w", op, i, err)
		}
		if o.AccountID != nil {
			if _, ok := checked[*o.AccountID]; !ok {
				if err := s.checkAccount(ctx, userID, o.AccountID); err != nil {
					return nil, fmt.Errorf("%s: order %d: %w", op, i, err)
				}
				checked[*o.AccountID] = struct{}{}
			}
		}
		orders = append(orders, o)
	}

	created, err := s.repo.ImportOrders(ctx, orders)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("orders imported", slog.String("op", op), sl.UserID(userID), slog.Int("count", len(created)))
	return created, nil
}
