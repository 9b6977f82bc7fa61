// Package subscription управляет оплаченными подписками и определяет тарифный план пользователя.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/magabrotheeeer/portfolio-tracker/internal/cache"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/plan"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
	"github.com/magabrotheeeer/portfolio-tracker/internal/paymentprovider"
)

// Period — срок действия одной оплаченной подписки.
const Period = 365 * 24 * time.Hour

// ErrInvalidSession — сессия оплаты не привязана к пользователю.
var ErrInvalidSession = errors.New("checkout session has no client reference")

// Repository определяет методы для работы с записями о подписках.
type Repository interface {
	CreateSubscription(ctx context.Context, userID string, expiresAt time.Time) (*models.SubscriptionRecord, error)
	ListSubscriptions(ctx context.Context, userID string) ([]models.SubscriptionRecord, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// PaymentProvider — платёжный провайдер.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, p paymentprovider.CheckoutParams) (string, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*paymentprovider.CheckoutSession, error)
	UpdateCustomerDescription(ctx context.Context, customerID, description string) error
}

// Service реализует бизнес-логику подписок.
type Service struct {
	repo     Repository
	cache    Cache
	payments PaymentProvider
	log      *slog.Logger
	rootURL  string
	cacheTTL time.Duration
	now      func() time.Time
}

// New создает Service. rootURL — публичный адрес приложения для переходов после оплаты.
func New(log *slog.Logger, repo Repository, cache Cache, payments PaymentProvider, rootURL string, cacheTTL time.Duration) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		payments: payments,
		log:      log,
		rootURL:  rootURL,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

func cacheKey(userID string) string {
	return cache.PrefixSubscriptions + userID
}

// CreateSubscription выдаёт пользователю подписку на Period начиная с текущего момента.
func (s *Service) CreateSubscription(ctx context.Context, userID string) (*models.SubscriptionRecord, error) {
	const op = "subscription.CreateSubscription"
	rec, err := s.repo.CreateSubscription(ctx, userID, s.now().UTC().Add(Period))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Invalidate(ctx, cacheKey(userID)); err != nil {
		s.log.Warn("failed to invalidate subscription cache", slog.String("op", op), sl.Err(err))
	}
	s.log.Info("subscription created", slog.String("op", op), sl.UserID(userID),
		slog.Time("expires_at", rec.ExpiresAt))
	return rec, nil
}

// CreateCheckoutSession создаёт сессию оплаты Premium и возвращает её ID.
func (s *Service) CreateCheckoutSession(ctx context.Context, userID string, req models.CheckoutSessionRequest) (string, error) {
	const op = "subscription.CreateCheckoutSession"
	id, err := s.payments.CreateCheckoutSession(ctx, paymentprovider.CheckoutParams{
		PriceID:    req.PriceID,
		CouponID:   req.CouponID,
		UserID:     userID,
		SuccessURL: s.rootURL + "/api/v1/subscription/stripe/callback?checkoutSessionId={CHECKOUT_SESSION_ID}",
		CancelURL:  s.rootURL + "/account",
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// CreateSubscriptionViaStripe выдаёт подписку по завершённой сессии оплаты
// и возвращает ID пользователя, оплатившего её.
func (s *Service) CreateSubscriptionViaStripe(ctx context.Context, sessionID string) (string, error) {
	const op = "subscription.CreateSubscriptionViaStripe"
	session, err := s.payments.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if session.ClientReferenceID == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidSession)
	}
	if !session.Paid() {
		return "", fmt.Errorf("%s: %w", op, paymentprovider.ErrNotPaid)
	}

	userID := session.ClientReferenceID
	if _, err := s.CreateSubscription(ctx, userID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if session.CustomerID != "" {
		if err := s.payments.UpdateCustomerDescription(ctx, session.CustomerID, userID); err != nil {
			s.log.Error("failed to update customer description", slog.String("op", op), sl.UserID(userID), sl.Err(err))
		}
	}
	return userID, nil
}

// GetSubscription возвращает текущий тарифный план пользователя.
func (s *Service) GetSubscription(ctx context.Context, userID string) (models.PlanClassification, error) {
	const op = "subscription.GetSubscription"
	records, err := s.records(ctx, userID)
	if err != nil {
		return models.PlanClassification{}, fmt.Errorf("%s: %w", op, err)
	}
	return plan.Resolve(records, s.now()), nil
}

// IsPremium сообщает, действует ли у пользователя Premium сейчас.
func (s *Service) IsPremium(ctx context.Context, userID string) (bool, error) {
	const op = "subscription.IsPremium"
	records, err := s.records(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return plan.IsPremium(records, s.now()), nil
}

func (s *Service) records(ctx context.Context, userID string) ([]models.SubscriptionRecord, error) {
	const op = "subscription.records"
	key := cacheKey(userID)

	var records []models.SubscriptionRecord
	found, err := s.cache.Get(ctx, key, &records)
	if err != nil {
		s.log.Warn("failed to read subscription cache", slog.String("op", op), sl.Err(err))
	} else if found {
		return records, nil
	}

	records, err = s.repo.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, records, s.cacheTTL); err != nil {
		s.log.Warn("failed to cache subscriptions", slog.String("op", op), sl.Err(err))
	}
	return records, nil
}

// CallbackRedirect возвращает адрес, куда отправляется пользователь после оплаты.
func (s *Service) CallbackRedirect() string {
	u, err := url.JoinPath(s.rootURL, "account")
	if err != nil {
		return s.rootURL + "/account"
	}
	return u
}
