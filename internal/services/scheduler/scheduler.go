// Package scheduler периодически ищет подписки, которые скоро закончатся,
// и ставит напоминания в очередь уведомлений.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
)

// SubscriptionRepository ищет пользователей, у которых истекает последняя подписка.
type SubscriptionRepository interface {
	FindExpiringSubscriptions(ctx context.Context, from, to time.Time) ([]models.ExpiryNotice, error)
}

// Publisher публикует сообщение в обменник уведомлений.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Service — планировщик напоминаний.
type Service struct {
	repo      SubscriptionRepository
	publisher Publisher
	log       *slog.Logger
	interval  time.Duration
	lookahead time.Duration
	now       func() time.Time
}

// New создает Service. Каждые interval ищутся подписки, истекающие в течение lookahead.
func New(log *slog.Logger, repo SubscriptionRepository, publisher Publisher, interval, lookahead time.Duration) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       log,
		interval:  interval,
		lookahead: lookahead,
		now:       time.Now,
	}
}

// Run выполняет проверку сразу и затем каждые interval, пока ctx не будет отменён.
func (s *Service) Run(ctx context.Context) {
	const op = "scheduler.Run"
	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped", slog.String("op", op))
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Service) tick(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil {
		s.log.Error("failed to schedule expiry reminders", sl.Err(err))
	}
}

// RunOnce публикует напоминания для подписок, истекающих в [now, now+lookahead),
// и возвращает число опубликованных сообщений. Ошибка публикации одного
// сообщения не прерывает обработку остальных.
func (s *Service) RunOnce(ctx context.Context) (int, error) {
	const op = "scheduler.RunOnce"
	from := s.now().UTC()
	notices, err := s.repo.FindExpiringSubscriptions(ctx, from, from.Add(s.lookahead))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(notices) == 0 {
		s.log.Info("no expiring subscriptions found", slog.String("op", op))
		return 0, nil
	}

	published := 0
	for _, n := range notices {
		if err := s.publisher.Publish(ctx, rabbitmq.RoutingKeySubscriptionExpiring, n); err != nil {
			s.log.Error("failed to publish message", slog.String("op", op), sl.UserID(n.UserID), sl.Err(err))
			continue
		}
		published++
	}
	s.log.Info("expiry reminders published", slog.String("op", op),
		slog.Int("found", len(notices)), slog.Int("published", published))
	return published, nil
}
