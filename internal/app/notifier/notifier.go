// Package notifier собирает процесс, который рассылает письма из очереди уведомлений.
package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/portfolio-tracker/internal/config"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/sl"
	senderservice "github.com/magabrotheeeer/portfolio-tracker/internal/services/sender"
)

// App читает очередь напоминаний и отправляет письма через SendGrid.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.Service
	workers       int
	logger        *slog.Logger
}

// New подключается к RabbitMQ и готовит отправителя писем.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg.SendGridAPIKey == "" {
		return nil, fmt.Errorf("notifier.New: SENDGRID_API_KEY is not set")
	}

	conn, err := rabbitmq.Connect(ctx, cfg.AMQPURL, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, cfg.Workers, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	senderService := senderservice.New(logger, senderservice.NewSendGridMailer(cfg.SendGridAPIKey),
		cfg.FromName, cfg.FromEmail, cfg.RootURL)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		workers:       cfg.Workers,
		logger:        logger,
	}, nil
}

// Run обрабатывает сообщения до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.QueueSubscriptionExpiring,
		a.workers, a.senderService.HandleExpiryNotice)
	if err != nil {
		a.logger.Error("failed to start subscription expiring consumer", sl.Err(err))
	}

	a.logger.Info("notifier shutting down gracefully")
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return err
}
