// Package sender отправляет письма-напоминания об окончании подписки через SendGrid.
package sender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log/slog"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/valuefmt"
	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
)

// ErrSendFailed — SendGrid ответил статусом ошибки.
var ErrSendFailed = errors.New("mail was not accepted")

const subjectExpiring = "Your Premium subscription expires soon"

// Mailer — клиент отправки писем. Реализуется *sendgrid.Client.
type Mailer interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// Service формирует и отправляет письма.
type Service struct {
	mailer  Mailer
	from    *mail.Email
	rootURL string
	log     *slog.Logger
}

// NewSendGridMailer создаёт клиента SendGrid с ключом apiKey.
func NewSendGridMailer(apiKey string) Mailer {
	return sendgrid.NewSendClient(apiKey)
}

// New создает Service.
func New(log *slog.Logger, mailer Mailer, fromName, fromEmail, rootURL string) *Service {
	return &Service{
		mailer:  mailer,
		from:    mail.NewEmail(fromName, fromEmail),
		rootURL: rootURL,
		log:     log,
	}
}

// HandleExpiryNotice обрабатывает сообщение из очереди напоминаний.
//
// Некорректное сообщение логируется и подтверждается (nil), так как повтор
// его не исправит. Ошибка отправки возвращается, чтобы сообщение ушло на повтор.
func (s *Service) HandleExpiryNotice(ctx context.Context, body []byte) error {
	const op = "sender.HandleExpiryNotice"
	var notice models.ExpiryNotice
	if err := json.Unmarshal(body, &notice); err != nil {
		s.log.Error("failed to unmarshal message body, dropping", slog.String("op", op), sl.Err(err))
		return nil
	}
	if notice.Email == "" {
		s.log.Error("message has no recipient, dropping", slog.String("op", op), sl.UserID(notice.UserID))
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.send(notice); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("email sent successfully", slog.String("op", op), sl.UserID(notice.UserID))
	return nil
}

func (s *Service) send(n models.ExpiryNotice) error {
	date := valuefmt.Format(n.ExpiresAt, valuefmt.Flags{Locale: n.Locale}).FormattedText
	plain, htmlBody := renderExpiryNotice(n.Username, date, s.rootURL)

	to := mail.NewEmail(n.Username, n.Email)
	message := mail.NewSingleEmail(s.from, subjectExpiring, to, plain, htmlBody)

	resp, err := s.mailer.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: status %d: %s", ErrSendFailed, resp.StatusCode, resp.Body)
	}
	return nil
}

func renderExpiryNotice(username, date, rootURL string) (plain, htmlBody string) {
	plain = fmt.Sprintf("Hello %s,\n\nyour Premium subscription expires on %s.\n"+
		"Renew it at %s/account to keep all features.\n", username, date, rootURL)
	htmlBody = fmt.Sprintf("<p>Hello %s,</p><p>your Premium subscription expires on <strong>%s</strong>.</p>"+
		"<p><a href=\"%s/account\">Renew your subscription</a> to keep all features.</p>",
		html.EscapeString(username), html.EscapeString(date), html.EscapeString(rootURL))
	return plain, htmlBody
}
