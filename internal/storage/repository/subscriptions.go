package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
	"github.com/magabrotheeeer/portfolio-tracker/internal/storage"
)

// CreateSubscription добавляет запись о подписке пользователя.
func (s *Storage) CreateSubscription(ctx context.Context, userID string, expiresAt time.Time) (*models.SubscriptionRecord, error) {
	const op = "storage.CreateSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rec := models.SubscriptionRecord{UserID: userID, ExpiresAt: expiresAt}
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO subscriptions (user_id, expires_at) VALUES ($1, $2)
		 RETURNING id, created_at`,
		userID, expiresAt).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.MapError(err))
	}
	return &rec, nil
}

// ListSubscriptions возвращает все записи о подписках пользователя.
func (s *Storage) ListSubscriptions(ctx context.Context, userID string) ([]models.SubscriptionRecord, error) {
	const op = "storage.ListSubscriptions"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, user_id, expires_at, created_at
		 FROM subscriptions
		 WHERE user_id = $1
		 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.SubscriptionRecord
	for rows.Next() {
		var rec models.SubscriptionRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ExpiresAt, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FindExpiringSubscriptions возвращает пользователей, у которых самая поздняя
// подписка истекает в полуинтервале [from, to).
func (s *Storage) FindExpiringSubscriptions(ctx context.Context, from, to time.Time) ([]models.ExpiryNotice, error) {
	const op = "storage.FindExpiringSubscriptions"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT u.id, u.email, u.username, u.locale, latest.expires_at
			  FROM (
			      SELECT user_id, MAX(expires_at) AS expires_at
			      FROM subscriptions
			      GROUP BY user_id
			  ) AS latest
			  JOIN users u ON u.id = latest.user_id
			  WHERE latest.expires_at >= $1 AND latest.expires_at < $2
			  ORDER BY latest.expires_at`
	rows, err := s.DB.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.ExpiryNotice
	for rows.Next() {
		var n models.ExpiryNotice
		if err := rows.Scan(&n.UserID, &n.Email, &n.Username, &n.Locale, &n.ExpiresAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
