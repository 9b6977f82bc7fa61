package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
	"github.com/magabrotheeeer/portfolio-tracker/internal/storage"
)

// registerLockKey — ключ advisory-блокировки, сериализующей регистрации.
const registerLockKey = 7_310_001

// RegisterUser сохраняет нового пользователя и возвращает его ID.
// Первый зарегистрированный пользователь получает роль администратора;
// регистрации выполняются под advisory-блокировкой, поэтому
// при одновременных запросах администратор остаётся один.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, registerLockKey); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO users (email, username, password_hash, role, base_currency, locale)
			  VALUES ($1, $2, $3,
			      CASE WHEN EXISTS (SELECT 1 FROM users) THEN $4 ELSE 'admin' END,
			      $5, $6)
			  RETURNING id`
	var id string
	err = tx.QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.Role,
		user.Settings.BaseCurrency, user.Settings.Locale).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, storage.MapError(err))
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

const selectUser = `SELECT id, email, username, password_hash, role, base_currency, locale, created_at
			  FROM users `

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role,
		&u.Settings.BaseCurrency, &u.Settings.Locale, &u.CreatedAt)
	if err != nil {
		return nil, storage.MapError(err)
	}
	return &u, nil
}

// GetUserByUsername возвращает пользователя по username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	u, err := scanUser(s.DB.QueryRowContext(ctx, selectUser+`WHERE username = $1`, username))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по ID.
func (s *Storage) GetUser(ctx context.Context, userID string) (*models.User, error) {
	const op = "storage.GetUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	u, err := scanUser(s.DB.QueryRowContext(ctx, selectUser+`WHERE id = $1`, userID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateSettings сохраняет настройки отображения пользователя.
func (s *Storage) UpdateSettings(ctx context.Context, userID string, settings models.Settings) error {
	const op = "storage.UpdateSettings"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET base_currency = $1, locale = $2 WHERE id = $3`,
		settings.BaseCurrency, settings.Locale, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireAffected(op, res)
}
