package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
	"github.com/magabrotheeeer/portfolio-tracker/internal/storage"
)

const selectAccount = `SELECT id, user_id, name, account_type, balance, currency,
			      platform_id, is_excluded, created_at, updated_at
			  FROM accounts `

func scanAccount(row rowScanner) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.AccountType, &a.Balance, &a.Currency,
		&a.PlatformID, &a.IsExcluded, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, storage.MapError(err)
	}
	return &a, nil
}

// CreateAccount сохраняет счёт и возвращает его с заполненными ID и датами.
func (s *Storage) CreateAccount(ctx context.Context, acc models.Account) (*models.Account, error) {
	const op = "storage.CreateAccount"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO accounts (user_id, name, account_type, balance, currency, platform_id, is_excluded)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id, user_id, name, account_type, balance, currency,
			      platform_id, is_excluded, created_at, updated_at`
	a, err := scanAccount(s.DB.QueryRowContext(ctx, query,
		acc.UserID, acc.Name, acc.AccountType, acc.Balance, acc.Currency, acc.PlatformID, acc.IsExcluded))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// GetAccount возвращает счёт пользователя по ID.
func (s *Storage) GetAccount(ctx context.Context, userID, id string) (*models.Account, error) {
	const op = "storage.GetAccount"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	a, err := scanAccount(s.DB.QueryRowContext(ctx, selectAccount+`WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// ListAccounts возвращает все счета пользователя в порядке создания.
func (s *Storage) ListAccounts(ctx context.Context, userID string) ([]*models.Account, error) {
	const op = "storage.ListAccounts"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, selectAccount+`WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateAccount изменяет счёт пользователя и возвращает новое состояние.
func (s *Storage) UpdateAccount(ctx context.Context, acc models.Account) (*models.Account, error) {
	const op = "storage.UpdateAccount"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `UPDATE accounts
			  SET name = $1, account_type = $2, balance = $3, currency = $4,
			      platform_id = $5, is_excluded = $6, updated_at = NOW()
			  WHERE id = $7 AND user_id = $8
			  RETURNING id, user_id, name, account_type, balance, currency,
			      platform_id, is_excluded, created_at, updated_at`
	a, err := scanAccount(s.DB.QueryRowContext(ctx, query,
		acc.Name, acc.AccountType, acc.Balance, acc.Currency, acc.PlatformID, acc.IsExcluded,
		acc.ID, acc.UserID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// DeleteAccount удаляет счёт пользователя. Операции счёта остаются без привязки.
func (s *Storage) DeleteAccount(ctx context.Context, userID, id string) error {
	const op = "storage.DeleteAccount"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, storage.MapError(err))
	}
	return requireAffected(op, res)
}
