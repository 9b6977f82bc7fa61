package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
	"github.com/magabrotheeeer/portfolio-tracker/internal/storage"
)

const orderColumns = `id, user_id, account_id, currency, data_source, date, fee, quantity, symbol, type, unit_price`

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.UserID, &o.AccountID, &o.Currency, &o.DataSource, &o.Date,
		&o.Fee, &o.Quantity, &o.Symbol, &o.Type, &o.UnitPrice)
	if err != nil {
		return nil, storage.MapError(err)
	}
	return &o, nil
}

type execQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertOrder(ctx context.Context, q execQuerier, o models.Order) (*models.Order, error) {
	query := `INSERT INTO orders (user_id, account_id, currency, data_source, date, fee, quantity, symbol, type, unit_price)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING ` + orderColumns
	return scanOrder(q.QueryRowContext(ctx, query,
		o.UserID, o.AccountID, o.Currency, o.DataSource, o.Date, o.Fee, o.Quantity, o.Symbol, o.Type, o.UnitPrice))
}

// CreateOrder сохраняет операцию.
func (s *Storage) CreateOrder(ctx context.Context, o models.Order) (*models.Order, error) {
	const op = "storage.CreateOrder"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	created, err := insertOrder(ctx, s.DB, o)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// ImportOrders сохраняет все операции в одной транзакции: либо все, либо ни одной.
func (s *Storage) ImportOrders(ctx context.Context, orders []models.Order) ([]*models.Order, error) {
	const op = "storage.ImportOrders"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	result := make([]*models.Order, 0, len(orders))
	for i, o := range orders {
		created, err := insertOrder(ctx, tx, o)
		if err != nil {
			return nil, fmt.Errorf("%s: order %d: %w", op, i, err)
		}
		result = append(result, created)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetOrder возвращает операцию пользователя по ID.
func (s *Storage) GetOrder(ctx context.Context, userID, id string) (*models.Order, error) {
	const op = "storage.GetOrder"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	o, err := scanOrder(s.DB.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return o, nil
}

// ListOrders возвращает операции пользователя, новые первыми.
func (s *Storage) ListOrders(ctx context.Context, userID string) ([]*models.Order, error) {
	const op = "storage.ListOrders"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY date DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateOrder изменяет операцию пользователя.
func (s *Storage) UpdateOrder(ctx context.Context, o models.Order) (*models.Order, error) {
	const op = "storage.UpdateOrder"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `UPDATE orders
			  SET account_id = $1, currency = $2, data_source = $3, date = $4, fee = $5,
			      quantity = $6, symbol = $7, type = $8, unit_price = $9
			  WHERE id = $10 AND user_id = $11
			  RETURNING ` + orderColumns
	updated, err := scanOrder(s.DB.QueryRowContext(ctx, query,
		o.AccountID, o.Currency, o.DataSource, o.Date, o.Fee, o.Quantity, o.Symbol, o.Type, o.UnitPrice,
		o.ID, o.UserID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// DeleteOrder удаляет операцию пользователя.
func (s *Storage) DeleteOrder(ctx context.Context, userID, id string) error {
	const op = "storage.DeleteOrder"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM orders WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, storage.MapError(err))
	}
	return requireAffected(op, res)
}
