// Package storage содержит общие ошибки слоя хранения.
package storage

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound — запись не найдена или принадлежит другому пользователю.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушено ограничение уникальности.
	ErrAlreadyExists = errors.New("already exists")
)

// MapError переводит ошибки драйвера в ошибки пакета storage.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return ErrAlreadyExists
		case pgerrcode.InvalidTextRepresentation:
			// не-UUID в условии по id: такой записи быть не может
			return ErrNotFound
		}
	}
	return err
}
