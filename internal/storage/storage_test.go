package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	other := errors.New("boom")
	fkViolation := &pgconn.PgError{Code: "23503"}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "no rows", err: sql.ErrNoRows, want: ErrNotFound},
		{name: "wrapped no rows", err: fmt.Errorf("scan: %w", sql.ErrNoRows), want: ErrNotFound},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, want: ErrAlreadyExists},
		{name: "malformed uuid", err: fmt.Errorf("delete: %w", &pgconn.PgError{Code: "22P02"}), want: ErrNotFound},
		{name: "other pg error", err: fkViolation, want: fkViolation},
		{name: "other", err: other, want: other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapError(tt.err))
		})
	}
}
