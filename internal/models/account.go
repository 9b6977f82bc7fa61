package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/valuefmt"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// AccountType — тип счёта.
type AccountType string

const (
	// AccountSecurities — брокерский счёт.
	AccountSecurities AccountType = "SECURITIES"
	// AccountCash — денежный счёт.
	AccountCash AccountType = "CASH"
)

// Account — счёт пользователя, к которому привязываются операции.
type Account struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Name        string          `json:"name"`
	AccountType AccountType     `json:"account_type"`
	Balance     decimal.Decimal `json:"balance"`
	Currency    string          `json:"currency"`
	PlatformID  *string         `json:"platform_id,omitempty"`
	IsExcluded  bool            `json:"is_excluded"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateAccountRequest — тело запроса на создание счёта.
type CreateAccountRequest struct {
	AccountType string  `json:"account_type" validate:"required,accounttype"`
	Balance     float64 `json:"balance" validate:"gte=0"`
	Currency    string  `json:"currency" validate:"required,currency"`
	Name        string  `json:"name" validate:"required,max=255"`
	PlatformID  *string `json:"platform_id,omitempty" validate:"omitempty,max=255"`
	IsExcluded  bool    `json:"is_excluded"`
}

// UpdateAccountRequest — тело запроса на изменение счёта.
type UpdateAccountRequest struct {
	ID string `json:"id" validate:"required,uuid"`
	CreateAccountRequest
}

// AccountTotal — итоги по счетам в одной валюте.
type AccountTotal struct {
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
	Value    decimal.Decimal `json:"value"`
	Display  *TotalDisplay   `json:"display,omitempty"`
}

// TotalDisplay — отформатированные для вывода итоги.
type TotalDisplay struct {
	Balance valuefmt.DisplayValue `json:"balance"`
	Value   valuefmt.DisplayValue `json:"value"`
}

// AccountsSummary — список счетов пользователя с итогами.
type AccountsSummary struct {
	Accounts         []*Account     `json:"accounts"`
	Totals           []AccountTotal `json:"totals"`
	TransactionCount int            `json:"transaction_count"`
}
