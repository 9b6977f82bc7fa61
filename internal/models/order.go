package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderType — тип операции.
type OrderType string

const (
	OrderBuy      OrderType = "BUY"
	OrderSell     OrderType = "SELL"
	OrderDividend OrderType = "DIVIDEND"
	OrderItem     OrderType = "ITEM"
)

// DataSource — источник рыночных данных для инструмента.
type DataSource string

const (
	DataSourceAlphaVantage DataSource = "ALPHA_VANTAGE"
	DataSourceGhostfolio   DataSource = "GHOSTFOLIO"
	DataSourceManual       DataSource = "MANUAL"
	DataSourceRakuten      DataSource = "RAKUTEN"
	DataSourceYahoo        DataSource = "YAHOO"
)

// Order — операция пользователя с инструментом.
type Order struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	AccountID  *string         `json:"account_id,omitempty"`
	Currency   string          `json:"currency"`
	DataSource DataSource      `json:"data_source"`
	Date       time.Time       `json:"date"`
	Fee        decimal.Decimal `json:"fee"`
	Quantity   decimal.Decimal `json:"quantity"`
	Symbol     string          `json:"symbol"`
	Type       OrderType       `json:"type"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

// CreateOrderRequest — тело запроса на создание операции.
// Дата приходит строкой в формате ISO-8601.
type CreateOrderRequest struct {
	AccountID  *string `json:"account_id,omitempty" validate:"omitempty,uuid"`
	Currency   string  `json:"currency" validate:"required,currency"`
	DataSource string  `json:"data_source,omitempty" validate:"omitempty,datasource"`
	Date       string  `json:"date" validate:"required,iso8601"`
	Fee        float64 `json:"fee" validate:"gte=0"`
	Quantity   float64 `json:"quantity" validate:"gte=0"`
	Symbol     string  `json:"symbol" validate:"required,max=64"`
	Type       string  `json:"type" validate:"required,ordertype"`
	UnitPrice  float64 `json:"unit_price" validate:"gte=0"`
}

// UpdateOrderRequest — тело запроса на изменение операции.
type UpdateOrderRequest struct {
	ID string `json:"id" validate:"required,uuid"`
	CreateOrderRequest
}

// ImportOrdersRequest — тело запроса на импорт операций.
type ImportOrdersRequest struct {
	Orders []CreateOrderRequest `json:"orders" validate:"required,min=1,dive"`
}
