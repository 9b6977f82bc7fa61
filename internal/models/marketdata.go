package models

import "time"

// Granularity — шаг исторических данных.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
)

// MarketState — состояние рынка для котировки.
type MarketState string

const (
	MarketOpen    MarketState = "open"
	MarketClosed  MarketState = "closed"
	MarketDelayed MarketState = "delayed"
)

// LookupItem — результат поиска инструмента.
type LookupItem struct {
	Currency   string     `json:"currency"`
	DataSource DataSource `json:"data_source"`
	Name       string     `json:"name"`
	Symbol     string     `json:"symbol"`
}

// Quote — текущая котировка инструмента.
type Quote struct {
	Currency    string      `json:"currency"`
	DataSource  DataSource  `json:"data_source"`
	MarketPrice float64     `json:"market_price"`
	MarketState MarketState `json:"market_state"`
	Name        string      `json:"name,omitempty"`
}

// HistoricalQuote — историческая цена на дату.
type HistoricalQuote struct {
	Date        time.Time `json:"date"`
	MarketPrice float64   `json:"market_price"`
}
