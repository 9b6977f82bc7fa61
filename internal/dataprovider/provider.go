// Package dataprovider объединяет источники рыночных данных.
package dataprovider

import (
	"context"
	"time"

	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
)

// Provider — источник котировок и поиска инструментов.
// GetHistorical возвращает цены по символу, ключ внутренней карты — дата в формате 2006-01-02.
type Provider interface {
	CanHandle(symbol string) bool
	Get(ctx context.Context, symbols []string) (map[string]models.Quote, error)
	GetHistorical(ctx context.Context, symbols []string, granularity models.Granularity, from, to time.Time) (map[string]map[string]models.HistoricalQuote, error)
	Name() models.DataSource
	Search(ctx context.Context, query string) ([]models.LookupItem, error)
}
