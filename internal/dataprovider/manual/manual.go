// Package manual — источник данных для инструментов, цены которых пользователь вводит сам.
// Котировок у него нет, поэтому все запросы возвращают пустой результат.
package manual

import (
	"context"
	"time"

	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
)

// Provider — источник MANUAL.
type Provider struct{}

// New создаёт Provider.
func New() *Provider {
	return &Provider{}
}

// CanHandle всегда false: инструменты MANUAL не обслуживаются автоматически.
func (p *Provider) CanHandle(string) bool {
	return false
}

// Get возвращает пустой набор котировок.
func (p *Provider) Get(context.Context, []string) (map[string]models.Quote, error) {
	return map[string]models.Quote{}, nil
}

// GetHistorical возвращает пустую историю.
func (p *Provider) GetHistorical(context.Context, []string, models.Granularity, time.Time, time.Time) (map[string]map[string]models.HistoricalQuote, error) {
	return map[string]map[string]models.HistoricalQuote{}, nil
}

// Name возвращает models.DataSourceManual.
func (p *Provider) Name() models.DataSource {
	return models.DataSourceManual
}

// Search ничего не находит.
func (p *Provider) Search(context.Context, string) ([]models.LookupItem, error) {
	return []models.LookupItem{}, nil
}
