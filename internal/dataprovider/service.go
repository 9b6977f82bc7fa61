package dataprovider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/magabrotheeeer/portfolio-tracker/internal/cache"
	"github.com/magabrotheeeer/portfolio-tracker/internal/dataprovider/manual"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
)

// ErrUnknownDataSource — источник не включён или не существует.
var ErrUnknownDataSource = errors.New("unknown data source")

// Cache — хранилище результатов поиска.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Service направляет запросы в подходящий источник.
type Service struct {
	log       *slog.Logger
	cache     Cache
	ttl       time.Duration
	providers map[models.DataSource]Provider
	order     []models.DataSource
	primary   models.DataSource
}

// Constructors известных источников.
var registry = map[models.DataSource]func() Provider{
	models.DataSourceManual: func() Provider { return manual.New() },
}

// New строит Service из списка имён источников. Неизвестное имя — ошибка.
func New(log *slog.Logger, c Cache, ttl time.Duration, names []string) (*Service, error) {
	const op = "dataprovider.New"
	s := &Service{
		log:       log,
		cache:     c,
		ttl:       ttl,
		providers: make(map[models.DataSource]Provider),
	}
	for _, name := range names {
		ds := models.DataSource(strings.ToUpper(strings.TrimSpace(name)))
		if ds == "" {
			continue
		}
		ctor, ok := registry[ds]
		if !ok {
			return nil, fmt.Errorf("%s: %w: %s", op, ErrUnknownDataSource, name)
		}
		s.Register(ctor())
	}
	return s, nil
}

// Register добавляет источник; повторная регистрация заменяет предыдущий.
func (s *Service) Register(p Provider) {
	if _, ok := s.providers[p.Name()]; !ok {
		s.order = append(s.order, p.Name())
	}
	s.providers[p.Name()] = p
}

// DataSources возвращает включённые источники в порядке регистрации.
func (s *Service) DataSources() []models.DataSource {
	return append([]models.DataSource(nil), s.order...)
}

// SetPrimary задаёт источник по умолчанию; он должен быть включён.
func (s *Service) SetPrimary(name string) error {
	ds := models.DataSource(strings.ToUpper(strings.TrimSpace(name)))
	if _, ok := s.providers[ds]; !ok {
		return fmt.Errorf("dataprovider.SetPrimary: %w: %s", ErrUnknownDataSource, name)
	}
	s.primary = ds
	return nil
}

// Primary возвращает источник по умолчанию: заданный через SetPrimary
// или первый включённый.
func (s *Service) Primary() models.DataSource {
	if s.primary != "" || len(s.order) == 0 {
		return s.primary
	}
	return s.order[0]
}

// Provider возвращает источник по имени.
func (s *Service) Provider(ds models.DataSource) (Provider, error) {
	p, ok := s.providers[ds]
	if !ok {
		return nil, fmt.Errorf("dataprovider.Provider: %w: %s", ErrUnknownDataSource, ds)
	}
	return p, nil
}

// Search опрашивает все источники и объединяет результаты, отсортированные по имени.
// Ошибка одного источника не прерывает поиск.
func (s *Service) Search(ctx context.Context, query string) ([]models.LookupItem, error) {
	const op = "dataprovider.Search"
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.LookupItem{}, nil
	}

	key := cache.PrefixSymbolLookup + strings.ToLower(query)
	var cached []models.LookupItem
	if s.cache != nil {
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.log.Warn("failed to read lookup cache", slog.String("op", op), sl.Err(err))
		} else if found {
			return cached, nil
		}
	}

	items := []models.LookupItem{}
	for _, ds := range s.order {
		found, err := s.providers[ds].Search(ctx, query)
		if err != nil {
			s.log.Error("data provider search failed",
				slog.String("op", op), slog.String("data_source", string(ds)), sl.Err(err))
			continue
		}
		items = append(items, found...)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, items, s.ttl); err != nil {
			s.log.Warn("failed to write lookup cache", slog.String("op", op), sl.Err(err))
		}
	}
	return items, nil
}

// GetQuote возвращает котировку symbol из источника ds.
// Второе значение false, если источник котировку не вернул.
func (s *Service) GetQuote(ctx context.Context, ds models.DataSource, symbol string) (*models.Quote, bool, error) {
	quotes, err := s.Get(ctx, map[string]models.DataSource{symbol: ds})
	if err != nil {
		return nil, false, err
	}
	q, ok := quotes[symbol]
	if !ok {
		return nil, false, nil
	}
	return &q, true, nil
}

// Get группирует символы по источникам и собирает котировки.
func (s *Service) Get(ctx context.Context, items map[string]models.DataSource) (map[string]models.Quote, error) {
	const op = "dataprovider.Get"
	grouped := make(map[models.DataSource][]string)
	for symbol, ds := range items {
		grouped[ds] = append(grouped[ds], symbol)
	}

	result := make(map[string]models.Quote, len(items))
	for ds, symbols := range grouped {
		p, err := s.Provider(ds)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		quotes, err := p.Get(ctx, symbols)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		for symbol, q := range quotes {
			result[symbol] = q
		}
	}
	return result, nil
}

// GetPriceOnDate возвращает дневную цену symbol на дату day из источника ds.
// Второе значение false, если у источника нет цены на эту дату.
func (s *Service) GetPriceOnDate(ctx context.Context, ds models.DataSource, symbol string, day time.Time) (*models.HistoricalQuote, bool, error) {
	const op = "dataprovider.GetPriceOnDate"
	p, err := s.Provider(ds)
	if err != nil {
		return nil, false, err
	}

	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	history, err := p.GetHistorical(ctx, []string{symbol}, models.GranularityDay, day, day)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	q, ok := history[symbol][day.Format(time.DateOnly)]
	if !ok {
		return nil, false, nil
	}
	return &q, true, nil
}
