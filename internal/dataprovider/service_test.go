package dataprovider

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/portfolio-tracker/internal/cache"
	"github.com/magabrotheeeer/portfolio-tracker/internal/config"
	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
)

type MockProvider struct {
	mock.Mock
	name models.DataSource
}

func (m *MockProvider) CanHandle(symbol string) bool {
	return m.Called(symbol).Bool(0)
}

func (m *MockProvider) Get(ctx context.Context, symbols []string) (map[string]models.Quote, error) {
	args := m.Called(ctx, symbols)
	q, _ := args.Get(0).(map[string]models.Quote)
	return q, args.Error(1)
}

func (m *MockProvider) GetHistorical(ctx context.Context, symbols []string, g models.Granularity, from, to time.Time) (map[string]map[string]models.HistoricalQuote, error) {
	args := m.Called(ctx, symbols, g, from, to)
	h, _ := args.Get(0).(map[string]map[string]models.HistoricalQuote)
	return h, args.Error(1)
}

func (m *MockProvider) Name() models.DataSource {
	return m.name
}

func (m *MockProvider) Search(ctx context.Context, query string) ([]models.LookupItem, error) {
	args := m.Called(ctx, query)
	items, _ := args.Get(0).([]models.LookupItem)
	return items, args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCache(t *testing.T) *cache.Cache {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	c, err := cache.InitServer(context.Background(), config.RedisConnection{AddressRedis: mr.Addr()})
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		sources []string
		want    []models.DataSource
		wantErr bool
	}{
		{name: "manual", sources: []string{"MANUAL"}, want: []models.DataSource{models.DataSourceManual}},
		{name: "lower case and blanks", sources: []string{" manual ", ""}, want: []models.DataSource{models.DataSourceManual}},
		{name: "duplicates collapse", sources: []string{"MANUAL", "MANUAL"}, want: []models.DataSource{models.DataSourceManual}},
		{name: "unknown", sources: []string{"MANUAL", "BLOOMBERG"}, wantErr: true},
		{name: "empty", sources: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(discardLogger(), nil, time.Minute, tt.sources)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnknownDataSource)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.DataSources())
		})
	}
}

func TestPrimary(t *testing.T) {
	s, err := New(discardLogger(), nil, time.Minute, []string{"MANUAL"})
	require.NoError(t, err)
	assert.Equal(t, models.DataSourceManual, s.Primary(), "first enabled source by default")

	s.Register(&MockProvider{name: models.DataSourceYahoo})
	require.NoError(t, s.SetPrimary(" yahoo "))
	assert.Equal(t, models.DataSourceYahoo, s.Primary())

	err = s.SetPrimary("RAKUTEN")
	assert.ErrorIs(t, err, ErrUnknownDataSource)
	assert.Equal(t, models.DataSourceYahoo, s.Primary())

	empty, err := New(discardLogger(), nil, time.Minute, nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Primary())
}

func TestSearch_MergesAndCaches(t *testing.T) {
	ctx := context.Background()
	s, err := New(discardLogger(), newCache(t), time.Minute, nil)
	require.NoError(t, err)

	yahoo := &MockProvider{name: models.DataSourceYahoo}
	yahoo.On("Search", mock.Anything, "app").Return([]models.LookupItem{
		{Name: "Apple Inc.", Symbol: "AAPL", DataSource: models.DataSourceYahoo, Currency: "USD"},
	}, nil).Once()
	broken := &MockProvider{name: models.DataSourceRakuten}
	broken.On("Search", mock.Anything, "app").Return(nil, errors.New("timeout")).Once()
	other := &MockProvider{name: models.DataSourceAlphaVantage}
	other.On("Search", mock.Anything, "app").Return([]models.LookupItem{
		{Name: "Applied Materials", Symbol: "AMAT", DataSource: models.DataSourceAlphaVantage, Currency: "USD"},
	}, nil).Once()

	s.Register(yahoo)
	s.Register(broken)
	s.Register(other)

	items, err := s.Search(ctx, " app ")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Apple Inc.", items[0].Name)
	assert.Equal(t, "Applied Materials", items[1].Name)

	// второй вызов обслуживается из кэша
	items, err = s.Search(ctx, "APP")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	yahoo.AssertExpectations(t)
	broken.AssertExpectations(t)
	other.AssertExpectations(t)
}

func TestSearch_EmptyQuery(t *testing.T) {
	s, err := New(discardLogger(), nil, time.Minute, []string{"MANUAL"})
	require.NoError(t, err)

	items, err := s.Search(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGetQuote(t *testing.T) {
	ctx := context.Background()
	s, err := New(discardLogger(), nil, time.Minute, []string{"MANUAL"})
	require.NoError(t, err)

	p := &MockProvider{name: models.DataSourceYahoo}
	p.On("Get", mock.Anything, []string{"AAPL"}).Return(map[string]models.Quote{
		"AAPL": {Currency: "USD", DataSource: models.DataSourceYahoo, MarketPrice: 190.5, MarketState: models.MarketOpen},
	}, nil)
	s.Register(p)

	q, ok, err := s.GetQuote(ctx, models.DataSourceYahoo, "AAPL")
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 190.5, q.MarketPrice, 1e-9)

	_, ok, err = s.GetQuote(ctx, models.DataSourceManual, "MY-HOUSE")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = s.GetQuote(ctx, models.DataSourceGhostfolio, "X")
	assert.ErrorIs(t, err, ErrUnknownDataSource)
}

func TestGet_GroupsByDataSource(t *testing.T) {
	s, err := New(discardLogger(), nil, time.Minute, []string{"MANUAL"})
	require.NoError(t, err)

	p := &MockProvider{name: models.DataSourceYahoo}
	p.On("Get", mock.Anything, []string{"AAPL"}).Return(map[string]models.Quote{
		"AAPL": {MarketPrice: 1},
	}, nil)
	s.Register(p)

	quotes, err := s.Get(context.Background(), map[string]models.DataSource{
		"AAPL":     models.DataSourceYahoo,
		"MY-HOUSE": models.DataSourceManual,
	})
	require.NoError(t, err)
	assert.Len(t, quotes, 1)
	assert.Contains(t, quotes, "AAPL")
}

func TestGetPriceOnDate(t *testing.T) {
	ctx := context.Background()
	s, err := New(discardLogger(), nil, time.Minute, []string{"MANUAL"})
	require.NoError(t, err)

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	p := &MockProvider{name: models.DataSourceYahoo}
	p.On("GetHistorical", mock.Anything, []string{"AAPL"}, models.GranularityDay, day, day).
		Return(map[string]map[string]models.HistoricalQuote{
			"AAPL": {"2024-03-05": {Date: day, MarketPrice: 170.12}},
		}, nil).Once()
	p.On("GetHistorical", mock.Anything, []string{"MSFT"}, models.GranularityDay, day, day).
		Return(nil, errors.New("upstream down")).Once()
	s.Register(p)

	q, ok, err := s.GetPriceOnDate(ctx, models.DataSourceYahoo, "AAPL", day.Add(15*time.Hour))
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 170.12, q.MarketPrice, 1e-9)

	_, ok, err = s.GetPriceOnDate(ctx, models.DataSourceManual, "MY-HOUSE", day)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = s.GetPriceOnDate(ctx, models.DataSourceYahoo, "MSFT", day)
	assert.Error(t, err)

	_, _, err = s.GetPriceOnDate(ctx, models.DataSourceGhostfolio, "X", day)
	assert.ErrorIs(t, err, ErrUnknownDataSource)
	p.AssertExpectations(t)
}
