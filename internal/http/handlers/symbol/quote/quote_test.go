package quote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/portfolio-tracker/internal/dataprovider"
	"github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/handlertest"
	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) GetQuote(ctx context.Context, ds models.DataSource, symbol string) (*models.Quote, bool, error) {
	args := m.Called(ctx, ds, symbol)
	q, _ := args.Get(0).(*models.Quote)
	return q, args.Bool(1), args.Error(2)
}

func TestQuoteHandler_ServeHTTP(t *testing.T) {
	params := map[string]string{"dataSource": "manual", "symbol": "aapl"}

	tests := []struct {
		name      string
		setupMock func(m *ServiceMock)
		wantCode  int
	}{
		{
			name: "found",
			setupMock: func(m *ServiceMock) {
				m.On("GetQuote", mock.Anything, models.DataSourceManual, "AAPL").Return(&models.Quote{
					Currency: "USD", DataSource: models.DataSourceManual, MarketPrice: 1234.5, MarketState: models.MarketClosed,
				}, true, nil).Once()
			},
			wantCode: http.StatusOK,
		},
		{
			name: "not found",
			setupMock: func(m *ServiceMock) {
				m.On("GetQuote", mock.Anything, models.DataSourceManual, "AAPL").Return(nil, false, nil).Once()
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "unknown data source",
			setupMock: func(m *ServiceMock) {
				m.On("GetQuote", mock.Anything, models.DataSourceManual, "AAPL").
					Return(nil, false, fmt.Errorf("dataprovider.Provider: %w: MANUAL", dataprovider.ErrUnknownDataSource)).Once()
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "provider error",
			setupMock: func(m *ServiceMock) {
				m.On("GetQuote", mock.Anything, models.DataSourceManual, "AAPL").Return(nil, false, errors.New("timeout")).Once()
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(ServiceMock)
			tt.setupMock(m)

			res := handlertest.Do(t, New(handlertest.NoopLogger(), m), handlertest.Request{
				Method: http.MethodGet, Target: "/api/v1/symbol/manual/aapl", UserID: "u-1", URLParams: params,
			})

			assert.Equal(t, tt.wantCode, res.Code)
			if tt.wantCode == http.StatusOK {
				data := res.Data()
				assert.Equal(t, "AAPL", data["symbol"])
				display, _ := data["price_display"].(map[string]any)
				assert.Equal(t, "1,234.50", display["formatted_text"])
			}
			m.AssertExpectations(t)
		})
	}
}
