package lookup

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/handlertest"
	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Search(ctx context.Context, query string) ([]models.LookupItem, error) {
	args := m.Called(ctx, query)
	items, _ := args.Get(0).([]models.LookupItem)
	return items, args.Error(1)
}

func TestLookupHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		setupMock func(m *ServiceMock)
		wantCode  int
		wantItems int
	}{
		{
			name:   "found",
			target: "/api/v1/symbol/lookup?query=apple",
			setupMock: func(m *ServiceMock) {
				m.On("Search", mock.Anything, "apple").Return([]models.LookupItem{
					{Symbol: "AAPL", Name: "Apple Inc.", Currency: "USD", DataSource: models.DataSourceManual},
				}, nil).Once()
			},
			wantCode:  http.StatusOK,
			wantItems: 1,
		},
		{
			name:      "empty query",
			target:    "/api/v1/symbol/lookup",
			setupMock: func(_ *ServiceMock) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name:   "search error",
			target: "/api/v1/symbol/lookup?query=apple",
			setupMock: func(m *ServiceMock) {
				m.On("Search", mock.Anything, "apple").Return(nil, errors.New("boom")).Once()
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(ServiceMock)
			tt.setupMock(m)

			res := handlertest.Do(t, New(handlertest.NoopLogger(), m), handlertest.Request{
				Method: http.MethodGet, Target: tt.target, UserID: "u-1",
			})

			assert.Equal(t, tt.wantCode, res.Code)
			if tt.wantCode == http.StatusOK {
				items, _ := res.Data()["items"].([]any)
				assert.Len(t, items, tt.wantItems)
			}
			m.AssertExpectations(t)
		})
	}
}
