package create

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/handlertest"
	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
	"github.com/magabrotheeeer/portfolio-tracker/internal/services/order"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Create(ctx context.Context, userID string, req models.CreateOrderRequest) (*models.Order, error) {
	args := m.Called(ctx, userID, req)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

func TestCreateHandler_ServeHTTP(t *testing.T) {
	valid := models.CreateOrderRequest{
		Currency: "USD", DataSource: "MANUAL", Date: "2024-01-02", Fee: 0,
		Quantity: 1, Symbol: "AAPL", Type: "BUY", UnitPrice: 150,
	}

	tests := []struct {
		name      string
		body      any
		setupMock func(m *ServiceMock)
		wantCode  int
	}{
		{
			name: "created",
			body: valid,
			setupMock: func(m *ServiceMock) {
				m.On("Create", mock.Anything, "u-1", valid).Return(&models.Order{ID: "o-1"}, nil).Once()
			},
			wantCode: http.StatusCreated,
		},
		{
			name: "validation error",
			body: models.CreateOrderRequest{
				Currency: "USD", DataSource: "BLOOMBERG", Date: "02.01.2024", Symbol: "AAPL", Type: "BUY",
			},
			setupMock: func(_ *ServiceMock) {},
			wantCode:  http.StatusUnprocessableEntity,
		},
		{
			name: "foreign account",
			body: valid,
			setupMock: func(m *ServiceMock) {
				m.On("Create", mock.Anything, "u-1", valid).Return(nil, order.ErrAccountNotFound).Once()
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "service error",
			body: valid,
			setupMock: func(m *ServiceMock) {
				m.On("Create", mock.Anything, "u-1", valid).Return(nil, errors.New("db down")).Once()
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(ServiceMock)
			tt.setupMock(m)

			res := handlertest.Do(t, New(handlertest.NoopLogger(), m), handlertest.Request{
				Method: http.MethodPost, Target: "/api/v1/orders", Body: tt.body, UserID: "u-1",
			})

			assert.Equal(t, tt.wantCode, res.Code)
			m.AssertExpectations(t)
		})
	}
}
