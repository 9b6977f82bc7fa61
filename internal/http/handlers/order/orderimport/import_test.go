package orderimport

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

func (m *ServiceMock) Import(ctx context.Context, userID string, req models.ImportOrdersRequest) ([]*models.Order, error) {
	args := m.Called(ctx, userID, req)
	orders, _ := args.Get(0).([]*models.Order)
	return orders, args.Error(1)
}

func TestImportHandler_ServeHTTP(t *testing.T) {
	item := models.CreateOrderRequest{
		Currency: "USD", DataSource: "MANUAL", Date: "2024-01-02", Quantity: 1, Symbol: "GOLD", Type: "ITEM", UnitPrice: 10,
	}
	valid := models.ImportOrdersRequest{Orders: []models.CreateOrderRequest{item, item}}

	tests := []struct {
		name      string
		body      any
		setupMock func(m *ServiceMock)
		wantCode  int
	}{
		{
			name: "imported",
			body: valid,
			setupMock: func(m *ServiceMock) {
				m.On("Import", mock.Anything, "u-1", valid).Return([]*models.Order{{ID: "o-1"}, {ID: "o-2"}}, nil).Once()
			},
			wantCode: http.StatusCreated,
		},
		{
			name:      "empty list",
			body:      models.ImportOrdersRequest{Orders: []models.CreateOrderRequest{}},
			setupMock: func(_ *ServiceMock) {},
			wantCode:  http.StatusUnprocessableEntity,
		},
		{
			name: "invalid item",
			body: models.ImportOrdersRequest{Orders: []models.CreateOrderRequest{
				item, {Currency: "USD", DataSource: "MANUAL", Date: "2024-01-02", Symbol: "X", Type: "GIFT"},
			}},
			setupMock: func(_ *ServiceMock) {},
			wantCode:  http.StatusUnprocessableEntity,
		},
		{
			name: "disabled",
			body: valid,
			setupMock: func(m *ServiceMock) {
				m.On("Import", mock.Anything, "u-1", valid).Return(nil, order.ErrImportDisabled).Once()
			},
			wantCode: http.StatusForbidden,
		},
		{
			name: "too many",
			body: valid,
			setupMock: func(m *ServiceMock) {
				m.On("Import", mock.Anything, "u-1", valid).Return(nil, order.ErrTooManyOrders).Once()
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "transaction failed",
			body: valid,
			setupMock: func(m *ServiceMock) {
				m.On("Import", mock.Anything, "u-1", valid).Return(nil, errors.New("tx failed")).Once()
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(ServiceMock)
			tt.setupMock(m)

			res := handlertest.Do(t, New(handlertest.NoopLogger(), m), handlertest.Request{
				Method: http.MethodPost, Target: "/api/v1/orders/import", Body: tt.body, UserID: "u-1",
			})

			assert.Equal(t, tt.wantCode, res.Code)
			m.AssertExpectations(t)
		})
	}
}
