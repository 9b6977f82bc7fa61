package callback

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/handlertest"
	"github.com/magabrotheeeer/portfolio-tracker/internal/paymentprovider"
	"github.com/magabrotheeeer/portfolio-tracker/internal/services/subscription"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) CreateSubscriptionViaStripe(ctx context.Context, sessionID string) (string, error) {
	args := m.Called(ctx, sessionID)
	return args.String(0), args.Error(1)
}

func (m *ServiceMock) CallbackRedirect() string {
	return m.Called().String(0)
}

func TestCallbackHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name         string
		target       string
		setupMock    func(m *ServiceMock)
		wantCode     int
		wantLocation string
	}{
		{
			name:   "paid session redirects",
			target: "/api/v1/subscription/stripe/callback?checkoutSessionId=cs_1",
			setupMock: func(m *ServiceMock) {
				m.On("CreateSubscriptionViaStripe", mock.Anything, "cs_1").Return("u-1", nil).Once()
				m.On("CallbackRedirect").Return("https://app.example.com/account").Once()
			},
			wantCode:     http.StatusFound,
			wantLocation: "https://app.example.com/account",
		},
		{
			name:      "missing session id",
			target:    "/api/v1/subscription/stripe/callback",
			setupMock: func(_ *ServiceMock) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name:   "unpaid session",
			target: "/api/v1/subscription/stripe/callback?checkoutSessionId=cs_2",
			setupMock: func(m *ServiceMock) {
				m.On("CreateSubscriptionViaStripe", mock.Anything, "cs_2").
					Return("", fmt.Errorf("subscription.CreateSubscriptionViaStripe: %w", paymentprovider.ErrNotPaid)).Once()
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name:   "session without user",
			target: "/api/v1/subscription/stripe/callback?checkoutSessionId=cs_3",
			setupMock: func(m *ServiceMock) {
				m.On("CreateSubscriptionViaStripe", mock.Anything, "cs_3").
					Return("", fmt.Errorf("subscription.CreateSubscriptionViaStripe: %w", subscription.ErrInvalidSession)).Once()
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name:   "storage error",
			target: "/api/v1/subscription/stripe/callback?checkoutSessionId=cs_4",
			setupMock: func(m *ServiceMock) {
				m.On("CreateSubscriptionViaStripe", mock.Anything, "cs_4").Return("", errors.New("db down")).Once()
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(ServiceMock)
			tt.setupMock(m)

			res := handlertest.Do(t, New(handlertest.NoopLogger(), m), handlertest.Request{
				Method: http.MethodGet, Target: tt.target,
			})

			assert.Equal(t, tt.wantCode, res.Code)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, res.Header.Get("Location"))
			}
			m.AssertExpectations(t)
		})
	}
}
