package api

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/portfolio-tracker/internal/config"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
	accountservice "github.com/magabrotheeeer/portfolio-tracker/internal/services/account"
	authservice "github.com/magabrotheeeer/portfolio-tracker/internal/services/auth"
	subservice "github.com/magabrotheeeer/portfolio-tracker/internal/services/subscription"
)

const testSecret = "routes-test-secret"

func newRouter(t *testing.T, features config.Features) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	RegisterRoutes(r, logger, features, config.HTTPServer{RateLimit: 1000, RateBurst: 1000}, Deps{
		Auth:          authservice.New(nil, jwt.NewJWTMaker(testSecret, time.Hour), models.Settings{}),
		Subscriptions: subservice.New(logger, nil, nil, nil, "http://localhost", time.Minute),
		Accounts:      accountservice.New(logger, nil),
		Registry:      prometheus.NewRegistry(),
	})
	return r
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := jwt.NewJWTMaker(testSecret, time.Hour).GenerateToken("u-1", "alice", role)
	require.NoError(t, err)
	return tok
}

func TestRegisterRoutes(t *testing.T) {
	tests := []struct {
		name     string
		features config.Features
		method   string
		target   string
		role     string
		wantCode int
	}{
		{
			name:     "protected route without token",
			method:   http.MethodGet,
			target:   "/api/v1/accounts",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "subscription routes hidden when feature is off",
			method:   http.MethodGet,
			target:   "/api/v1/subscription",
			role:     models.RoleUser,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "callback hidden when feature is off",
			method:   http.MethodGet,
			target:   "/api/v1/subscription/stripe/callback",
			wantCode: http.StatusNotFound,
		},
		{
			name:     "callback is public",
			features: config.Features{EnableSubscription: true},
			method:   http.MethodGet,
			target:   "/api/v1/subscription/stripe/callback",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "admin route rejects regular user",
			features: config.Features{EnableSubscription: true},
			method:   http.MethodPost,
			target:   "/api/v1/admin/subscriptions/u-2",
			role:     models.RoleUser,
			wantCode: http.StatusForbidden,
		},
		{
			name:     "malformed order id is not found",
			method:   http.MethodGet,
			target:   "/api/v1/orders/not-a-uuid",
			role:     models.RoleUser,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "malformed account id is not found",
			method:   http.MethodDelete,
			target:   "/api/v1/accounts/42",
			role:     models.RoleUser,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "admin grant with malformed user id",
			features: config.Features{EnableSubscription: true},
			method:   http.MethodPost,
			target:   "/api/v1/admin/subscriptions/u-2",
			role:     models.RoleAdmin,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "read-only mode blocks writes",
			features: config.Features{ReadOnlyMode: true},
			method:   http.MethodPost,
			target:   "/api/v1/accounts",
			role:     models.RoleUser,
			wantCode: http.StatusForbidden,
		},
		{
			name:     "metrics endpoint",
			method:   http.MethodGet,
			target:   "/metrics",
			wantCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(t, tt.features)

			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.role != "" {
				req.Header.Set("Authorization", "Bearer "+token(t, tt.role))
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
