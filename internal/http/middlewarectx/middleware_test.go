package middlewarectx_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/portfolio-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
)

// Мок для TokenValidator
type AuthMock struct {
	mock.Mock
}

func (m *AuthMock) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func withRole(r *http.Request, role string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middlewarectx.Role, role))
}

func TestJWTMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		authHeader     string
		setupMock      func(m *AuthMock)
		expectedStatus int
		expectCalled   bool
	}{
		{
			name:       "valid token",
			authHeader: "Bearer good",
			setupMock: func(m *AuthMock) {
				m.On("ValidateToken", mock.Anything, "good").
					Return(&models.User{ID: "u-1", Username: "testuser", Role: models.RoleUser}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectCalled:   true,
		},
		{
			name:           "missing header",
			authHeader:     "",
			setupMock:      func(_ *AuthMock) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong scheme",
			authHeader:     "Basic abc",
			setupMock:      func(_ *AuthMock) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid token",
			authHeader: "Bearer bad",
			setupMock: func(m *AuthMock) {
				m.On("ValidateToken", mock.Anything, "bad").Return(nil, errors.New("expired")).Once()
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthMock)
			tt.setupMock(authMock)

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				id, ok := middlewarectx.UserIDFromContext(r.Context())
				assert.True(t, ok)
				assert.Equal(t, "u-1", id)
				assert.Equal(t, "testuser", r.Context().Value(middlewarectx.User))
				assert.Equal(t, models.RoleUser, r.Context().Value(middlewarectx.Role))
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()
			middlewarectx.JWTMiddleware(authMock, newNoopLogger())(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectCalled, called)
			authMock.AssertExpectations(t)
		})
	}
}

func TestAdminOnly(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := middlewarectx.AdminOnly(newNoopLogger())(next)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, withRole(httptest.NewRequest(http.MethodPost, "/", nil), models.RoleAdmin))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, withRole(httptest.NewRequest(http.MethodPost, "/", nil), models.RoleUser))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := middlewarectx.RateLimitMiddleware(newNoopLogger(), 0.001, 2)(next)

	codes := make([]int, 0, 3)
	for range 3 {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestReadOnlyMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name    string
		enabled bool
		method  string
		role    string
		want    int
	}{
		{name: "disabled allows writes", enabled: false, method: http.MethodPost, role: models.RoleUser, want: http.StatusOK},
		{name: "reads allowed", enabled: true, method: http.MethodGet, role: models.RoleUser, want: http.StatusOK},
		{name: "post rejected", enabled: true, method: http.MethodPost, role: models.RoleUser, want: http.StatusForbidden},
		{name: "put rejected", enabled: true, method: http.MethodPut, role: models.RoleUser, want: http.StatusForbidden},
		{name: "delete rejected", enabled: true, method: http.MethodDelete, role: "", want: http.StatusForbidden},
		{name: "admin may write", enabled: true, method: http.MethodDelete, role: models.RoleAdmin, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := withRole(httptest.NewRequest(tt.method, "/api/v1/accounts", nil), tt.role)
			middlewarectx.ReadOnlyMiddleware(newNoopLogger(), tt.enabled)(next).ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestMetrics_Middleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := middlewarectx.NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/accounts/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) })

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/accounts/"+id, nil))
	}

	expected := `
# HELP http_requests_total Number of HTTP requests by route, method and status.
# TYPE http_requests_total counter
http_requests_total{method="GET",route="/accounts/{id}",status="404"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "http_requests_total"))
}

type PlanMock struct {
	mock.Mock
}

func (m *PlanMock) IsPremium(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func TestPremiumOnly(t *testing.T) {
	tests := []struct {
		name           string
		userID         string
		role           string
		setupMock      func(m *PlanMock)
		expectedStatus int
	}{
		{
			name:   "premium user",
			userID: "u-1",
			role:   models.RoleUser,
			setupMock: func(m *PlanMock) {
				m.On("IsPremium", mock.Anything, "u-1").Return(true, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "basic user",
			userID: "u-1",
			role:   models.RoleUser,
			setupMock: func(m *PlanMock) {
				m.On("IsPremium", mock.Anything, "u-1").Return(false, nil).Once()
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "admin skips the check",
			userID:         "admin-1",
			role:           models.RoleAdmin,
			setupMock:      func(_ *PlanMock) {},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "no user in context",
			role:           models.RoleUser,
			setupMock:      func(_ *PlanMock) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "status lookup fails",
			userID: "u-1",
			role:   models.RoleUser,
			setupMock: func(m *PlanMock) {
				m.On("IsPremium", mock.Anything, "u-1").Return(false, errors.New("redis down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(PlanMock)
			tt.setupMock(m)

			h := middlewarectx.PremiumOnly(newNoopLogger(), m)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := withRole(httptest.NewRequest(http.MethodGet, "/api/v1/symbol/MANUAL/X", nil), tt.role)
			if tt.userID != "" {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserID, tt.userID))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			m.AssertExpectations(t)
		})
	}

	t.Run("disabled without checker", func(t *testing.T) {
		h := middlewarectx.PremiumOnly(newNoopLogger(), nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	})
}
