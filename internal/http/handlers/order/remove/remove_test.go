package remove

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/handlertest"
	"github.com/magabrotheeeer/portfolio-tracker/internal/storage"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Delete(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

const recordID = "9b2f0b8e-8a41-4c1e-9d59-3c1b7c0f6a11"

func TestRemoveHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		callMock bool
		mockErr  error
		wantCode int
	}{
		{name: "deleted", id: recordID, callMock: true, wantCode: http.StatusOK},
		{name: "not found", id: recordID, callMock: true, mockErr: storage.ErrNotFound, wantCode: http.StatusNotFound},
		{name: "service error", id: recordID, callMock: true, mockErr: errors.New("db down"), wantCode: http.StatusInternalServerError},
		{name: "malformed id", id: "o-1", wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(ServiceMock)
			if tt.callMock {
				m.On("Delete", mock.Anything, "u-1", tt.id).Return(tt.mockErr).Once()
			}

			res := handlertest.Do(t, New(handlertest.NoopLogger(), m), handlertest.Request{
				Method: http.MethodDelete, Target: "/api/v1/orders/" + tt.id, UserID: "u-1",
				URLParams: map[string]string{"id": tt.id},
			})

			assert.Equal(t, tt.wantCode, res.Code)
			m.AssertExpectations(t)
			if !tt.callMock {
				m.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}
