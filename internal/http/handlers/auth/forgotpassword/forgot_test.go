package forgotpassword

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) RequestPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func TestHandler_AlwaysSameAnswer(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "known email"},
		{name: "storage failure is hidden", err: errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			svc.On("RequestPasswordReset", mock.Anything, "bob@example.com").Return(tt.err).Once()

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/forgot-password",
				strings.NewReader(`{"email":"bob@example.com"}`))
			rec := httptest.NewRecorder()
			New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), Message)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_InvalidEmail(t *testing.T) {
	svc := new(ServiceMock)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/forgot-password", strings.NewReader(`{"email":"nope"}`))
	rec := httptest.NewRecorder()
	New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "RequestPasswordReset", mock.Anything, mock.Anything)
}
