package middlewarectx_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/mindwell/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mindwell/internal/models"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

type PremiumCheckerMock struct {
	mock.Mock
}

func (m *PremiumCheckerMock) IsPremium(ctx context.Context, userID string) (bool, string, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.String(1), args.Error(2)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func withUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middlewarectx.UserID, userID))
}

func TestJWTMiddleware(t *testing.T) {
	authMock := new(AuthServiceMock)
	logger := newNoopLogger()

	handlerCalled := false

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		assert.Equal(t, "u-1", middlewarectx.UserIDFrom(r.Context()))
		assert.Equal(t, "testuser", r.Context().Value(middlewarectx.User))
		assert.Equal(t, "user", middlewarectx.RoleFrom(r.Context()))
		w.WriteHeader(http.StatusOK)
	})

	middleware := middlewarectx.JWTMiddleware(authMock, logger)(nextHandler)

	tests := []struct {
		name           string
		authHeader     string
		mockResp       *models.User
		mockErr        error
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "missing Authorization header",
			authHeader:     "",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "invalid Authorization header prefix",
			authHeader:     "Basic sometoken",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "token validation error",
			authHeader:     "Bearer token",
			mockErr:        errors.New("token is expired"),
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "valid token",
			authHeader:     "Bearer validtoken",
			mockResp:       &models.User{ID: "u-1", Username: "testuser", Role: models.RoleUser},
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled = false
			authMock.ExpectedCalls = nil
			authMock.Calls = nil
			if tt.mockResp != nil || tt.mockErr != nil {
				authMock.On("ValidateToken", mock.Anything, strings.TrimPrefix(tt.authHeader, "Bearer ")).
					Return(tt.mockResp, tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodGet, "/somepath", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			middleware.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
			authMock.AssertExpectations(t)
		})
	}
}

func TestRequirePremium(t *testing.T) {
	tests := []struct {
		name       string
		premium    bool
		status     string
		err        error
		wantCode   int
		wantCalled bool
		wantBody   map[string]any
	}{
		{
			name:       "active premium passes",
			premium:    true,
			status:     models.SubscriptionPremium,
			wantCode:   http.StatusOK,
			wantCalled: true,
		},
		{
			name:     "free user refused",
			status:   models.SubscriptionFree,
			wantCode: http.StatusForbidden,
			wantBody: map[string]any{
				"status":              "Error",
				"error":               "premium subscription required",
				"code":                "premium_required",
				"subscription_status": "free",
				"upgrade_url":         "/pricing",
			},
		},
		{
			name:     "lapsed premium refused as expired",
			status:   models.SubscriptionExpired,
			wantCode: http.StatusForbidden,
			wantBody: map[string]any{
				"code":                "premium_required",
				"subscription_status": "expired",
			},
		},
		{
			name:     "storage failure",
			err:      errors.New("db down"),
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := new(PremiumCheckerMock)
			sub.On("IsPremium", mock.Anything, "u-1").Return(tt.premium, tt.status, tt.err).Once()

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				assert.True(t, middlewarectx.PremiumFrom(r.Context()))
				w.WriteHeader(http.StatusOK)
			})

			req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/mood/stats", nil), "u-1")
			rec := httptest.NewRecorder()
			middlewarectx.RequirePremium(sub, newNoopLogger())(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
			if tt.wantBody != nil {
				var got map[string]any
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
				for k, v := range tt.wantBody {
					assert.Equal(t, v, got[k], k)
				}
			}
			sub.AssertExpectations(t)
		})
	}
}

func TestRequirePremium_NoUser(t *testing.T) {
	sub := new(PremiumCheckerMock)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	middlewarectx.RequirePremium(sub, newNoopLogger())(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	sub.AssertNotCalled(t, "IsPremium", mock.Anything, mock.Anything)
}

func TestPremiumContext(t *testing.T) {
	tests := []struct {
		name        string
		premium     bool
		status      string
		err         error
		wantPremium bool
		wantStatus  string
	}{
		{name: "premium", premium: true, status: "premium", wantPremium: true, wantStatus: "premium"},
		{name: "free", status: "free", wantStatus: "free"},
		{name: "error degrades to free", err: errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := new(PremiumCheckerMock)
			sub.On("IsPremium", mock.Anything, "u-1").Return(tt.premium, tt.status, tt.err).Once()

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				assert.Equal(t, tt.wantPremium, middlewarectx.PremiumFrom(r.Context()))
				assert.Equal(t, tt.wantStatus, r.Context().Value(middlewarectx.SubscriptionStatus))
			})

			req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary", nil), "u-1")
			rec := httptest.NewRecorder()
			middlewarectx.PremiumContext(sub, newNoopLogger())(next).ServeHTTP(rec, req)

			assert.True(t, called)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}
