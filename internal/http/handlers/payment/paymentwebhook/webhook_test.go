package paymentwebhook

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

	"github.com/magabrotheeeer/mindwell/internal/services/payment"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) HandleWebhook(ctx context.Context, rawBody []byte, signature string) (payment.WebhookOutcome, error) {
	args := m.Called(ctx, rawBody, signature)
	return args.Get(0).(payment.WebhookOutcome), args.Error(1)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

const body = `{"event":"charge.success","data":{"reference":"ref_1","status":"success","amount":500000,"currency":"KES","customer":{"email":"a@example.com"}}}`

func TestHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name        string
		signature   string
		outcome     payment.WebhookOutcome
		err         error
		wantCode    int
		wantOutcome string
		wantErrCode string
	}{
		{
			name:        "processed",
			signature:   "abc123",
			outcome:     payment.OutcomeProcessed,
			wantCode:    http.StatusOK,
			wantOutcome: "processed",
		},
		{
			name:        "duplicate acknowledged",
			signature:   "abc123",
			outcome:     payment.OutcomeAlreadyProcessed,
			wantCode:    http.StatusOK,
			wantOutcome: "already_processed",
		},
		{
			name:        "unknown customer acknowledged",
			signature:   "abc123",
			outcome:     payment.OutcomeUserNotFound,
			wantCode:    http.StatusOK,
			wantOutcome: "user_not_found",
		},
		{
			name:        "missing signature",
			outcome:     "",
			err:         payment.ErrMissingSignature,
			wantCode:    http.StatusUnauthorized,
			wantErrCode: "missing_signature",
		},
		{
			name:        "invalid signature",
			signature:   "deadbeef",
			outcome:     "",
			err:         payment.ErrInvalidSignature,
			wantCode:    http.StatusUnauthorized,
			wantErrCode: "invalid_signature",
		},
		{
			name:        "unexpected error still acknowledged",
			signature:   "abc123",
			outcome:     "",
			err:         errors.New("boom"),
			wantCode:    http.StatusOK,
			wantOutcome: "failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			svc.On("HandleWebhook", mock.Anything, []byte(body), tt.signature).Return(tt.outcome, tt.err).Once()

			req := httptest.NewRequest(http.MethodPost, "/api/v1/payment/webhook", strings.NewReader(body))
			if tt.signature != "" {
				req.Header.Set(SignatureHeader, tt.signature)
			}
			rec := httptest.NewRecorder()
			New(newNoopLogger(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantErrCode != "" {
				assert.Equal(t, tt.wantErrCode, got["code"])
			} else {
				data := got["data"].(map[string]any)
				assert.Equal(t, tt.wantOutcome, data["outcome"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_UnreadableBody(t *testing.T) {
	svc := new(ServiceMock)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payment/webhook", failingReader{})
	req.Header.Set(SignatureHeader, "abc123")
	rec := httptest.NewRecorder()

	New(newNoopLogger(), svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "HandleWebhook", mock.Anything, mock.Anything, mock.Anything)
}
