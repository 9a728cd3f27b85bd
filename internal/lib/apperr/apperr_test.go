package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDuplicate = New(KindConflict, "already_processed", "payment already processed")

func TestError_IsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("services.payment.Verify: %w", errDuplicate.Wrap(errors.New("23505")))

	assert.ErrorIs(t, wrapped, errDuplicate)
	assert.NotErrorIs(t, wrapped, New(KindConflict, "already_verified", "email is already verified"))
}

func TestFrom(t *testing.T) {
	e, ok := From(fmt.Errorf("op: %w", errDuplicate))
	require.True(t, ok)
	assert.Equal(t, "already_processed", e.Code)

	_, ok = From(errors.New("plain"))
	assert.False(t, ok)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: New(KindValidation, "missing_reference", "reference is required"), want: http.StatusBadRequest},
		{name: "not found", err: New(KindNotFound, "user_not_found", "user not found"), want: http.StatusNotFound},
		{name: "conflict", err: errDuplicate, want: http.StatusConflict},
		{name: "auth", err: New(KindAuth, "invalid_signature", "invalid signature"), want: http.StatusUnauthorized},
		{name: "upstream", err: New(KindUpstream, "gateway_unreachable", "payment gateway unreachable"), want: http.StatusBadGateway},
		{name: "explicit status wins", err: New(KindUpstream, "payment_not_confirmed", "payment not confirmed").WithStatus(http.StatusPaymentRequired), want: http.StatusPaymentRequired},
		{name: "wrapped", err: fmt.Errorf("op: %w", errDuplicate), want: http.StatusConflict},
		{name: "unknown error", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindConflict, KindOf(errDuplicate))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestWrap_DoesNotMutateSentinel(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	wrapped := errDuplicate.Wrap(cause)

	assert.Nil(t, errDuplicate.Err)
	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, wrapped.Error(), "dial tcp: timeout")
}
