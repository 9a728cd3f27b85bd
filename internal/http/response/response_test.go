package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/mindwell/internal/lib/apperr"
)

func TestOK(t *testing.T) {
	data := map[string]string{"key": "value"}
	resp := OK(data)

	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.Empty(t, resp.Code)
	assert.Equal(t, data, resp.Data)
}

func TestError(t *testing.T) {
	msg := "something went wrong"
	resp := Error(msg)

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, msg, resp.Error)
	assert.Nil(t, resp.Data)
}

func TestFromError(t *testing.T) {
	notFound := apperr.New(apperr.KindNotFound, "journal_not_found", "journal entry not found")
	paymentRequired := apperr.New(apperr.KindUpstream, "payment_not_confirmed", "payment was not confirmed").WithStatus(http.StatusPaymentRequired)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantCode   string
	}{
		{
			name:       "domain error",
			err:        fmt.Errorf("wellness.Get: %w", notFound),
			wantStatus: http.StatusNotFound,
			wantError:  "journal entry not found",
			wantCode:   "journal_not_found",
		},
		{
			name:       "explicit status",
			err:        paymentRequired,
			wantStatus: http.StatusPaymentRequired,
			wantError:  "payment was not confirmed",
			wantCode:   "payment_not_confirmed",
		},
		{
			name:       "plain error is hidden",
			err:        errors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal server error",
		},
		{
			name:       "internal kind is hidden",
			err:        apperr.New(apperr.KindInternal, "db", "database exploded"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := FromError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, StatusError, resp.Status)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}

func TestRenderError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	RenderError(rec, req, apperr.New(apperr.KindConflict, "already_processed", "payment has already been processed"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	var got map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "Error", got["status"])
	assert.Equal(t, "already_processed", got["code"])
	assert.Nil(t, got["data"])
}

func TestValidationError(t *testing.T) {
	type TestStruct struct {
		Name  string `validate:"required,alphanum"`
		Email string `validate:"email"`
		Mood  int    `validate:"min=1,max=5"`
	}

	v := validator.New()
	err := v.Struct(TestStruct{Name: "!!!", Email: "nope", Mood: 9})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, CodeValidationFailed, resp.Code)
	assert.Contains(t, resp.Error, "field Name can contain only numbers and letters")
	assert.Contains(t, resp.Error, "field Email must be a valid email")
	assert.Contains(t, resp.Error, "field Mood must be at most 5")
}

func TestRenderValidation(t *testing.T) {
	type TestStruct struct {
		Name string `validate:"required"`
	}
	err := validator.New().Struct(TestStruct{})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	RenderValidation(rec, req, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "field Name is a required field")
}
