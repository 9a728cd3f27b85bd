package sl_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
)

func TestErr_ReturnsCorrectAttr(t *testing.T) {
	err := errors.New("something went wrong")
	attr := sl.Err(err)

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.StringValue("something went wrong"), attr.Value)
}

func TestErr_NilError(t *testing.T) {
	assert.NotPanics(t, func() {
		attr := sl.Err(nil)
		assert.Equal(t, "error", attr.Key)
		assert.Equal(t, "", attr.Value.String())
	})
}

func TestOp(t *testing.T) {
	attr := sl.Op("services.payment.Verify")

	assert.Equal(t, "op", attr.Key)
	assert.Equal(t, "services.payment.Verify", attr.Value.String())
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		env       string
		wantDebug bool
	}{
		{env: "local", wantDebug: true},
		{env: "dev", wantDebug: true},
		{env: "prod", wantDebug: false},
		{env: "unknown", wantDebug: true},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			log := sl.SetupLogger(tt.env)
			assert.NotNil(t, log)
			assert.Equal(t, tt.wantDebug, log.Enabled(context.Background(), slog.LevelDebug))
		})
	}
}
