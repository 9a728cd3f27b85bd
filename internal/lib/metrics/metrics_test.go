package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestWebhookUnresolved(t *testing.T) {
	before := testutil.ToFloat64(WebhookUnresolved)
	WebhookUnresolved.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(WebhookUnresolved))
}

func TestWebhookEventsByOutcome(t *testing.T) {
	c := WebhookEvents.WithLabelValues("processed")
	before := testutil.ToFloat64(c)
	c.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}
