// Package metrics объявляет метрики Prometheus, которые отдаются на /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mindwell"

var (
	// HTTPRequests число обработанных HTTP-запросов.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Processed HTTP requests.",
	}, []string{"method", "route", "status"})

	// HTTPDuration длительность обработки HTTP-запросов.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// WebhookEvents вебхуки платёжного шлюза по результату обработки.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_events_total",
		Help:      "Payment webhooks by outcome.",
	}, []string{"outcome"})

	// WebhookUnresolved успешные платежи, для которых не нашёлся пользователь.
	// Каждый такой случай требует ручной сверки (mindwellctl payment reconcile).
	WebhookUnresolved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_unresolved_total",
		Help:      "Successful charges whose customer email matched no user.",
	})

	// PremiumActivations успешные обновления журнала подписок.
	PremiumActivations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "premium_activations_total",
		Help:      "Ledger updates that granted premium, by path.",
	}, []string{"path"})

	// BreakerState состояние circuit breaker: 0 closed, 1 half-open, 2 open.
	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open).",
	}, []string{"name"})

	// EmailsSent письма по результату отправки.
	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_total",
		Help:      "Emails handled by the sender, by result.",
	}, []string{"kind", "result"})
)
