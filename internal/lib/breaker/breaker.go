// Package breaker собирает circuit breaker для вызовов внешних API.
package breaker

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/magabrotheeeer/mindwell/internal/lib/metrics"
)

// New возвращает breaker, который размыкается после failures ошибок подряд
// и остаётся открытым timeout. failures == 0 заменяется на 5.
func New[T any](name string, failures uint32, timeout time.Duration, log *slog.Logger) *gobreaker.CircuitBreaker[T] {
	if failures == 0 {
		failures = 5
	}
	metrics.BreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || IsRejected(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			metrics.BreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
}

// RejectedError сервис ответил, но отказал конкретному запросу (4xx).
// Breaker не считает такой ответ отказом сервиса, вызывающий получает ошибку как есть.
type RejectedError struct {
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request rejected with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request rejected with status %d: %s", e.StatusCode, e.Message)
}

// StatusError возвращает ошибку для ответа с кодом не 2xx. Ответы 4xx, кроме
// 429, становятся RejectedError, остальные считаются отказом сервиса.
func StatusError(statusCode int, message string) error {
	if statusCode >= 400 && statusCode < 500 && statusCode != http.StatusTooManyRequests {
		return &RejectedError{StatusCode: statusCode, Message: message}
	}
	if message == "" {
		return fmt.Errorf("unexpected status %d", statusCode)
	}
	return fmt.Errorf("unexpected status %d: %s", statusCode, message)
}

// IsRejected сообщает, что err вызван отказом в конкретном запросе.
func IsRejected(err error) bool {
	var rejected *RejectedError
	return errors.As(err, &rejected)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
