// Package mailer ставит письма в очередь отправителя.
package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/mindwell/internal/lib/metrics"
	"github.com/magabrotheeeer/mindwell/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/mindwell/internal/models"
)

// Queue публикует письма в RabbitMQ.
type Queue struct {
	ch  rabbitmq.Channel
	log *slog.Logger
}

// NewQueue создаёт Queue поверх открытого канала.
func NewQueue(ch rabbitmq.Channel, log *slog.Logger) *Queue {
	return &Queue{ch: ch, log: log}
}

// Send ставит письмо в очередь.
func (q *Queue) Send(_ context.Context, msg models.EmailMessage) error {
	const op = "mailer.Queue.Send"

	if err := rabbitmq.PublishMessage(q.ch, rabbitmq.Exchange, rabbitmq.EmailRoutingKey, msg); err != nil {
		metrics.EmailsSent.WithLabelValues(msg.Kind, "publish_failed").Inc()
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.EmailsSent.WithLabelValues(msg.Kind, "queued").Inc()
	q.log.Debug("email queued", slog.String("op", op), slog.String("kind", msg.Kind), slog.String("to", msg.To))
	return nil
}

// Log пишет письма в лог вместо отправки. Используется, когда брокер не настроен.
type Log struct {
	log *slog.Logger
}

// NewLog создаёт Log.
func NewLog(log *slog.Logger) *Log {
	return &Log{log: log}
}

// Send логирует письмо.
func (l *Log) Send(_ context.Context, msg models.EmailMessage) error {
	l.log.Info("email not sent, no broker configured",
		slog.String("op", "mailer.Log.Send"),
		slog.String("kind", msg.Kind),
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("text", msg.TextBody),
	)
	metrics.EmailsSent.WithLabelValues(msg.Kind, "logged").Inc()
	return nil
}
