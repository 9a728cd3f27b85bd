// Package sender собирает воркер, который читает письма из очереди и
// отправляет их по SMTP.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/mindwell/internal/config"
	"github.com/magabrotheeeer/mindwell/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
	"github.com/magabrotheeeer/mindwell/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/mindwell/internal/services/sender"
)

// App воркер отправки писем.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.Service
	logger        *slog.Logger
}

// New подключается к RabbitMQ и готовит SMTP-транспорт.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("rabbitmq url is required for sender")
	}
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.EmailQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	if !transport.Configured() {
		logger.Warn("SMTP is not configured, emails will only be logged")
	}

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderservice.New(transport, logger),
		logger:        logger,
	}, nil
}

// Run потребляет очередь писем до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	done, err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.EmailQueue, a.senderService.HandleMessage, a.logger)
	if err != nil {
		a.logger.Error("failed to start email consumer", sl.Err(err))
		a.close()
		return err
	}

	<-done
	a.logger.Info("sender shutting down gracefully")
	a.close()
	return nil
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
}
