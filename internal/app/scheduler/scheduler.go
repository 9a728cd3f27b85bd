// Package scheduler собирает планировщик напоминаний об окончании подписки.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/mindwell/internal/config"
	"github.com/magabrotheeeer/mindwell/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
	"github.com/magabrotheeeer/mindwell/internal/mailer"
	schedulerservice "github.com/magabrotheeeer/mindwell/internal/services/scheduler"
	"github.com/magabrotheeeer/mindwell/internal/storage/repository"
)

const (
	dbReadyAttempts = 10
	dbReadyDelay    = 3 * time.Second
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.Service
	db               *repository.Storage
	conn             *amqp.Connection
	ch               *amqp.Channel
	logger           *slog.Logger
}

func waitForDB(ctx context.Context, db *repository.Storage) error {
	for range dbReadyAttempts {
		if err := db.Ping(ctx); err == nil {
			return nil
		}
		time.Sleep(dbReadyDelay)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err := waitForDB(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	app := &App{db: db, logger: logger}

	var mail schedulerservice.Mailer = mailer.NewLog(logger)
	if cfg.RabbitMQURL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
		}
		app.conn = conn
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.EmailQueues())
		if err != nil {
			app.close()
			return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
		}
		app.ch = ch
		mail = mailer.NewQueue(ch, logger)
	}

	app.schedulerService = schedulerservice.New(db, mail, schedulerservice.Settings{
		FrontendURL: cfg.FrontendURL,
		Lead:        cfg.ReminderLead,
		Interval:    cfg.ReminderInterval,
	}, logger)
	return app, nil
}

// Run запускает планировщик и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.schedulerService.Run(ctx)
	a.logger.Info("shutting down scheduler service")
	a.close()
	return nil
}

// RunOnce выполняет один проход и возвращает число отправленных напоминаний.
func (a *App) RunOnce(ctx context.Context) int {
	defer a.close()
	return a.schedulerService.RunOnce(ctx)
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
