// Package api собирает HTTP API MindWell: хранилище, кэш, очередь писем,
// сервисы и маршруты.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/mindwell/internal/cache"
	"github.com/magabrotheeeer/mindwell/internal/config"
	"github.com/magabrotheeeer/mindwell/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mindwell/internal/lib/jwt"
	"github.com/magabrotheeeer/mindwell/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
	"github.com/magabrotheeeer/mindwell/internal/mailer"
	"github.com/magabrotheeeer/mindwell/internal/migrations"
	"github.com/magabrotheeeer/mindwell/internal/openai"
	"github.com/magabrotheeeer/mindwell/internal/paymentprovider"
	aiservice "github.com/magabrotheeeer/mindwell/internal/services/ai"
	authservice "github.com/magabrotheeeer/mindwell/internal/services/auth"
	communityservice "github.com/magabrotheeeer/mindwell/internal/services/community"
	paymentservice "github.com/magabrotheeeer/mindwell/internal/services/payment"
	subservice "github.com/magabrotheeeer/mindwell/internal/services/subscription"
	"github.com/magabrotheeeer/mindwell/internal/services/verification"
	"github.com/magabrotheeeer/mindwell/internal/services/wellness"
	"github.com/magabrotheeeer/mindwell/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// App HTTP API вместе с ресурсами, которые нужно закрыть при остановке.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New подключается к зависимостям и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	app := &App{
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}

	var mail verification.Mailer = mailer.NewLog(logger)
	if cfg.RabbitMQURL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
		if err != nil {
			app.closeResources()
			return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
		}
		app.conn = conn
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.EmailQueues())
		if err != nil {
			app.closeResources()
			return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
		}
		app.ch = ch
		mail = mailer.NewQueue(ch, logger)
	} else {
		logger.Warn("RabbitMQ URL is empty, emails will only be logged")
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	verifier := verification.New(db, db, mail, verification.Settings{
		FrontendURL:      cfg.FrontendURL,
		VerificationTTL:  cfg.VerificationTTL,
		PasswordResetTTL: cfg.PasswordResetTTL,
	}, logger)
	authService := authservice.NewAuthService(db, jwtMaker, verifier, logger)
	subscriptionService := subservice.New(db, logger)
	paymentService := paymentservice.New(db, paymentprovider.NewClient(cfg.Paystack, logger), paymentservice.Settings{
		WebhookSecret: cfg.WebhookSecret(),
		PlanAmount:    cfg.PlanAmount,
		PlanCurrency:  cfg.PlanCurrency,
		CallbackURL:   cfg.PaystackCallbackURL,
	}, logger)
	aiService := aiservice.New(openai.NewClient(cfg.OpenAI, logger), logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Services{
		Auth:         authService,
		Verification: verifier,
		Subscription: subscriptionService,
		Payment:      paymentService,
		Mood:         wellness.NewMoodService(db, cacheRedis, logger),
		Journal:      wellness.NewJournalService(db, aiService, cacheRedis, logger),
		Habits:       wellness.NewHabitService(db, cacheRedis, logger),
		Dashboard:    wellness.NewDashboardService(db, cacheRedis, cfg.DashboardCacheTTL, logger),
		Community:    communityservice.New(db, cacheRedis, logger),
		AI:           aiService,
		DB:           db.DB,
		Limiter:      middlewarectx.NewIPLimiter(cfg.RateLimit),
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// Run обслуживает запросы до отмены ctx и затем мягко останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.closeResources()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.closeResources()
		return err
	}
}

func (a *App) closeResources() {
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
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close cache", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
