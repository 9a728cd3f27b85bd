package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/magabrotheeeer/mindwell/internal/app/scheduler"
	"github.com/magabrotheeeer/mindwell/internal/config"
	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
)

func main() {
	once := flag.Bool("once", false, "run a single reminder pass and exit")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.MustLoad()
	logger := sl.SetupLogger(cfg.Env)
	logger.Info("starting scheduler", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := scheduler.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize scheduler", sl.Err(err))
		os.Exit(1)
	}

	if *once {
		sent := app.RunOnce(ctx)
		logger.Info("reminder pass finished", slog.Int("sent", sent))
		return
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("scheduler stopped with error", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("scheduler stopped gracefully")
}
