package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/LeadParser/internal/application"
	"github.com/JonMunkholm/LeadParser/internal/auth"
	"github.com/JonMunkholm/LeadParser/internal/autofix"
	"github.com/JonMunkholm/LeadParser/internal/config"
	"github.com/JonMunkholm/LeadParser/internal/core"
	"github.com/JonMunkholm/LeadParser/internal/logging"
	"github.com/JonMunkholm/LeadParser/internal/schema"
	"github.com/JonMunkholm/LeadParser/internal/validation"
	"github.com/JonMunkholm/LeadParser/internal/web"
	"github.com/JonMunkholm/LeadParser/internal/workbook"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()

	users, closeUsers, err := application.OpenUsers(ctx, cfg)
	if err != nil {
		slog.Error("failed to open account store", "error", err)
		os.Exit(1)
	}
	defer closeUsers()

	store, closeHistory, err := application.OpenHistory(ctx, cfg)
	if err != nil {
		slog.Error("failed to open history store", "error", err)
		os.Exit(1)
	}
	defer closeHistory()

	reg := schema.MustLead()
	norm := autofix.New(reg)
	service := core.NewService(reg,
		core.WithParser(workbook.NewParser(reg, norm, workbook.WithMaxFileSize(cfg.Upload.MaxFileSize))),
		core.WithEngine(validation.New(reg, validation.WithBatchSize(cfg.Upload.BatchSize))),
		core.WithHistory(store),
		core.WithLimiter(core.NewParseLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)),
	)
	slog.Info("schema loaded", "fields", len(reg.Fields()), "required", len(reg.RequiredFields()))

	server := web.NewServer(cfg, service, auth.NewService(users))

	// Background jobs stop with jobCtx
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go store.StartFlushScheduler(jobCtx, cfg.History.FlushInterval)
	go service.StartSessionReaper(jobCtx, cfg.Session.MaxIdle, cfg.Session.ReapInterval)

	// Graceful shutdown
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		limiter := service.Limiter()
		if active := limiter.ActiveCount(); active > 0 {
			slog.Info("waiting for parses to complete", "active", active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("parses did not complete in time", "error", err)
			} else {
				slog.Info("all parses completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-stopped
	slog.Info("server stopped")
}
