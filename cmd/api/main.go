package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"liquidity-crisis/internal/api"
	"liquidity-crisis/internal/config"
	"liquidity-crisis/internal/data"
	"liquidity-crisis/internal/logging"
	"liquidity-crisis/internal/metrics"
	"liquidity-crisis/internal/pipeline"
	"liquidity-crisis/internal/predict"
)

func main() {
	// Config file is optional; LCD_* environment variables override it.
	cfg, err := config.Load(os.Getenv("LCD_CONFIG"))
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := logging.Setup(cfg.Logging, os.Stdout)

	if wd, err := os.Getwd(); err == nil {
		logger.Info("Working directory", slog.String("dir", wd))
	}

	// The model is loaded once, on first use, and shared by every request.
	model := predict.NewFileHandle(cfg.Model.Path)
	if _, err := model.Get(); err != nil {
		// Not fatal: requests report MODEL_UNAVAILABLE until the process is restarted.
		logger.Error("Prediction model could not be loaded",
			slog.String("path", cfg.Model.Path),
			slog.String("error", err.Error()))
	}

	cache := data.NewResultCache[*pipeline.Result](cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	defer cache.Close()

	router := api.NewRouter(api.Deps{
		Config:  cfg,
		Model:   model,
		Cache:   cache,
		Metrics: metrics.New(),
		Logger:  logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Starting API server", slog.String("addr", srv.Addr), slog.String("env", cfg.Server.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to start server", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", slog.String("error", err.Error()))
	}
	logger.Info("Server stopped")
}
