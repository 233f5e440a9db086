package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"churnflow/internal/config"
	"churnflow/internal/handler"
	"churnflow/internal/ingest"
	"churnflow/internal/logger"
	"churnflow/internal/predictor"
	"churnflow/internal/router"
	"churnflow/internal/service"
	"churnflow/internal/session"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Setup(cfg.Log); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	dialect, err := ingest.ParseDialect(cfg.Batch.CSVDialect)
	if err != nil {
		return fmt.Errorf("invalid batch config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize collaborators
	client := predictor.NewClient(&cfg.Predictor)
	batchPredictor := predictor.NewCircuitPredictor(client)

	// Initialize session store
	store := session.NewStore(session.Config{
		TTL:        cfg.Session.TTL,
		MaxEntries: cfg.Session.MaxBatches,
	})
	go session.NewJanitor(store, cfg.Session.SweepInterval).Start(ctx)

	// Initialize services
	batchSvc := service.NewBatchService(batchPredictor, store, service.BatchServiceConfig{
		SoftLimit: cfg.Batch.SoftLimit,
		Ingest: ingest.Options{
			Dialect:  dialect,
			MaxBytes: cfg.Batch.MaxUploadBytes,
		},
	})

	// Initialize handlers
	batchH := handler.NewBatchHandler(batchSvc, cfg.Batch.MaxUploadBytes)
	healthH := handler.NewHealthHandler(client)
	modelH := handler.NewModelHandler(client)
	var recommendationH *handler.RecommendationHandler
	if cfg.Predictor.RecommendationsEnabled {
		recommendationH = handler.NewRecommendationHandler(service.NewRecommendationService(client))
	}

	// Setup router
	r := router.Setup(cfg.CORS.AllowedOrigins, batchH, recommendationH, modelH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Server.Port, "predictor", cfg.Predictor.BaseURL, "csv_dialect", dialect)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
