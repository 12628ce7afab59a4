package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"go-sample-pipeline/internal/api"
	"go-sample-pipeline/internal/api/handler"
	"go-sample-pipeline/internal/config"
	"go-sample-pipeline/internal/logging"
	"go-sample-pipeline/internal/metrics"
	"go-sample-pipeline/internal/store"
	"go-sample-pipeline/pkg/router"
	"go-sample-pipeline/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.Logging.LoggerConfig())
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Init DB
	db, err := store.Open(cfg.API.DBPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.String("path", cfg.API.DBPath), zap.Error(err))
	}
	defer db.Close()

	outputs := utils.NewOutputManager(cfg.API.OutputDir)
	if err := outputs.EnsureOutputDirExists(); err != nil {
		logger.Fatal("failed to create output directory", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	h := handler.New(ctx, db, outputs, logger, m, cfg.Run.Spec())

	// Create router and register API routes
	r := router.New(logger.Logger)
	api.RegisterRoutes(r, h, m)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown failed", zap.Error(err))
		}
	}()

	// Start server
	if err := r.Start(cfg.API.Addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}

	// let in-flight runs record their results
	h.Wait()
	logger.Info("server stopped")
}
