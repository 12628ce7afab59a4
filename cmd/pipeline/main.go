package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"go-sample-pipeline/internal/config"
	"go-sample-pipeline/internal/logging"
	"go-sample-pipeline/internal/model"
	"go-sample-pipeline/internal/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration: %v\n", err)
		return model.ExitCode(err)
	}

	// Init logger
	logger, err := logging.New(cfg.Logging.LoggerConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return model.ExitSetup
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := pipeline.New(cfg.Run.Spec(), pipeline.WithLogger(logger)).Run(ctx)
	if err != nil {
		logger.Error("run failed", zap.Error(err), zap.Int("exit_code", model.ExitCode(err)))
		return model.ExitCode(err)
	}

	logger.Info("run completed",
		zap.String("run_id", summary.RunID),
		zap.String("result", model.FormatResult(summary.Aggregate.Average)),
		zap.String("output", summary.Spec.OutputFile))
	return model.ExitOK
}
