package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	service "github.com/okian/debtscore/internal/app"
	"github.com/okian/debtscore/internal/config"
	"github.com/okian/debtscore/pkg/logger"
)

// Process exit codes.
const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(context.Background())
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return exitConfig
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return exitConfig
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()
	log := logger.Named("debtscore")

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	pipeline, err := service.NewFromConfig(cfg, time.Now(), service.WithLogger(log))
	if err != nil {
		log.Error(ctx, "invalid pipeline configuration", logger.Error(err))
		return exitConfig
	}

	res, err := pipeline.RunFiles(ctx, cfg)
	if err != nil {
		log.Error(ctx, "pipeline run failed", logger.Error(err))
		return exitFailed
	}
	summarize(ctx, log, res.Report)
	return exitOK
}

// summarize logs one line per source and stage of a finished run.
func summarize(ctx context.Context, log logger.Logger, r *service.Report) {
	for _, s := range r.Sources {
		fields := []logger.Field{
			logger.String("source", s.Name),
			logger.String("kind", s.Kind),
			logger.Int("rowsRead", s.RowsRead),
			logger.Int("rowsDropped", s.RowsDropped),
			logger.Int("debtors", s.Debtors),
			logger.Int("matched", s.Matched),
		}
		if s.Degraded {
			log.Warn(ctx, "source summary", append(fields, logger.String("reason", s.Reason))...)
			continue
		}
		log.Info(ctx, "source summary", fields...)
	}
	for _, s := range r.Stages {
		log.Info(ctx, "stage summary",
			logger.String("stage", s.Stage),
			logger.String("status", s.Status),
			logger.Float64("weight", s.Weight),
			logger.Float64("auc", s.AUC),
			logger.String("reason", s.Reason))
	}
	log.Info(ctx, "run summary",
		logger.String("run_id", r.RunID),
		logger.Int("debtors", r.Debtors),
		logger.Any("categories", r.Categories),
		logger.String("output", r.Output),
		logger.Duration("duration", r.Duration))
}
