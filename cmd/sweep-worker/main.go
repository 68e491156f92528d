package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/MuTuOz/HospitalManagementSystem-sub000/internal/config"
	"github.com/MuTuOz/HospitalManagementSystem-sub000/internal/db"
	"github.com/MuTuOz/HospitalManagementSystem-sub000/internal/logger"
	"github.com/MuTuOz/HospitalManagementSystem-sub000/internal/records"
	"github.com/MuTuOz/HospitalManagementSystem-sub000/internal/scheduling"
)

// The sweep worker closes out scheduled appointments whose slot date has
// passed. It runs once at startup and then on the configured cron
// schedule (default: shortly after midnight).
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config load error: " + err.Error())
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic("logger init error: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("sweep-worker starting up",
		zap.String("env", cfg.Env),
		zap.String("schedule", cfg.SweepSchedule),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal("postgres connection error", zap.Error(err))
	}
	defer pgPool.Close()
	log.Info("connected to Postgres")

	repo := scheduling.NewPgRepository(pgPool)
	completion := scheduling.NewCompletionWorkflow(repo, records.NewLogCreator(log), log, nil)

	runOnce(rootCtx, completion, log)

	c := cron.New()
	if _, err := c.AddFunc(cfg.SweepSchedule, func() {
		runOnce(rootCtx, completion, log)
	}); err != nil {
		log.Fatal("invalid sweep schedule", zap.String("schedule", cfg.SweepSchedule), zap.Error(err))
	}
	c.Start()

	<-rootCtx.Done()
	log.Info("shutdown signal received, stopping sweep worker")

	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(cfg.ShutdownTimeout):
		log.Warn("sweep job did not finish before shutdown timeout")
	}
}

func runOnce(ctx context.Context, completion *scheduling.CompletionWorkflow, log *zap.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	swept, err := completion.SweepPastDue(runCtx)
	if err != nil {
		log.Error("sweep run error", zap.Error(err))
		return
	}
	log.Info("sweep run complete",
		zap.Int("swept", swept),
		zap.Duration("took", time.Since(start)),
	)
}
