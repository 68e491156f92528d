package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/MuTuOz/HospitalManagementSystem-sub000/internal/api"
	"github.com/MuTuOz/HospitalManagementSystem-sub000/internal/config"
	"github.com/MuTuOz/HospitalManagementSystem-sub000/internal/db"
	"github.com/MuTuOz/HospitalManagementSystem-sub000/internal/logger"
	"github.com/MuTuOz/HospitalManagementSystem-sub000/internal/metrics"
	"github.com/MuTuOz/HospitalManagementSystem-sub000/internal/notify"
	"github.com/MuTuOz/HospitalManagementSystem-sub000/internal/records"
	redisclient "github.com/MuTuOz/HospitalManagementSystem-sub000/internal/redis"
	"github.com/MuTuOz/HospitalManagementSystem-sub000/internal/scheduling"
)

const version = "1.0.0"

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

	log.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal("postgres connection error", zap.Error(err))
	}
	defer pgPool.Close()
	log.Info("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatal("redis connection error", zap.Error(err))
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn("error closing redis", zap.Error(err))
		}
	}()
	log.Info("connected to Redis")

	col := metrics.NewCollector("hospital_admin")

	repo := scheduling.NewPgRepository(pgPool)
	locker := redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL)
	audit := scheduling.NewAuditTrail(repo, log, func() { col.AuditDroppedTotal.Inc() })
	defer audit.Shutdown(cfg.ShutdownTimeout)

	var recordCreator records.Creator
	if cfg.RecordsURL != "" {
		recordCreator = records.NewHTTPCreator(cfg.RecordsURL)
	} else {
		recordCreator = records.NewLogCreator(log)
	}

	slots := scheduling.NewSlotStore(repo, log)
	booking := scheduling.NewBookingEngine(repo, locker, notify.NewLogNotifier(log), audit, log)
	completion := scheduling.NewCompletionWorkflow(repo, recordCreator, log, func() { col.RecordsFailedTotal.Inc() })
	query := scheduling.NewAppointmentQuery(repo)

	router := api.NewRouter(api.RouterConfig{
		Slots:         slots,
		Booking:       booking,
		Completion:    completion,
		Query:         query,
		PgPool:        pgPool,
		Redis:         rdb,
		Metrics:       col,
		Log:           log,
		Env:           cfg.Env,
		Version:       version,
		BookingWindow: cfg.BookingWindow,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		log.Error("http server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown failed", zap.Error(err))
	}

	log.Info("api-server stopped")
}
