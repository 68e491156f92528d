package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MuTuOz/HospitalManagementSystem-sub000/internal/metrics"
	"github.com/MuTuOz/HospitalManagementSystem-sub000/internal/scheduling"
)

type RouterConfig struct {
	Slots      *scheduling.SlotStore
	Booking    *scheduling.BookingEngine
	Completion *scheduling.CompletionWorkflow
	Query      *scheduling.AppointmentQuery

	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Metrics *metrics.Collector
	Log     *zap.Logger

	Env           string
	Version       string
	BookingWindow int
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Log))
	r.Use(MetricsMiddleware(cfg.Metrics))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Post("/slots", createSlotHandler(cfg.Slots, cfg.Metrics))
	r.Get("/slots", listSlotsHandler(cfg.Slots, cfg.BookingWindow))
	r.Delete("/slots/{id}", deleteSlotHandler(cfg.Slots))

	r.Post("/appointments", bookAppointmentHandler(cfg.Booking, cfg.Metrics))
	r.Get("/appointments", listAppointmentsHandler(cfg.Query))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Query))
	r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Booking, cfg.Metrics))
	r.Post("/appointments/{id}/reactivate", reactivateAppointmentHandler(cfg.Booking, cfg.Metrics))
	r.Post("/appointments/{id}/complete", completeAppointmentHandler(cfg.Completion, cfg.Metrics))

	r.Post("/maintenance/sweep", sweepHandler(cfg.Completion, cfg.Metrics))

	return r
}
