package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/zionnix/jmd-remake/internal/booking"
)

type RouterConfig struct {
	Service   *booking.Service
	PgPool    *pgxpool.Pool
	Redis     *redis.Client // nil when running with the in-process lock
	Authorize Authorize
	Env       string
	Version   string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(MetricsMiddleware)

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// Public booking surface
	r.Get("/slots", availableSlotsHandler(cfg.Service))
	r.Post("/appointments", submitAppointmentHandler(cfg.Service))

	// Moderation surface, gated by the injected authorization predicate
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(AdminOnly(cfg.Authorize))
		admin.Get("/appointments", listAppointmentsHandler(cfg.Service))
		admin.Get("/stats", statsHandler(cfg.Service))
		admin.Post("/appointments/{id}/validate", validateAppointmentHandler(cfg.Service))
		admin.Post("/appointments/{id}/reject", rejectAppointmentHandler(cfg.Service))
		admin.Delete("/appointments/{id}", deleteAppointmentHandler(cfg.Service))
	})

	return r
}
