// internal/server/router.go
package server

import (
	"log/slog"
	"net/http"

	"assetnexus/internal/circulation"
	"assetnexus/internal/inventory"
	"assetnexus/internal/settings"
	"assetnexus/internal/telemetry"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Logger      *slog.Logger
	Catalog     inventory.Catalog
	Circulation circulation.Service
	Settings    *settings.Service
	TokenHash   string
}

// NewRouter mounts every API under /api/v1 next to /healthz and /metrics.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(telemetry.AccessLog(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(telemetry.Metrics)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/", circulation.NewHandler(d.Circulation).Routes())
		r.Mount("/inventory", inventory.NewHandler(d.Catalog).Routes())
		r.Mount("/settings", settings.NewHandler(d.Settings, d.TokenHash).Routes())
	})

	return r
}
