package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"whatsapp-reseller/internal/config"
	apiv1 "whatsapp-reseller/internal/infra/api/apiv1"
)

// NewRouter builds the public HTTP surface: /health, /metrics and /api/v1.
func NewRouter(v1 *apiv1.Server, timeout time.Duration, logger *zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	apiv1.RegisterAPIV1(r, v1)

	return Chain(r,
		TraceID(),
		Recover(logger),
		RequestLog(logger),
		Timeout(timeout),
		BodyLimit(1<<20),
	)
}

// NewHTTPServer wraps the router with the configured listen address.
func NewHTTPServer(cfg config.HTTPConfig, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
	}
}
