package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/enroll/enroll/internal/config"
	"github.com/enroll/enroll/internal/handler"
	"github.com/enroll/enroll/internal/middleware"
)

type routerDeps struct {
	root    *handler.Handler
	health  *handler.HealthHandler
	users   *handler.UserHandler
	metrics http.Handler
	cfg     *config.Config
	logger  *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = d.cfg.GetCORSAllowedOrigins()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: d.cfg.IsDevelopment()}))
	r.Use(middleware.CORS(corsCfg))

	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)
	if d.metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.metrics)
	}
	r.Get("/", d.root.Hello)

	api := func(r chi.Router) {
		r.Use(middleware.MaxBodySize(d.cfg.MaxRequestBodySize))

		r.Post("/user/register", d.users.Register)
	}
	if prefix := d.cfg.RoutePrefix(); prefix != "" {
		r.Route("/"+prefix, api)
	} else {
		r.Group(api)
	}

	r.NotFound(d.root.NotFound)
	r.MethodNotAllowed(d.root.MethodNotAllowed)

	return r
}
