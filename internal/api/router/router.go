// Package router wires the clinic's HTTP surface: public health and
// login endpoints, the authenticated resource routes, and the
// admin-only account management.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/enzononato/adna-harmony-suite/internal/finance"
	"github.com/enzononato/adna-harmony-suite/internal/history"
	httpmiddleware "github.com/enzononato/adna-harmony-suite/internal/http/middleware"
	"github.com/enzononato/adna-harmony-suite/internal/notices"
	"github.com/enzononato/adna-harmony-suite/internal/patients"
	"github.com/enzononato/adna-harmony-suite/internal/procedures"
	"github.com/enzononato/adna-harmony-suite/internal/schedule"
	"github.com/enzononato/adna-harmony-suite/internal/users"
	"github.com/enzononato/adna-harmony-suite/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger *logging.Logger

	ScheduleHandler   *schedule.Handler
	ProceduresHandler *procedures.Handler
	PatientsHandler   *patients.Handler
	HistoryHandler    *history.Handler
	NoticesHandler    *notices.Handler
	FinanceHandler    *finance.Handler
	UsersHandler      *users.Handler

	Authenticator      *users.Authenticator
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// LoginRate limits login attempts per IP per second. Zero disables
	// the limiter.
	LoginRate  float64
	LoginBurst int
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints.
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.UsersHandler != nil {
			public.Route("/auth", func(auth chi.Router) {
				if cfg.LoginRate > 0 {
					auth.Use(httpmiddleware.RateLimit(cfg.LoginRate, cfg.LoginBurst))
				}
				auth.Mount("/", cfg.UsersHandler.LoginRoutes())
			})
		}
	})

	// Authenticated clinic resources.
	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(cfg.Authenticator))

		if cfg.ScheduleHandler != nil {
			private.Mount("/appointments", cfg.ScheduleHandler.Routes())
		}
		if cfg.ProceduresHandler != nil {
			private.Mount("/procedures", cfg.ProceduresHandler.Routes())
		}
		if cfg.PatientsHandler != nil {
			private.Mount("/patients", cfg.PatientsHandler.Routes())
		}
		if cfg.HistoryHandler != nil {
			private.Mount("/history", cfg.HistoryHandler.Routes())
		}
		if cfg.NoticesHandler != nil {
			private.Mount("/notices", cfg.NoticesHandler.Routes())
		}
		if cfg.FinanceHandler != nil {
			private.Mount("/finance", cfg.FinanceHandler.Routes())
		}

		// Account management needs the admin role on top of auth.
		if cfg.UsersHandler != nil {
			private.Group(func(admin chi.Router) {
				admin.Use(httpmiddleware.RequireAdmin)
				admin.Mount("/admin/users", cfg.UsersHandler.AdminRoutes())
			})
		}
	})

	return r
}
