package main

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crucial707/hci-accounts/internal/auth"
	"github.com/crucial707/hci-accounts/internal/config"
	"github.com/crucial707/hci-accounts/internal/db"
	"github.com/crucial707/hci-accounts/internal/handlers"
	"github.com/crucial707/hci-accounts/internal/middleware"
	"github.com/crucial707/hci-accounts/internal/repo"
	"github.com/crucial707/hci-accounts/internal/telemetry"
)

// newRouter wires the store, repository, service and handlers onto a chi
// router. probe may be nil, in which case the local host is sampled.
func newRouter(database *sql.DB, cfg config.Config, probe telemetry.Probe, log *slog.Logger) (http.Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if probe == nil {
		probe = telemetry.NewHostProbe()
	}

	verifier, err := auth.NewVerifier(cfg.CredentialScheme)
	if err != nil {
		return nil, err
	}

	store := db.NewStore(database, cfg.DBAcquireTimeout)
	userRepo := repo.NewUserRepo(store)
	svc := auth.NewService(userRepo, verifier, cfg.LoginRedirectURL, log)

	authHandler := &handlers.AuthHandler{Service: svc, Log: log}
	userHandler := &handlers.UserHandler{Service: svc, Log: log}
	systemHandler := &handlers.SystemHandler{Probe: probe, DB: store}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer(log))
	r.Use(middleware.RequestLog(log))
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSEnabled()))

	r.Get("/health", systemHandler.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/performance", systemHandler.Performance)

	r.Group(func(r chi.Router) {
		r.Use(middleware.MaxBytes(cfg.MaxBodyBytes))
		r.Use(middleware.AuthRateLimiter(cfg.AuthRatePerMinute, cfg.AuthRateBurst).Middleware)
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	r.Get("/users", userHandler.ListUsers)

	if cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	return r, nil
}
