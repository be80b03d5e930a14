package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crucial707/hci-accounts/internal/config"
	"github.com/crucial707/hci-accounts/internal/db"
	"github.com/crucial707/hci-accounts/internal/logger"
	"github.com/crucial707/hci-accounts/internal/metrics"
)

func main() {

	// Load configuration
	cfg := config.Load()
	lg := logger.Setup(os.Stdout, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	opts := db.Options{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		Name:     cfg.DBName,
		User:     cfg.DBUser,
		Password: cfg.DBPass,
		SSLMode:  cfg.DBSSLMode,
		PoolSize: cfg.DBPoolSize,
	}

	// "api migrate" only prepares the schema.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := db.Bootstrap(opts.DSN()); err != nil {
			log.Fatalf("Schema setup failed: %v", err)
		}
		lg.Info("schema is up to date")
		return
	}

	// Connect to database FIRST
	database, err := db.Connect(context.Background(), opts)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// The table must exist before any request is served.
	if err := db.Bootstrap(opts.DSN()); err != nil {
		log.Fatalf("Schema setup failed: %v", err)
	}
	lg.Info("database ready", "host", cfg.DBHost, "db", cfg.DBName, "pool_size", cfg.DBPoolSize)

	metrics.RegisterDBStats(database)

	router, err := newRouter(database, cfg, nil, lg)
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Start server LAST
	go func() {
		lg.Info("starting server", "addr", server.Addr, "tls", cfg.TLSEnabled())
		var err error
		if cfg.TLSEnabled() {
			err = server.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	lg.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		lg.Error("graceful shutdown failed", "error", err)
	}
}
