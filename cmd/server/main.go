package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"documite/internal/config"
	"documite/internal/database"
	"documite/internal/document"
	"documite/internal/handler"
	"documite/internal/identity"
	"documite/internal/jwtauth"
	"documite/internal/logger"
	"documite/internal/metrics"
	"documite/internal/middleware"
	"documite/internal/reservation"
	"documite/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.IsProduction())
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		err = runMigrate(ctx, cfg, log, os.Args[2:])
	} else {
		err = serve(ctx, cfg, log)
	}
	if err != nil {
		log.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("error closing database connection", "error", err)
		}
	}()
	log.Info("database connection established")

	migrationsPath := database.ResolveMigrationsPath(cfg.MigrationsPath)
	if err := db.MigrateUp(migrationsPath); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	status, err := db.MigrateStatus(migrationsPath)
	switch {
	case err != nil:
		log.Warn("failed to get migration version", "error", err)
	case status.Dirty:
		log.Warn("database is in dirty state, a previous migration failed and manual intervention is required",
			"version", status.Version)
	default:
		log.Info("database migrations complete", "version", status.Version)
	}

	verifier, err := jwtauth.NewVerifier(jwtauth.Config{
		Domain:   cfg.Auth0.Domain,
		Audience: cfg.Auth0.Audience,
		Logger:   log,
	})
	if err != nil {
		return fmt.Errorf("failed to create JWT verifier: %w", err)
	}

	m := metrics.NewWithRuntime()

	users := user.NewManager(user.NewDatastore(db.DB))
	resolver := identity.NewResolver(users, log, m)
	documents := document.NewService(document.NewDatastore(db.DB), resolver, log, m)
	reservations := reservation.NewService(reservation.NewDatastore(db.DB), resolver, log)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Deps{
		Config:       cfg,
		DB:           db,
		Verifier:     verifier,
		Resolver:     resolver,
		Users:        users,
		Documents:    documents,
		Reservations: reservations,
		Metrics:      m,
		Logger:       log,
	})

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: middleware.Chain(mux,
			middleware.RequestID,
			middleware.Logging(log, m),
			middleware.Recover(log),
		),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("documite server starting", "port", cfg.Port, "env", cfg.Environment)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("shutdown signal received, waiting for in-flight requests", "timeout", cfg.ShutdownTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown failed, forcing shutdown", "error", err)
		if err := server.Close(); err != nil {
			return fmt.Errorf("forced shutdown failed: %w", err)
		}
	}

	log.Info("server shutdown complete")
	return nil
}

// runMigrate handles "migrate up|down|status|reset".
func runMigrate(ctx context.Context, cfg *config.Config, log *slog.Logger, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: server migrate up|down|status|reset")
	}

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	path := database.ResolveMigrationsPath(cfg.MigrationsPath)
	switch args[0] {
	case "up":
		err = db.MigrateUp(path)
	case "down":
		err = db.MigrateDown(path)
	case "reset":
		err = db.MigrateReset(path)
	case "status":
	default:
		return fmt.Errorf("unknown migrate command %q", args[0])
	}
	if err != nil {
		return err
	}

	status, err := db.MigrateStatus(path)
	if err != nil {
		return err
	}
	log.Info("migration status", "command", args[0], "version", status.Version, "dirty", status.Dirty)
	return nil
}
