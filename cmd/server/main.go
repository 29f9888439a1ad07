package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/clubinho/content-backend/migrations"
	"github.com/clubinho/content-backend/pkg/pagecontent"
	"github.com/clubinho/content-backend/pkg/pagecontent/api"
	"github.com/clubinho/content-backend/pkg/pagecontent/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()

	if cfg.DatabaseType == "postgres" {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("migrations applied")
	}

	repo, closeRepo, err := cfg.BuildRepository(ctx)
	if err != nil {
		return fmt.Errorf("build repository: %w", err)
	}
	defer closeRepo()

	store, err := cfg.BuildBlobStore()
	if err != nil {
		return fmt.Errorf("build blob store: %w", err)
	}

	var sink pagecontent.EventSink = pagecontent.NewNoopEventSink()
	if cfg.EnableEventLogging {
		sink = pagecontent.NewSlogEventSink(logger)
	}

	svc, err := pagecontent.New(
		pagecontent.WithRepository(repo),
		pagecontent.WithBlobStore(store),
		pagecontent.WithEventSink(sink),
	)
	if err != nil {
		return fmt.Errorf("build service: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/pages", api.NewPagesHandler(svc, logger).Routes())
		r.Mount("/routes", api.NewRoutesHandler(svc, logger).Routes())
	})

	addr := ":" + cfg.Port
	logger.Info("server listening",
		"addr", addr,
		"database", cfg.DatabaseType,
		"storage", cfg.StorageBackend,
		"environment", cfg.Environment)
	return http.ListenAndServe(addr, r)
}

func runMigrations(databaseURL string) error {
	src, err := iofs.New(migrations.FS, "postgres")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
