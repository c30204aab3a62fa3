package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/futsalmap/webgis/internal/cache"
	"github.com/futsalmap/webgis/internal/config"
	"github.com/futsalmap/webgis/internal/database"
	"github.com/futsalmap/webgis/internal/handler/health"
	"github.com/futsalmap/webgis/internal/migrations"
	"github.com/futsalmap/webgis/internal/photos"
	"github.com/futsalmap/webgis/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	applied, err := migrations.Run(ctx, db)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath, "migrations_applied", applied)

	store := server.NewSQLiteStore(db)
	if err := server.SeedAdmin(ctx, logger, store, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return err
	}
	if cfg.SeedDemo {
		if err := server.SeedDemoVenues(ctx, logger, store); err != nil {
			return fmt.Errorf("seeding demo venues: %w", err)
		}
	}

	// --- Redis ---
	rdb, err := cache.Open(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer rdb.Close()
	analyticsCache := cache.New(rdb, "analytics", cfg.AnalyticsCacheTTL)
	logger.Info("connected to redis")

	// --- Uploads ---
	files, err := photos.New(cfg.UploadDir, cfg.MaxUploadBytes())
	if err != nil {
		return err
	}

	// --- HTTP Server ---
	srv := server.New(logger, server.Options{
		Addr:           cfg.HTTPAddr,
		Store:          store,
		Cache:          analyticsCache,
		Files:          files,
		UploadDir:      files.Dir(),
		MaxUploadBytes: cfg.MaxUploadBytes(),
		SessionTTL:     cfg.SessionTTL,
		NearbyLimit:    cfg.NearbyLimit,
		CORSOrigins:    cfg.CORSOrigins,
		SPADir:         cfg.SPADir,
		Mount: func(r chi.Router) {
			r.Mount("/healthz", health.NewHandler(logger, map[string]health.Checker{
				"sqlite": health.CheckerFunc(db.PingContext),
				"redis":  health.CheckerFunc(analyticsCache.Ping),
			}).Routes())
		},
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}
