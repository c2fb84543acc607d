package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/geo-explorer/internal/config"
	"github.com/heartmarshall/geo-explorer/internal/transport/rest"
)

// Run is the server entry point. It loads configuration, wires the
// components and serves HTTP until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.Bool("atomic_cascade", cfg.Import.AtomicCascade),
	)

	c, err := Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	return Serve(ctx, cfg, c, logger)
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// within the configured timeout.
func Serve(ctx context.Context, cfg *config.Config, c *Components, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      NewHandler(cfg, c, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// NewHandler builds the HTTP handler tree over the wired components.
func NewHandler(cfg *config.Config, c *Components, logger *slog.Logger) http.Handler {
	var checks []rest.HealthCheck
	if c.Pool != nil {
		checks = append(checks, rest.HealthCheck{Name: "database", Dep: c.Pool})
	}

	return rest.NewRouter(rest.RouterDeps{
		Search:    rest.NewSearchHandler(c.Lookup, logger),
		Local:     rest.NewLocalHandler(c.Catalog, c.Importer, logger),
		Health:    rest.NewHealthHandler(Version, checks...),
		CORS:      cfg.CORS,
		Metrics:   cfg.Metrics,
		Gatherer:  c.Registry,
		Collector: c.Metrics,
		Logger:    logger,
	})
}
