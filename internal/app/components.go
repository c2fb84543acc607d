package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/heartmarshall/geo-explorer/internal/adapter/postgres"
	"github.com/heartmarshall/geo-explorer/internal/adapter/postgres/city"
	"github.com/heartmarshall/geo-explorer/internal/adapter/postgres/continent"
	"github.com/heartmarshall/geo-explorer/internal/adapter/postgres/country"
	"github.com/heartmarshall/geo-explorer/internal/adapter/provider/openmeteo"
	"github.com/heartmarshall/geo-explorer/internal/adapter/provider/restcountries"
	"github.com/heartmarshall/geo-explorer/internal/adapter/provider/upstream"
	"github.com/heartmarshall/geo-explorer/internal/config"
	"github.com/heartmarshall/geo-explorer/internal/observability"
	"github.com/heartmarshall/geo-explorer/internal/service/catalog"
	"github.com/heartmarshall/geo-explorer/internal/service/importer"
	"github.com/heartmarshall/geo-explorer/internal/service/lookup"
	"github.com/heartmarshall/geo-explorer/internal/service/resolver"
)

// Components holds the wired services shared by the HTTP server and the CLI.
type Components struct {
	Pool     *pgxpool.Pool
	Registry *prometheus.Registry
	Metrics  *observability.Metrics

	Countries *restcountries.Provider
	Cities    *openmeteo.Provider

	Importer *importer.Service
	Lookup   *lookup.Service
	Catalog  *catalog.Service
}

// Close releases the database pool.
func (c *Components) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// Build connects to PostgreSQL, applies migrations when configured and wires
// repositories, gateway adapters and services.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)

	countriesGW := restcountries.NewProvider(
		cfg.Gateway.RestCountriesURL,
		cfg.Gateway.TranslationLanguage,
		upstream.NewClient("restcountries", cfg.Gateway.Timeout, metrics, logger),
		logger,
	)
	citiesGW := openmeteo.NewProvider(
		openmeteo.Options{
			GeocodingURL: cfg.Gateway.GeocodingURL,
			ForecastURL:  cfg.Gateway.ForecastURL,
			Language:     cfg.Gateway.Language,
			Candidates:   cfg.Gateway.CityCandidates,
		},
		upstream.NewClient("openmeteo", cfg.Gateway.Timeout, metrics, logger),
		logger,
	)

	continentRepo := continent.New(pool)
	countryRepo := country.New(pool)
	cityRepo := city.New(pool)
	res := resolver.New(logger, continentRepo, countryRepo, cityRepo)

	return &Components{
		Pool:      pool,
		Registry:  reg,
		Metrics:   metrics,
		Countries: countriesGW,
		Cities:    citiesGW,
		Importer: importer.NewService(
			logger, res,
			continentRepo, countryRepo, cityRepo,
			countriesGW,
			postgres.NewTxManager(pool),
			metrics,
			importer.Options{
				DefaultDescription: cfg.Import.DefaultDescription,
				AtomicCascade:      cfg.Import.AtomicCascade,
			},
		),
		Lookup:  lookup.NewService(logger, countriesGW, citiesGW, citiesGW, metrics),
		Catalog: catalog.NewService(logger, continentRepo, countryRepo, cityRepo),
	}, nil
}
