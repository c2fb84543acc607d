// Package seeder bulk-imports whole regions of countries through the importer.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/geo-explorer/internal/domain"
	"github.com/heartmarshall/geo-explorer/internal/provider"
	"github.com/heartmarshall/geo-explorer/internal/service/importer"
)

type regionGateway interface {
	FindCountriesByRegion(ctx context.Context, region string) []provider.Country
}

type countryImporter interface {
	AddCountry(ctx context.Context, in provider.Country) (*importer.CountryResult, error)
}

// PhaseResult holds the outcome of importing one region.
type PhaseResult struct {
	Inserted int
	Skipped  int
	Errors   int
	Duration time.Duration
	Err      error
}

// Pipeline imports regions one after another; countries of a region are
// imported concurrently up to Config.Concurrency.
type Pipeline struct {
	log      *slog.Logger
	gateway  regionGateway
	importer countryImporter
	cfg      Config

	mu      sync.Mutex
	results map[string]PhaseResult
}

// NewPipeline creates a new Pipeline.
func NewPipeline(log *slog.Logger, gateway regionGateway, imp countryImporter, cfg Config) *Pipeline {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Pipeline{
		log:      log.With("component", "seeder"),
		gateway:  gateway,
		importer: imp,
		cfg:      cfg,
		results:  make(map[string]PhaseResult),
	}
}

// Results returns per-region results after Run completes.
func (p *Pipeline) Results() map[string]PhaseResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]PhaseResult, len(p.results))
	for k, v := range p.results {
		out[k] = v
	}
	return out
}

// HasErrors returns true if any region failed or any country was rejected.
func (p *Pipeline) HasErrors() bool {
	for _, r := range p.Results() {
		if r.Err != nil || r.Errors > 0 {
			return true
		}
	}
	return false
}

// Run imports the given regions, or the configured ones, or DefaultRegions.
// It stops early only when ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context, regions []string) error {
	toRun := regions
	if len(toRun) == 0 {
		toRun = p.cfg.Regions
	}
	if len(toRun) == 0 {
		toRun = DefaultRegions
	}

	for _, region := range toRun {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		p.log.Info("starting region", slog.String("region", region))

		result := p.runRegion(ctx, region)
		result.Duration = time.Since(start)

		p.mu.Lock()
		p.results[region] = result
		p.mu.Unlock()

		if result.Err != nil {
			p.log.Warn("region failed",
				slog.String("region", region),
				slog.String("error", result.Err.Error()),
				slog.Duration("duration", result.Duration),
			)
			continue
		}
		p.log.Info("region completed",
			slog.String("region", region),
			slog.Int("inserted", result.Inserted),
			slog.Int("skipped", result.Skipped),
			slog.Int("errors", result.Errors),
			slog.Duration("duration", result.Duration),
		)
	}

	p.log.Info("pipeline completed", slog.Int("regions_run", len(toRun)))
	return ctx.Err()
}

func (p *Pipeline) runRegion(ctx context.Context, region string) PhaseResult {
	countries := p.gateway.FindCountriesByRegion(ctx, region)
	if len(countries) == 0 {
		return PhaseResult{Err: fmt.Errorf("region %q returned no countries", region)}
	}
	if p.cfg.DryRun {
		return PhaseResult{Skipped: len(countries)}
	}

	var (
		mu     sync.Mutex
		result PhaseResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)

	for _, c := range countries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, err := p.importer.AddCountry(gctx, c)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Inserted++
			case errors.Is(err, domain.ErrAlreadyExists):
				result.Skipped++
			default:
				result.Errors++
				p.log.Warn("country import failed",
					slog.String("region", region),
					slog.String("country", c.Name),
					slog.String("error", err.Error()),
				)
			}
			return nil
		})
	}

	result.Err = g.Wait()
	return result
}
