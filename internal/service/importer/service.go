// Package importer turns a single "add this continent/country/city" request
// into the minimal set of inserts, auto-creating missing ancestors.
package importer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/heartmarshall/geo-explorer/internal/domain"
	"github.com/heartmarshall/geo-explorer/internal/observability"
	"github.com/heartmarshall/geo-explorer/internal/provider"
	"github.com/heartmarshall/geo-explorer/internal/service/resolver"
)

type identityResolver interface {
	Resolve(ctx context.Context, kind domain.EntityKind, c resolver.Candidate) (*resolver.Match, error)
}

type continentRepo interface {
	Create(ctx context.Context, in domain.NewContinent) (*domain.Continent, error)
}

type countryRepo interface {
	Create(ctx context.Context, in domain.NewCountry) (*domain.Country, error)
}

type cityRepo interface {
	Create(ctx context.Context, in domain.NewCity) (*domain.City, error)
}

type countryGateway interface {
	FindCountryByName(ctx context.Context, name string) *provider.Country
	FindCountryByCode(ctx context.Context, code string) *provider.Country
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Options configures the importer.
type Options struct {
	// DefaultDescription is stored on continents created without one.
	DefaultDescription string
	// AtomicCascade runs each import in a single transaction so that a failed
	// final insert also discards the ancestors created for it.
	AtomicCascade bool
}

// Service implements the cascade import operations.
type Service struct {
	log        *slog.Logger
	resolver   identityResolver
	continents continentRepo
	countries  countryRepo
	cities     cityRepo
	gateway    countryGateway
	tx         txManager
	metrics    *observability.Metrics
	opts       Options
}

// NewService creates a new importer service. metrics may be nil.
func NewService(
	logger *slog.Logger,
	res identityResolver,
	continents continentRepo,
	countries countryRepo,
	cities cityRepo,
	gateway countryGateway,
	tx txManager,
	metrics *observability.Metrics,
	opts Options,
) *Service {
	return &Service{
		log:        logger.With("service", "importer"),
		resolver:   res,
		continents: continents,
		countries:  countries,
		cities:     cities,
		gateway:    gateway,
		tx:         tx,
		metrics:    metrics,
		opts:       opts,
	}
}

// run executes one import. In atomic mode the body runs in a transaction and
// is retried once when it lost an ancestor-creation race, since the aborted
// transaction cannot re-read the winning row.
func (s *Service) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.opts.AtomicCascade {
		return fn(ctx)
	}

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		err = s.tx.RunInTx(ctx, fn)
		var race *ancestorRaceError
		if !errors.As(err, &race) {
			return err
		}
		s.log.InfoContext(ctx, "ancestor created concurrently, retrying import",
			slog.String("kind", race.kind.String()),
		)
	}
	return err
}

// conflictAfterInsert re-resolves a candidate whose insert hit a unique
// constraint and reports the row that won as a duplicate.
func (s *Service) conflictAfterInsert(ctx context.Context, kind domain.EntityKind, c resolver.Candidate, cause error) error {
	m, err := s.resolver.Resolve(ctx, kind, c)
	if err != nil {
		return err
	}
	if m == nil {
		return domain.NewDuplicateError(kind, "", nil)
	}
	s.log.InfoContext(ctx, "insert lost a race, reporting existing row",
		slog.String("kind", kind.String()),
		slog.String("key", m.Key.String()),
		slog.String("cause", cause.Error()),
	)
	return m.Duplicate()
}

// finish turns a final-insert race into a DuplicateError and records the outcome.
func (s *Service) finish(ctx context.Context, kind domain.EntityKind, err error) error {
	var race *finalRaceError
	if errors.As(err, &race) {
		err = s.conflictAfterInsert(ctx, race.kind, race.candidate, race.err)
	}
	s.observe(kind, err)
	return err
}

func (s *Service) observe(kind domain.EntityKind, err error) {
	outcome := observability.ImportCreated
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrAlreadyExists):
		outcome = observability.ImportDuplicate
	case errors.Is(err, domain.ErrNotFound):
		outcome = observability.ImportNotFound
	default:
		outcome = observability.ImportError
	}
	s.metrics.ObserveImport(kind.String(), outcome)
}
