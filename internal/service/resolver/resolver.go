// Package resolver decides whether a record about to be imported already
// exists locally. Each entity kind has an ordered list of identity checks;
// the first check that finds a row wins and later checks are not run.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/geo-explorer/internal/domain"
)

type continentRepo interface {
	FindByName(ctx context.Context, name string) (*domain.Continent, error)
}

type countryRepo interface {
	FindByName(ctx context.Context, name string) (*domain.Country, error)
	FindByCode(ctx context.Context, code string) (*domain.Country, error)
}

type cityRepo interface {
	FindByNameAndCountry(ctx context.Context, name string, countryID int64) (*domain.City, error)
	FindByCoordinates(ctx context.Context, lat, lon float64) (*domain.City, error)
}

// Candidate carries the identity-bearing fields of a record. Only the fields
// relevant to the resolved kind are read; empty values are never probed.
type Candidate struct {
	Name      string
	Code      string
	CountryID int64

	Latitude       float64
	Longitude      float64
	HasCoordinates bool
}

// Match is an existing local row together with the key that found it.
type Match struct {
	Kind   domain.EntityKind
	Key    domain.IdentityKey
	Record any
}

// Continent returns the matched row when Kind is continent, otherwise nil.
func (m *Match) Continent() *domain.Continent {
	c, _ := m.Record.(*domain.Continent)
	return c
}

// Country returns the matched row when Kind is country, otherwise nil.
func (m *Match) Country() *domain.Country {
	c, _ := m.Record.(*domain.Country)
	return c
}

// City returns the matched row when Kind is city, otherwise nil.
func (m *Match) City() *domain.City {
	c, _ := m.Record.(*domain.City)
	return c
}

// Duplicate converts the match into the error reported to importers.
func (m *Match) Duplicate() *domain.DuplicateError {
	return domain.NewDuplicateError(m.Kind, m.Key, m.Record)
}

type check struct {
	key     domain.IdentityKey
	applies func(Candidate) bool
	find    func(ctx context.Context, c Candidate) (any, error)
}

// Resolver runs the identity checks. It only reads.
type Resolver struct {
	log        *slog.Logger
	strategies map[domain.EntityKind][]check
}

// New creates a Resolver over the given repositories.
func New(logger *slog.Logger, continents continentRepo, countries countryRepo, cities cityRepo) *Resolver {
	hasName := func(c Candidate) bool { return c.Name != "" }

	return &Resolver{
		log: logger.With("service", "resolver"),
		strategies: map[domain.EntityKind][]check{
			domain.KindContinent: {
				{
					key:     domain.KeyName,
					applies: hasName,
					find: func(ctx context.Context, c Candidate) (any, error) {
						return found(continents.FindByName(ctx, c.Name))
					},
				},
			},
			domain.KindCountry: {
				{
					key:     domain.KeyName,
					applies: func(c Candidate) bool { return domain.NormalizeCountryName(c.Name) != "" },
					find: func(ctx context.Context, c Candidate) (any, error) {
						return found(countries.FindByName(ctx, c.Name))
					},
				},
				{
					key:     domain.KeyCode,
					applies: func(c Candidate) bool { return domain.NormalizeCountryCode(c.Code) != "" },
					find: func(ctx context.Context, c Candidate) (any, error) {
						return found(countries.FindByCode(ctx, c.Code))
					},
				},
			},
			domain.KindCity: {
				{
					key:     domain.KeyNameInCountry,
					applies: func(c Candidate) bool { return c.Name != "" && c.CountryID != 0 },
					find: func(ctx context.Context, c Candidate) (any, error) {
						return found(cities.FindByNameAndCountry(ctx, c.Name, c.CountryID))
					},
				},
				{
					key:     domain.KeyCoordinates,
					applies: func(c Candidate) bool { return c.HasCoordinates },
					find: func(ctx context.Context, c Candidate) (any, error) {
						return found(cities.FindByCoordinates(ctx, c.Latitude, c.Longitude))
					},
				},
			},
		},
	}
}

// Resolve returns the first existing row matching the candidate, or nil when
// no check finds one. Repository errors other than not-found are returned.
func (r *Resolver) Resolve(ctx context.Context, kind domain.EntityKind, c Candidate) (*Match, error) {
	checks, ok := r.strategies[kind]
	if !ok {
		return nil, fmt.Errorf("resolve: unknown entity kind %q", kind)
	}

	for _, chk := range checks {
		if !chk.applies(c) {
			continue
		}

		record, err := chk.find(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("resolve %s by %s: %w", kind, chk.key, err)
		}
		if record == nil {
			continue
		}

		r.log.DebugContext(ctx, "existing record matched",
			slog.String("kind", kind.String()),
			slog.String("key", chk.key.String()),
		)
		return &Match{Kind: kind, Key: chk.key, Record: record}, nil
	}

	return nil, nil
}

// Keys lists the identity keys tried for kind, in order.
func (r *Resolver) Keys(kind domain.EntityKind) []domain.IdentityKey {
	checks := r.strategies[kind]
	keys := make([]domain.IdentityKey, len(checks))
	for i, chk := range checks {
		keys[i] = chk.key
	}
	return keys
}

// found turns a repository lookup into (row, nil), (nil, nil) for not-found,
// or (nil, err). A typed nil pointer never escapes as a non-nil interface.
func found[T any](v *T, err error) (any, error) {
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil || v == nil {
		return nil, err
	}
	return v, nil
}
