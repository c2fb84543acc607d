package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/geo-explorer/internal/domain"
	"github.com/heartmarshall/geo-explorer/internal/service/resolver"
)

// AddContinent inserts a continent unless one with the same name exists, in
// which case a *domain.DuplicateError carrying the existing row is returned.
// An empty description is replaced by the configured placeholder.
func (s *Service) AddContinent(ctx context.Context, in ContinentInput) (*domain.Continent, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.NewValidationError("name", "required")
	}

	var created *domain.Continent
	err := s.run(ctx, func(ctx context.Context) error {
		candidate := resolver.Candidate{Name: in.Name}

		m, err := s.resolver.Resolve(ctx, domain.KindContinent, candidate)
		if err != nil {
			return err
		}
		if m != nil {
			return m.Duplicate()
		}

		description := in.Description
		if strings.TrimSpace(description) == "" {
			description = s.opts.DefaultDescription
		}

		created, err = s.continents.Create(ctx, domain.NewContinent{Name: in.Name, Description: description})
		if errors.Is(err, domain.ErrAlreadyExists) {
			return &finalRaceError{kind: domain.KindContinent, candidate: candidate, err: err}
		}
		if err != nil {
			return fmt.Errorf("create continent: %w", err)
		}
		return nil
	})
	if err = s.finish(ctx, domain.KindContinent, err); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "continent imported",
		slog.Int64("continent_id", created.ID),
		slog.String("name", created.Name),
	)
	return created, nil
}

// ensureContinent resolves the continent named region or creates it with the
// placeholder description. The bool reports whether it was created here.
func (s *Service) ensureContinent(ctx context.Context, region string) (*domain.Continent, bool, error) {
	candidate := resolver.Candidate{Name: region}

	m, err := s.resolver.Resolve(ctx, domain.KindContinent, candidate)
	if err != nil {
		return nil, false, err
	}
	if m != nil {
		return m.Continent(), false, nil
	}

	created, err := s.continents.Create(ctx, domain.NewContinent{Name: region, Description: s.opts.DefaultDescription})
	if errors.Is(err, domain.ErrAlreadyExists) {
		if s.opts.AtomicCascade {
			return nil, false, &ancestorRaceError{kind: domain.KindContinent, err: err}
		}
		m, rerr := s.resolver.Resolve(ctx, domain.KindContinent, candidate)
		if rerr != nil {
			return nil, false, rerr
		}
		if m == nil {
			return nil, false, fmt.Errorf("continent %q: %w", region, domain.ErrConflict)
		}
		return m.Continent(), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("create continent: %w", err)
	}

	s.metrics.ObserveAutoCreated(domain.KindContinent.String())
	s.log.InfoContext(ctx, "continent auto-created",
		slog.Int64("continent_id", created.ID),
		slog.String("name", created.Name),
	)
	return created, true, nil
}
