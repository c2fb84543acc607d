package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/geo-explorer/internal/domain"
)

// ListContinents returns every continent with its country count.
func (s *Service) ListContinents(ctx context.Context) ([]domain.Continent, error) {
	list, err := s.continents.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list continents: %w", err)
	}
	return list, nil
}

// GetContinent returns a continent by ID.
func (s *Service) GetContinent(ctx context.Context, id int64) (*domain.Continent, error) {
	return s.continents.GetByID(ctx, id)
}

// UpdateContinent renames or re-describes a continent. Renaming onto an
// existing name fails with domain.ErrAlreadyExists.
func (s *Service) UpdateContinent(ctx context.Context, input UpdateContinentInput) (*domain.Continent, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.continents.Update(ctx, input.ID, domain.ContinentUpdate{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
	})
	if err != nil {
		return nil, fmt.Errorf("update continent: %w", err)
	}

	s.log.InfoContext(ctx, "continent updated", slog.Int64("continent_id", updated.ID))
	return updated, nil
}

// DeleteContinent removes a continent together with its countries and cities.
func (s *Service) DeleteContinent(ctx context.Context, id int64) error {
	if err := s.continents.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete continent: %w", err)
	}

	s.log.InfoContext(ctx, "continent deleted", slog.Int64("continent_id", id))
	return nil
}
