package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/geo-explorer/internal/domain"
)

// ListCountries returns countries with their continent, optionally only those
// of one continent.
func (s *Service) ListCountries(ctx context.Context, continentID *int64) ([]domain.Country, error) {
	list, err := s.countries.List(ctx, continentID)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	return list, nil
}

// GetCountry returns a country by ID.
func (s *Service) GetCountry(ctx context.Context, id int64) (*domain.Country, error) {
	return s.countries.GetByID(ctx, id)
}

// UpdateCountry replaces a country's editable fields. Moving it to a continent
// that does not exist fails with domain.ErrNotFound.
func (s *Service) UpdateCountry(ctx context.Context, input UpdateCountryInput) (*domain.Country, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.countries.Update(ctx, input.ID, domain.CountryUpdate{
		Name:             domain.NormalizeCountryName(input.Name),
		Population:       orZero(input.Population),
		OfficialLanguage: strings.TrimSpace(input.OfficialLanguage),
		Currency:         strings.TrimSpace(input.Currency),
		ContinentID:      input.ContinentID,
	})
	if err != nil {
		return nil, fmt.Errorf("update country: %w", err)
	}

	s.log.InfoContext(ctx, "country updated", slog.Int64("country_id", updated.ID))
	return updated, nil
}

// DeleteCountry removes a country together with its cities.
func (s *Service) DeleteCountry(ctx context.Context, id int64) error {
	if err := s.countries.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete country: %w", err)
	}

	s.log.InfoContext(ctx, "country deleted", slog.Int64("country_id", id))
	return nil
}
