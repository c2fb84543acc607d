package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/geo-explorer/internal/domain"
)

// ListCities returns cities with their country, optionally only those of one country.
func (s *Service) ListCities(ctx context.Context, countryID *int64) ([]domain.City, error) {
	list, err := s.cities.List(ctx, countryID)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	return list, nil
}

// GetCity returns a city by ID.
func (s *Service) GetCity(ctx context.Context, id int64) (*domain.City, error) {
	return s.cities.GetByID(ctx, id)
}

// UpdateCity replaces a city's editable fields.
func (s *Service) UpdateCity(ctx context.Context, input UpdateCityInput) (*domain.City, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.cities.Update(ctx, input.ID, domain.CityUpdate{
		Name:       strings.TrimSpace(input.Name),
		Population: orZero(input.Population),
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		CountryID:  input.CountryID,
	})
	if err != nil {
		return nil, fmt.Errorf("update city: %w", err)
	}

	s.log.InfoContext(ctx, "city updated", slog.Int64("city_id", updated.ID))
	return updated, nil
}

// DeleteCity removes a city.
func (s *Service) DeleteCity(ctx context.Context, id int64) error {
	if err := s.cities.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete city: %w", err)
	}

	s.log.InfoContext(ctx, "city deleted", slog.Int64("city_id", id))
	return nil
}
