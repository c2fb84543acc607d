package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/heartmarshall/geo-explorer/internal/domain"
	"github.com/heartmarshall/geo-explorer/internal/provider"
	"github.com/heartmarshall/geo-explorer/internal/service/resolver"
)

// AddCity inserts a geocoded city. Its country is resolved locally by name and
// code; failing that it is fetched from the country gateway (by code first,
// then by name) and created together with its continent when needed.
//
// Errors: *domain.ValidationError, *domain.DuplicateError when the city already
// exists by name within the country or by coordinates, *CountryNotFoundError
// when the country cannot be found anywhere. Nothing is written in the latter
// two cases unless an ancestor had to be created first.
func (s *Service) AddCity(ctx context.Context, in provider.City) (*CityResult, error) {
	if err := validateExternalCity(in); err != nil {
		return nil, err
	}

	var res CityResult
	err := s.run(ctx, func(ctx context.Context) error {
		res = CityResult{}

		if err := s.resolveCityCountry(ctx, in, &res); err != nil {
			return err
		}

		candidate := resolver.Candidate{
			Name:           strings.TrimSpace(in.Name),
			CountryID:      res.Country.ID,
			Latitude:       in.Latitude,
			Longitude:      in.Longitude,
			HasCoordinates: true,
		}
		m, err := s.resolver.Resolve(ctx, domain.KindCity, candidate)
		if err != nil {
			return err
		}
		if m != nil {
			return m.Duplicate()
		}

		population := new(big.Int)
		if in.Population != nil {
			population.Set(in.Population)
		}

		city, err := s.cities.Create(ctx, domain.NewCity{
			Name:       candidate.Name,
			Population: population,
			Latitude:   in.Latitude,
			Longitude:  in.Longitude,
			CountryID:  res.Country.ID,
		})
		if errors.Is(err, domain.ErrAlreadyExists) {
			return &finalRaceError{kind: domain.KindCity, candidate: candidate, err: err}
		}
		if err != nil {
			return fmt.Errorf("create city: %w", err)
		}
		res.City = city
		return nil
	})
	if err = s.finish(ctx, domain.KindCity, err); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "city imported",
		slog.Int64("city_id", res.City.ID),
		slog.String("name", res.City.Name),
		slog.Int64("country_id", res.Country.ID),
		slog.Bool("country_auto_created", res.CountryAutoCreated),
	)
	return &res, nil
}

// resolveCityCountry fills res.Country, auto-creating it from the gateway
// record when it is not stored locally.
func (s *Service) resolveCityCountry(ctx context.Context, in provider.City, res *CityResult) error {
	m, err := s.resolver.Resolve(ctx, domain.KindCountry, resolver.Candidate{Name: in.Country, Code: in.CountryCode})
	if err != nil {
		return err
	}
	if m != nil {
		res.Country = m.Country()
		return nil
	}

	var ext *provider.Country
	if domain.NormalizeCountryCode(in.CountryCode) != "" {
		ext = s.gateway.FindCountryByCode(ctx, in.CountryCode)
	}
	if ext == nil && domain.NormalizeCountryName(in.Country) != "" {
		ext = s.gateway.FindCountryByName(ctx, in.Country)
	}
	if ext == nil {
		return &CountryNotFoundError{Country: in.Country, Code: in.CountryCode}
	}

	// The gateway may return the canonical spelling of a country stored under it.
	m, err = s.resolver.Resolve(ctx, domain.KindCountry, resolver.Candidate{Name: ext.Name, Code: ext.Code})
	if err != nil {
		return err
	}
	if m != nil {
		res.Country = m.Country()
		return nil
	}

	a, err := s.ensureCountry(ctx, ext)
	if err != nil {
		return err
	}
	res.Country = a.country
	res.CountryAutoCreated = a.countryCreated
	res.ContinentAutoCreated = a.continentCreated
	if a.continentCreated {
		res.ContinentName = a.continent.Name
	}
	return nil
}

func validateExternalCity(in provider.City) error {
	var errs []domain.FieldError
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	}
	if in.Latitude < -90 || in.Latitude > 90 {
		errs = append(errs, domain.FieldError{Field: "latitude", Message: "must be between -90 and 90"})
	}
	if in.Longitude < -180 || in.Longitude > 180 {
		errs = append(errs, domain.FieldError{Field: "longitude", Message: "must be between -180 and 180"})
	}
	if in.Population != nil && in.Population.Sign() < 0 {
		errs = append(errs, domain.FieldError{Field: "population", Message: "must not be negative"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
