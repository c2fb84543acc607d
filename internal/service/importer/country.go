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

// AddCountry inserts an externally fetched country, creating its continent
// first when no continent with the region name exists. A country matching by
// name or by code is reported as a *domain.DuplicateError and nothing is written.
func (s *Service) AddCountry(ctx context.Context, in provider.Country) (*CountryResult, error) {
	if err := validateExternalCountry(in); err != nil {
		return nil, err
	}

	var res CountryResult
	err := s.run(ctx, func(ctx context.Context) error {
		res = CountryResult{ContinentName: in.Region}
		candidate := resolver.Candidate{Name: in.Name, Code: in.Code}

		m, err := s.resolver.Resolve(ctx, domain.KindCountry, candidate)
		if err != nil {
			return err
		}
		if m != nil {
			return m.Duplicate()
		}

		continent, created, err := s.ensureContinent(ctx, in.Region)
		if err != nil {
			return err
		}
		res.ContinentAutoCreated = created
		res.ContinentName = continent.Name

		country, err := s.countries.Create(ctx, newCountryFromExternal(in, continent.ID))
		if errors.Is(err, domain.ErrAlreadyExists) {
			return &finalRaceError{kind: domain.KindCountry, candidate: candidate, err: err}
		}
		if err != nil {
			return fmt.Errorf("create country: %w", err)
		}
		res.Country = country
		return nil
	})
	if err = s.finish(ctx, domain.KindCountry, err); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "country imported",
		slog.Int64("country_id", res.Country.ID),
		slog.String("name", res.Country.Name),
		slog.Bool("continent_auto_created", res.ContinentAutoCreated),
	)
	return &res, nil
}

// ancestry describes the country chosen for a city and what was created for it.
type ancestry struct {
	country          *domain.Country
	continent        *domain.Continent
	countryCreated   bool
	continentCreated bool
}

// ensureCountry creates an externally fetched country as an ancestor of a
// city. A row that appeared concurrently is reused in non-atomic mode.
func (s *Service) ensureCountry(ctx context.Context, ext *provider.Country) (*ancestry, error) {
	if err := validateExternalCountry(*ext); err != nil {
		return nil, err
	}

	continent, continentCreated, err := s.ensureContinent(ctx, ext.Region)
	if err != nil {
		return nil, err
	}
	a := &ancestry{continent: continent, continentCreated: continentCreated}

	country, err := s.countries.Create(ctx, newCountryFromExternal(*ext, continent.ID))
	if errors.Is(err, domain.ErrAlreadyExists) {
		if s.opts.AtomicCascade {
			return nil, &ancestorRaceError{kind: domain.KindCountry, err: err}
		}
		m, rerr := s.resolver.Resolve(ctx, domain.KindCountry, resolver.Candidate{Name: ext.Name, Code: ext.Code})
		if rerr != nil {
			return nil, rerr
		}
		if m == nil {
			return nil, fmt.Errorf("country %q: %w", ext.Name, domain.ErrConflict)
		}
		a.country = m.Country()
		return a, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create country: %w", err)
	}

	s.metrics.ObserveAutoCreated(domain.KindCountry.String())
	s.log.InfoContext(ctx, "country auto-created",
		slog.Int64("country_id", country.ID),
		slog.String("name", country.Name),
		slog.String("continent", continent.Name),
	)
	a.country = country
	a.countryCreated = true
	return a, nil
}

func validateExternalCountry(in provider.Country) error {
	var errs []domain.FieldError
	if domain.NormalizeCountryName(in.Name) == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	}
	if strings.TrimSpace(in.Region) == "" {
		errs = append(errs, domain.FieldError{Field: "region", Message: "required"})
	}
	if in.Population != nil && in.Population.Sign() < 0 {
		errs = append(errs, domain.FieldError{Field: "population", Message: "must not be negative"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// newCountryFromExternal maps a gateway record onto an insertable row. The
// first listed currency and language are kept; missing ones become N/A.
func newCountryFromExternal(in provider.Country, continentID int64) domain.NewCountry {
	currency := in.FirstCurrencyName()
	if currency == "" {
		currency = domain.NotAvailable
	}
	language := in.FirstLanguage()
	if language == "" {
		language = domain.NotAvailable
	}

	population := new(big.Int)
	if in.Population != nil {
		population.Set(in.Population)
	}

	return domain.NewCountry{
		Name:             domain.NormalizeCountryName(in.Name),
		Code:             domain.NormalizeCountryCode(in.Code),
		Population:       population,
		OfficialLanguage: language,
		Currency:         currency,
		ContinentID:      continentID,
	}
}
