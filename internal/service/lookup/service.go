// Package lookup classifies a free-text search term as a region, a country or
// a city using the external gateways.
package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/geo-explorer/internal/domain"
	"github.com/heartmarshall/geo-explorer/internal/observability"
	"github.com/heartmarshall/geo-explorer/internal/provider"
)

var (
	// ErrNothingFound is returned when a term matches no region, country or city.
	ErrNothingFound = fmt.Errorf("nothing found: %w", domain.ErrNotFound)
	// ErrWeatherUnavailable is returned when the forecast gateway has no data
	// for a coordinate.
	ErrWeatherUnavailable = fmt.Errorf("weather unavailable: %w", domain.ErrNotFound)
)

type countryGateway interface {
	FindCountriesByRegion(ctx context.Context, region string) []provider.Country
	FindCountryByName(ctx context.Context, name string) *provider.Country
}

type cityGateway interface {
	FindCity(ctx context.Context, name string) *provider.City
}

type weatherGateway interface {
	GetWeather(ctx context.Context, lat, lon float64) *provider.Weather
}

// Result is the classification of one term. Exactly one of Region, Country
// and City is set, according to Kind.
type Result struct {
	Kind domain.SearchKind
	Term string

	Region  []provider.Country
	Country *provider.Country
	City    *provider.City

	// Weather is attached to country and city results and may be nil.
	Weather *provider.Weather
}

// Service implements the lookup dispatcher.
type Service struct {
	log       *slog.Logger
	countries countryGateway
	cities    cityGateway
	weather   weatherGateway
	metrics   *observability.Metrics
}

// NewService creates a new lookup service. metrics may be nil.
func NewService(
	logger *slog.Logger,
	countries countryGateway,
	cities cityGateway,
	weather weatherGateway,
	metrics *observability.Metrics,
) *Service {
	return &Service{
		log:       logger.With("service", "lookup"),
		countries: countries,
		cities:    cities,
		weather:   weather,
		metrics:   metrics,
	}
}

// Search tries the term as a region, then as a country, then as a city and
// returns the first match. ErrNothingFound is returned when all three miss.
func (s *Service) Search(ctx context.Context, term string) (*Result, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, domain.NewValidationError("term", "required")
	}

	res := s.classify(ctx, term)
	if res == nil {
		s.metrics.ObserveSearch("not_found")
		s.log.DebugContext(ctx, "search matched nothing", slog.String("term", term))
		return nil, ErrNothingFound
	}

	s.metrics.ObserveSearch(res.Kind.String())
	s.log.DebugContext(ctx, "search classified",
		slog.String("term", term),
		slog.String("kind", res.Kind.String()),
	)
	return res, nil
}

func (s *Service) classify(ctx context.Context, term string) *Result {
	if region := s.countries.FindCountriesByRegion(ctx, term); len(region) > 0 {
		return &Result{Kind: domain.SearchKindRegion, Term: term, Region: region}
	}

	if country := s.countries.FindCountryByName(ctx, term); country != nil {
		res := &Result{Kind: domain.SearchKindCountry, Term: term, Country: country}
		if lat, lon, ok := country.Coordinate(); ok {
			res.Weather = s.weather.GetWeather(ctx, lat, lon)
		}
		return res
	}

	if city := s.cities.FindCity(ctx, term); city != nil {
		return &Result{
			Kind:    domain.SearchKindCity,
			Term:    term,
			City:    city,
			Weather: s.weather.GetWeather(ctx, city.Latitude, city.Longitude),
		}
	}

	return nil
}

// Weather returns the current conditions at a coordinate.
func (s *Service) Weather(ctx context.Context, lat, lon float64) (*provider.Weather, error) {
	if lat < -90 || lat > 90 {
		return nil, domain.NewValidationError("lat", "must be between -90 and 90")
	}
	if lon < -180 || lon > 180 {
		return nil, domain.NewValidationError("lon", "must be between -180 and 180")
	}

	w := s.weather.GetWeather(ctx, lat, lon)
	if w == nil {
		return nil, ErrWeatherUnavailable
	}
	return w, nil
}
