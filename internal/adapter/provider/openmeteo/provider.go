// Package openmeteo implements the city and weather side of the external data
// gateway on top of the Open-Meteo geocoding and forecast APIs.
package openmeteo

import (
	"context"
	"log/slog"
	"math/big"
	"net/url"
	"strconv"
	"strings"

	"github.com/heartmarshall/geo-explorer/internal/adapter/provider/upstream"
	"github.com/heartmarshall/geo-explorer/internal/domain"
	"github.com/heartmarshall/geo-explorer/internal/provider"
)

const (
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	DefaultForecastURL  = "https://api.open-meteo.com/v1/forecast"

	// populatedPlacePrefix is the GeoNames feature-code family for populated places
	// (PPL, PPLA, PPLC, PPLX, ...).
	populatedPlacePrefix = "PPL"
)

// Options configures a Provider. Zero values fall back to the public endpoints,
// Portuguese result labels and five geocoding candidates.
type Options struct {
	GeocodingURL string
	ForecastURL  string
	Language     string
	Candidates   int
}

// Provider resolves city names and fetches current weather.
type Provider struct {
	geocodingURL string
	forecastURL  string
	language     string
	candidates   int
	client       *upstream.Client
	log          *slog.Logger
}

// NewProvider creates a Provider.
func NewProvider(opts Options, client *upstream.Client, logger *slog.Logger) *Provider {
	if opts.GeocodingURL == "" {
		opts.GeocodingURL = DefaultGeocodingURL
	}
	if opts.ForecastURL == "" {
		opts.ForecastURL = DefaultForecastURL
	}
	if opts.Language == "" {
		opts.Language = "pt"
	}
	if opts.Candidates <= 0 {
		opts.Candidates = 5
	}
	return &Provider{
		geocodingURL: opts.GeocodingURL,
		forecastURL:  opts.ForecastURL,
		language:     opts.Language,
		candidates:   opts.Candidates,
		client:       client,
		log:          logger.With("adapter", "openmeteo"),
	}
}

// FindCity returns the first geocoding candidate classified as a populated place.
// Returns nil when the upstream fails, answers no results, or none of the
// candidates is a populated place.
func (p *Provider) FindCity(ctx context.Context, name string) *provider.City {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	query := url.Values{
		"name":     {name},
		"language": {p.language},
		"count":    {strconv.Itoa(p.candidates)},
	}

	var resp geocodingResponse
	if err := p.client.GetJSON(ctx, "find_city", p.geocodingURL, query, &resp); err != nil {
		return nil
	}

	for _, r := range resp.Results {
		if !strings.HasPrefix(r.FeatureCode, populatedPlacePrefix) {
			continue
		}
		return p.toCity(ctx, r)
	}

	p.log.DebugContext(ctx, "no populated place among candidates",
		slog.String("name", name),
		slog.Int("candidates", len(resp.Results)),
	)
	return nil
}

// GetWeather returns the current conditions at a coordinate, or nil on any failure.
func (p *Provider) GetWeather(ctx context.Context, lat, lon float64) *provider.Weather {
	query := url.Values{
		"latitude":        {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude":       {strconv.FormatFloat(lon, 'f', -1, 64)},
		"current_weather": {"true"},
	}

	var resp forecastResponse
	if err := p.client.GetJSON(ctx, "get_weather", p.forecastURL, query, &resp); err != nil {
		return nil
	}
	if resp.CurrentWeather == nil {
		return nil
	}

	cw := resp.CurrentWeather
	return &provider.Weather{
		Temperature:   cw.Temperature,
		WindSpeed:     cw.WindSpeed,
		WindDirection: cw.WindDirection,
		WeatherCode:   cw.WeatherCode,
		IsDay:         cw.IsDay == 1,
		Time:          cw.Time,
	}
}

func (p *Provider) toCity(ctx context.Context, r geocodingResult) *provider.City {
	pop, err := domain.ParsePopulation(r.Population.String())
	if err != nil {
		p.log.WarnContext(ctx, "unparseable population, storing zero",
			slog.String("city", r.Name),
			slog.String("population", r.Population.String()),
		)
		pop = new(big.Int)
	}

	return &provider.City{
		Name:        r.Name,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Country:     r.Country,
		CountryCode: r.CountryCode,
		FeatureCode: r.FeatureCode,
		Population:  pop,
		Admin1:      r.Admin1,
		Timezone:    r.Timezone,
	}
}
