// Package restcountries implements the country side of the external data
// gateway on top of the REST Countries v3.1 API. Every lookup collapses
// transport failures and empty answers into absence (nil).
package restcountries

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"math/big"
	"net/url"
	"strings"

	"github.com/heartmarshall/geo-explorer/internal/adapter/provider/upstream"
	"github.com/heartmarshall/geo-explorer/internal/domain"
	"github.com/heartmarshall/geo-explorer/internal/provider"
)

// DefaultBaseURL is the public REST Countries v3.1 endpoint.
const DefaultBaseURL = "https://restcountries.com/v3.1"

// regionSynonyms maps lower-cased colloquial region names to the provider's
// region vocabulary. Unlisted names are passed through unchanged.
var regionSynonyms = map[string]string{
	"europa":           "europe",
	"asia":             "asia",
	"áfrica":           "africa",
	"africa":           "africa",
	"america do sul":   "south america",
	"america do norte": "north america",
	"oceania":          "oceania",
	"americas":         "americas",
}

// Provider looks up countries by name, code and region.
type Provider struct {
	baseURL       string
	translateLang string
	client        *upstream.Client
	log           *slog.Logger
}

// NewProvider creates a Provider. translateLang is the language passed to the
// translated-name fallback endpoint (e.g. "por").
func NewProvider(baseURL, translateLang string, client *upstream.Client, logger *slog.Logger) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provider{
		baseURL:       strings.TrimRight(baseURL, "/"),
		translateLang: translateLang,
		client:        client,
		log:           logger.With("adapter", "restcountries"),
	}
}

// FindCountryByName queries the partial-name endpoint first and falls back to
// the translated-name endpoint. Returns the first candidate of whichever answers.
func (p *Provider) FindCountryByName(ctx context.Context, name string) *provider.Country {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	var byName []apiCountry
	err := p.client.GetJSON(ctx, "country_by_name",
		upstream.PathJoin(p.baseURL, "name", name),
		url.Values{"fullText": {"false"}},
		&byName,
	)
	if err == nil && len(byName) > 0 {
		return p.toCountry(ctx, byName[0])
	}

	var byTranslation []apiCountry
	query := url.Values{}
	if p.translateLang != "" {
		query.Set("lang", p.translateLang)
	}
	err = p.client.GetJSON(ctx, "country_by_translation",
		upstream.PathJoin(p.baseURL, "translation", name),
		query,
		&byTranslation,
	)
	if err == nil && len(byTranslation) > 0 {
		return p.toCountry(ctx, byTranslation[0])
	}

	return nil
}

// FindCountryByCode queries the exact alpha-code endpoint. The provider answers
// either a one-element array or a bare object; both are accepted.
func (p *Provider) FindCountryByCode(ctx context.Context, code string) *provider.Country {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}

	var raw json.RawMessage
	if err := p.client.GetJSON(ctx, "country_by_code", upstream.PathJoin(p.baseURL, "alpha", code), nil, &raw); err != nil {
		return nil
	}

	c, err := unwrapSingle(raw)
	if err != nil {
		p.log.WarnContext(ctx, "decode alpha response",
			slog.String("code", code),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if c == nil {
		return nil
	}
	return p.toCountry(ctx, *c)
}

// FindCountriesByRegion translates known region synonyms (case-insensitive)
// and lists the countries of that region. Returns nil when the region is unknown
// or the upstream fails.
func (p *Provider) FindCountriesByRegion(ctx context.Context, region string) []provider.Country {
	region = strings.TrimSpace(region)
	if region == "" {
		return nil
	}
	apiRegion := TranslateRegion(region)

	var list []apiCountry
	query := url.Values{}
	if p.translateLang != "" {
		query.Set("lang", p.translateLang)
	}
	if err := p.client.GetJSON(ctx, "countries_by_region", upstream.PathJoin(p.baseURL, "region", apiRegion), query, &list); err != nil {
		return nil
	}

	out := make([]provider.Country, 0, len(list))
	for _, c := range list {
		out = append(out, *p.toCountry(ctx, c))
	}
	return out
}

// TranslateRegion maps a colloquial region name to the provider vocabulary.
func TranslateRegion(region string) string {
	if v, ok := regionSynonyms[strings.ToLower(region)]; ok {
		return v
	}
	return region
}

func unwrapSingle(raw json.RawMessage) (*apiCountry, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []apiCountry
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, nil
		}
		return &list[0], nil
	}

	var c apiCountry
	if err := json.Unmarshal(trimmed, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (p *Provider) toCountry(ctx context.Context, c apiCountry) *provider.Country {
	pop, err := domain.ParsePopulation(c.Population.String())
	if err != nil {
		p.log.WarnContext(ctx, "unparseable population, storing zero",
			slog.String("country", c.Name.Common),
			slog.String("population", c.Population.String()),
		)
		pop = new(big.Int)
	}

	return &provider.Country{
		Name:       c.Name.Common,
		Capital:    c.Capital,
		Region:     c.Region,
		Code:       c.CCA2,
		Population: pop,
		LatLng:     c.LatLng,
		Currencies: c.Currencies,
		Languages:  c.Languages,
	}
}
