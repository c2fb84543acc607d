package rest

import (
	"encoding/json"
	"math/big"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/heartmarshall/geo-explorer/internal/domain"
	"github.com/heartmarshall/geo-explorer/internal/provider"
)

// ---------------------------------------------------------------------------
// Local entities
// ---------------------------------------------------------------------------

type continentDTO struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	CountryCount int       `json:"countryCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

type continentRefDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type countryDTO struct {
	ID               int64            `json:"id"`
	Name             string           `json:"name"`
	Code             string           `json:"code"`
	Population       string           `json:"population"`
	OfficialLanguage string           `json:"officialLanguage"`
	Currency         string           `json:"currency"`
	ContinentID      int64            `json:"continentId"`
	Continent        *continentRefDTO `json:"continent,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
}

type countryRefDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type cityDTO struct {
	ID         int64          `json:"id"`
	Name       string         `json:"name"`
	Population string         `json:"population"`
	Latitude   float64        `json:"latitude"`
	Longitude  float64        `json:"longitude"`
	CountryID  int64          `json:"countryId"`
	Country    *countryRefDTO `json:"country,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func toContinentDTO(c *domain.Continent) continentDTO {
	return continentDTO{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		CountryCount: c.CountryCount,
		CreatedAt:    c.CreatedAt,
	}
}

func toCountryDTO(c *domain.Country) countryDTO {
	out := countryDTO{
		ID:               c.ID,
		Name:             c.Name,
		Code:             c.Code,
		Population:       domain.FormatPopulation(c.Population),
		OfficialLanguage: c.OfficialLanguage,
		Currency:         c.Currency,
		ContinentID:      c.ContinentID,
		CreatedAt:        c.CreatedAt,
	}
	if c.Continent != nil {
		out.Continent = &continentRefDTO{ID: c.Continent.ID, Name: c.Continent.Name}
	}
	return out
}

func toCityDTO(c *domain.City) cityDTO {
	out := cityDTO{
		ID:         c.ID,
		Name:       c.Name,
		Population: domain.FormatPopulation(c.Population),
		Latitude:   c.Latitude,
		Longitude:  c.Longitude,
		CountryID:  c.CountryID,
		CreatedAt:  c.CreatedAt,
	}
	if c.Country != nil {
		out.Country = &countryRefDTO{ID: c.Country.ID, Name: c.Country.Name, Code: c.Country.Code}
	}
	return out
}

func mapSlice[T, D any](items []T, fn func(*T) D) []D {
	out := make([]D, len(items))
	for i := range items {
		out[i] = fn(&items[i])
	}
	return out
}

// existingDTO renders the row carried by a DuplicateError.
func existingDTO(existing any) any {
	switch v := existing.(type) {
	case *domain.Continent:
		return toContinentDTO(v)
	case *domain.Country:
		return toCountryDTO(v)
	case *domain.City:
		return toCityDTO(v)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Import responses
// ---------------------------------------------------------------------------

type importedCountryDTO struct {
	countryDTO
	ContinentAutoCreated bool   `json:"continentAutoCreated"`
	ContinentName        string `json:"continentName"`
}

type importedCityDTO struct {
	cityDTO
	CountryAutoCreated   bool   `json:"countryAutoCreated"`
	ContinentAutoCreated bool   `json:"continentAutoCreated"`
	ContinentName        string `json:"continentName"`
}

// ---------------------------------------------------------------------------
// External records (search results and import requests share this shape)
// ---------------------------------------------------------------------------

type countryNameDTO struct {
	Common string `json:"common"`
}

type externalCountryDTO struct {
	Name       countryNameDTO                                  `json:"name"`
	Capital    []string                                        `json:"capital,omitempty"`
	Region     string                                          `json:"region"`
	CCA2       string                                          `json:"cca2"`
	Population population                                      `json:"population"`
	LatLng     []float64                                       `json:"latlng,omitempty"`
	Currencies *orderedmap.OrderedMap[string, provider.Currency] `json:"currencies,omitempty"`
	Languages  *orderedmap.OrderedMap[string, string]            `json:"languages,omitempty"`
}

type externalCityDTO struct {
	Name        string      `json:"name"`
	Latitude    float64     `json:"latitude"`
	Longitude   float64     `json:"longitude"`
	Country     string      `json:"country"`
	CountryCode string      `json:"country_code"`
	FeatureCode string      `json:"feature_code,omitempty"`
	Population  population  `json:"population"`
	Admin1      string      `json:"admin1,omitempty"`
	Timezone    string      `json:"timezone,omitempty"`
}

type weatherDTO struct {
	Temperature   float64 `json:"temperature"`
	WindSpeed     float64 `json:"windspeed"`
	WindDirection float64 `json:"winddirection"`
	WeatherCode   int     `json:"weathercode"`
	IsDay         int     `json:"is_day"`
	Time          string  `json:"time"`
}

func toExternalCountryDTO(c *provider.Country) externalCountryDTO {
	return externalCountryDTO{
		Name:       countryNameDTO{Common: c.Name},
		Capital:    c.Capital,
		Region:     c.Region,
		CCA2:       c.Code,
		Population: population(domain.FormatPopulation(c.Population)),
		LatLng:     c.LatLng,
		Currencies: c.Currencies,
		Languages:  c.Languages,
	}
}

func toExternalCityDTO(c *provider.City) externalCityDTO {
	return externalCityDTO{
		Name:        c.Name,
		Latitude:    c.Latitude,
		Longitude:   c.Longitude,
		Country:     c.Country,
		CountryCode: c.CountryCode,
		FeatureCode: c.FeatureCode,
		Population:  population(domain.FormatPopulation(c.Population)),
		Admin1:      c.Admin1,
		Timezone:    c.Timezone,
	}
}

// toWeatherDTO returns nil for absent weather so it encodes as null.
func toWeatherDTO(w *provider.Weather) *weatherDTO {
	if w == nil {
		return nil
	}
	isDay := 0
	if w.IsDay {
		isDay = 1
	}
	return &weatherDTO{
		Temperature:   w.Temperature,
		WindSpeed:     w.WindSpeed,
		WindDirection: w.WindDirection,
		WeatherCode:   w.WeatherCode,
		IsDay:         isDay,
		Time:          w.Time,
	}
}

// toProviderCountry converts an add-country request body.
func (d externalCountryDTO) toProviderCountry() (provider.Country, error) {
	population, err := parsePopulation(d.Population)
	if err != nil {
		return provider.Country{}, err
	}
	return provider.Country{
		Name:       d.Name.Common,
		Capital:    d.Capital,
		Region:     d.Region,
		Code:       d.CCA2,
		Population: population,
		LatLng:     d.LatLng,
		Currencies: d.Currencies,
		Languages:  d.Languages,
	}, nil
}

// toProviderCity converts an add-city request body.
func (d externalCityDTO) toProviderCity() (provider.City, error) {
	population, err := parsePopulation(d.Population)
	if err != nil {
		return provider.City{}, err
	}
	return provider.City{
		Name:        d.Name,
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
		Country:     d.Country,
		CountryCode: d.CountryCode,
		FeatureCode: d.FeatureCode,
		Population:  population,
		Admin1:      d.Admin1,
		Timezone:    d.Timezone,
	}, nil
}

// population is decoded from a JSON number or string and always encoded as a
// decimal string, so values beyond 2^53 survive JavaScript clients.
type population string

func (p population) MarshalJSON() ([]byte, error) {
	if p == "" {
		return json.Marshal("0")
	}
	return json.Marshal(string(p))
}

func (p *population) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = population(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*p = population(n)
	return nil
}

func parsePopulation(p population) (*big.Int, error) {
	n, err := domain.ParsePopulation(string(p))
	if err != nil {
		return nil, domain.NewValidationError("population", err.Error())
	}
	return n, nil
}
