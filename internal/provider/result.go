package provider

import (
	"math/big"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Country is the canonical country record produced by the country gateway.
type Country struct {
	Name       string
	Capital    []string
	Region     string
	Code       string
	Population *big.Int
	// LatLng is the representative coordinate pair [lat, lng]; it may be empty.
	LatLng     []float64
	Currencies *orderedmap.OrderedMap[string, Currency]
	Languages  *orderedmap.OrderedMap[string, string]
}

// Currency is one entry of a country's currency map.
type Currency struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// Coordinate returns the representative coordinate, or false when the
// upstream record does not carry a full pair.
func (c *Country) Coordinate() (lat, lon float64, ok bool) {
	if len(c.LatLng) < 2 {
		return 0, 0, false
	}
	return c.LatLng[0], c.LatLng[1], true
}

// FirstCurrencyName returns the name of the first listed currency, or "" if none.
func (c *Country) FirstCurrencyName() string {
	if c.Currencies == nil {
		return ""
	}
	if p := c.Currencies.Oldest(); p != nil {
		return p.Value.Name
	}
	return ""
}

// FirstLanguage returns the first listed language label, or "" if none.
func (c *Country) FirstLanguage() string {
	if c.Languages == nil {
		return ""
	}
	if p := c.Languages.Oldest(); p != nil {
		return p.Value
	}
	return ""
}

// City is the canonical populated-place record produced by the geocoding gateway.
type City struct {
	Name        string
	Latitude    float64
	Longitude   float64
	Country     string
	CountryCode string
	FeatureCode string
	Population  *big.Int
	Admin1      string
	Timezone    string
}

// Weather is the current conditions at a coordinate.
type Weather struct {
	Temperature   float64
	WindSpeed     float64
	WindDirection float64
	WeatherCode   int
	IsDay         bool
	Time          string
}
