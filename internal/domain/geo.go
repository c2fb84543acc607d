package domain

import (
	"math/big"
	"time"
)

// Continent is the root of the local hierarchy. Its identity is the exact,
// case-sensitive name as supplied by the upstream region field.
type Continent struct {
	ID           int64
	Name         string
	Description  string
	CountryCount int
	CreatedAt    time.Time
}

// Country belongs to exactly one continent.
type Country struct {
	ID               int64
	Name             string
	Code             string
	Population       *big.Int
	OfficialLanguage string
	Currency         string
	ContinentID      int64
	CreatedAt        time.Time

	// Continent is populated by list queries that join the owning continent.
	Continent *Continent
}

// City belongs to exactly one country.
type City struct {
	ID         int64
	Name       string
	Population *big.Int
	Latitude   float64
	Longitude  float64
	CountryID  int64
	CreatedAt  time.Time

	// Country is populated by list queries that join the owning country.
	Country *Country
}

// NewContinent holds the fields needed to insert a continent.
type NewContinent struct {
	Name        string
	Description string
}

// NewCountry holds the fields needed to insert a country.
type NewCountry struct {
	Name             string
	Code             string
	Population       *big.Int
	OfficialLanguage string
	Currency         string
	ContinentID      int64
}

// NewCity holds the fields needed to insert a city.
type NewCity struct {
	Name       string
	Population *big.Int
	Latitude   float64
	Longitude  float64
	CountryID  int64
}

// ContinentUpdate holds the editable fields of a continent.
type ContinentUpdate struct {
	Name        string
	Description string
}

// CountryUpdate holds the editable fields of a country.
type CountryUpdate struct {
	Name             string
	Population       *big.Int
	OfficialLanguage string
	Currency         string
	ContinentID      int64
}

// CityUpdate holds the editable fields of a city.
type CityUpdate struct {
	Name       string
	Population *big.Int
	Latitude   float64
	Longitude  float64
	CountryID  int64
}
