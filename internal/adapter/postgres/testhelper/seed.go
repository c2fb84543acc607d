package testhelper

import (
	"context"
	"math/big"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/geo-explorer/internal/adapter/postgres"
	"github.com/heartmarshall/geo-explorer/internal/domain"
)

// UniqueSuffix returns a short unique string for generating non-conflicting test data.
func UniqueSuffix() string {
	return uuid.New().String()[:8]
}

// UniqueCode returns a country code that is unique for the shared test database.
func UniqueCode() string {
	return "T" + strings.ToUpper(UniqueSuffix())
}

// UniqueCoordinate returns a coordinate pair that no other seeded city uses.
func UniqueCoordinate() (lat, lon float64) {
	return rand.Float64()*180 - 90, rand.Float64()*360 - 180
}

// SeedContinent inserts a continent with a unique name.
func SeedContinent(t *testing.T, pool *pgxpool.Pool) domain.Continent {
	t.Helper()
	return SeedContinentNamed(t, pool, "Continent "+UniqueSuffix())
}

// SeedContinentNamed inserts a continent with the given name.
func SeedContinentNamed(t *testing.T, pool *pgxpool.Pool, name string) domain.Continent {
	t.Helper()

	c := domain.Continent{Name: name, Description: "seeded"}
	err := pool.QueryRow(context.Background(),
		`INSERT INTO continents (name, description) VALUES ($1, $2) RETURNING id, created_at`,
		c.Name, c.Description,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedContinent: %v", err)
	}
	return c
}

// SeedCountry inserts a country with a unique name and code under the given continent.
func SeedCountry(t *testing.T, pool *pgxpool.Pool, continentID int64) domain.Country {
	t.Helper()

	suffix := UniqueSuffix()
	c := domain.Country{
		Name:             "Country " + suffix,
		Code:             UniqueCode(),
		Population:       big.NewInt(1_000_000),
		OfficialLanguage: "Language " + suffix,
		Currency:         "Currency " + suffix,
		ContinentID:      continentID,
	}

	err := pool.QueryRow(context.Background(),
		`INSERT INTO countries (name, code, population, official_language, currency, continent_id)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`,
		c.Name, c.Code, postgres.NumericFromBigInt(c.Population), c.OfficialLanguage, c.Currency, c.ContinentID,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedCountry: %v", err)
	}
	return c
}

// SeedCity inserts a city with a unique name and coordinate under the given country.
func SeedCity(t *testing.T, pool *pgxpool.Pool, countryID int64) domain.City {
	t.Helper()

	lat, lon := UniqueCoordinate()
	c := domain.City{
		Name:       "City " + UniqueSuffix(),
		Population: big.NewInt(50_000),
		Latitude:   lat,
		Longitude:  lon,
		CountryID:  countryID,
	}

	err := pool.QueryRow(context.Background(),
		`INSERT INTO cities (name, population, latitude, longitude, country_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		c.Name, postgres.NumericFromBigInt(c.Population), c.Latitude, c.Longitude, c.CountryID,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedCity: %v", err)
	}
	return c
}
