// Package city implements the City repository using PostgreSQL.
// A city is identified by (name, country) or by its exact coordinate pair.
package city

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/geo-explorer/internal/adapter/postgres"
	"github.com/heartmarshall/geo-explorer/internal/domain"
)

var columns = []string{"id", "name", "population", "latitude", "longitude", "country_id", "created_at"}

const returning = "RETURNING id, name, population, latitude, longitude, country_id, created_at"

// Repo provides city persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new city repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a city by primary key.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.City, error) {
	return r.findOne(ctx, squirrel.Eq{"id": id}, id)
}

// FindByNameAndCountry returns the city with exactly this name in the given country.
func (r *Repo) FindByNameAndCountry(ctx context.Context, name string, countryID int64) (*domain.City, error) {
	return r.findOne(ctx, squirrel.Eq{"name": name, "country_id": countryID}, name)
}

// FindByCoordinates returns the city stored at exactly this coordinate pair.
func (r *Repo) FindByCoordinates(ctx context.Context, lat, lon float64) (*domain.City, error) {
	return r.findOne(ctx, squirrel.Eq{"latitude": lat, "longitude": lon}, fmt.Sprintf("(%v, %v)", lat, lon))
}

// List returns cities ordered by name, each with its country attached.
// A non-nil countryID restricts the result to that country.
func (r *Repo) List(ctx context.Context, countryID *int64) ([]domain.City, error) {
	b := postgres.Builder().
		Select(
			"ci.id", "ci.name", "ci.population", "ci.latitude", "ci.longitude", "ci.country_id", "ci.created_at",
			"co.id", "co.name", "co.code", "co.population", "co.official_language", "co.currency", "co.continent_id", "co.created_at",
		).
		From("cities ci").
		Join("countries co ON co.id = ci.country_id").
		OrderBy("ci.name", "ci.id")
	if countryID != nil {
		b = b.Where(squirrel.Eq{"ci.country_id": *countryID})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	defer rows.Close()

	result := make([]domain.City, 0)
	for rows.Next() {
		var (
			c              domain.City
			co             domain.Country
			cityPop, coPop pgtype.Numeric
		)
		if err := rows.Scan(
			&c.ID, &c.Name, &cityPop, &c.Latitude, &c.Longitude, &c.CountryID, &c.CreatedAt,
			&co.ID, &co.Name, &co.Code, &coPop, &co.OfficialLanguage, &co.Currency, &co.ContinentID, &co.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		c.Population = postgres.BigIntFromNumeric(cityPop)
		co.Population = postgres.BigIntFromNumeric(coPop)
		c.Country = &co
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}

	return result, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a city. Returns domain.ErrAlreadyExists when (name, country)
// or the coordinate pair is taken, domain.ErrNotFound when the country does not exist.
func (r *Repo) Create(ctx context.Context, in domain.NewCity) (*domain.City, error) {
	query, args, err := postgres.Builder().
		Insert("cities").
		Columns("name", "population", "latitude", "longitude", "country_id").
		Values(in.Name, postgres.NumericFromBigInt(in.Population), in.Latitude, in.Longitude, in.CountryID).
		Suffix(returning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	c, err := scan(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "city", in.Name)
	}
	return c, nil
}

// Update replaces the editable fields of a city.
func (r *Repo) Update(ctx context.Context, id int64, in domain.CityUpdate) (*domain.City, error) {
	query, args, err := postgres.Builder().
		Update("cities").
		Set("name", in.Name).
		Set("population", postgres.NumericFromBigInt(in.Population)).
		Set("latitude", in.Latitude).
		Set("longitude", in.Longitude).
		Set("country_id", in.CountryID).
		Where(squirrel.Eq{"id": id}).
		Suffix(returning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	c, err := scan(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "city", id)
	}
	return c, nil
}

// Delete removes a city.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	query, args, err := postgres.Builder().
		Delete("cities").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, "city", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("city %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (r *Repo) findOne(ctx context.Context, where squirrel.Eq, key any) (*domain.City, error) {
	query, args, err := postgres.Builder().
		Select(columns...).
		From("cities").
		Where(where).
		OrderBy("id").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	c, err := scan(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "city", key)
	}
	return c, nil
}

func scan(row pgx.Row) (*domain.City, error) {
	var (
		c   domain.City
		pop pgtype.Numeric
	)
	if err := row.Scan(&c.ID, &c.Name, &pop, &c.Latitude, &c.Longitude, &c.CountryID, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Population = postgres.BigIntFromNumeric(pop)
	return &c, nil
}
