// Package country implements the Country repository using PostgreSQL.
// A country is identified either by its trimmed name or by its two-letter code;
// an empty code never identifies anything.
package country

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

var columns = []string{"id", "name", "code", "population", "official_language", "currency", "continent_id", "created_at"}

const returning = "RETURNING id, name, code, population, official_language, currency, continent_id, created_at"

// Repo provides country persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new country repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a country by primary key.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Country, error) {
	return r.findOne(ctx, squirrel.Eq{"id": id}, id)
}

// FindByName returns the country whose stored name equals the trimmed name.
// Returns domain.ErrNotFound if none does.
func (r *Repo) FindByName(ctx context.Context, name string) (*domain.Country, error) {
	name = domain.NormalizeCountryName(name)
	return r.findOne(ctx, squirrel.Eq{"name": name}, name)
}

// FindByCode returns the country with the given code. An empty code is never
// looked up and yields domain.ErrNotFound.
func (r *Repo) FindByCode(ctx context.Context, code string) (*domain.Country, error) {
	code = domain.NormalizeCountryCode(code)
	if code == "" {
		return nil, fmt.Errorf("country code %q: %w", code, domain.ErrNotFound)
	}
	return r.findOne(ctx, squirrel.Eq{"code": code}, code)
}

// List returns countries ordered by name, each with its continent attached.
// A non-nil continentID restricts the result to that continent.
func (r *Repo) List(ctx context.Context, continentID *int64) ([]domain.Country, error) {
	b := postgres.Builder().
		Select(qualified("co", columns)...).
		Columns("ct.id", "ct.name", "ct.description", "ct.created_at").
		From("countries co").
		Join("continents ct ON ct.id = co.continent_id").
		OrderBy("co.name")
	if continentID != nil {
		b = b.Where(squirrel.Eq{"co.continent_id": *continentID})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Country, 0)
	for rows.Next() {
		var (
			c   domain.Country
			ct  domain.Continent
			pop pgtype.Numeric
		)
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Code, &pop, &c.OfficialLanguage, &c.Currency, &c.ContinentID, &c.CreatedAt,
			&ct.ID, &ct.Name, &ct.Description, &ct.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		c.Population = postgres.BigIntFromNumeric(pop)
		c.Continent = &ct
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}

	return result, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a country. Returns domain.ErrAlreadyExists when the name or
// code is taken, domain.ErrNotFound when the continent does not exist.
func (r *Repo) Create(ctx context.Context, in domain.NewCountry) (*domain.Country, error) {
	name := domain.NormalizeCountryName(in.Name)
	query, args, err := postgres.Builder().
		Insert("countries").
		Columns("name", "code", "population", "official_language", "currency", "continent_id").
		Values(
			name,
			domain.NormalizeCountryCode(in.Code),
			postgres.NumericFromBigInt(in.Population),
			in.OfficialLanguage,
			in.Currency,
			in.ContinentID,
		).
		Suffix(returning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	c, err := scan(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "country", name)
	}
	return c, nil
}

// Update replaces the editable fields of a country. The code is not editable.
func (r *Repo) Update(ctx context.Context, id int64, in domain.CountryUpdate) (*domain.Country, error) {
	query, args, err := postgres.Builder().
		Update("countries").
		Set("name", domain.NormalizeCountryName(in.Name)).
		Set("population", postgres.NumericFromBigInt(in.Population)).
		Set("official_language", in.OfficialLanguage).
		Set("currency", in.Currency).
		Set("continent_id", in.ContinentID).
		Where(squirrel.Eq{"id": id}).
		Suffix(returning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	c, err := scan(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "country", id)
	}
	return c, nil
}

// Delete removes a country and its cities.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	query, args, err := postgres.Builder().
		Delete("countries").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, "country", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("country %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (r *Repo) findOne(ctx context.Context, where squirrel.Eq, key any) (*domain.Country, error) {
	query, args, err := postgres.Builder().
		Select(columns...).
		From("countries").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	c, err := scan(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "country", key)
	}
	return c, nil
}

func scan(row pgx.Row) (*domain.Country, error) {
	var (
		c   domain.Country
		pop pgtype.Numeric
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Code, &pop, &c.OfficialLanguage, &c.Currency, &c.ContinentID, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Population = postgres.BigIntFromNumeric(pop)
	return &c, nil
}

func qualified(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}
