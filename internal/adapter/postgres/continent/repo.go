// Package continent implements the Continent repository using PostgreSQL.
// Continents are identified by their exact, case-sensitive name.
package continent

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/geo-explorer/internal/adapter/postgres"
	"github.com/heartmarshall/geo-explorer/internal/domain"
)

const returning = "RETURNING id, name, description, created_at"

// Repo provides continent persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new continent repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a continent with its country count.
// Returns domain.ErrNotFound if it does not exist.
func (r *Repo) GetByID(ctx context.Context, id int64) (*domain.Continent, error) {
	query, args, err := withCountsQuery().Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	c, err := scanWithCount(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "continent", id)
	}
	return c, nil
}

// FindByName returns the continent whose name equals name exactly.
// Returns domain.ErrNotFound if none does.
func (r *Repo) FindByName(ctx context.Context, name string) (*domain.Continent, error) {
	query, args, err := postgres.Builder().
		Select("id", "name", "description", "created_at").
		From("continents").
		Where(squirrel.Eq{"name": name}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	c, err := scan(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "continent", name)
	}
	return c, nil
}

// List returns all continents ordered by name, each with its country count.
// Returns an empty slice (not nil) when there are none.
func (r *Repo) List(ctx context.Context) ([]domain.Continent, error) {
	query, args, err := withCountsQuery().OrderBy("c.name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list continents: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Continent, 0)
	for rows.Next() {
		c, err := scanWithCount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan continent: %w", err)
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list continents: %w", err)
	}

	return result, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a continent. Returns domain.ErrAlreadyExists on a name collision.
func (r *Repo) Create(ctx context.Context, in domain.NewContinent) (*domain.Continent, error) {
	query, args, err := postgres.Builder().
		Insert("continents").
		Columns("name", "description").
		Values(in.Name, in.Description).
		Suffix(returning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	c, err := scan(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "continent", in.Name)
	}
	return c, nil
}

// Update replaces the name and description of a continent.
// Returns domain.ErrNotFound or domain.ErrAlreadyExists (name taken).
func (r *Repo) Update(ctx context.Context, id int64, in domain.ContinentUpdate) (*domain.Continent, error) {
	query, args, err := postgres.Builder().
		Update("continents").
		Set("name", in.Name).
		Set("description", in.Description).
		Where(squirrel.Eq{"id": id}).
		Suffix(returning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	c, err := scan(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "continent", id)
	}
	return c, nil
}

// Delete removes a continent; its countries and their cities go with it.
// Returns domain.ErrNotFound if it does not exist.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	query, args, err := postgres.Builder().
		Delete("continents").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapError(err, "continent", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("continent %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func withCountsQuery() squirrel.SelectBuilder {
	return postgres.Builder().
		Select("c.id", "c.name", "c.description", "c.created_at", "COUNT(co.id)").
		From("continents c").
		LeftJoin("countries co ON co.continent_id = c.id").
		GroupBy("c.id")
}

func scan(row pgx.Row) (*domain.Continent, error) {
	var c domain.Continent
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanWithCount(row pgx.Row) (*domain.Continent, error) {
	var (
		c     domain.Continent
		count int64
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &count); err != nil {
		return nil, err
	}
	c.CountryCount = int(count)
	return &c, nil
}
