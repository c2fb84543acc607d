// Package catalog exposes the local store for browsing and manual edits.
package catalog

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/geo-explorer/internal/domain"
)

type continentRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Continent, error)
	List(ctx context.Context) ([]domain.Continent, error)
	Update(ctx context.Context, id int64, in domain.ContinentUpdate) (*domain.Continent, error)
	Delete(ctx context.Context, id int64) error
}

type countryRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Country, error)
	List(ctx context.Context, continentID *int64) ([]domain.Country, error)
	Update(ctx context.Context, id int64, in domain.CountryUpdate) (*domain.Country, error)
	Delete(ctx context.Context, id int64) error
}

type cityRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.City, error)
	List(ctx context.Context, countryID *int64) ([]domain.City, error)
	Update(ctx context.Context, id int64, in domain.CityUpdate) (*domain.City, error)
	Delete(ctx context.Context, id int64) error
}

// Service provides list, edit and delete operations on stored entities.
// Creation goes through the importer so that duplicate checks always apply.
type Service struct {
	log        *slog.Logger
	continents continentRepo
	countries  countryRepo
	cities     cityRepo
}

// NewService creates a new catalog service.
func NewService(logger *slog.Logger, continents continentRepo, countries countryRepo, cities cityRepo) *Service {
	return &Service{
		log:        logger.With("service", "catalog"),
		continents: continents,
		countries:  countries,
		cities:     cities,
	}
}
