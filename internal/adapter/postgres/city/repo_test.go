package city_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/heartmarshall/geo-explorer/internal/adapter/postgres/city"
	"github.com/heartmarshall/geo-explorer/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/geo-explorer/internal/domain"
)

func TestRepo_CreateAndFind(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := city.New(pool)
	ctx := context.Background()

	ct := testhelper.SeedContinent(t, pool)
	co := testhelper.SeedCountry(t, pool, ct.ID)
	lat, lon := testhelper.UniqueCoordinate()

	created, err := repo.Create(ctx, domain.NewCity{
		Name:       "Niterói " + testhelper.UniqueSuffix(),
		Population: big.NewInt(515317),
		Latitude:   lat,
		Longitude:  lon,
		CountryID:  co.ID,
	})
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	byName, err := repo.FindByNameAndCountry(ctx, created.Name, co.ID)
	if err != nil {
		t.Fatalf("FindByNameAndCountry: unexpected error: %v", err)
	}
	if byName.ID != created.ID {
		t.Errorf("FindByNameAndCountry: id = %d, want %d", byName.ID, created.ID)
	}

	byCoord, err := repo.FindByCoordinates(ctx, lat, lon)
	if err != nil {
		t.Fatalf("FindByCoordinates: unexpected error: %v", err)
	}
	if byCoord.ID != created.ID || byCoord.Latitude != lat || byCoord.Longitude != lon {
		t.Errorf("FindByCoordinates: got %+v", byCoord)
	}
	if byCoord.Population.Int64() != 515317 {
		t.Errorf("population = %s, want 515317", byCoord.Population)
	}
}

func TestRepo_FindByNameAndCountry_OtherCountry(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := city.New(pool)

	ct := testhelper.SeedContinent(t, pool)
	co := testhelper.SeedCountry(t, pool, ct.ID)
	other := testhelper.SeedCountry(t, pool, ct.ID)
	c := testhelper.SeedCity(t, pool, co.ID)

	_, err := repo.FindByNameAndCountry(context.Background(), c.Name, other.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("FindByNameAndCountry in other country: got %v, want ErrNotFound", err)
	}
}

func TestRepo_Create_Conflicts(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := city.New(pool)
	ctx := context.Background()

	ct := testhelper.SeedContinent(t, pool)
	co := testhelper.SeedCountry(t, pool, ct.ID)
	existing := testhelper.SeedCity(t, pool, co.ID)

	lat, lon := testhelper.UniqueCoordinate()
	tests := []struct {
		name    string
		in      domain.NewCity
		wantErr error
	}{
		{"same name and country", domain.NewCity{Name: existing.Name, Latitude: lat, Longitude: lon, CountryID: co.ID}, domain.ErrAlreadyExists},
		{"same coordinates", domain.NewCity{Name: "Other " + testhelper.UniqueSuffix(), Latitude: existing.Latitude, Longitude: existing.Longitude, CountryID: co.ID}, domain.ErrAlreadyExists},
		{"missing country", domain.NewCity{Name: "Orphan", Latitude: lat, Longitude: lon, CountryID: -1}, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := repo.Create(ctx, tt.in); !errors.Is(err, tt.wantErr) {
				t.Errorf("Create: got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRepo_List_FilterByCountry(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := city.New(pool)

	ct := testhelper.SeedContinent(t, pool)
	co := testhelper.SeedCountry(t, pool, ct.ID)
	other := testhelper.SeedCountry(t, pool, ct.ID)
	a := testhelper.SeedCity(t, pool, co.ID)
	b := testhelper.SeedCity(t, pool, co.ID)
	testhelper.SeedCity(t, pool, other.ID)

	list, err := repo.List(context.Background(), &co.ID)
	if err != nil {
		t.Fatalf("List: unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List: len = %d, want 2", len(list))
	}

	ids := map[int64]bool{list[0].ID: true, list[1].ID: true}
	if !ids[a.ID] || !ids[b.ID] {
		t.Errorf("List: got ids %v, want %d and %d", ids, a.ID, b.ID)
	}
	for _, c := range list {
		if c.Country == nil || c.Country.ID != co.ID || c.Country.Name != co.Name {
			t.Errorf("List: country not attached: %+v", c.Country)
		}
	}
}

func TestRepo_UpdateAndDelete(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := city.New(pool)
	ctx := context.Background()

	ct := testhelper.SeedContinent(t, pool)
	co := testhelper.SeedCountry(t, pool, ct.ID)
	c := testhelper.SeedCity(t, pool, co.ID)
	lat, lon := testhelper.UniqueCoordinate()

	got, err := repo.Update(ctx, c.ID, domain.CityUpdate{
		Name:       c.Name + " Velha",
		Population: big.NewInt(7),
		Latitude:   lat,
		Longitude:  lon,
		CountryID:  co.ID,
	})
	if err != nil {
		t.Fatalf("Update: unexpected error: %v", err)
	}
	if got.Latitude != lat || got.Population.Int64() != 7 {
		t.Errorf("Update: got %+v", got)
	}

	if err := repo.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete: unexpected error: %v", err)
	}
	if _, err := repo.GetByID(ctx, c.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetByID after delete: got %v, want ErrNotFound", err)
	}
}
