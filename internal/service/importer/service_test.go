package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/heartmarshall/geo-explorer/internal/domain"
	"github.com/heartmarshall/geo-explorer/internal/observability"
	"github.com/heartmarshall/geo-explorer/internal/provider"
	"github.com/heartmarshall/geo-explorer/internal/service/resolver"
)

// ---------------------------------------------------------------------------
// In-memory store (implements every repo interface the importer and resolver use)
// ---------------------------------------------------------------------------

type memStore struct {
	nextID     int64
	continents []*domain.Continent
	countries  []*domain.Country
	cities     []*domain.City

	// beforeCreate runs before each insert; a non-nil error aborts it.
	beforeCreate func(kind domain.EntityKind) error
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) hook(kind domain.EntityKind) error {
	if s.beforeCreate == nil {
		return nil
	}
	return s.beforeCreate(kind)
}

type memContinents struct{ s *memStore }

func (r memContinents) FindByName(_ context.Context, name string) (*domain.Continent, error) {
	for _, c := range r.s.continents {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memContinents) Create(_ context.Context, in domain.NewContinent) (*domain.Continent, error) {
	if err := r.s.hook(domain.KindContinent); err != nil {
		return nil, err
	}
	for _, c := range r.s.continents {
		if c.Name == in.Name {
			return nil, domain.ErrAlreadyExists
		}
	}
	c := &domain.Continent{ID: r.s.id(), Name: in.Name, Description: in.Description}
	r.s.continents = append(r.s.continents, c)
	return c, nil
}

type memCountries struct{ s *memStore }

func (r memCountries) FindByName(_ context.Context, name string) (*domain.Country, error) {
	name = domain.NormalizeCountryName(name)
	for _, c := range r.s.countries {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memCountries) FindByCode(_ context.Context, code string) (*domain.Country, error) {
	code = domain.NormalizeCountryCode(code)
	if code == "" {
		return nil, domain.ErrNotFound
	}
	for _, c := range r.s.countries {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memCountries) Create(_ context.Context, in domain.NewCountry) (*domain.Country, error) {
	if err := r.s.hook(domain.KindCountry); err != nil {
		return nil, err
	}
	for _, c := range r.s.countries {
		if c.Name == in.Name || (in.Code != "" && c.Code == in.Code) {
			return nil, domain.ErrAlreadyExists
		}
	}
	c := &domain.Country{
		ID: r.s.id(), Name: in.Name, Code: in.Code, Population: in.Population,
		OfficialLanguage: in.OfficialLanguage, Currency: in.Currency, ContinentID: in.ContinentID,
	}
	r.s.countries = append(r.s.countries, c)
	return c, nil
}

type memCities struct{ s *memStore }

func (r memCities) FindByNameAndCountry(_ context.Context, name string, countryID int64) (*domain.City, error) {
	for _, c := range r.s.cities {
		if c.Name == name && c.CountryID == countryID {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memCities) FindByCoordinates(_ context.Context, lat, lon float64) (*domain.City, error) {
	for _, c := range r.s.cities {
		if c.Latitude == lat && c.Longitude == lon {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memCities) Create(_ context.Context, in domain.NewCity) (*domain.City, error) {
	if err := r.s.hook(domain.KindCity); err != nil {
		return nil, err
	}
	c := &domain.City{
		ID: r.s.id(), Name: in.Name, Population: in.Population,
		Latitude: in.Latitude, Longitude: in.Longitude, CountryID: in.CountryID,
	}
	r.s.cities = append(r.s.cities, c)
	return c, nil
}

// ---------------------------------------------------------------------------
// Manual mocks (moq-style with func fields)
// ---------------------------------------------------------------------------

type mockGateway struct {
	FindCountryByNameFunc func(ctx context.Context, name string) *provider.Country
	FindCountryByCodeFunc func(ctx context.Context, code string) *provider.Country

	byNameCalls []string
	byCodeCalls []string
}

func (m *mockGateway) FindCountryByName(ctx context.Context, name string) *provider.Country {
	m.byNameCalls = append(m.byNameCalls, name)
	if m.FindCountryByNameFunc == nil {
		return nil
	}
	return m.FindCountryByNameFunc(ctx, name)
}

func (m *mockGateway) FindCountryByCode(ctx context.Context, code string) *provider.Country {
	m.byCodeCalls = append(m.byCodeCalls, code)
	if m.FindCountryByCodeFunc == nil {
		return nil
	}
	return m.FindCountryByCodeFunc(ctx, code)
}

// mockTx snapshots the store and restores it when fn fails.
type mockTx struct {
	store *memStore
	calls int
}

func (m *mockTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	snapshot := *m.store
	snapshot.continents = append([]*domain.Continent(nil), m.store.continents...)
	snapshot.countries = append([]*domain.Country(nil), m.store.countries...)
	snapshot.cities = append([]*domain.City(nil), m.store.cities...)

	if err := fn(ctx); err != nil {
		hook := m.store.beforeCreate
		*m.store = snapshot
		m.store.beforeCreate = hook
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type fixture struct {
	svc     *Service
	store   *memStore
	gateway *mockGateway
	tx      *mockTx
	metrics *observability.Metrics
}

func newFixture(t *testing.T, atomic bool) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := &memStore{}
	continents, countries, cities := memContinents{store}, memCountries{store}, memCities{store}
	gw := &mockGateway{}
	tx := &mockTx{store: store}
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	svc := NewService(
		logger,
		resolver.New(logger, continents, countries, cities),
		continents, countries, cities,
		gw, tx, metrics,
		Options{DefaultDescription: "Descrição não especificada", AtomicCascade: atomic},
	)
	return &fixture{svc: svc, store: store, gateway: gw, tx: tx, metrics: metrics}
}

func (f *fixture) seedContinent(name string) *domain.Continent {
	c, _ := memContinents{f.store}.Create(context.Background(), domain.NewContinent{Name: name, Description: "seeded"})
	return c
}

func (f *fixture) seedCountry(name, code string, continentID int64) *domain.Country {
	c, _ := memCountries{f.store}.Create(context.Background(), domain.NewCountry{
		Name: name, Code: code, Population: big.NewInt(1), ContinentID: continentID,
	})
	return c
}

func (f *fixture) autoCreated(kind domain.EntityKind) float64 {
	if kind == domain.KindContinent {
		return testutil.ToFloat64(f.metrics.ContinentsAutoCreated)
	}
	return testutil.ToFloat64(f.metrics.CountriesAutoCreated)
}

func (f *fixture) imports(kind domain.EntityKind, outcome string) float64 {
	return testutil.ToFloat64(f.metrics.Imports.WithLabelValues(kind.String(), outcome))
}

func externalCountry(name, code, region string) provider.Country {
	currencies := orderedmap.New[string, provider.Currency]()
	currencies.Set("XXX", provider.Currency{Name: name + " dollar", Symbol: "$"})
	languages := orderedmap.New[string, string]()
	languages.Set("xx", name+"ish")

	return provider.Country{
		Name:       name,
		Region:     region,
		Code:       code,
		Population: big.NewInt(1_000_000),
		LatLng:     []float64{10, 20},
		Currencies: currencies,
		Languages:  languages,
	}
}

// ---------------------------------------------------------------------------
// AddContinent
// ---------------------------------------------------------------------------

func TestAddContinent_Success_DefaultDescription(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)

	got, err := f.svc.AddContinent(context.Background(), ContinentInput{Name: "Oceania"})

	require.NoError(t, err)
	assert.Equal(t, "Oceania", got.Name)
	assert.Equal(t, "Descrição não especificada", got.Description)
	assert.Equal(t, float64(1), f.imports(domain.KindContinent, observability.ImportCreated))
}

func TestAddContinent_KeepsDescription(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)

	got, err := f.svc.AddContinent(context.Background(), ContinentInput{Name: "Asia", Description: "Largest"})

	require.NoError(t, err)
	assert.Equal(t, "Largest", got.Description)
}

func TestAddContinent_Duplicate(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	existing := f.seedContinent("Europe")

	_, err := f.svc.AddContinent(context.Background(), ContinentInput{Name: "Europe"})

	var dup *domain.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, domain.KindContinent, dup.Kind)
	assert.Equal(t, domain.KeyName, dup.Key)
	assert.Same(t, existing, dup.Existing)
	assert.Len(t, f.store.continents, 1)
	assert.Equal(t, float64(1), f.imports(domain.KindContinent, observability.ImportDuplicate))
}

func TestAddContinent_EmptyName(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)

	_, err := f.svc.AddContinent(context.Background(), ContinentInput{Name: "  "})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, f.store.continents)
}

func TestAddContinent_LostRaceReportsWinner(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)

	var winner *domain.Continent
	f.store.beforeCreate = func(domain.EntityKind) error {
		f.store.beforeCreate = nil
		winner = f.seedContinent("Africa")
		return domain.ErrAlreadyExists
	}

	_, err := f.svc.AddContinent(context.Background(), ContinentInput{Name: "Africa"})

	var dup *domain.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Same(t, winner, dup.Existing)
}

// ---------------------------------------------------------------------------
// AddCountry
// ---------------------------------------------------------------------------

func TestAddCountry_AutoCreatesContinent(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)

	res, err := f.svc.AddCountry(context.Background(), externalCountry("Brazil", "br", "Americas"))

	require.NoError(t, err)
	assert.True(t, res.ContinentAutoCreated)
	assert.Equal(t, "Americas", res.ContinentName)
	assert.Equal(t, "BR", res.Country.Code)
	assert.Equal(t, "Brazil dollar", res.Country.Currency)
	assert.Equal(t, "Brazilish", res.Country.OfficialLanguage)
	assert.Equal(t, "1000000", res.Country.Population.String())

	require.Len(t, f.store.continents, 1)
	assert.Equal(t, "Descrição não especificada", f.store.continents[0].Description)
	assert.Equal(t, f.store.continents[0].ID, res.Country.ContinentID)
	assert.Equal(t, float64(1), f.autoCreated(domain.KindContinent))
}

func TestAddCountry_ReusesContinent(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	europe := f.seedContinent("Europe")

	res, err := f.svc.AddCountry(context.Background(), externalCountry("Portugal", "PT", "Europe"))

	require.NoError(t, err)
	assert.False(t, res.ContinentAutoCreated)
	assert.Equal(t, "Europe", res.ContinentName)
	assert.Equal(t, europe.ID, res.Country.ContinentID)
	assert.Len(t, f.store.continents, 1)
	assert.Zero(t, f.autoCreated(domain.KindContinent))
}

func TestAddCountry_SecondCountryReusesAutoCreatedContinent(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)

	first, err := f.svc.AddCountry(context.Background(), externalCountry("Brazil", "BR", "Americas"))
	require.NoError(t, err)
	require.True(t, first.ContinentAutoCreated)

	second, err := f.svc.AddCountry(context.Background(), externalCountry("Chile", "CL", "Americas"))

	require.NoError(t, err)
	assert.False(t, second.ContinentAutoCreated)
	assert.Equal(t, "Americas", second.ContinentName)
	assert.Equal(t, first.Country.ContinentID, second.Country.ContinentID)
	assert.Len(t, f.store.continents, 1)
	assert.Equal(t, float64(1), f.autoCreated(domain.KindContinent))
}

func TestAddCountry_DuplicateByCode(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	americas := f.seedContinent("Americas")
	us := f.seedCountry("United States", "US", americas.ID)

	_, err := f.svc.AddCountry(context.Background(), externalCountry("EUA", "us", "Americas"))

	var dup *domain.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, domain.KeyCode, dup.Key)
	assert.Same(t, us, dup.Existing)
	assert.Len(t, f.store.countries, 1)
}

func TestAddCountry_DuplicateDoesNotCreateContinent(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	f.seedCountry("Chile", "CL", 999)

	_, err := f.svc.AddCountry(context.Background(), externalCountry("Chile", "CL", "Americas"))

	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.Empty(t, f.store.continents)
}

func TestAddCountry_MissingLabelsBecomeNotAvailable(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)

	in := provider.Country{Name: "Antarctica", Region: "Antarctic"}
	res, err := f.svc.AddCountry(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, domain.NotAvailable, res.Country.Currency)
	assert.Equal(t, domain.NotAvailable, res.Country.OfficialLanguage)
	assert.Equal(t, "0", res.Country.Population.String())
	assert.Equal(t, "", res.Country.Code)
}

func TestAddCountry_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   provider.Country
	}{
		{"no name", provider.Country{Region: "Europe"}},
		{"no region", provider.Country{Name: "France"}},
		{"negative population", provider.Country{Name: "France", Region: "Europe", Population: big.NewInt(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, false)

			_, err := f.svc.AddCountry(context.Background(), tt.in)

			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, f.store.continents)
			assert.Empty(t, f.store.countries)
		})
	}
}

func TestAddCountry_ContinentRace_NonAtomicReusesWinner(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)

	var winner *domain.Continent
	f.store.beforeCreate = func(kind domain.EntityKind) error {
		if kind != domain.KindContinent {
			return nil
		}
		f.store.beforeCreate = nil
		winner = f.seedContinent("Asia")
		return domain.ErrAlreadyExists
	}

	res, err := f.svc.AddCountry(context.Background(), externalCountry("Japan", "JP", "Asia"))

	require.NoError(t, err)
	assert.False(t, res.ContinentAutoCreated)
	assert.Equal(t, winner.ID, res.Country.ContinentID)
	assert.Zero(t, f.tx.calls)
}

func TestAddCountry_Atomic_RunsInTx(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)

	res, err := f.svc.AddCountry(context.Background(), externalCountry("Kenya", "KE", "Africa"))

	require.NoError(t, err)
	assert.True(t, res.ContinentAutoCreated)
	assert.Equal(t, 1, f.tx.calls)
}

func TestAddCountry_Atomic_ContinentRaceRetries(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)

	attempts := 0
	f.store.beforeCreate = func(kind domain.EntityKind) error {
		if kind == domain.KindContinent && attempts == 1 {
			return domain.ErrAlreadyExists
		}
		return nil
	}

	// A concurrent transaction commits the continent while the first attempt
	// is rolled back.
	winner := &domain.Continent{ID: 100, Name: "Africa"}
	f.svc.tx = txFunc(func(ctx context.Context, fn func(ctx context.Context) error) error {
		attempts++
		err := f.tx.RunInTx(ctx, fn)
		if attempts == 1 {
			f.store.continents = append(f.store.continents, winner)
		}
		return err
	})

	res, err := f.svc.AddCountry(context.Background(), externalCountry("Egypt", "EG", "Africa"))

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.False(t, res.ContinentAutoCreated, "result must reflect the successful attempt only")
	assert.Equal(t, winner.ID, res.Country.ContinentID)
	assert.Len(t, f.store.continents, 1)
	assert.Zero(t, f.autoCreated(domain.KindContinent))
}

type txFunc func(ctx context.Context, fn func(ctx context.Context) error) error

func (f txFunc) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error { return f(ctx, fn) }

// ---------------------------------------------------------------------------
// AddCity
// ---------------------------------------------------------------------------

func TestAddCity_CountryExistsLocally(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	europe := f.seedContinent("Europe")
	pt := f.seedCountry("Portugal", "PT", europe.ID)

	res, err := f.svc.AddCity(context.Background(), provider.City{
		Name: "Porto", Latitude: 41.14961, Longitude: -8.61099,
		Country: "Portugal", CountryCode: "PT", Population: big.NewInt(249633),
	})

	require.NoError(t, err)
	assert.Same(t, pt, res.Country)
	assert.False(t, res.CountryAutoCreated)
	assert.False(t, res.ContinentAutoCreated)
	assert.Empty(t, res.ContinentName)
	assert.Equal(t, pt.ID, res.City.CountryID)
	assert.Equal(t, "249633", res.City.Population.String())
	assert.Empty(t, f.gateway.byCodeCalls)
	assert.Empty(t, f.gateway.byNameCalls)
}

func TestAddCity_CountryMatchedByCodeLocally(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	americas := f.seedContinent("Americas")
	us := f.seedCountry("United States", "US", americas.ID)

	res, err := f.svc.AddCity(context.Background(), provider.City{
		Name: "Boston", Latitude: 42.36, Longitude: -71.06, Country: "Estados Unidos", CountryCode: "US",
	})

	require.NoError(t, err)
	assert.Same(t, us, res.Country)
}

func TestAddCity_FullCascade(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	f.gateway.FindCountryByCodeFunc = func(_ context.Context, code string) *provider.Country {
		assert.Equal(t, "JP", code)
		c := externalCountry("Japan", "JP", "Asia")
		return &c
	}

	res, err := f.svc.AddCity(context.Background(), provider.City{
		Name: "Osaka", Latitude: 34.69, Longitude: 135.50, Country: "Japão", CountryCode: "JP",
	})

	require.NoError(t, err)
	assert.True(t, res.CountryAutoCreated)
	assert.True(t, res.ContinentAutoCreated)
	assert.Equal(t, "Asia", res.ContinentName)
	assert.Equal(t, "Japan", res.Country.Name)
	assert.Len(t, f.store.continents, 1)
	assert.Len(t, f.store.countries, 1)
	assert.Len(t, f.store.cities, 1)
	assert.Empty(t, f.gateway.byNameCalls, "name lookup must not run after a code hit")
	assert.Equal(t, float64(1), f.autoCreated(domain.KindCountry))
	assert.Equal(t, float64(1), f.autoCreated(domain.KindContinent))
}

func TestAddCity_ContinentNameOnlyWhenAutoCreated(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	f.seedContinent("Asia")
	f.gateway.FindCountryByCodeFunc = func(context.Context, string) *provider.Country {
		c := externalCountry("Japan", "JP", "Asia")
		return &c
	}

	res, err := f.svc.AddCity(context.Background(), provider.City{
		Name: "Kyoto", Latitude: 35.01, Longitude: 135.76, CountryCode: "JP",
	})

	require.NoError(t, err)
	assert.True(t, res.CountryAutoCreated)
	assert.False(t, res.ContinentAutoCreated)
	assert.Empty(t, res.ContinentName)
}

func TestAddCity_CodeMissFallsBackToName(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	f.gateway.FindCountryByNameFunc = func(_ context.Context, name string) *provider.Country {
		assert.Equal(t, "Peru", name)
		c := externalCountry("Peru", "PE", "Americas")
		return &c
	}

	res, err := f.svc.AddCity(context.Background(), provider.City{
		Name: "Lima", Latitude: -12.04, Longitude: -77.03, Country: "Peru", CountryCode: "ZZ",
	})

	require.NoError(t, err)
	assert.Equal(t, "PE", res.Country.Code)
	assert.Equal(t, []string{"ZZ"}, f.gateway.byCodeCalls)
	assert.Equal(t, []string{"Peru"}, f.gateway.byNameCalls)
}

func TestAddCity_CodeOnly(t *testing.T) {
	t.Parallel()

	t.Run("code found", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, false)
		f.gateway.FindCountryByCodeFunc = func(context.Context, string) *provider.Country {
			c := externalCountry("Ghana", "GH", "Africa")
			return &c
		}

		res, err := f.svc.AddCity(context.Background(), provider.City{Name: "Accra", Latitude: 5.55, Longitude: -0.2, CountryCode: "GH"})

		require.NoError(t, err)
		assert.Equal(t, "Ghana", res.Country.Name)
		assert.Empty(t, f.gateway.byNameCalls)
	})

	t.Run("name only against a code-only gateway", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, false)
		f.gateway.FindCountryByCodeFunc = func(_ context.Context, code string) *provider.Country {
			if code != "US" {
				return nil
			}
			c := externalCountry("United States", "US", "Americas")
			return &c
		}

		_, err := f.svc.AddCity(context.Background(), provider.City{
			Name: "Boston", Latitude: 42.36, Longitude: -71.06, Country: "Estados Unidos",
		})

		var nf *CountryNotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "Estados Unidos", nf.Country)
		assert.Empty(t, nf.Code)
		assert.Empty(t, f.gateway.byCodeCalls)
		assert.Equal(t, []string{"Estados Unidos"}, f.gateway.byNameCalls)
		assert.Empty(t, f.store.continents)
		assert.Empty(t, f.store.countries)
		assert.Empty(t, f.store.cities)
	})

	t.Run("no identifiers", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, false)

		_, err := f.svc.AddCity(context.Background(), provider.City{Name: "Nowhere", Latitude: 1, Longitude: 1})

		var nf *CountryNotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Empty(t, f.gateway.byCodeCalls)
		assert.Empty(t, f.gateway.byNameCalls)
	})
}

func TestAddCity_CountryNotFound_NoWrites(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)

	_, err := f.svc.AddCity(context.Background(), provider.City{
		Name: "Atlantis City", Latitude: 0, Longitude: 0, Country: "Atlantis", CountryCode: "AT",
	})

	assert.ErrorIs(t, err, ErrCountryNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	var nf *CountryNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Atlantis", nf.Country)
	assert.Equal(t, "AT", nf.Code)
	assert.Empty(t, f.store.continents)
	assert.Empty(t, f.store.countries)
	assert.Empty(t, f.store.cities)
	assert.Equal(t, float64(1), f.imports(domain.KindCity, observability.ImportNotFound))
}

func TestAddCity_GatewayReturnsStoredCanonicalName(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	europe := f.seedContinent("Europe")
	de := f.seedCountry("Germany", "", europe.ID)
	f.gateway.FindCountryByNameFunc = func(context.Context, string) *provider.Country {
		c := externalCountry("Germany", "DE", "Europe")
		return &c
	}

	res, err := f.svc.AddCity(context.Background(), provider.City{
		Name: "Berlin", Latitude: 52.52, Longitude: 13.40, Country: "Alemanha",
	})

	require.NoError(t, err)
	assert.Same(t, de, res.Country)
	assert.False(t, res.CountryAutoCreated)
	assert.Len(t, f.store.countries, 1)
}

func TestAddCity_DuplicateByName(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	europe := f.seedContinent("Europe")
	pt := f.seedCountry("Portugal", "PT", europe.ID)
	existing, _ := memCities{f.store}.Create(context.Background(), domain.NewCity{Name: "Porto", CountryID: pt.ID, Latitude: 41.1, Longitude: -8.6})

	_, err := f.svc.AddCity(context.Background(), provider.City{
		Name: "Porto", Latitude: 41.2, Longitude: -8.7, CountryCode: "PT",
	})

	var dup *domain.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, domain.KeyNameInCountry, dup.Key)
	assert.Same(t, existing, dup.Existing)
	assert.Len(t, f.store.cities, 1)
}

func TestAddCity_DuplicateByCoordinates(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	europe := f.seedContinent("Europe")
	pt := f.seedCountry("Portugal", "PT", europe.ID)
	existing, _ := memCities{f.store}.Create(context.Background(), domain.NewCity{Name: "Oporto", CountryID: pt.ID, Latitude: 41.14961, Longitude: -8.61099})

	_, err := f.svc.AddCity(context.Background(), provider.City{
		Name: "Porto", Latitude: 41.14961, Longitude: -8.61099, CountryCode: "PT",
	})

	var dup *domain.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, domain.KeyCoordinates, dup.Key)
	assert.Same(t, existing, dup.Existing)
}

func TestAddCity_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   provider.City
	}{
		{"no name", provider.City{Latitude: 1, Longitude: 1}},
		{"latitude out of range", provider.City{Name: "X", Latitude: 91}},
		{"longitude out of range", provider.City{Name: "X", Longitude: -181}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, false)

			_, err := f.svc.AddCity(context.Background(), tt.in)

			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, f.gateway.byCodeCalls)
		})
	}
}

func TestAddCity_Atomic_FinalFailureRollsBackAncestors(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	f.gateway.FindCountryByCodeFunc = func(context.Context, string) *provider.Country {
		c := externalCountry("Fiji", "FJ", "Oceania")
		return &c
	}
	boom := errors.New("disk full")
	f.store.beforeCreate = func(kind domain.EntityKind) error {
		if kind == domain.KindCity {
			return boom
		}
		return nil
	}

	_, err := f.svc.AddCity(context.Background(), provider.City{Name: "Suva", Latitude: -18.14, Longitude: 178.44, CountryCode: "FJ"})

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, f.store.continents)
	assert.Empty(t, f.store.countries)
	assert.Equal(t, float64(1), f.imports(domain.KindCity, observability.ImportError))
}

func TestAddCity_NonAtomic_FinalFailureKeepsAncestors(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	f.gateway.FindCountryByCodeFunc = func(context.Context, string) *provider.Country {
		c := externalCountry("Fiji", "FJ", "Oceania")
		return &c
	}
	boom := errors.New("disk full")
	f.store.beforeCreate = func(kind domain.EntityKind) error {
		if kind == domain.KindCity {
			return boom
		}
		return nil
	}

	_, err := f.svc.AddCity(context.Background(), provider.City{Name: "Suva", Latitude: -18.14, Longitude: 178.44, CountryCode: "FJ"})

	assert.ErrorIs(t, err, boom)
	assert.Len(t, f.store.continents, 1)
	assert.Len(t, f.store.countries, 1)
}
