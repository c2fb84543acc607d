package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/heartmarshall/geo-explorer/internal/domain"
	"github.com/heartmarshall/geo-explorer/internal/provider"
	"github.com/heartmarshall/geo-explorer/internal/service/catalog"
	"github.com/heartmarshall/geo-explorer/internal/service/importer"
)

type catalogService interface {
	ListContinents(ctx context.Context) ([]domain.Continent, error)
	GetContinent(ctx context.Context, id int64) (*domain.Continent, error)
	UpdateContinent(ctx context.Context, input catalog.UpdateContinentInput) (*domain.Continent, error)
	DeleteContinent(ctx context.Context, id int64) error

	ListCountries(ctx context.Context, continentID *int64) ([]domain.Country, error)
	GetCountry(ctx context.Context, id int64) (*domain.Country, error)
	UpdateCountry(ctx context.Context, input catalog.UpdateCountryInput) (*domain.Country, error)
	DeleteCountry(ctx context.Context, id int64) error

	ListCities(ctx context.Context, countryID *int64) ([]domain.City, error)
	GetCity(ctx context.Context, id int64) (*domain.City, error)
	UpdateCity(ctx context.Context, input catalog.UpdateCityInput) (*domain.City, error)
	DeleteCity(ctx context.Context, id int64) error
}

type importService interface {
	AddContinent(ctx context.Context, in importer.ContinentInput) (*domain.Continent, error)
	AddCountry(ctx context.Context, in provider.Country) (*importer.CountryResult, error)
	AddCity(ctx context.Context, in provider.City) (*importer.CityResult, error)
}

// LocalHandler serves /api/local: the stored catalog and the import endpoints.
type LocalHandler struct {
	catalog  catalogService
	importer importService
	log      *slog.Logger
}

// NewLocalHandler creates a LocalHandler.
func NewLocalHandler(catalog catalogService, importer importService, logger *slog.Logger) *LocalHandler {
	return &LocalHandler{
		catalog:  catalog,
		importer: importer,
		log:      logger.With("handler", "local"),
	}
}

// Register mounts the local routes on r.
func (h *LocalHandler) Register(r chi.Router) {
	r.Route("/continents", func(r chi.Router) {
		r.Get("/", h.ListContinents)
		r.Post("/", h.CreateContinent)
		r.Get("/{id}", h.GetContinent)
		r.Put("/{id}", h.UpdateContinent)
		r.Delete("/{id}", h.DeleteContinent)
	})
	r.Route("/countries", func(r chi.Router) {
		r.Get("/", h.ListCountries)
		r.Get("/{id}", h.GetCountry)
		r.Put("/{id}", h.UpdateCountry)
		r.Delete("/{id}", h.DeleteCountry)
	})
	r.Route("/cities", func(r chi.Router) {
		r.Get("/", h.ListCities)
		r.Get("/{id}", h.GetCity)
		r.Put("/{id}", h.UpdateCity)
		r.Delete("/{id}", h.DeleteCity)
	})

	r.Post("/add-continent", h.AddContinent)
	r.Post("/add-country", h.AddCountry)
	r.Post("/add-city", h.AddCity)
}

// ---------------------------------------------------------------------------
// Continents
// ---------------------------------------------------------------------------

type continentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListContinents returns all continents with their country counts.
// GET /api/local/continents
func (h *LocalHandler) ListContinents(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.ListContinents(r.Context())
	if err != nil {
		writeServiceError(w, r, h.log, "list continents", err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(list, toContinentDTO))
}

// GetContinent returns one continent.
// GET /api/local/continents/{id}
func (h *LocalHandler) GetContinent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, h.log, "get continent", err)
		return
	}
	c, err := h.catalog.GetContinent(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.log, "get continent", err)
		return
	}
	writeJSON(w, http.StatusOK, toContinentDTO(c))
}

// CreateContinent creates a continent entered by hand. Same duplicate rule as add-continent.
// POST /api/local/continents
func (h *LocalHandler) CreateContinent(w http.ResponseWriter, r *http.Request) {
	var req continentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, "create continent", err)
		return
	}
	h.addContinent(w, r, importer.ContinentInput{Name: req.Name, Description: req.Description})
}

// UpdateContinent replaces a continent's name and description.
// PUT /api/local/continents/{id}
func (h *LocalHandler) UpdateContinent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, h.log, "update continent", err)
		return
	}
	var req continentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, "update continent", err)
		return
	}

	c, err := h.catalog.UpdateContinent(r.Context(), catalog.UpdateContinentInput{
		ID: id, Name: req.Name, Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, r, h.log, "update continent", err)
		return
	}
	writeJSON(w, http.StatusOK, toContinentDTO(c))
}

// DeleteContinent removes a continent and everything under it.
// DELETE /api/local/continents/{id}
func (h *LocalHandler) DeleteContinent(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, "delete continent", h.catalog.DeleteContinent)
}

// ---------------------------------------------------------------------------
// Countries
// ---------------------------------------------------------------------------

type countryRequest struct {
	Name             string     `json:"name"`
	Population       population `json:"population"`
	OfficialLanguage string     `json:"officialLanguage"`
	Currency         string     `json:"currency"`
	ContinentID      int64      `json:"continentId"`
}

// ListCountries returns countries with their continent.
// GET /api/local/countries?continentId=
func (h *LocalHandler) ListCountries(w http.ResponseWriter, r *http.Request) {
	continentID, err := queryID(r, "continentId")
	if err != nil {
		writeServiceError(w, r, h.log, "list countries", err)
		return
	}
	list, err := h.catalog.ListCountries(r.Context(), continentID)
	if err != nil {
		writeServiceError(w, r, h.log, "list countries", err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(list, toCountryDTO))
}

// GetCountry returns one country.
// GET /api/local/countries/{id}
func (h *LocalHandler) GetCountry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, h.log, "get country", err)
		return
	}
	c, err := h.catalog.GetCountry(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.log, "get country", err)
		return
	}
	writeJSON(w, http.StatusOK, toCountryDTO(c))
}

// UpdateCountry replaces a country's editable fields.
// PUT /api/local/countries/{id}
func (h *LocalHandler) UpdateCountry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, h.log, "update country", err)
		return
	}
	var req countryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, "update country", err)
		return
	}
	pop, err := parsePopulation(req.Population)
	if err != nil {
		writeServiceError(w, r, h.log, "update country", err)
		return
	}

	c, err := h.catalog.UpdateCountry(r.Context(), catalog.UpdateCountryInput{
		ID:               id,
		Name:             req.Name,
		Population:       pop,
		OfficialLanguage: req.OfficialLanguage,
		Currency:         req.Currency,
		ContinentID:      req.ContinentID,
	})
	if err != nil {
		writeServiceError(w, r, h.log, "update country", err)
		return
	}
	writeJSON(w, http.StatusOK, toCountryDTO(c))
}

// DeleteCountry removes a country and its cities.
// DELETE /api/local/countries/{id}
func (h *LocalHandler) DeleteCountry(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, "delete country", h.catalog.DeleteCountry)
}

// ---------------------------------------------------------------------------
// Cities
// ---------------------------------------------------------------------------

type cityRequest struct {
	Name       string     `json:"name"`
	Population population `json:"population"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	CountryID  int64      `json:"countryId"`
}

// ListCities returns cities with their country.
// GET /api/local/cities?countryId=
func (h *LocalHandler) ListCities(w http.ResponseWriter, r *http.Request) {
	countryID, err := queryID(r, "countryId")
	if err != nil {
		writeServiceError(w, r, h.log, "list cities", err)
		return
	}
	list, err := h.catalog.ListCities(r.Context(), countryID)
	if err != nil {
		writeServiceError(w, r, h.log, "list cities", err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(list, toCityDTO))
}

// GetCity returns one city.
// GET /api/local/cities/{id}
func (h *LocalHandler) GetCity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, h.log, "get city", err)
		return
	}
	c, err := h.catalog.GetCity(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.log, "get city", err)
		return
	}
	writeJSON(w, http.StatusOK, toCityDTO(c))
}

// UpdateCity replaces a city's editable fields.
// PUT /api/local/cities/{id}
func (h *LocalHandler) UpdateCity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, h.log, "update city", err)
		return
	}
	var req cityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, "update city", err)
		return
	}
	pop, err := parsePopulation(req.Population)
	if err != nil {
		writeServiceError(w, r, h.log, "update city", err)
		return
	}

	c, err := h.catalog.UpdateCity(r.Context(), catalog.UpdateCityInput{
		ID:         id,
		Name:       req.Name,
		Population: pop,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		CountryID:  req.CountryID,
	})
	if err != nil {
		writeServiceError(w, r, h.log, "update city", err)
		return
	}
	writeJSON(w, http.StatusOK, toCityDTO(c))
}

// DeleteCity removes a city.
// DELETE /api/local/cities/{id}
func (h *LocalHandler) DeleteCity(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, "delete city", h.catalog.DeleteCity)
}

// ---------------------------------------------------------------------------
// Imports
// ---------------------------------------------------------------------------

type addContinentRequest struct {
	RegionName  string `json:"regionName"`
	Description string `json:"description"`
}

// AddContinent stores a region found by search as a continent.
// POST /api/local/add-continent
func (h *LocalHandler) AddContinent(w http.ResponseWriter, r *http.Request) {
	var req addContinentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, "add continent", err)
		return
	}
	h.addContinent(w, r, importer.ContinentInput{Name: req.RegionName, Description: req.Description})
}

func (h *LocalHandler) addContinent(w http.ResponseWriter, r *http.Request, in importer.ContinentInput) {
	c, err := h.importer.AddContinent(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, h.log, "add continent", err)
		return
	}
	writeJSON(w, http.StatusCreated, toContinentDTO(c))
}

// AddCountry stores a country found by search, creating its continent if needed.
// POST /api/local/add-country
func (h *LocalHandler) AddCountry(w http.ResponseWriter, r *http.Request) {
	var req externalCountryDTO
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, "add country", err)
		return
	}
	in, err := req.toProviderCountry()
	if err != nil {
		writeServiceError(w, r, h.log, "add country", err)
		return
	}

	res, err := h.importer.AddCountry(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, h.log, "add country", err)
		return
	}

	writeJSON(w, http.StatusCreated, importedCountryDTO{
		countryDTO:           toCountryDTO(res.Country),
		ContinentAutoCreated: res.ContinentAutoCreated,
		ContinentName:        res.ContinentName,
	})
}

// AddCity stores a city found by search, cascading country and continent creation.
// POST /api/local/add-city
func (h *LocalHandler) AddCity(w http.ResponseWriter, r *http.Request) {
	var req externalCityDTO
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, "add city", err)
		return
	}
	in, err := req.toProviderCity()
	if err != nil {
		writeServiceError(w, r, h.log, "add city", err)
		return
	}

	res, err := h.importer.AddCity(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, h.log, "add city", err)
		return
	}

	writeJSON(w, http.StatusCreated, importedCityDTO{
		cityDTO:              toCityDTO(res.City),
		CountryAutoCreated:   res.CountryAutoCreated,
		ContinentAutoCreated: res.ContinentAutoCreated,
		ContinentName:        res.ContinentName,
	})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (h *LocalHandler) delete(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, int64) error) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	if err := fn(r.Context(), id); err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
