package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/heartmarshall/geo-explorer/internal/domain"
	"github.com/heartmarshall/geo-explorer/internal/provider"
	"github.com/heartmarshall/geo-explorer/internal/service/lookup"
)

// reservedSearchTerm collides with the /weather/now route and is never searched.
const reservedSearchTerm = "weather"

type lookupService interface {
	Search(ctx context.Context, term string) (*lookup.Result, error)
	Weather(ctx context.Context, lat, lon float64) (*provider.Weather, error)
}

// SearchHandler serves /api/search.
type SearchHandler struct {
	lookup lookupService
	log    *slog.Logger
}

// NewSearchHandler creates a SearchHandler.
func NewSearchHandler(lookup lookupService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		lookup: lookup,
		log:    logger.With("handler", "search"),
	}
}

// Register mounts the search routes on r.
func (h *SearchHandler) Register(r chi.Router) {
	r.Get("/weather/now", h.Weather)
	r.Get("/{term}", h.Search)
}

type regionResponse struct {
	Type string               `json:"type"`
	Data []externalCountryDTO `json:"data"`
	Name string               `json:"name"`
}

type placeResponse struct {
	Type    string      `json:"type"`
	Data    any         `json:"data"`
	Weather *weatherDTO `json:"weather"`
}

// Search classifies a term as region, country or city.
// GET /api/search/{term}
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	// chi matches on RawPath when it is set, leaving the param escaped.
	term := chi.URLParam(r, "term")
	if r.URL.RawPath != "" {
		if v, err := url.PathUnescape(term); err == nil {
			term = v
		}
	}
	term = strings.TrimSpace(term)
	if term == reservedSearchTerm {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if term == "" {
		writeError(w, http.StatusBadRequest, "search term is required")
		return
	}

	res, err := h.lookup.Search(r.Context(), term)
	if errors.Is(err, lookup.ErrNothingFound) {
		writeError(w, http.StatusNotFound, "nothing found for \""+term+"\"")
		return
	}
	if err != nil {
		writeServiceError(w, r, h.log, "search", err)
		return
	}

	switch res.Kind {
	case domain.SearchKindRegion:
		data := make([]externalCountryDTO, len(res.Region))
		for i := range res.Region {
			data[i] = toExternalCountryDTO(&res.Region[i])
		}
		writeJSON(w, http.StatusOK, regionResponse{Type: res.Kind.String(), Data: data, Name: term})
	case domain.SearchKindCountry:
		writeJSON(w, http.StatusOK, placeResponse{
			Type:    res.Kind.String(),
			Data:    toExternalCountryDTO(res.Country),
			Weather: toWeatherDTO(res.Weather),
		})
	default:
		writeJSON(w, http.StatusOK, placeResponse{
			Type:    res.Kind.String(),
			Data:    toExternalCityDTO(res.City),
			Weather: toWeatherDTO(res.Weather),
		})
	}
}

// Weather returns current conditions at a coordinate.
// GET /api/search/weather/now?lat=-22.9&lon=-43.1
func (h *SearchHandler) Weather(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	latRaw, lonRaw := q.Get("lat"), q.Get("lon")
	if latRaw == "" || lonRaw == "" {
		writeError(w, http.StatusBadRequest, "lat and lon are required")
		return
	}

	lat, errLat := strconv.ParseFloat(latRaw, 64)
	lon, errLon := strconv.ParseFloat(lonRaw, 64)
	if errLat != nil || errLon != nil {
		writeError(w, http.StatusBadRequest, "lat and lon must be numbers")
		return
	}

	weather, err := h.lookup.Weather(r.Context(), lat, lon)
	if err != nil {
		writeServiceError(w, r, h.log, "weather", err)
		return
	}

	writeJSON(w, http.StatusOK, toWeatherDTO(weather))
}
