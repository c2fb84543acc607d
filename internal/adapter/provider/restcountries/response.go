package restcountries

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/heartmarshall/geo-explorer/internal/provider"
)

// apiCountry is the subset of a REST Countries v3.1 record the gateway uses.
// Currency and language maps keep upstream key order so "first listed" is stable.
type apiCountry struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	Capital    []string                                          `json:"capital"`
	Region     string                                            `json:"region"`
	CCA2       string                                            `json:"cca2"`
	Population json.Number                                       `json:"population"`
	LatLng     []float64                                         `json:"latlng"`
	Currencies *orderedmap.OrderedMap[string, provider.Currency] `json:"currencies"`
	Languages  *orderedmap.OrderedMap[string, string]            `json:"languages"`
}
