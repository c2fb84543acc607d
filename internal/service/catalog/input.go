package catalog

import (
	"math/big"
	"strings"

	"github.com/heartmarshall/geo-explorer/internal/domain"
)

// UpdateContinentInput replaces the editable fields of a continent.
type UpdateContinentInput struct {
	ID          int64
	Name        string
	Description string
}

// Validate checks all fields and collects all errors.
func (i UpdateContinentInput) Validate() error {
	var errs []domain.FieldError

	if i.ID <= 0 {
		errs = append(errs, domain.FieldError{Field: "id", Message: "must be positive"})
	}
	if strings.TrimSpace(i.Name) == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// UpdateCountryInput replaces the editable fields of a country. The code is
// an identity key and cannot be changed.
type UpdateCountryInput struct {
	ID               int64
	Name             string
	Population       *big.Int
	OfficialLanguage string
	Currency         string
	ContinentID      int64
}

// Validate checks all fields and collects all errors.
func (i UpdateCountryInput) Validate() error {
	var errs []domain.FieldError

	if i.ID <= 0 {
		errs = append(errs, domain.FieldError{Field: "id", Message: "must be positive"})
	}
	if domain.NormalizeCountryName(i.Name) == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	}
	if i.Population != nil && i.Population.Sign() < 0 {
		errs = append(errs, domain.FieldError{Field: "population", Message: "must not be negative"})
	}
	if i.ContinentID <= 0 {
		errs = append(errs, domain.FieldError{Field: "continentId", Message: "required"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// UpdateCityInput replaces the editable fields of a city.
type UpdateCityInput struct {
	ID         int64
	Name       string
	Population *big.Int
	Latitude   float64
	Longitude  float64
	CountryID  int64
}

// Validate checks all fields and collects all errors.
func (i UpdateCityInput) Validate() error {
	var errs []domain.FieldError

	if i.ID <= 0 {
		errs = append(errs, domain.FieldError{Field: "id", Message: "must be positive"})
	}
	if strings.TrimSpace(i.Name) == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	}
	if i.Population != nil && i.Population.Sign() < 0 {
		errs = append(errs, domain.FieldError{Field: "population", Message: "must not be negative"})
	}
	if i.Latitude < -90 || i.Latitude > 90 {
		errs = append(errs, domain.FieldError{Field: "latitude", Message: "must be between -90 and 90"})
	}
	if i.Longitude < -180 || i.Longitude > 180 {
		errs = append(errs, domain.FieldError{Field: "longitude", Message: "must be between -180 and 180"})
	}
	if i.CountryID <= 0 {
		errs = append(errs, domain.FieldError{Field: "countryId", Message: "required"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func orZero(n *big.Int) *big.Int {
	if n == nil {
		return new(big.Int)
	}
	return n
}
