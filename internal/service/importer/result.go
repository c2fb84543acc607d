package importer

import "github.com/heartmarshall/geo-explorer/internal/domain"

// CountryResult is the outcome of a successful country import.
type CountryResult struct {
	Country *domain.Country
	// ContinentAutoCreated reports that the owning continent did not exist and
	// was created with the placeholder description.
	ContinentAutoCreated bool
	ContinentName        string
}

// CityResult is the outcome of a successful city import.
type CityResult struct {
	City    *domain.City
	Country *domain.Country
	// CountryAutoCreated reports that the owning country was fetched from the
	// external gateway and inserted as part of this import.
	CountryAutoCreated   bool
	ContinentAutoCreated bool
	// ContinentName is set only when the continent was auto-created.
	ContinentName string
}

// ContinentInput is an add-continent request.
type ContinentInput struct {
	Name        string
	Description string
}
