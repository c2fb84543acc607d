package importer

import (
	"fmt"

	"github.com/heartmarshall/geo-explorer/internal/domain"
	"github.com/heartmarshall/geo-explorer/internal/service/resolver"
)

// ErrCountryNotFound indicates that a city's country could be resolved neither
// locally nor through the external gateway.
var ErrCountryNotFound = fmt.Errorf("country not found externally: %w", domain.ErrNotFound)

// CountryNotFoundError names both supplied country identifiers so the operator
// can tell which one failed.
type CountryNotFoundError struct {
	Country string
	Code    string
}

func (e *CountryNotFoundError) Error() string {
	return fmt.Sprintf("country %q (code %q) not found externally", e.Country, e.Code)
}

func (e *CountryNotFoundError) Unwrap() error { return ErrCountryNotFound }

// ancestorRaceError signals, inside an atomic import, that an ancestor insert
// collided with a concurrent one.
type ancestorRaceError struct {
	kind domain.EntityKind
	err  error
}

func (e *ancestorRaceError) Error() string {
	return fmt.Sprintf("%s created concurrently: %v", e.kind, e.err)
}

func (e *ancestorRaceError) Unwrap() error { return e.err }

// finalRaceError signals that the final insert hit a unique constraint.
// It is resolved into a DuplicateError once outside any transaction.
type finalRaceError struct {
	kind      domain.EntityKind
	candidate resolver.Candidate
	err       error
}

func (e *finalRaceError) Error() string {
	return fmt.Sprintf("%s insert conflict: %v", e.kind, e.err)
}

func (e *finalRaceError) Unwrap() error { return e.err }
