package domain

import (
	"strings"
)

// NotAvailable is stored in place of a country's currency or language label
// when the upstream record lists none.
const NotAvailable = "N/A"

// NormalizeCountryName trims surrounding whitespace. Country names are matched
// exactly after trimming, so the same normalization applies on insert and lookup.
func NormalizeCountryName(name string) string {
	return strings.TrimSpace(name)
}

// NormalizeCountryCode trims whitespace and upper-cases a two-letter country code.
func NormalizeCountryCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
