package domain

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Resolved coordinate and display name for an address or place.
// Produced by a geocoder and consumed once; never persisted by the proxy.
type GeocodeResult struct {
	Coordinates
	Label string
}

// The business the directions start from.
type Company struct {
	Name    string
	Address string
}

// Geocoded company location, cached for the process lifetime.
type CompanyCoords struct {
	Coordinates
	Name string
}

// NormalizeQuery collapses whitespace runs and composes Hangul into NFC so that
// decomposed input (e.g. from macOS clients) matches precomposed keywords.
func NormalizeQuery(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}
