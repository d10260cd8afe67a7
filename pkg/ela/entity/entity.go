package entity

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Type identifies one of the XML-TEI name-bearing elements the toolkit
// operates on. All other markup is passed through untouched.
type Type string

const (
	PersName  Type = "persName"
	GeogName  Type = "geogName"
	PlaceName Type = "placeName"
)

// Order lists the entity types in replacement priority: person names may
// contain place names, and place names may contain geog names, so at equal
// span length the earlier type wins.
var Order = []Type{PersName, PlaceName, GeogName}

// AllTypes returns a fresh copy of the full type set in priority order.
func AllTypes() []Type {
	out := make([]Type, len(Order))
	copy(out, Order)
	return out
}

// ParseType validates a type name as read from CSV rows or CLI flags.
func ParseType(s string) (Type, bool) {
	switch Type(strings.TrimSpace(s)) {
	case PersName:
		return PersName, true
	case GeogName:
		return GeogName, true
	case PlaceName:
		return PlaceName, true
	}
	return "", false
}

// Rank returns the replacement priority of t (lower wins). Unknown types
// sort last.
func Rank(t Type) int {
	for i, o := range Order {
		if o == t {
			return i
		}
	}
	return len(Order)
}

// Geocode is a resolved coordinate pair with its source gazetteer tag.
type Geocode struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Source string  `json:"source"`
}

// Record is one canonical entity: the chosen canonical form plus every
// surface variant known to refer to it. Variants keep their original casing
// for display; matching uses NormalizeVariant keys.
type Record struct {
	ID        string   `json:"id"`
	Type      Type     `json:"type"`
	Canonical string   `json:"canonical"`
	Variants  []string `json:"variants"`
	Ref       string   `json:"ref,omitempty"`
	Geocode   *Geocode `json:"geocode,omitempty"`
}

var foldCaser = cases.Fold()

// NormalizeVariant produces the matching key for a surface string: runs of
// whitespace collapse to single spaces, the result is NFC-normalized and
// Unicode case-folded. Empty or whitespace-only input yields "".
func NormalizeVariant(s string) string {
	collapsed := strings.Join(strings.Fields(s), " ")
	if collapsed == "" {
		return ""
	}
	return foldCaser.String(norm.NFC.String(collapsed))
}
