// Package gazetteer defines the name-keyed coordinate lookup built from
// external geographic datasets. Loading streams multi-million-line dumps;
// lookups serve the tagging passes and downstream statistics tooling.
package gazetteer

import (
	"context"

	"github.com/EurasianLatinArchive/ELA/pkg/ela/entity"
)

// Known dataset tags. Pleiades is the small curated gazetteer, GeoNames the
// large world dump.
const (
	SourcePleiades = "pleiades"
	SourceGeonames = "geonames"
)

// sourcePrecedence orders candidate entries: curated data first, then the
// world gazetteer, then anything else.
func sourcePrecedence(source string) int {
	switch source {
	case SourcePleiades:
		return 0
	case SourceGeonames:
		return 1
	}
	return 2
}

// Entry is one indexed (name, coordinate) tuple.
type Entry struct {
	PlaceID int64
	Name    string
	Lat     float64
	Lon     float64
	Source  string
}

// Record is one parsed row of a source dump before indexing. AltNames are
// indexed as additional lookup keys for the same point.
type Record struct {
	ID       int64
	Name     string
	AltNames []string
	Lat      float64
	Lon      float64
}

// RecordReader streams records from a source dump. Next returns io.EOF when
// the dump is exhausted. Implementations never hold the full dataset in
// memory and restart from the beginning of the file on retry.
type RecordReader interface {
	Next() (Record, error)
}

// Index is the persistent name-keyed coordinate lookup.
type Index interface {
	// Load replaces all prior entries of the given source with the streamed
	// records and returns the number of indexed entries. Re-loading a
	// source is idempotent: entries are replaced, never accumulated.
	Load(ctx context.Context, source string, records RecordReader) (int64, error)

	// Lookup returns every candidate for a name, curated source first and
	// insertion order within a source. A miss is an empty slice, not an
	// error.
	Lookup(ctx context.Context, name string) ([]Entry, error)

	// LookupID resolves one place by its source-assigned numeric id.
	LookupID(ctx context.Context, source string, id int64) (Entry, bool, error)

	// Count reports how many entries a source currently holds.
	Count(ctx context.Context, source string) (int64, error)

	Close() error
}

// Best applies the selection policy to a Lookup result: the first candidate
// under source precedence, insertion order breaking ties. Callers get a
// deterministic single geocode for a name.
func Best(entries []Entry) (Entry, bool) {
	if len(entries) == 0 {
		return Entry{}, false
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if sourcePrecedence(e.Source) < sourcePrecedence(best.Source) {
			best = e
		}
	}
	return best, true
}

// NormalizeName produces the lookup key for a place name, shared by loaders
// and callers.
func NormalizeName(name string) string {
	return entity.NormalizeVariant(name)
}
