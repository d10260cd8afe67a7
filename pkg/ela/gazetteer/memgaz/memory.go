// Package memgaz is an in-memory gazetteer.Index for tests.
package memgaz

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/EurasianLatinArchive/ELA/pkg/ela/gazetteer"
)

type indexed struct {
	entry gazetteer.Entry
	seq   int64
}

// Index is an in-memory implementation of gazetteer.Index.
type Index struct {
	mu      sync.RWMutex
	nextSeq int64
	byName  map[string][]indexed
	byID    map[string]map[int64]gazetteer.Entry
}

// New creates an empty in-memory index.
func New() *Index {
	return &Index{
		byName: make(map[string][]indexed),
		byID:   make(map[string]map[int64]gazetteer.Entry),
	}
}

// Close implements gazetteer.Index.
func (x *Index) Close() error { return nil }

// Load implements gazetteer.Index with replace-per-source semantics.
func (x *Index) Load(ctx context.Context, source string, records gazetteer.RecordReader) (int64, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	for norm, list := range x.byName {
		kept := list[:0]
		for _, it := range list {
			if it.entry.Source != source {
				kept = append(kept, it)
			}
		}
		if len(kept) == 0 {
			delete(x.byName, norm)
		} else {
			x.byName[norm] = kept
		}
	}
	delete(x.byID, source)
	x.byID[source] = make(map[int64]gazetteer.Entry)

	var inserted int64
	add := func(rec gazetteer.Record, name string) {
		norm := gazetteer.NormalizeName(name)
		if norm == "" {
			return
		}
		e := gazetteer.Entry{PlaceID: rec.ID, Name: name, Lat: rec.Lat, Lon: rec.Lon, Source: source}
		x.nextSeq++
		x.byName[norm] = append(x.byName[norm], indexed{entry: e, seq: x.nextSeq})
		if _, ok := x.byID[source][rec.ID]; !ok {
			x.byID[source][rec.ID] = e
		}
		inserted++
	}

	for {
		rec, err := records.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return inserted, err
		}
		add(rec, rec.Name)
		for _, alt := range rec.AltNames {
			add(rec, alt)
		}
	}
	return inserted, nil
}

// Lookup implements gazetteer.Index with the same precedence as the SQLite
// index: curated source first, then insertion order.
func (x *Index) Lookup(ctx context.Context, name string) ([]gazetteer.Entry, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	list := x.byName[gazetteer.NormalizeName(name)]
	if len(list) == 0 {
		return nil, nil
	}
	sorted := append([]indexed(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := precedence(sorted[i].entry.Source), precedence(sorted[j].entry.Source)
		if pi != pj {
			return pi < pj
		}
		return sorted[i].seq < sorted[j].seq
	})
	out := make([]gazetteer.Entry, len(sorted))
	for i, it := range sorted {
		out[i] = it.entry
	}
	return out, nil
}

// LookupID implements gazetteer.Index.
func (x *Index) LookupID(ctx context.Context, source string, id int64) (gazetteer.Entry, bool, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	e, ok := x.byID[source][id]
	return e, ok, nil
}

// Count implements gazetteer.Index.
func (x *Index) Count(ctx context.Context, source string) (int64, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	var n int64
	for _, list := range x.byName {
		for _, it := range list {
			if it.entry.Source == source {
				n++
			}
		}
	}
	return n, nil
}

func precedence(source string) int {
	switch source {
	case gazetteer.SourcePleiades:
		return 0
	case gazetteer.SourceGeonames:
		return 1
	}
	return 2
}
