// Package tag implements the production pass: occurrences of registered
// variants are rewritten to their canonical form, and place names carry
// resolved coordinates.
package tag

import (
	"context"
	"strconv"
	"strings"

	"github.com/EurasianLatinArchive/ELA/pkg/ela/entity"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/gazetteer"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/match"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/tei"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/variants"
)

// Tagger rewrites documents against a frozen registry. The registry is read
// only during a Rewrite; the pass never learns.
type Tagger struct {
	store *variants.Store
	gaz   gazetteer.Index
	types map[entity.Type]bool
}

// New creates a tagger restricted to the given entity types. An empty type
// list selects all types.
func New(store *variants.Store, gaz gazetteer.Index, types []entity.Type) *Tagger {
	if len(types) == 0 {
		types = entity.AllTypes()
	}
	selected := make(map[entity.Type]bool, len(types))
	for _, t := range types {
		selected[t] = true
	}
	return &Tagger{store: store, gaz: gaz, types: selected}
}

// Result reports what one Rewrite changed.
type Result struct {
	// Canonicalized counts existing elements whose content was replaced by
	// the canonical form.
	Canonicalized int
	// Tagged counts new elements inserted around untagged text occurrences.
	Tagged int
	// Geocoded counts emitted elements carrying coordinates.
	Geocoded int
}

// Rewrite produces the production rendition of a document. Elements of
// unselected types and all markup outside entity elements are reproduced
// byte for byte; the operation is deterministic, so rewriting the same
// document against the same registry twice yields identical bytes.
func (t *Tagger) Rewrite(ctx context.Context, doc *tei.Document) (*tei.Document, Result, error) {
	segs := tei.Lex(doc.Body)

	m := match.New()
	for _, rec := range t.store.Records() {
		if !t.types[rec.Type] {
			continue
		}
		for _, v := range rec.Variants {
			m.Add(rec.Type, v)
		}
	}

	res := Result{}
	geoCache := make(map[string]*entity.Geocode)

	var body strings.Builder
	for i := 0; i < len(segs); {
		seg := segs[i]
		if seg.Kind == tei.TextSeg {
			body.WriteString(t.tagText(ctx, seg.Raw, m, geoCache, &res))
			i++
			continue
		}
		typ, isEntity := entity.ParseType(seg.Name)
		if !isEntity || seg.Closing || seg.SelfClosing {
			body.WriteString(seg.Raw)
			i++
			continue
		}

		surface, next := tei.InnerText(segs, i)
		rec, known := t.store.Lookup(typ, surface)
		if !t.types[typ] || !known {
			// Unselected or unregistered element: reproduce it untouched.
			for ; i < next; i++ {
				body.WriteString(segs[i].Raw)
			}
			continue
		}
		t.writeElement(ctx, &body, rec, geoCache, &res)
		if rec.Canonical != strings.Join(strings.Fields(surface), " ") {
			res.Canonicalized++
		}
		i = next
	}

	out := &tei.Document{Path: doc.Path, Head: doc.Head, Body: body.String(), Tail: doc.Tail}
	return out, res, nil
}

// tagText rewrites matched variant occurrences inside one untagged text run,
// replacing the surface with the canonical form.
func (t *Tagger) tagText(ctx context.Context, text string, m *match.Matcher, geoCache map[string]*entity.Geocode, res *Result) string {
	spans := m.Find(text)
	if len(spans) == 0 {
		return text
	}

	var out strings.Builder
	last := 0
	for _, sp := range spans {
		// Resolve through the normalized key the matcher matched, not the
		// raw surface: the surface's separators may differ from the
		// registered variant's.
		rec, known := t.store.Lookup(sp.Type, sp.Key)
		if !known {
			continue
		}
		out.WriteString(text[last:sp.Start])
		t.writeElement(ctx, &out, rec, geoCache, res)
		res.Tagged++
		last = sp.End
	}
	out.WriteString(text[last:])
	return out.String()
}

// writeElement emits one canonical entity element, with coordinates when the
// record resolves against the gazetteer.
func (t *Tagger) writeElement(ctx context.Context, out *strings.Builder, rec entity.Record, geoCache map[string]*entity.Geocode, res *Result) {
	out.WriteByte('<')
	out.WriteString(string(rec.Type))
	if geo := t.geocode(ctx, rec, geoCache); geo != nil {
		out.WriteString(` geo-lat="`)
		out.WriteString(formatCoord(geo.Lat))
		out.WriteString(`" geo-lon="`)
		out.WriteString(formatCoord(geo.Lon))
		out.WriteString(`" geo-src="`)
		out.WriteString(geo.Source)
		out.WriteByte('"')
		res.Geocoded++
	}
	out.WriteByte('>')
	out.WriteString(tei.EscapeText(rec.Canonical))
	out.WriteString("</")
	out.WriteString(string(rec.Type))
	out.WriteByte('>')
}

// geocode resolves coordinates for place-like records, cheapest source
// first: the record's stored geocode, then its ref URL, then a gazetteer
// name lookup. Results are cached per document run.
func (t *Tagger) geocode(ctx context.Context, rec entity.Record, cache map[string]*entity.Geocode) *entity.Geocode {
	if rec.Type != entity.GeogName && rec.Type != entity.PlaceName {
		return nil
	}
	if rec.Geocode != nil {
		return rec.Geocode
	}
	if geo, ok := cache[rec.ID]; ok {
		return geo
	}

	geo := t.resolve(ctx, rec)
	cache[rec.ID] = geo
	return geo
}

func (t *Tagger) resolve(ctx context.Context, rec entity.Record) *entity.Geocode {
	if t.gaz == nil {
		return nil
	}
	if source, id, ok := gazetteer.ParseRefURL(rec.Ref); ok {
		if entry, found, err := t.gaz.LookupID(ctx, source, id); err == nil && found {
			return &entity.Geocode{Lat: entry.Lat, Lon: entry.Lon, Source: entry.Source}
		}
	}
	entries, err := t.gaz.Lookup(ctx, rec.Canonical)
	if err != nil {
		return nil
	}
	best, ok := gazetteer.Best(entries)
	if !ok {
		return nil
	}
	return &entity.Geocode{Lat: best.Lat, Lon: best.Lon, Source: best.Source}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
