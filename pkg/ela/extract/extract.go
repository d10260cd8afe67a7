// Package extract implements the discovery pass: existing name elements are
// collected into the variant registry and untagged name-like spans are
// tagged in the intermediate output tree.
package extract

import (
	"context"
	"sort"
	"strings"

	"github.com/EurasianLatinArchive/ELA/pkg/ela/entity"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/gazetteer"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/match"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/tei"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/variants"
)

// Span is one name-like region proposed by a Recognizer, in byte offsets
// relative to the scanned text run.
type Span struct {
	Start int
	End   int
	Type  entity.Type
}

// Recognizer is the pluggable name-recognition capability. Given a plain
// text run it proposes candidate spans with a type guess. The choice of
// recognition technique is an external, swappable policy; the extractor
// assumes nothing beyond this contract.
type Recognizer interface {
	Recognize(text string) []Span
}

// Extractor runs the discovery pass over single documents. The registry
// grows monotonically; nothing is ever pruned here.
type Extractor struct {
	store *variants.Store
	rec   Recognizer
	gaz   gazetteer.Index
}

// New creates an extractor. The recognizer and gazetteer are optional: with
// a nil recognizer only already-tagged names and known variants are
// processed, with a nil gazetteer ref attributes are kept but not resolved.
func New(store *variants.Store, rec Recognizer, gaz gazetteer.Index) *Extractor {
	return &Extractor{store: store, rec: rec, gaz: gaz}
}

// Result reports what the pass changed in one document.
type Result struct {
	// Known counts variants recorded from existing name elements.
	Known int
	// Added counts elements inserted into the intermediate output.
	Added int
}

// Process collects the document's existing name elements into the registry,
// then tags untagged occurrences of known variants and recognizer spans in
// a copy of the document. The input document is left untouched; the source
// file is never the write target of this stage.
func (e *Extractor) Process(ctx context.Context, doc *tei.Document) (*tei.Document, Result, error) {
	segs := tei.Lex(doc.Body)

	res := Result{}
	e.collect(ctx, segs, &res)

	// The matcher is rebuilt after collection so names tagged elsewhere in
	// this very document are found in its untagged text too.
	m := match.New()
	for _, rec := range e.store.Records() {
		for _, v := range rec.Variants {
			m.Add(rec.Type, v)
		}
	}

	var body strings.Builder
	for i := 0; i < len(segs); {
		seg := segs[i]
		if seg.Kind == tei.MarkupSeg {
			if _, ok := entity.ParseType(seg.Name); ok && !seg.Closing {
				// Existing name element: pass through whole, tags included.
				_, next := tei.InnerText(segs, i)
				for ; i < next; i++ {
					body.WriteString(segs[i].Raw)
				}
				continue
			}
			body.WriteString(seg.Raw)
			i++
			continue
		}
		body.WriteString(e.annotate(seg.Raw, m, &res))
		i++
	}

	out := &tei.Document{Path: doc.Path, Head: doc.Head, Body: body.String(), Tail: doc.Tail}
	return out, res, nil
}

// collect records every existing name element's text as a known variant. A
// key attribute groups the variant under that canonical form; a ref URL
// pointing into a loaded gazetteer source resolves the record's geocode.
func (e *Extractor) collect(ctx context.Context, segs []tei.Segment, res *Result) {
	for i := 0; i < len(segs); {
		seg := segs[i]
		if seg.Kind != tei.MarkupSeg || seg.Closing {
			i++
			continue
		}
		typ, ok := entity.ParseType(seg.Name)
		if !ok {
			i++
			continue
		}
		text, next := tei.InnerText(segs, i)
		i = next

		canonical := strings.TrimSpace(tei.Attr(seg.Raw, "key"))
		surface := strings.Join(strings.Fields(text), " ")
		if canonical == "" {
			canonical = surface
		}
		if canonical == "" {
			continue
		}
		e.store.LearnAs(typ, canonical, surface)
		res.Known++

		if ref := strings.TrimSpace(tei.Attr(seg.Raw, "ref")); ref != "" {
			e.store.SetRef(typ, canonical, ref)
			e.resolveRef(ctx, typ, canonical, ref)
		}
	}
}

func (e *Extractor) resolveRef(ctx context.Context, typ entity.Type, canonical, ref string) {
	if e.gaz == nil {
		return
	}
	source, id, ok := gazetteer.ParseRefURL(ref)
	if !ok {
		return
	}
	entry, found, err := e.gaz.LookupID(ctx, source, id)
	if err != nil || !found {
		return
	}
	e.store.SetGeocode(typ, canonical, entity.Geocode{Lat: entry.Lat, Lon: entry.Lon, Source: entry.Source})
}

// annotate tags known-variant matches and recognizer spans inside one
// untagged text run, keeping the surface text as element content.
func (e *Extractor) annotate(text string, m *match.Matcher, res *Result) string {
	spans := m.Find(text)

	if e.rec != nil {
		for _, guess := range e.rec.Recognize(text) {
			if guess.Start < 0 || guess.End > len(text) || guess.Start >= guess.End {
				continue
			}
			if overlaps(spans, guess.Start, guess.End) {
				continue
			}
			surface := text[guess.Start:guess.End]
			if _, known := e.store.Lookup(guess.Type, surface); !known {
				e.store.Learn(guess.Type, surface)
			}
			spans = append(spans, match.Span{Start: guess.Start, End: guess.End, Type: guess.Type})
		}
		sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	}

	if len(spans) == 0 {
		return text
	}

	var out strings.Builder
	last := 0
	for _, sp := range spans {
		out.WriteString(text[last:sp.Start])
		out.WriteByte('<')
		out.WriteString(string(sp.Type))
		out.WriteByte('>')
		out.WriteString(text[sp.Start:sp.End])
		out.WriteString("</")
		out.WriteString(string(sp.Type))
		out.WriteByte('>')
		last = sp.End
		res.Added++
	}
	out.WriteString(text[last:])
	return out.String()
}

func overlaps(spans []match.Span, start, end int) bool {
	for _, sp := range spans {
		if start < sp.End && sp.Start < end {
			return true
		}
	}
	return false
}
