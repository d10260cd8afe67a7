package variants

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/EurasianLatinArchive/ELA/pkg/ela/entity"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/internalerr"
)

// reviewHeader is the column layout of the review CSV, the human-facing
// surface of the registry. The export of pass 1 and the import of pass 2
// share this exact format.
var reviewHeader = []string{"type", "variant", "canonical_form", "canonical_id"}

// ExportCSV writes every (type, variant) pair as one row. An entity with N
// variants yields N rows sharing the same canonical form and id. Row order
// is stable (type, canonical form, variant, all lexicographic) so repeated
// exports of unchanged data are byte-identical and successive review cycles
// can be diffed.
func (s *Store) ExportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reviewHeader); err != nil {
		return err
	}
	for _, rec := range s.Records() {
		for _, v := range rec.Variants {
			row := []string{string(rec.Type), v, rec.Canonical, rec.ID}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportCSV rebuilds the registry from a review CSV. With merge false (the
// production default) the entire prior content is discarded first; with
// merge true existing pairs not present in the file are retained and
// incoming pairs overwrite their canonical form and id.
//
// Any malformed row or duplicate (type, variant) pair fails the whole
// import; the store is never left half-applied.
func (s *Store) ImportCSV(r io.Reader, merge bool) error {
	records, err := parseReviewCSV(r)
	if err != nil {
		return err
	}
	if !merge {
		return s.Replace(records)
	}

	// Merge on a scratch copy so a conflicting row cannot leave the live
	// store half-applied.
	scratch := NewStore()
	if err := scratch.addAll(s.Records()); err != nil {
		return err
	}
	if err := scratch.Merge(records); err != nil {
		return err
	}
	s.records = scratch.records
	s.index = scratch.index
	return nil
}

func parseReviewCSV(r io.Reader) ([]entity.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty review file", internalerr.ErrMalformedRow)
	}
	if err != nil {
		return nil, err
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range reviewHeader[:3] {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", internalerr.ErrMalformedRow, name)
		}
	}

	type groupKey struct {
		Type entity.Type
		ID   string
	}
	seen := make(map[key]int)
	order := []groupKey{}
	groups := make(map[groupKey]*entity.Record)

	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		field := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		typ, ok := entity.ParseType(field("type"))
		if !ok {
			return nil, fmt.Errorf("%w: line %d: bad entity type %q",
				internalerr.ErrMalformedRow, line, field("type"))
		}
		variant := field("variant")
		canonical := field("canonical_form")
		id := field("canonical_id")

		norm := entity.NormalizeVariant(variant)
		if norm == "" {
			return nil, fmt.Errorf("%w: line %d: empty variant", internalerr.ErrMalformedRow, line)
		}
		if entity.NormalizeVariant(canonical) == "" {
			return nil, fmt.Errorf("%w: line %d: empty canonical form", internalerr.ErrMalformedRow, line)
		}
		if prev, dup := seen[key{typ, norm}]; dup {
			return nil, fmt.Errorf("%w: line %d repeats (%s, %q) from line %d",
				internalerr.ErrDuplicateRow, line, typ, variant, prev)
		}
		seen[key{typ, norm}] = line

		// Rows sharing a canonical id (or, without one, a canonical form)
		// describe the same entity.
		gk := groupKey{typ, id}
		if id == "" {
			gk.ID = "form:" + entity.NormalizeVariant(canonical)
		}
		rec, ok := groups[gk]
		if !ok {
			rec = &entity.Record{ID: id, Type: typ, Canonical: canonical}
			groups[gk] = rec
			order = append(order, gk)
		} else if rec.Canonical != canonical {
			return nil, fmt.Errorf("%w: line %d: canonical form %q conflicts with %q for id %s",
				internalerr.ErrMalformedRow, line, canonical, rec.Canonical, id)
		}
		rec.Variants = append(rec.Variants, variant)
	}

	records := make([]entity.Record, 0, len(order))
	for _, gk := range order {
		records = append(records, *groups[gk])
	}
	return records, nil
}
