package variants

import (
	"crypto/rand"
	"fmt"
	"sort"

	"github.com/oklog/ulid/v2"

	"github.com/EurasianLatinArchive/ELA/pkg/ela/entity"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/internalerr"
)

type key struct {
	Type entity.Type
	Norm string
}

// Store is the canonical registry of entity variants. A normalized variant
// string maps to exactly one record per entity type; the same string may map
// to different records under different types.
//
// A Store is not safe for concurrent mutation; the pipeline mutates it from
// one stage at a time.
type Store struct {
	records map[string]*entity.Record
	index   map[key]string
	entropy *ulid.MonotonicEntropy
}

// NewStore creates an empty registry.
func NewStore() *Store {
	return &Store{
		records: make(map[string]*entity.Record),
		index:   make(map[key]string),
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Len returns the number of known (type, variant) pairs.
func (s *Store) Len() int { return len(s.index) }

func (s *Store) newID() string {
	return ulid.MustNew(ulid.Now(), s.entropy).String()
}

// Lookup resolves a surface string of the given type to its canonical
// record. The returned record is a copy.
func (s *Store) Lookup(typ entity.Type, surface string) (entity.Record, bool) {
	norm := entity.NormalizeVariant(surface)
	if norm == "" {
		return entity.Record{}, false
	}
	id, ok := s.index[key{typ, norm}]
	if !ok {
		return entity.Record{}, false
	}
	return copyRecord(s.records[id]), true
}

// Learn registers a surface string as a variant of the given type, creating
// a new record with the surface as its initial canonical form when the
// normalized form is unseen. The second return reports whether a new record
// was created. Learning is additive; nothing is ever pruned here.
func (s *Store) Learn(typ entity.Type, surface string) (entity.Record, bool) {
	return s.LearnAs(typ, surface, surface)
}

// LearnAs registers surface as a variant of the record whose canonical form
// is canonical, creating the record if needed. When the surface's normalized
// form is already bound to another record of the same type, the earlier
// binding wins.
func (s *Store) LearnAs(typ entity.Type, canonical, surface string) (entity.Record, bool) {
	canonNorm := entity.NormalizeVariant(canonical)
	if canonNorm == "" {
		return entity.Record{}, false
	}

	created := false
	id, ok := s.index[key{typ, canonNorm}]
	if !ok {
		rec := &entity.Record{
			ID:        s.newID(),
			Type:      typ,
			Canonical: canonical,
			Variants:  []string{canonical},
		}
		id = rec.ID
		s.records[id] = rec
		s.index[key{typ, canonNorm}] = id
		created = true
	}
	rec := s.records[id]

	if surfNorm := entity.NormalizeVariant(surface); surfNorm != "" && surfNorm != canonNorm {
		if _, bound := s.index[key{typ, surfNorm}]; !bound {
			s.index[key{typ, surfNorm}] = id
			rec.Variants = append(rec.Variants, surface)
		}
	}
	return copyRecord(rec), created
}

// SetGeocode attaches a resolved coordinate pair to the record owning the
// given canonical form. Missing records are ignored: geocoding is best
// effort.
func (s *Store) SetGeocode(typ entity.Type, canonical string, geo entity.Geocode) {
	if id, ok := s.index[key{typ, entity.NormalizeVariant(canonical)}]; ok {
		g := geo
		s.records[id].Geocode = &g
	}
}

// SetRef attaches an external reference URL to the record owning the given
// canonical form.
func (s *Store) SetRef(typ entity.Type, canonical, ref string) {
	if ref == "" {
		return
	}
	if id, ok := s.index[key{typ, entity.NormalizeVariant(canonical)}]; ok {
		if s.records[id].Ref == "" {
			s.records[id].Ref = ref
		}
	}
}

// Replace discards the entire prior content and rebuilds the registry from
// the given records. A duplicate (type, variant) pair across the input is an
// error and leaves the store untouched.
func (s *Store) Replace(records []entity.Record) error {
	fresh := NewStore()
	if err := fresh.addAll(records); err != nil {
		return err
	}
	s.records = fresh.records
	s.index = fresh.index
	return nil
}

// Merge overlays the given records on the current content: variants present
// in the input are re-bound to the incoming record, everything else is
// retained.
func (s *Store) Merge(records []entity.Record) error {
	for i := range records {
		rec := records[i]
		for _, v := range rec.Variants {
			norm := entity.NormalizeVariant(v)
			if norm == "" {
				continue
			}
			s.unbind(rec.Type, norm)
		}
		if err := s.add(rec); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) unbind(typ entity.Type, norm string) {
	k := key{typ, norm}
	id, ok := s.index[k]
	if !ok {
		return
	}
	delete(s.index, k)
	rec := s.records[id]
	kept := rec.Variants[:0]
	for _, v := range rec.Variants {
		if entity.NormalizeVariant(v) != norm {
			kept = append(kept, v)
		}
	}
	rec.Variants = kept
	if len(rec.Variants) == 0 {
		delete(s.records, id)
	}
}

func (s *Store) addAll(records []entity.Record) error {
	for i := range records {
		if err := s.add(records[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) add(rec entity.Record) error {
	if _, ok := entity.ParseType(string(rec.Type)); !ok {
		return fmt.Errorf("%w: entity type %q", internalerr.ErrMalformedRow, rec.Type)
	}
	if entity.NormalizeVariant(rec.Canonical) == "" {
		return fmt.Errorf("%w: empty canonical form", internalerr.ErrMalformedRow)
	}
	stored := copyRecord(&rec)
	if stored.ID == "" {
		stored.ID = s.newID()
	}
	if len(stored.Variants) == 0 {
		stored.Variants = []string{stored.Canonical}
	}
	if old, clash := s.records[stored.ID]; clash && old.Type != stored.Type {
		return fmt.Errorf("%w: id %s used by both %s and %s",
			internalerr.ErrDuplicateRow, stored.ID, old.Type, stored.Type)
	}
	if existing, ok := s.records[stored.ID]; ok {
		// Same record split across inputs: merge the variant lists.
		stored.Variants = append(existing.Variants, stored.Variants...)
	}

	seen := make(map[string]struct{}, len(stored.Variants))
	kept := stored.Variants[:0]
	for _, v := range stored.Variants {
		norm := entity.NormalizeVariant(v)
		if norm == "" {
			continue
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		k := key{stored.Type, norm}
		if boundID, bound := s.index[k]; bound && boundID != stored.ID {
			return fmt.Errorf("%w: (%s, %q)", internalerr.ErrDuplicateRow, stored.Type, v)
		}
		seen[norm] = struct{}{}
		kept = append(kept, v)
	}
	stored.Variants = kept
	s.records[stored.ID] = &stored
	for norm := range seen {
		s.index[key{stored.Type, norm}] = stored.ID
	}
	return nil
}

// Records returns every record in a stable order: type, canonical form and
// variants all lexicographic. Repeated calls on an unchanged store return
// identical slices.
func (s *Store) Records() []entity.Record {
	out := make([]entity.Record, 0, len(s.records))
	for _, rec := range s.records {
		c := copyRecord(rec)
		sort.Strings(c.Variants)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		if out[i].Canonical != out[j].Canonical {
			return out[i].Canonical < out[j].Canonical
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func copyRecord(rec *entity.Record) entity.Record {
	c := *rec
	c.Variants = append([]string(nil), rec.Variants...)
	if rec.Geocode != nil {
		g := *rec.Geocode
		c.Geocode = &g
	}
	return c
}
