// Package match finds occurrences of known variants inside plain text runs.
// Matching is word-aligned, case- and whitespace-insensitive, and greedy:
// at a given start position the longest candidate wins.
package match

import (
	"sort"
	"unicode"

	"github.com/EurasianLatinArchive/ELA/pkg/ela/entity"
)

// Span is one matched occurrence inside the scanned text, in byte offsets.
type Span struct {
	Start int
	End   int
	Type  entity.Type
	// Key is the normalized variant that matched; callers resolve it back
	// through their registry.
	Key string
}

type candidate struct {
	typ   entity.Type
	key   string
	words []string
}

// Matcher holds the candidate variant set. Add order does not influence
// results: candidates are re-sorted into a canonical priority before every
// scan, so two runs over the same set are identical.
type Matcher struct {
	byFirst map[string][]candidate
	seen    map[string]struct{}
	dirty   bool
}

// New creates an empty matcher.
func New() *Matcher {
	return &Matcher{
		byFirst: make(map[string][]candidate),
		seen:    make(map[string]struct{}),
	}
}

// Add registers one surface string as a candidate of the given type.
// Candidate words use the same word model as the scanner, so punctuation
// inside a variant ("Fr.", "St.") delimits words instead of blocking the
// match. Duplicate (type, normalized form) pairs collapse to one candidate.
func (m *Matcher) Add(typ entity.Type, surface string) {
	key := entity.NormalizeVariant(surface)
	split := splitWords(key)
	if len(split) == 0 {
		return
	}
	dedup := string(typ) + "\x00" + key
	if _, ok := m.seen[dedup]; ok {
		return
	}
	m.seen[dedup] = struct{}{}
	words := make([]string, len(split))
	for i, w := range split {
		words[i] = w.norm
	}
	m.byFirst[words[0]] = append(m.byFirst[words[0]], candidate{typ: typ, key: key, words: words})
	m.dirty = true
}

// Empty reports whether no candidates are registered.
func (m *Matcher) Empty() bool { return len(m.seen) == 0 }

func (m *Matcher) sortCandidates() {
	if !m.dirty {
		return
	}
	for _, list := range m.byFirst {
		sort.Slice(list, func(i, j int) bool {
			// Longest match wins; at equal length person names outrank
			// place names, which outrank geog names.
			if len(list[i].words) != len(list[j].words) {
				return len(list[i].words) > len(list[j].words)
			}
			if len(list[i].key) != len(list[j].key) {
				return len(list[i].key) > len(list[j].key)
			}
			if ri, rj := entity.Rank(list[i].typ), entity.Rank(list[j].typ); ri != rj {
				return ri < rj
			}
			return list[i].key < list[j].key
		})
	}
	m.dirty = false
}

type word struct {
	start int
	end   int
	norm  string
}

// Find scans one text run and returns its non-overlapping matches in
// position order.
func (m *Matcher) Find(text string) []Span {
	if m.Empty() {
		return nil
	}
	m.sortCandidates()

	words := splitWords(text)
	var spans []Span
	for i := 0; i < len(words); {
		matched := false
		for _, c := range m.byFirst[words[i].norm] {
			if i+len(c.words) > len(words) {
				continue
			}
			ok := true
			for k, w := range c.words {
				if words[i+k].norm != w {
					ok = false
					break
				}
			}
			if ok {
				spans = append(spans, Span{
					Start: words[i].start,
					End:   words[i+len(c.words)-1].end,
					Type:  c.typ,
					Key:   c.key,
				})
				i += len(c.words)
				matched = true
				break
			}
		}
		if !matched {
			i++
		}
	}
	return spans
}

// splitWords tokenizes a text run into words with byte offsets. A word is a
// maximal run of letters and digits; punctuation and whitespace delimit.
func splitWords(text string) []word {
	var words []word
	start := -1
	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			words = append(words, makeWord(text, start, i))
			start = -1
		}
	}
	if start >= 0 {
		words = append(words, makeWord(text, start, len(text)))
	}
	return words
}

func makeWord(text string, start, end int) word {
	return word{start: start, end: end, norm: entity.NormalizeVariant(text[start:end])}
}
