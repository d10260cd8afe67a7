// Package simple is a heuristic name recognizer: runs of capitalized words
// are proposed as person-name candidates. It exists as the default plug for
// the extract.Recognizer capability; corpus-specific taggers can replace it
// without touching the extractor.
package simple

import (
	"strings"
	"unicode"

	"github.com/EurasianLatinArchive/ELA/pkg/ela/entity"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/extract"
)

// Recognizer proposes spans of MinWords or more consecutive capitalized
// words, typed as Guess.
type Recognizer struct {
	MinWords int
	Guess    entity.Type
	// Ignore lists words (lowercased) that never start or extend a run,
	// e.g. sentence-initial function words.
	Ignore []string
}

// New creates a recognizer with the defaults used by the discovery CLI:
// at least two capitalized words, guessed as person names.
func New() *Recognizer {
	return &Recognizer{MinWords: 2, Guess: entity.PersName}
}

// Recognize implements extract.Recognizer.
func (r *Recognizer) Recognize(text string) []extract.Span {
	minWords := r.MinWords
	if minWords < 1 {
		minWords = 2
	}
	guess := r.Guess
	if guess == "" {
		guess = entity.PersName
	}
	ignored := make(map[string]struct{}, len(r.Ignore))
	for _, w := range r.Ignore {
		ignored[strings.ToLower(w)] = struct{}{}
	}

	var spans []extract.Span
	runStart, runWords, runEnd := -1, 0, 0
	flush := func() {
		if runWords >= minWords {
			spans = append(spans, extract.Span{Start: runStart, End: runEnd, Type: guess})
		}
		runStart, runWords = -1, 0
	}

	for _, w := range words(text) {
		_, skip := ignored[strings.ToLower(text[w.start:w.end])]
		if !w.capitalized || skip {
			flush()
			continue
		}
		if runStart < 0 {
			runStart = w.start
		}
		runWords++
		runEnd = w.end
	}
	flush()
	return spans
}

type word struct {
	start       int
	end         int
	capitalized bool
}

func words(text string) []word {
	var out []word
	start := -1
	first := rune(0)
	for i, r := range text {
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
				first = r
			}
			continue
		}
		if start >= 0 {
			out = append(out, word{start: start, end: i, capitalized: unicode.IsUpper(first)})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, word{start: start, end: len(text), capitalized: unicode.IsUpper(first)})
	}
	return out
}
