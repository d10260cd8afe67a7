package simple

import (
	"testing"

	"github.com/EurasianLatinArchive/ELA/pkg/ela/entity"
)

func TestRecognizeCapitalizedRuns(t *testing.T) {
	r := New()
	text := "scripsit Marcus Tullius Cicero epistulam"
	spans := r.Recognize(text)
	if len(spans) != 1 {
		t.Fatalf("spans = %v, want one", spans)
	}
	if got := text[spans[0].Start:spans[0].End]; got != "Marcus Tullius Cicero" {
		t.Errorf("span = %q", got)
	}
	if spans[0].Type != entity.PersName {
		t.Errorf("type = %v", spans[0].Type)
	}
}

func TestRecognizeMinWords(t *testing.T) {
	r := New()
	if spans := r.Recognize("venit Roma mane"); len(spans) != 0 {
		t.Errorf("a single capitalized word is below the default threshold: %v", spans)
	}

	r.MinWords = 1
	spans := r.Recognize("venit Roma mane")
	if len(spans) != 1 || "venit Roma mane"[spans[0].Start:spans[0].End] != "Roma" {
		t.Errorf("spans = %v", spans)
	}
}

func TestRecognizeLowercaseBreaksRun(t *testing.T) {
	r := New()
	text := "Marcus et Tullius"
	if spans := r.Recognize(text); len(spans) != 0 {
		t.Errorf("a lowercase word must break the run: %v", spans)
	}
}

func TestRecognizeMultipleRuns(t *testing.T) {
	r := New()
	text := "Iulius Caesar contra Marcus Antonius pugnavit"
	spans := r.Recognize(text)
	if len(spans) != 2 {
		t.Fatalf("spans = %v, want two", spans)
	}
	if text[spans[0].Start:spans[0].End] != "Iulius Caesar" ||
		text[spans[1].Start:spans[1].End] != "Marcus Antonius" {
		t.Errorf("spans = %v", spans)
	}
}

func TestRecognizeIgnoreList(t *testing.T) {
	r := New()
	r.Ignore = []string{"In", "De"}
	text := "In Bello Gallico"
	spans := r.Recognize(text)
	if len(spans) != 1 || text[spans[0].Start:spans[0].End] != "Bello Gallico" {
		t.Errorf("spans = %v, ignored word must not join the run", spans)
	}
}

func TestRecognizeCustomGuess(t *testing.T) {
	r := &Recognizer{MinWords: 1, Guess: entity.GeogName}
	spans := r.Recognize("prope Tiberim")
	if len(spans) != 1 || spans[0].Type != entity.GeogName {
		t.Errorf("spans = %v", spans)
	}
}
