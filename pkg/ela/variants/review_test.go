package variants

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/EurasianLatinArchive/ELA/pkg/ela/entity"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/internalerr"
)

func TestExportImportRoundTrip(t *testing.T) {
	s := NewStore()
	s.LearnAs(entity.GeogName, "Roma", "Roma")
	s.LearnAs(entity.GeogName, "Roma", "Rome")
	s.Learn(entity.PersName, "Cicero")

	var buf bytes.Buffer
	if err := s.ExportCSV(&buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	restored := NewStore()
	if err := restored.ImportCSV(bytes.NewReader(buf.Bytes()), false); err != nil {
		t.Fatalf("import: %v", err)
	}
	if restored.Len() != s.Len() {
		t.Errorf("restored Len = %d, want %d", restored.Len(), s.Len())
	}
	rec, ok := restored.Lookup(entity.GeogName, "Rome")
	if !ok || rec.Canonical != "Roma" {
		t.Errorf("Rome should still resolve to Roma after round trip, got %+v", rec)
	}

	// Canonical ids survive the round trip.
	orig, _ := s.Lookup(entity.GeogName, "Roma")
	if rec.ID != orig.ID {
		t.Errorf("id changed across round trip: %q vs %q", rec.ID, orig.ID)
	}
}

func TestExportIsDeterministic(t *testing.T) {
	s := NewStore()
	s.Learn(entity.PersName, "Cicero")
	s.LearnAs(entity.GeogName, "Roma", "Rome")

	var a, b bytes.Buffer
	if err := s.ExportCSV(&a); err != nil {
		t.Fatal(err)
	}
	if err := s.ExportCSV(&b); err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Error("repeated exports of unchanged data must be byte-identical")
	}
}

func TestImportReplacesPriorContent(t *testing.T) {
	s := NewStore()
	s.Learn(entity.PersName, "Vergilius")

	csv := "type,variant,canonical_form,canonical_id\n" +
		"geogName,Roma,Roma,id1\n" +
		"geogName,Rome,Roma,id1\n"
	if err := s.ImportCSV(strings.NewReader(csv), false); err != nil {
		t.Fatalf("import: %v", err)
	}

	if _, ok := s.Lookup(entity.PersName, "Vergilius"); ok {
		t.Error("replace import must discard prior content")
	}
	rec, ok := s.Lookup(entity.GeogName, "rome")
	if !ok || rec.Canonical != "Roma" || rec.ID != "id1" {
		t.Errorf("imported record wrong: %+v ok=%v", rec, ok)
	}
}

func TestImportMergeKeepsUnmentionedPairs(t *testing.T) {
	s := NewStore()
	s.Learn(entity.PersName, "Vergilius")
	s.Learn(entity.GeogName, "Roma")

	csv := "type,variant,canonical_form,canonical_id\n" +
		"geogName,Roma,Rome,\n"
	if err := s.ImportCSV(strings.NewReader(csv), true); err != nil {
		t.Fatalf("import: %v", err)
	}

	if _, ok := s.Lookup(entity.PersName, "Vergilius"); !ok {
		t.Error("merge import must keep pairs absent from the file")
	}
	rec, _ := s.Lookup(entity.GeogName, "Roma")
	if rec.Canonical != "Rome" {
		t.Errorf("merged pair should take the incoming canonical, got %q", rec.Canonical)
	}
}

func TestImportRejectsDuplicateRows(t *testing.T) {
	s := NewStore()
	s.Learn(entity.PersName, "Vergilius")

	csv := "type,variant,canonical_form,canonical_id\n" +
		"geogName,Roma,Roma,\n" +
		"geogName,ROMA,Urbs,\n"
	err := s.ImportCSV(strings.NewReader(csv), false)
	if !errors.Is(err, internalerr.ErrDuplicateRow) {
		t.Fatalf("err = %v, want ErrDuplicateRow", err)
	}
	if _, ok := s.Lookup(entity.PersName, "Vergilius"); !ok {
		t.Error("a failed import must leave the store untouched")
	}
}

func TestImportRejectsMalformedRows(t *testing.T) {
	cases := []struct {
		name string
		csv  string
	}{
		{"bad type", "type,variant,canonical_form,canonical_id\norgName,X,X,\n"},
		{"empty variant", "type,variant,canonical_form,canonical_id\ngeogName, ,Roma,\n"},
		{"empty canonical", "type,variant,canonical_form,canonical_id\ngeogName,Roma,,\n"},
		{"conflicting canonical", "type,variant,canonical_form,canonical_id\n" +
			"geogName,Roma,Roma,id1\ngeogName,Rome,Urbs,id1\n"},
		{"missing column", "type,variant\ngeogName,Roma\n"},
		{"empty file", ""},
	}
	for _, c := range cases {
		s := NewStore()
		err := s.ImportCSV(strings.NewReader(c.csv), false)
		if !errors.Is(err, internalerr.ErrMalformedRow) {
			t.Errorf("%s: err = %v, want ErrMalformedRow", c.name, err)
		}
	}
}

func TestImportGroupsByCanonicalFormWithoutID(t *testing.T) {
	s := NewStore()
	csv := "type,variant,canonical_form,canonical_id\n" +
		"persName,Cicero,Marcus Tullius Cicero,\n" +
		"persName,Tully,Marcus Tullius Cicero,\n"
	if err := s.ImportCSV(strings.NewReader(csv), false); err != nil {
		t.Fatalf("import: %v", err)
	}
	a, _ := s.Lookup(entity.PersName, "Cicero")
	b, _ := s.Lookup(entity.PersName, "Tully")
	if a.ID == "" || a.ID != b.ID {
		t.Error("rows sharing a canonical form without id should group into one record")
	}
}

func TestImportReordersColumnsByHeader(t *testing.T) {
	s := NewStore()
	csv := "canonical_form,type,variant,canonical_id\n" +
		"Roma,geogName,Rome,id9\n"
	if err := s.ImportCSV(strings.NewReader(csv), false); err != nil {
		t.Fatalf("import: %v", err)
	}
	rec, ok := s.Lookup(entity.GeogName, "Rome")
	if !ok || rec.Canonical != "Roma" || rec.ID != "id9" {
		t.Errorf("header-keyed columns not honored: %+v ok=%v", rec, ok)
	}
}
