package gazetteer

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func drain(t *testing.T, r RecordReader) []Record {
	t.Helper()
	var out []Record
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, rec)
	}
}

func TestPleiadesReader(t *testing.T) {
	csv := "created,id,title,reprLat,reprLong\n" +
		"2010,423025,Roma,41.891775,12.486137\n" +
		"2011,999,Unlocated Place,,\n" +
		"2012,579885,Athenae,37.9761,23.7233\n"
	pr, err := NewPleiadesReader(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("NewPleiadesReader: %v", err)
	}
	recs := drain(t, pr)
	if len(recs) != 2 {
		t.Fatalf("records = %v, want 2", recs)
	}
	if recs[0].ID != 423025 || recs[0].Name != "Roma" || recs[0].Lat != 41.891775 {
		t.Errorf("first record = %+v", recs[0])
	}
	if pr.Skipped() != 1 {
		t.Errorf("skipped = %d, want 1 (the unlocated row)", pr.Skipped())
	}
}

func TestPleiadesReaderColumnOrderIndependent(t *testing.T) {
	csv := "title,reprLong,reprLat,id\nRoma,12.5,41.9,423025\n"
	pr, err := NewPleiadesReader(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("NewPleiadesReader: %v", err)
	}
	recs := drain(t, pr)
	if len(recs) != 1 || recs[0].ID != 423025 || recs[0].Lon != 12.5 {
		t.Errorf("records = %+v", recs)
	}
}

func TestPleiadesReaderMissingColumn(t *testing.T) {
	if _, err := NewPleiadesReader(strings.NewReader("id,title\n1,Roma\n")); err == nil {
		t.Error("a header without coordinate columns should fail")
	}
}

func TestGeonamesReader(t *testing.T) {
	tsv := "3169070\tRome\t\t Roma ,Rom,Rome\t41.89193\t12.51133\trest\n" +
		"garbage line\n" +
		"264371\tAthens\t\t\t37.98376\t23.72784\trest\n"
	gr := NewGeonamesReader(strings.NewReader(tsv))
	recs := drain(t, gr)
	if len(recs) != 2 {
		t.Fatalf("records = %v, want 2", recs)
	}
	first := recs[0]
	if first.ID != 3169070 || first.Name != "Rome" {
		t.Errorf("first record = %+v", first)
	}
	// Alt names are trimmed and the primary name is not repeated.
	if len(first.AltNames) != 2 || first.AltNames[0] != "Roma" || first.AltNames[1] != "Rom" {
		t.Errorf("alt names = %v", first.AltNames)
	}
	if recs[1].AltNames != nil {
		t.Errorf("empty alt column should yield no alt names, got %v", recs[1].AltNames)
	}
	if gr.Skipped() != 1 {
		t.Errorf("skipped = %d, want 1", gr.Skipped())
	}
}
