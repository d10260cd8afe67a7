package variants

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/EurasianLatinArchive/ELA/pkg/ela/entity"
)

func TestSnapshotRoundTrip(t *testing.T) {
	s := NewStore()
	s.LearnAs(entity.GeogName, "Roma", "Rome")
	s.SetRef(entity.GeogName, "Roma", "https://pleiades.stoa.org/places/423025")
	s.SetGeocode(entity.GeogName, "Roma", entity.Geocode{Lat: 41.9, Lon: 12.5, Source: "pleiades"})
	s.Learn(entity.PersName, "Cicero")

	path := filepath.Join(t.TempDir(), "variants.json")
	if err := s.SaveSnapshot(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	restored := NewStore()
	if err := restored.LoadSnapshot(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if restored.Len() != s.Len() {
		t.Errorf("restored Len = %d, want %d", restored.Len(), s.Len())
	}
	rec, ok := restored.Lookup(entity.GeogName, "Rome")
	if !ok {
		t.Fatal("variant lost across snapshot")
	}
	if rec.Ref == "" || rec.Geocode == nil || rec.Geocode.Source != "pleiades" {
		t.Errorf("ref or geocode lost: %+v", rec)
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	s := NewStore()
	err := s.LoadSnapshot(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
}
