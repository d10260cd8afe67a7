package ela

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/EurasianLatinArchive/ELA/pkg/ela/entity"
	"github.com/EurasianLatinArchive/ELA/pkg/ela/variants"
)

const testDoc = `<?xml version="1.0" encoding="UTF-8"?>
<TEI xmlns="http://www.tei-c.org/ns/1.0">
<teiHeader><fileDesc/></teiHeader>
<text>
<body>
<p>The city of <geogName>Roma</geogName> was great.</p>
<p>He returned to Roma in spring.</p>
</body>
</text>
</TEI>`

func writeCorpus(t *testing.T, root string, docs map[string]string) {
	t.Helper()
	for rel, content := range docs {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDiscoverThenRetag(t *testing.T) {
	ctx := context.Background()
	src := t.TempDir()
	inter := t.TempDir()
	prod := t.TempDir()
	writeCorpus(t, src, map[string]string{
		filepath.Join("letters", "doc1.xml"): testDoc,
	})

	store := variants.NewStore()
	p := New(Options{Store: store, Logger: zerolog.Nop()})

	sum, err := p.Discover(ctx, src, inter)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if sum.Processed != 1 || sum.Skipped != 0 {
		t.Errorf("summary = %+v", sum)
	}

	tagged, err := os.ReadFile(filepath.Join(inter, "letters", "doc1.xml"))
	if err != nil {
		t.Fatalf("read intermediate: %v", err)
	}
	if !strings.Contains(string(tagged), "returned to <geogName>Roma</geogName> in spring") {
		t.Errorf("intermediate output: %q", tagged)
	}

	// Reviewers rename the canonical form, then the production pass applies it.
	rec, _ := store.Lookup(entity.GeogName, "Roma")
	if err := store.Replace([]entity.Record{{
		ID: rec.ID, Type: entity.GeogName, Canonical: "Rome",
		Variants: []string{"Roma", "Rome"},
	}}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	// The production pass reads the original corpus, never the intermediate
	// tree.
	sum, err = p.Retag(ctx, src, prod)
	if err != nil {
		t.Fatalf("retag: %v", err)
	}
	if sum.Processed != 1 {
		t.Errorf("summary = %+v", sum)
	}

	final, err := os.ReadFile(filepath.Join(prod, "letters", "doc1.xml"))
	if err != nil {
		t.Fatalf("read production: %v", err)
	}
	if strings.Count(string(final), "<geogName>Rome</geogName>") != 2 {
		t.Errorf("production output should carry the canonical form everywhere: %q", final)
	}
	if !strings.Contains(string(final), `<TEI xmlns="http://www.tei-c.org/ns/1.0">`) {
		t.Error("header must be carried verbatim")
	}
}

func TestDiscoverSkipsMalformedDocuments(t *testing.T) {
	ctx := context.Background()
	src := t.TempDir()
	writeCorpus(t, src, map[string]string{
		filepath.Join("letters", "bad.xml"):  "<TEI><text><p>broken",
		filepath.Join("letters", "good.xml"): testDoc,
	})

	p := New(Options{Store: variants.NewStore(), Logger: zerolog.Nop()})
	sum, err := p.Discover(ctx, src, t.TempDir())
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if sum.Processed != 1 || sum.Skipped != 1 {
		t.Errorf("summary = %+v, want one processed and one skipped", sum)
	}
}

func TestDiscoverBadRootFails(t *testing.T) {
	p := New(Options{Store: variants.NewStore(), Logger: zerolog.Nop()})
	if _, err := p.Discover(context.Background(), filepath.Join(t.TempDir(), "absent"), t.TempDir()); err == nil {
		t.Error("a missing corpus root must abort the pass")
	}
}

func TestDiscoverHonorsContext(t *testing.T) {
	src := t.TempDir()
	writeCorpus(t, src, map[string]string{
		filepath.Join("letters", "doc1.xml"): testDoc,
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(Options{Store: variants.NewStore(), Logger: zerolog.Nop()})
	if _, err := p.Discover(ctx, src, t.TempDir()); err == nil {
		t.Error("a cancelled context must abort the pass")
	}
}
