package tei

import (
	"errors"
	"strings"
	"testing"

	"github.com/EurasianLatinArchive/ELA/pkg/ela/internalerr"
)

const sampleDoc = `<?xml version="1.0" encoding="UTF-8"?>
<TEI xmlns="http://www.tei-c.org/ns/1.0">
<teiHeader><fileDesc/></teiHeader>
<text xml:lang="la">
<body><p>In principio</p></body>
</text>
</TEI>`

func TestParseDocumentSplitsAroundText(t *testing.T) {
	doc, err := ParseDocument("sample.xml", []byte(sampleDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.HasSuffix(doc.Head, `<text xml:lang="la">`) {
		t.Errorf("Head should end at the text open tag, got %q", doc.Head)
	}
	if !strings.Contains(doc.Body, "<body><p>In principio</p></body>") {
		t.Errorf("Body = %q", doc.Body)
	}
	if !strings.HasPrefix(doc.Tail, "</text>") {
		t.Errorf("Tail should start with the text close tag, got %q", doc.Tail)
	}
	if doc.Content() != sampleDoc {
		t.Error("Content must reassemble the input byte for byte")
	}
}

func TestParseDocumentNoTextSection(t *testing.T) {
	raw := `<?xml version="1.0"?><TEI><teiHeader/></TEI>`
	_, err := ParseDocument("x.xml", []byte(raw))
	if !errors.Is(err, internalerr.ErrMalformedDocument) {
		t.Errorf("err = %v, want ErrMalformedDocument", err)
	}
}

func TestParseDocumentIllFormedXML(t *testing.T) {
	raw := `<?xml version="1.0"?><TEI><text><body><p>unclosed</text></TEI>`
	_, err := ParseDocument("x.xml", []byte(raw))
	if !errors.Is(err, internalerr.ErrMalformedDocument) {
		t.Errorf("err = %v, want ErrMalformedDocument", err)
	}
}

func TestParseDocumentLegacyEncoding(t *testing.T) {
	raw := []byte(`<?xml version="1.0" encoding="ISO-8859-1"?>` +
		"\n<TEI><text><body><p>S\xe9ville</p></body></text></TEI>")
	doc, err := ParseDocument("x.xml", raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(doc.Body, "Séville") {
		t.Errorf("legacy bytes not transcoded: %q", doc.Body)
	}
	if !strings.Contains(doc.Head, `encoding="UTF-8"`) {
		t.Errorf("declaration not rewritten: %q", doc.Head)
	}
}

func TestParseDocumentKeepsEntities(t *testing.T) {
	raw := `<?xml version="1.0"?><TEI><text><body><p>Fortnum &amp; Mason</p></body></text></TEI>`
	doc, err := ParseDocument("x.xml", []byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(doc.Body, "&amp;") {
		t.Error("character references must be carried verbatim")
	}
}

func TestEscapeText(t *testing.T) {
	got := EscapeText(`Fortnum & Mason <"'>`)
	if strings.ContainsAny(got, "<>") || strings.Contains(got, `& `) {
		t.Errorf("EscapeText = %q", got)
	}
	if !strings.Contains(got, "&amp;") {
		t.Errorf("EscapeText = %q", got)
	}
}
