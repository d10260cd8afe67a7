// Package tei reads and rewrites XML-TEI documents at the markup level.
//
// Rewriting never goes through a DOM round-trip: the document is split into
// a header, the inner content of the <text> element and a trailing part, and
// only text runs inside <text> are ever touched. Everything else is carried
// byte-for-byte, so namespaces, comments and attribute ordering survive.
package tei

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/EurasianLatinArchive/ELA/pkg/ela/internalerr"
)

// TEI namespace, for reference by consumers that inspect attributes.
const Namespace = "http://www.tei-c.org/ns/1.0"

// Document is one XML-TEI file split around its <text> element.
type Document struct {
	// Path is the source-relative identifier (subdir/name).
	Path string
	// Head holds everything up to and including the <text ...> open tag.
	Head string
	// Body is the inner content of the <text> element; the only part that
	// rewriting stages may change.
	Body string
	// Tail holds the </text> close tag and everything after it.
	Tail string
}

// Content reassembles the full document text.
func (d *Document) Content() string {
	return d.Head + d.Body + d.Tail
}

var (
	textOpenRe = regexp.MustCompile(`<text(\s[^>]*)?>`)
	xmlDeclRe  = regexp.MustCompile(`(<\?xml[^?]*encoding=")[^"]+(")`)
	encDeclRe  = regexp.MustCompile(`^\xef?\xbb?\xbf?\s*<\?xml[^?]*encoding="([^"]+)"`)
)

// ReadDocument loads, decodes and validates one XML-TEI file. Sources in a
// legacy encoding are transcoded to UTF-8 (and their declaration updated)
// before any other processing. A document that does not parse as well-formed
// XML, or that lacks a <text> element, fails with ErrMalformedDocument so
// batch drivers can skip it and keep going.
func ReadDocument(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDocument(path, raw)
}

// ParseDocument is ReadDocument over in-memory bytes.
func ParseDocument(path string, raw []byte) (*Document, error) {
	text, err := decodeUTF8(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrMalformedDocument, path, err)
	}
	if err := checkWellFormed(text); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrMalformedDocument, path, err)
	}

	loc := textOpenRe.FindStringIndex(text)
	if loc == nil {
		return nil, fmt.Errorf("%w: %s: no <text> section", internalerr.ErrMalformedDocument, path)
	}
	closeIdx := strings.LastIndex(text, "</text>")
	if closeIdx < loc[1] {
		return nil, fmt.Errorf("%w: %s: unterminated <text> section", internalerr.ErrMalformedDocument, path)
	}

	return &Document{
		Path: path,
		Head: text[:loc[1]],
		Body: text[loc[1]:closeIdx],
		Tail: text[closeIdx:],
	}, nil
}

// WriteDocument writes the reassembled document, overwriting any previous
// output so reruns are idempotent at the document level.
func WriteDocument(path string, d *Document) error {
	return os.WriteFile(path, []byte(d.Content()), 0644)
}

// decodeUTF8 converts the raw bytes to UTF-8 according to the declared XML
// encoding, rewriting the declaration when a conversion happened.
func decodeUTF8(raw []byte) (string, error) {
	m := encDeclRe.FindSubmatch(raw)
	if m == nil || strings.EqualFold(string(m[1]), "utf-8") {
		return string(raw), nil
	}
	r, err := charset.NewReaderLabel(string(m[1]), bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return xmlDeclRe.ReplaceAllString(string(decoded), "${1}UTF-8${2}"), nil
}

// checkWellFormed runs the whole document through an XML token scan.
func checkWellFormed(text string) error {
	dec := xml.NewDecoder(strings.NewReader(text))
	dec.CharsetReader = charset.NewReaderLabel
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// EscapeText escapes a string for use as XML element content.
func EscapeText(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}
