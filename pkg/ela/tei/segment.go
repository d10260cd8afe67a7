package tei

import (
	"regexp"
	"strings"
	"unicode"
)

// Kind discriminates the two classes of content inside <text>.
type Kind int

const (
	// TextSeg is character data between markup.
	TextSeg Kind = iota
	// MarkupSeg is any markup construct: tags, comments, processing
	// instructions, CDATA sections. Markup is carried verbatim.
	MarkupSeg
)

// Segment is one lexed slice of the text section.
type Segment struct {
	Kind        Kind
	Raw         string
	Name        string // local element name for plain tags, "" otherwise
	Closing     bool
	SelfClosing bool
}

// Lex splits the inner content of <text> into alternating text and markup
// segments. Concatenating the Raw fields reproduces the input exactly.
func Lex(body string) []Segment {
	var segs []Segment
	for len(body) > 0 {
		lt := strings.IndexByte(body, '<')
		if lt < 0 {
			segs = append(segs, Segment{Kind: TextSeg, Raw: body})
			break
		}
		if lt > 0 {
			segs = append(segs, Segment{Kind: TextSeg, Raw: body[:lt]})
			body = body[lt:]
		}
		raw, ok := lexMarkup(body)
		if !ok {
			// Cannot happen on well-formed input; keep the remainder as text.
			segs = append(segs, Segment{Kind: TextSeg, Raw: body})
			break
		}
		segs = append(segs, makeMarkupSegment(raw))
		body = body[len(raw):]
	}
	return segs
}

// lexMarkup consumes one markup construct starting at '<'.
func lexMarkup(s string) (string, bool) {
	switch {
	case strings.HasPrefix(s, "<!--"):
		if end := strings.Index(s, "-->"); end >= 0 {
			return s[:end+3], true
		}
		return "", false
	case strings.HasPrefix(s, "<![CDATA["):
		if end := strings.Index(s, "]]>"); end >= 0 {
			return s[:end+3], true
		}
		return "", false
	case strings.HasPrefix(s, "<?"):
		if end := strings.Index(s, "?>"); end >= 0 {
			return s[:end+2], true
		}
		return "", false
	}
	// Plain tag or declaration: scan to the closing '>' honoring quotes.
	inQuote := byte(0)
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote != 0:
			if c == inQuote {
				inQuote = 0
			}
		case c == '"' || c == '\'':
			inQuote = c
		case c == '>':
			return s[:i+1], true
		}
	}
	return "", false
}

func makeMarkupSegment(raw string) Segment {
	seg := Segment{Kind: MarkupSeg, Raw: raw}
	if len(raw) < 3 || raw[1] == '!' || raw[1] == '?' {
		return seg
	}
	body := raw[1 : len(raw)-1]
	if strings.HasPrefix(body, "/") {
		seg.Closing = true
		body = body[1:]
	} else if strings.HasSuffix(body, "/") {
		seg.SelfClosing = true
	}
	end := 0
	for end < len(body) && isNameChar(rune(body[end])) {
		end++
	}
	name := body[:end]
	// Strip a namespace prefix: tei:persName and persName are the same
	// element from this package's point of view.
	if colon := strings.LastIndexByte(name, ':'); colon >= 0 {
		name = name[colon+1:]
	}
	seg.Name = name
	return seg
}

func isNameChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) ||
		r == '_' || r == '-' || r == '.' || r == ':'
}

var attrRe = regexp.MustCompile(`([A-Za-z_][-\w:.]*)\s*=\s*(?:"([^"]*)"|'([^']*)')`)

// Attr extracts one attribute value from a raw open tag. Namespace-prefixed
// attribute names match on their local part too.
func Attr(raw, name string) string {
	for _, m := range attrRe.FindAllStringSubmatch(raw, -1) {
		attr := m[1]
		if colon := strings.LastIndexByte(attr, ':'); colon >= 0 {
			attr = attr[colon+1:]
		}
		if attr == name {
			if m[2] != "" {
				return m[2]
			}
			return m[3]
		}
	}
	return ""
}

var textEntityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

// UnescapeText resolves the predefined XML entities in character data.
func UnescapeText(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	return textEntityReplacer.Replace(s)
}

// InnerText flattens the character data of the element opened at segs[i],
// returning the joined text and the index one past the matching close tag.
// Self-closing elements flatten to "".
func InnerText(segs []Segment, i int) (string, int) {
	open := segs[i]
	if open.Kind != MarkupSeg || open.Closing {
		return "", i + 1
	}
	if open.SelfClosing {
		return "", i + 1
	}
	depth := 1
	var sb strings.Builder
	j := i + 1
	for ; j < len(segs); j++ {
		seg := segs[j]
		if seg.Kind == TextSeg {
			sb.WriteString(UnescapeText(seg.Raw))
			continue
		}
		if seg.Name == open.Name {
			if seg.Closing {
				depth--
				if depth == 0 {
					return sb.String(), j + 1
				}
			} else if !seg.SelfClosing {
				depth++
			}
		}
	}
	return sb.String(), j
}
