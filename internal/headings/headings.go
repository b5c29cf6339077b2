// Package headings extracts the heading outline of an HTML document and folds
// it into a nested table of contents.
//
// The scanner runs over golang.org/x/net/html's streaming tokenizer, so it is
// linear in the size of the input and never fails: malformed or unbalanced
// markup simply produces fewer headings.
package headings

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/inkwell/internal/slug"
)

// Heading is one heading found in a document, in document order.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id,omitempty"`
}

// TocNode is a heading together with the headings nested beneath it.
type TocNode struct {
	Level    int       `json:"level"`
	Text     string    `json:"text"`
	ID       string    `json:"id"`
	Children []TocNode `json:"children,omitempty"`
}

// Result is the output of Parse.
type Result struct {
	Headings []Heading `json:"headings"`
	TOC      []TocNode `json:"toc"`
}

// Options controls extraction and TOC building. The zero value extracts every
// level with generated ids and an unbounded TOC.
type Options struct {
	MinLevel int // 0 means 1
	MaxLevel int // 0 means 6

	DisableIDs bool // do not synthesize ids from heading text
	RequireID  bool // drop headings that end up without an id
	SkipTOC    bool // Parse returns only the flat list

	MaxDepth int // <= 0 means unbounded
}

// Levels returns the effective, clamped level range.
func (o Options) Levels() (lo, hi int) {
	lo, hi = o.MinLevel, o.MaxLevel
	if lo == 0 {
		lo = 1
	}
	if hi == 0 {
		hi = 6
	}
	lo, hi = clamp(lo), clamp(hi)
	if lo > hi {
		lo = hi
	}
	return lo, hi
}

func clamp(level int) int {
	if level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}

// Parse extracts the headings of doc and, unless opts.SkipTOC is set, builds
// their table of contents with the same options.
func Parse(doc string, opts Options) Result {
	res := Result{Headings: Extract(doc, opts)}
	if !opts.SkipTOC {
		res.TOC = TableOfContents(res.Headings, opts)
	}
	return res
}

// token is the subset of an html.Token the scanner needs.
type token struct {
	typ   html.TokenType
	name  string
	level int // heading level of a start tag, 0 if not a heading
	id    string
	text  string
}

// Extract returns the headings of doc whose level lies in the configured range,
// in document order. A heading's span ends at the first closing tag of the same
// element; tags nested inside it only contribute their text.
func Extract(doc string, opts Options) []Heading {
	lo, hi := opts.Levels()
	toks := tokenize(doc, lo, hi)

	// closeAt[i] is the index of the first matching end tag after start tag i.
	closeAt := make([]int, len(toks))
	lastEnd := make(map[string]int)
	for i := len(toks) - 1; i >= 0; i-- {
		t := toks[i]
		switch {
		case t.typ == html.EndTagToken:
			lastEnd[t.name] = i
		case t.level > 0:
			if j, ok := lastEnd[t.name]; ok {
				closeAt[i] = j
			}
		}
	}

	out := []Heading{}
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.level == 0 || closeAt[i] <= i {
			continue
		}
		end := closeAt[i]

		var buf strings.Builder
		for _, inner := range toks[i+1 : end] {
			if inner.typ == html.TextToken {
				buf.WriteString(inner.text)
			}
		}
		i = end

		text := normalizeSpace(buf.String())
		if text == "" {
			continue
		}
		h := Heading{Level: t.level, Text: text, ID: t.id}
		if h.ID == "" && !opts.DisableIDs {
			h.ID = slug.Make(text)
		}
		if h.ID == "" && opts.RequireID {
			continue
		}
		out = append(out, h)
	}
	return out
}

// tokenize flattens doc into tokens, marking start tags of headings in [lo, hi].
func tokenize(doc string, lo, hi int) []token {
	z := html.NewTokenizer(strings.NewReader(doc))
	var toks []token
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF, or a malformed tail the tokenizer gave up on.
			return toks
		}
		tok := z.Token()
		switch tt {
		case html.TextToken:
			toks = append(toks, token{typ: tt, text: tok.Data})
		case html.StartTagToken:
			t := token{typ: tt, name: tok.Data}
			if lvl := headingLevel(tok); lvl >= lo && lvl <= hi {
				t.level = lvl
				t.id = attr(tok, "id")
			}
			toks = append(toks, t)
		case html.EndTagToken:
			toks = append(toks, token{typ: tt, name: tok.Data})
		}
	}
}

// headingLevel reports the level of h1..h6, or of a custom element (a tag name
// containing a hyphen) that carries a numeric level attribute. Zero otherwise.
func headingLevel(tok html.Token) int {
	name := tok.Data
	if len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6' {
		return int(name[1] - '0')
	}
	if !strings.Contains(name, "-") {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(attr(tok, "level")))
	if err != nil || n < 1 || n > 6 {
		return 0
	}
	return n
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
