// Package draft holds the intermediate form of an imported document before it
// becomes a post: a title and a heading tree with paragraph text.
package draft

import (
	"html"
	"strconv"
	"strings"

	"github.com/dgallion1/inkwell/internal/slug"
)

// Draft is the root of an imported document.
type Draft struct {
	Title    string     // Document title (from metadata or filename)
	Sections []*Section // Top-level sections

	// Markdown holds the original source when the document was Markdown. It
	// is kept as the post source so formatting survives the import.
	Markdown string
}

// Section is a recursive heading section.
type Section struct {
	Heading    string     // Empty for untitled leading text
	Level      int        // 1-6; 0 when Heading is empty
	Paragraphs []string   // Body text, one entry per paragraph
	Children   []*Section // Subsections
}

// HTML renders the draft body as a post HTML fragment. Headings carry id
// attributes made unique within the document.
func (d *Draft) HTML() string {
	var b strings.Builder
	used := make(map[string]bool)
	for _, s := range d.Sections {
		writeSection(&b, s, used)
	}
	return b.String()
}

func writeSection(b *strings.Builder, s *Section, used map[string]bool) {
	if s.Heading != "" {
		level := s.Level
		if level < 1 || level > 6 {
			level = 2
		}
		tag := "h" + strconv.Itoa(level)
		b.WriteString("<" + tag)
		if base := slug.Make(s.Heading); base != "" {
			id := slug.Unique(base, func(c string) bool { return used[c] })
			used[id] = true
			b.WriteString(` id="` + id + `"`)
		}
		b.WriteString(">" + html.EscapeString(s.Heading) + "</" + tag + ">\n")
	}
	for _, p := range s.Paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		lines := strings.Split(html.EscapeString(p), "\n")
		b.WriteString("<p>" + strings.Join(lines, "<br>\n") + "</p>\n")
	}
	for _, c := range s.Children {
		writeSection(b, c, used)
	}
}

// Text returns all heading and paragraph text, used for content hashing.
func (d *Draft) Text() string {
	var b strings.Builder
	var walk func(*Section)
	walk = func(s *Section) {
		if s.Heading != "" {
			b.WriteString(s.Heading)
			b.WriteString("\n")
		}
		for _, p := range s.Paragraphs {
			b.WriteString(p)
			b.WriteString("\n")
		}
		for _, c := range s.Children {
			walk(c)
		}
	}
	for _, s := range d.Sections {
		walk(s)
	}
	return b.String()
}

// Builder assembles a Draft from a stream of headings and paragraphs, nesting
// each heading under the nearest preceding heading of lower level.
type Builder struct {
	root  Section
	stack []*Section
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	b := &Builder{}
	b.stack = []*Section{&b.root}
	return b
}

// Heading opens a new section at level.
func (b *Builder) Heading(level int, text string) {
	s := &Section{Heading: text, Level: level}
	for len(b.stack) > 1 && b.stack[len(b.stack)-1].Level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	parent := b.stack[len(b.stack)-1]
	parent.Children = append(parent.Children, s)
	b.stack = append(b.stack, s)
}

// Paragraph appends text to the current section.
func (b *Builder) Paragraph(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	top := b.stack[len(b.stack)-1]
	top.Paragraphs = append(top.Paragraphs, text)
}

// Draft returns the assembled draft. Text that appeared before the first
// heading becomes an untitled leading section.
func (b *Builder) Draft(title string) *Draft {
	d := &Draft{Title: title}
	if len(b.root.Paragraphs) > 0 {
		d.Sections = append(d.Sections, &Section{Paragraphs: b.root.Paragraphs})
	}
	d.Sections = append(d.Sections, b.root.Children...)
	return d
}
