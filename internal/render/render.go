// Package render converts post sources between Markdown and HTML.
package render

import (
	"bytes"
	"fmt"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Renderer turns Markdown into HTML and back. It is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New creates a Renderer using GitHub-flavored Markdown. Headings get
// generated id attributes so table-of-contents links resolve.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
}

// HTML renders Markdown source to an HTML fragment.
func (r *Renderer) HTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// Markdown converts an HTML fragment to Markdown, used for post export.
func (r *Renderer) Markdown(html string) (string, error) {
	converter := md.NewConverter("", true, nil)
	out, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("convert html to markdown: %w", err)
	}
	return out, nil
}
