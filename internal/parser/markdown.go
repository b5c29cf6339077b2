package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/inkwell/internal/draft"
)

// MarkdownParser handles Markdown files using goldmark. The source is kept
// verbatim; the section tree is built for outlines and content hashing, and
// a leading h1 becomes the title and is removed from the body.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*draft.Draft, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	title := baseTitle(filename)
	body := string(src)
	b := draft.NewBuilder()

	first := true
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			heading := extractText(node, src)
			if first && node.Level == 1 && heading != "" {
				title = heading
				body = stripFirstLines(src, node)
				first = false
				continue
			}
			b.Heading(node.Level, heading)
		default:
			b.Paragraph(extractText(n, src))
		}
		first = false
	}

	d := b.Draft(title)
	d.Markdown = strings.TrimSpace(body)
	return d, nil
}

// stripFirstLines drops the source lines up to and including the heading.
func stripFirstLines(src []byte, h *ast.Heading) string {
	lines := h.Lines()
	if lines.Len() == 0 {
		return string(src)
	}
	end := lines.At(lines.Len() - 1).Stop
	// Setext underline or the rest of the ATX line.
	if i := bytes.IndexByte(src[end:], '\n'); i >= 0 {
		end += i + 1
	} else {
		end = len(src)
	}
	rest := src[end:]
	if trimmed := bytes.TrimLeft(rest, " \t"); bytes.HasPrefix(trimmed, []byte("===")) {
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			rest = rest[i+1:]
		} else {
			rest = nil
		}
	}
	return string(rest)
}

// extractText gets the text content of a goldmark AST node. Leaf blocks such
// as code blocks contribute their raw lines; everything else is read from its
// inline children.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && !n.HasChildren() {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			if c.Type() == ast.TypeBlock && buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
