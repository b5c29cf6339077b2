package parser

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/inkwell/internal/draft"
)

// HTMLParser imports HTML pages. Only headings and block text survive; site
// chrome such as nav, header and footer is dropped.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*draft.Draft, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := baseTitle(filename)
	if t := findTitle(doc); t != "" {
		title = t
	}

	b := draft.NewBuilder()
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				if t := textContent(n); t != "" {
					b.Heading(level, t)
				}
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header", "aside", "form", "noscript":
				return
			case "p", "li", "td", "blockquote", "pre", "figcaption":
				b.Paragraph(textContent(n))
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findElement(doc, "article"); body != nil {
		walk(body)
	} else if body := findElement(doc, "body"); body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	return b.Draft(title), nil
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func findTitle(n *html.Node) string {
	if t := findElement(n, "title"); t != nil {
		return textContent(t)
	}
	return ""
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
