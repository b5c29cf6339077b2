package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/inkwell/internal/draft"
)

// TextParser handles plain text files. Blank lines separate paragraphs; the
// first line becomes the title when it is followed by a blank line.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*draft.Draft, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	title := baseTitle(filename)
	if len(paragraphs) > 1 && !strings.Contains(paragraphs[0], "\n") {
		title = strings.TrimSpace(paragraphs[0])
		paragraphs = paragraphs[1:]
	}

	b := draft.NewBuilder()
	for _, para := range paragraphs {
		b.Paragraph(para)
	}
	return b.Draft(title), nil
}
