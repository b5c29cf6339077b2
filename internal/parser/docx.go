package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/inkwell/internal/draft"
)

// DOCXParser handles .docx files. Paragraph styles "Title" and "Heading N"
// map to the post title and h1..h6.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*draft.Draft, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "inkwell-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	title := baseTitle(filename)
	b := draft.NewBuilder()
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}

		style := docxStyle(para)
		if strings.EqualFold(style, "Title") {
			title = text
			continue
		}
		if level := docxHeadingLevel(style); level > 0 {
			b.Heading(level, text)
			continue
		}
		b.Paragraph(text)
	}

	return b.Draft(title), nil
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

// docxHeadingLevel accepts both style ids ("Heading2") and names ("heading 2").
func docxHeadingLevel(style string) int {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if len(s) != len("heading1") || !strings.HasPrefix(s, "heading") {
		return 0
	}
	if d := s[len(s)-1]; d >= '1' && d <= '6' {
		return int(d - '0')
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
