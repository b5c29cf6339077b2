package parser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/inkwell/internal/draft"
)

// PDFParser handles PDF files. It tries the Go library first, then falls back
// to pdftotext if enabled. PDFs carry no reliable heading structure, so the
// import is a flat run of paragraphs.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*draft.Draft, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "inkwell-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	text, err := extractPDFText(tmpPath)
	if err != nil && p.FallbackPdftotext {
		text, err = extractPdftotext(tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	b := draft.NewBuilder()
	for _, para := range pdfParagraphs(text) {
		b.Paragraph(para)
	}
	return b.Draft(baseTitle(filename)), nil
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i > 1 {
			buf.WriteString("\f") // Form feed as page separator.
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

// pdfParagraphs splits extracted text on page breaks and blank lines and
// rejoins hard-wrapped lines with spaces.
func pdfParagraphs(text string) []string {
	var out []string
	for _, page := range strings.Split(text, "\f") {
		page = strings.ReplaceAll(page, "\r\n", "\n")
		for _, block := range strings.Split(page, "\n\n") {
			if p := strings.Join(strings.Fields(block), " "); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
