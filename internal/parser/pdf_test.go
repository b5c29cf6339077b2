package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFParagraphs(t *testing.T) {
	text := "First line\nwrapped here.\n\nSecond block.\fPage two\r\ntext.\n\n\n"

	got := pdfParagraphs(text)

	assert.Equal(t, []string{
		"First line wrapped here.",
		"Second block.",
		"Page two text.",
	}, got)
}

func TestPDFParser_InvalidInput(t *testing.T) {
	p := &PDFParser{}
	_, err := p.Parse(strings.NewReader("not a pdf"), "broken.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract pdf text")
}
