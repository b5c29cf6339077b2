package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocxHeadingLevel(t *testing.T) {
	tests := []struct {
		style string
		want  int
	}{
		{"Heading1", 1},
		{"heading 2", 2},
		{"HEADING6", 6},
		{"Heading7", 0},
		{"Heading10", 0},
		{"Normal", 0},
		{"", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, docxHeadingLevel(tt.style), "style %q", tt.style)
	}
}

func TestDOCXParser_InvalidInput(t *testing.T) {
	p := &DOCXParser{}
	_, err := p.Parse(strings.NewReader("not a zip"), "broken.docx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse docx")
}
