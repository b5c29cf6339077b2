package excerpt

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Config controls summary length and reading speed.
type Config struct {
	Words          int // Target summary length in words.
	WordsPerMinute int // Reading speed used for ReadingMinutes.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Words:          55,
		WordsPerMinute: 220,
	}
}

// Stats describes the readable text of a post.
type Stats struct {
	Text           string
	Words          int
	ReadingMinutes int
	Summary        string
}

// Analyze extracts the visible text of an HTML fragment and derives a word
// count, a reading time and a summary cut at a sentence boundary.
func Analyze(html string, cfg Config) Stats {
	if cfg.Words <= 0 {
		cfg.Words = 55
	}
	if cfg.WordsPerMinute <= 0 {
		cfg.WordsPerMinute = 220
	}

	text := PlainText(html)
	words := len(strings.Fields(text))

	st := Stats{Text: text, Words: words}
	if words > 0 {
		st.ReadingMinutes = (words + cfg.WordsPerMinute - 1) / cfg.WordsPerMinute
	}
	st.Summary = summarize(text, cfg.Words)
	return st
}

// PlainText returns the whitespace-normalized text of an HTML fragment with
// scripts, styles and code blocks removed.
func PlainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript, pre, template").Remove()

	// Block elements are separated so their words do not run together.
	doc.Find("p, li, h1, h2, h3, h4, h5, h6, blockquote, td, th, br, div").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// summarize returns whole sentences fitting in maxWords, or the first maxWords
// words followed by an ellipsis when the first sentence is already too long.
func summarize(text string, maxWords int) string {
	if len(strings.Fields(text)) <= maxWords {
		return text
	}

	var out []string
	count := 0
	for _, sent := range splitSentences(text) {
		n := len(strings.Fields(sent))
		if count+n > maxWords {
			break
		}
		out = append(out, sent)
		count += n
	}
	if len(out) > 0 {
		return strings.Join(out, " ")
	}

	words := strings.Fields(text)
	return strings.Join(words[:maxWords], " ") + "…"
}

// splitSentences does basic sentence splitting.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if current.Len() > 0 {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
	}

	return sentences
}
