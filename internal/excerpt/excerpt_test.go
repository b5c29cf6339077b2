package excerpt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText_StripsNonContent(t *testing.T) {
	html := `<h2>Title</h2><p>First <strong>bold</strong> line.</p><script>alert(1)</script><pre>code here</pre><p>Second.</p>`

	got := PlainText(html)

	assert.Equal(t, "Title First bold line. Second.", got)
}

func TestPlainText_BlocksDoNotRunTogether(t *testing.T) {
	assert.Equal(t, "one two", PlainText("<p>one</p><p>two</p>"))
	assert.Equal(t, "a b", PlainText("a<br>b"))
}

func TestAnalyze_ShortText(t *testing.T) {
	st := Analyze("<p>Just a few words here.</p>", DefaultConfig())

	assert.Equal(t, 5, st.Words)
	assert.Equal(t, 1, st.ReadingMinutes)
	assert.Equal(t, "Just a few words here.", st.Summary)
}

func TestAnalyze_Empty(t *testing.T) {
	st := Analyze("", DefaultConfig())

	assert.Equal(t, 0, st.Words)
	assert.Equal(t, 0, st.ReadingMinutes)
	assert.Equal(t, "", st.Summary)
}

func TestAnalyze_ReadingMinutesRoundsUp(t *testing.T) {
	html := "<p>" + strings.Repeat("word ", 450) + "</p>"

	st := Analyze(html, Config{Words: 10, WordsPerMinute: 200})

	assert.Equal(t, 450, st.Words)
	assert.Equal(t, 3, st.ReadingMinutes)
}

func TestAnalyze_SummaryStopsAtSentence(t *testing.T) {
	html := "<p>One two three. Four five six. Seven eight nine ten.</p>"

	st := Analyze(html, Config{Words: 7})

	assert.Equal(t, "One two three. Four five six.", st.Summary)
}

func TestAnalyze_SummaryHardCut(t *testing.T) {
	html := "<p>" + strings.Repeat("long ", 20) + "sentence.</p>"

	st := Analyze(html, Config{Words: 5})

	assert.Equal(t, "long long long long long…", st.Summary)
}

func TestAnalyze_ZeroConfigUsesDefaults(t *testing.T) {
	st := Analyze("<p>"+strings.Repeat("w ", 100)+"</p>", Config{})
	assert.Equal(t, 1, st.ReadingMinutes)
	assert.True(t, strings.HasSuffix(st.Summary, "…"))
}
