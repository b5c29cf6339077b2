package headings

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_AllLevelsInOrder(t *testing.T) {
	doc := `<h1>One</h1><p>x</p><h2>Two</h2><h3>Three</h3><h4>Four</h4><h5>Five</h5><h6>Six</h6>`

	hs := Extract(doc, Options{})

	require.Len(t, hs, 6)
	for i, h := range hs {
		assert.Equal(t, i+1, h.Level, "heading %d", i)
	}
	assert.Equal(t, "One", hs[0].Text)
	assert.Equal(t, "Six", hs[5].Text)
}

func TestExtract_ContentNormalization(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		text string
		id   string
	}{
		{"nested tags stripped", `<h2>Hello <em>big</em> <a href="#x">world</a></h2>`, "Hello big world", "hello-big-world"},
		{"entities decoded", `<h2>Fish &amp; Chips &#169; &#x263A;</h2>`, "Fish & Chips © ☺", "fish-chips"},
		{"whitespace collapsed", "<h2>\n   Spaced\t\tout  \n</h2>", "Spaced out", "spaced-out"},
		{"punctuation slug", `<h2>Hello, World!</h2>`, "Hello, World!", "hello-world"},
		{"uppercase tag", `<H2>Upper Case</H2>`, "Upper Case", "upper-case"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := Extract(tt.doc, Options{})
			require.Len(t, hs, 1)
			assert.Equal(t, tt.text, hs[0].Text)
			assert.Equal(t, tt.id, hs[0].ID)
		})
	}
}

func TestExtract_ExplicitIDWins(t *testing.T) {
	hs := Extract(`<h2 id="custom-id">Completely Different Text</h2><H3 ID="Mixed">m</H3>`, Options{})
	require.Len(t, hs, 2)
	assert.Equal(t, "custom-id", hs[0].ID)
	assert.Equal(t, "Mixed", hs[1].ID)
}

func TestExtract_EmptyHeadingsSkipped(t *testing.T) {
	hs := Extract(`<h2>   </h2><h2><img src="a.png"></h2><h2>Kept</h2>`, Options{})
	require.Len(t, hs, 1)
	assert.Equal(t, "Kept", hs[0].Text)
}

func TestExtract_IDOptions(t *testing.T) {
	doc := `<h2>Plain</h2><h2 id="given">Given</h2><h2>日本語</h2>`

	t.Run("defaults", func(t *testing.T) {
		hs := Extract(doc, Options{})
		require.Len(t, hs, 3)
		assert.Equal(t, "plain", hs[0].ID)
		assert.Equal(t, "given", hs[1].ID)
		assert.Equal(t, "", hs[2].ID)
	})

	t.Run("ids disabled", func(t *testing.T) {
		hs := Extract(doc, Options{DisableIDs: true})
		require.Len(t, hs, 3)
		assert.Equal(t, "", hs[0].ID)
		assert.Equal(t, "given", hs[1].ID)
	})

	t.Run("require id", func(t *testing.T) {
		hs := Extract(doc, Options{RequireID: true})
		require.Len(t, hs, 2)
		assert.Equal(t, "Plain", hs[0].Text)
		assert.Equal(t, "Given", hs[1].Text)
	})

	t.Run("require id with ids disabled", func(t *testing.T) {
		hs := Extract(doc, Options{DisableIDs: true, RequireID: true})
		require.Len(t, hs, 1)
		assert.Equal(t, "given", hs[0].ID)
	})
}

func TestExtract_LevelBounds(t *testing.T) {
	doc := `<h1>A</h1><h2>B</h2><h3>C</h3><h4>D</h4>`

	hs := Extract(doc, Options{MinLevel: 2, MaxLevel: 3})
	require.Len(t, hs, 2)
	assert.Equal(t, "B", hs[0].Text)
	assert.Equal(t, "C", hs[1].Text)

	hs = Extract(doc, Options{MinLevel: -4, MaxLevel: 12})
	assert.Len(t, hs, 4)

	hs = Extract(doc, Options{MinLevel: 5, MaxLevel: 3})
	require.Len(t, hs, 1)
	assert.Equal(t, "C", hs[0].Text)
}

func TestOptions_Levels(t *testing.T) {
	tests := []struct {
		opts   Options
		lo, hi int
	}{
		{Options{}, 1, 6},
		{Options{MinLevel: 2, MaxLevel: 4}, 2, 4},
		{Options{MinLevel: -1, MaxLevel: 9}, 1, 6},
		{Options{MinLevel: 6, MaxLevel: 2}, 2, 2},
		{Options{MaxLevel: -3}, 1, 1},
	}
	for _, tt := range tests {
		lo, hi := tt.opts.Levels()
		assert.Equal(t, tt.lo, lo, "%+v", tt.opts)
		assert.Equal(t, tt.hi, hi, "%+v", tt.opts)
	}
}

func TestExtract_Malformed(t *testing.T) {
	t.Run("unclosed heading is skipped", func(t *testing.T) {
		hs := Extract(`<h2>Broken <h3>Inner</h3><p>text`, Options{})
		require.Len(t, hs, 1)
		assert.Equal(t, 3, hs[0].Level)
		assert.Equal(t, "Inner", hs[0].Text)
	})

	t.Run("nested heading is not matched separately", func(t *testing.T) {
		hs := Extract(`<h2>Outer <h3>Inner</h3> tail</h2>`, Options{})
		require.Len(t, hs, 1)
		assert.Equal(t, "Outer Inner tail", hs[0].Text)
	})

	t.Run("headings inside script are ignored", func(t *testing.T) {
		hs := Extract(`<script>var s = "<h2>fake</h2>";</script><h2>Real</h2>`, Options{})
		require.Len(t, hs, 1)
		assert.Equal(t, "Real", hs[0].Text)
	})

	t.Run("garbage", func(t *testing.T) {
		assert.Empty(t, Extract(`</h2> stray <h2 unterminated`, Options{}))
	})
}

func TestExtract_CustomElementLevel(t *testing.T) {
	hs := Extract(`<x-heading level="3">Custom</x-heading><x-note level="x">no</x-note><section level="2">no</section>`, Options{})
	require.Len(t, hs, 1)
	assert.Equal(t, 3, hs[0].Level)
	assert.Equal(t, "Custom", hs[0].Text)
}

func TestExtract_Empty(t *testing.T) {
	hs := Extract("", Options{})
	assert.NotNil(t, hs)
	assert.Empty(t, hs)
}

func TestExtract_ManyUnclosedIsLinear(t *testing.T) {
	doc := strings.Repeat("<h2>open ", 20000) + "<h3>Last</h3>"

	start := time.Now()
	hs := Extract(doc, Options{})
	elapsed := time.Since(start)

	require.Len(t, hs, 1)
	assert.Equal(t, "Last", hs[0].Text)
	assert.Less(t, elapsed, 5*time.Second)
}

func TestParse_Idempotent(t *testing.T) {
	doc := `<h1>A</h1><h2>B</h2><h3>C</h3><h2>D</h2>`
	opts := Options{MaxDepth: 2}
	assert.Equal(t, Parse(doc, opts), Parse(doc, opts))
}

func TestParse_SkipTOC(t *testing.T) {
	res := Parse(`<h1>A</h1><h2>B</h2>`, Options{SkipTOC: true})
	assert.Len(t, res.Headings, 2)
	assert.Nil(t, res.TOC)
}

func TestParse_SharesLevelBounds(t *testing.T) {
	res := Parse(`<h1>Title</h1><h2>B</h2><h3>C</h3>`, Options{MinLevel: 2})
	require.Len(t, res.TOC, 1)
	assert.Equal(t, "B", res.TOC[0].Text)
	require.Len(t, res.TOC[0].Children, 1)
	assert.Equal(t, "C", res.TOC[0].Children[0].Text)
}
