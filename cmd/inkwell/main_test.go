package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/inkwell/internal/headings"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTOC_JSON(t *testing.T) {
	path := writeFile(t, "post.html", `<h2 id="intro">Intro</h2><h3>Detail</h3><h2>End</h2>`)

	out, err := run(t, "toc", "--json", path)
	require.NoError(t, err)

	var res headings.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Headings, 3)
	require.Len(t, res.TOC, 2)
	assert.Equal(t, "intro", res.TOC[0].ID)
	assert.Equal(t, "Detail", res.TOC[0].Children[0].Text)
}

func TestTOC_Markdown(t *testing.T) {
	path := writeFile(t, "post.md", "# Title\n\n## Alpha\n\n## Beta\n")

	out, err := run(t, "toc", "--min-level", "2", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "#beta")
	assert.NotContains(t, out, "Title")
}

func TestTOC_NoHeadings(t *testing.T) {
	path := writeFile(t, "plain.html", "<p>nothing here</p>")
	out, err := run(t, "toc", path)
	require.NoError(t, err)
	assert.Contains(t, out, "no headings")
}

func TestTOC_MissingFile(t *testing.T) {
	_, err := run(t, "toc", filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)
}

func TestMatch(t *testing.T) {
	out, err := run(t, "match", "--prefix", "blog", "/blog/my-post-title")
	require.NoError(t, err)
	assert.Contains(t, out, "my-post-title")

	_, err = run(t, "match", "--prefix", "blog", "/shop/my-post-title")
	assert.Error(t, err)

	out, err = run(t, "match", "-f", "day_and_name", "2024/03/09/spring")
	require.NoError(t, err)
	assert.Contains(t, out, "2024")
	assert.Contains(t, out, "spring")

	_, err = run(t, "match", "-f", "nope", "x")
	assert.Error(t, err)
}

func TestMatch_FormatsFile(t *testing.T) {
	path := writeFile(t, "formats.yaml", "formats:\n  short: \"p/{post_id}\"\n")
	out, err := run(t, "match", "--formats-file", path, "-f", "short", "/p/17")
	require.NoError(t, err)
	assert.Contains(t, out, "17")
}
