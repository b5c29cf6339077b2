package pipeline

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/inkwell/internal/config"
	"github.com/dgallion1/inkwell/internal/parser"
	"github.com/dgallion1/inkwell/internal/post"
	"github.com/dgallion1/inkwell/internal/render"
	"github.com/dgallion1/inkwell/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.Config {
	return config.Config{
		TOCMinLevel:    2,
		TOCMaxLevel:    4,
		TOCMaxDepth:    3,
		ExcerptWords:   55,
		WordsPerMinute: 220,
		WorkerCount:    2,
		MaxQueueSize:   4,
		JobTTL:         time.Hour,
	}
}

func newTestWorker(st store.Store) *Worker {
	cfg := testConfig()
	return NewWorker(st, render.New(), cfg.PostOptions(), parser.Options{}, testLogger())
}

const markdownDoc = `# Field Notes

Opening paragraph with a few words.

## Setup

Install things.

### Details

Fine print.
`

func TestWorker_ImportsMarkdown(t *testing.T) {
	st := store.NewMemory()
	job := NewJob("field-notes.md", "", false, []byte(markdownDoc))

	newTestWorker(st).Process(context.Background(), job)

	snap := job.Snapshot()
	require.Equal(t, StatusCompleted, snap.Status, snap.Errors)
	assert.Equal(t, "field-notes", snap.Slug)
	assert.NotEmpty(t, snap.ContentHash)
	assert.Nil(t, job.FileData())

	p, err := st.Get(snap.PostID)
	require.NoError(t, err)
	assert.Equal(t, "Field Notes", p.Title)
	assert.Equal(t, post.FormatMarkdown, p.Format)
	assert.Equal(t, post.StatusDraft, p.Status)
	assert.NotContains(t, p.Source, "# Field Notes")
	require.Len(t, p.TOC, 1)
	assert.Equal(t, "Setup", p.TOC[0].Text)
	require.Len(t, p.TOC[0].Children, 1)
	assert.Equal(t, "Details", p.TOC[0].Children[0].Text)
}

func TestWorker_ImportsHTMLAndPublishes(t *testing.T) {
	st := store.NewMemory()
	doc := `<html><head><title>Weekly Update</title></head><body>
<h2>News</h2><p>Something happened.</p><h2>Plans</h2><p>More to come.</p></body></html>`
	job := NewJob("update.html", "Override Title", true, []byte(doc))

	newTestWorker(st).Process(context.Background(), job)

	snap := job.Snapshot()
	require.Equal(t, StatusCompleted, snap.Status, snap.Errors)

	p, err := st.Get(snap.PostID)
	require.NoError(t, err)
	assert.Equal(t, "Override Title", p.Title)
	assert.Equal(t, "override-title", p.Slug)
	assert.Equal(t, post.FormatHTML, p.Format)
	assert.True(t, p.Published())
	require.Len(t, p.Headings, 2)
	assert.Equal(t, "news", p.Headings[0].ID)
}

func TestWorker_SlugCollisionGetsSuffix(t *testing.T) {
	st := store.NewMemory()
	w := newTestWorker(st)

	first := NewJob("a.txt", "Same", false, []byte("Body one."))
	second := NewJob("b.txt", "Same", false, []byte("Body two."))
	w.Process(context.Background(), first)
	w.Process(context.Background(), second)

	assert.Equal(t, "same", first.Snapshot().Slug)
	assert.Equal(t, "same-2", second.Snapshot().Slug)
}

func TestWorker_Failures(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     string
		phase    string
	}{
		{"unsupported", "photo.png", "x", "parsing"},
		{"broken docx", "broken.docx", "not a zip", "parsing"},
		{"empty", "empty.txt", "   \n\n  ", "rendering"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewJob(tt.filename, "", false, []byte(tt.data))
			newTestWorker(store.NewMemory()).Process(context.Background(), job)

			snap := job.Snapshot()
			assert.Equal(t, StatusFailed, snap.Status)
			assert.Equal(t, tt.phase, snap.Phase)
			assert.NotEmpty(t, snap.Errors)
		})
	}
}

func TestOrchestrator_ProcessesSubmittedJobs(t *testing.T) {
	st := store.NewMemory()
	o := NewOrchestrator(testConfig(), st, render.New(), testLogger())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("notes.md", "", false, []byte(markdownDoc))
	require.NoError(t, o.Submit(job))
	assert.Same(t, job, o.GetJob(job.ID))

	require.Eventually(t, func() bool {
		return job.Snapshot().Status == StatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	posts, err := st.List("")
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.MaxQueueSize = 1
	// Not started: nothing drains the queue.
	o := NewOrchestrator(cfg, store.NewMemory(), render.New(), testLogger())

	require.NoError(t, o.Submit(NewJob("a.txt", "", false, []byte("a"))))
	full := NewJob("b.txt", "", false, []byte("b"))
	assert.Error(t, o.Submit(full))
	assert.Equal(t, StatusFailed, full.Snapshot().Status)
	assert.Equal(t, 1, o.QueueDepth())

	o.Stop()
	o.Stop()
}
