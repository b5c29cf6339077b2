package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/dgallion1/inkwell/internal/parser"
	"github.com/dgallion1/inkwell/internal/post"
	"github.com/dgallion1/inkwell/internal/slug"
	"github.com/dgallion1/inkwell/internal/store"
)

// maxSlugAttempts bounds retries when concurrent imports race for a slug.
const maxSlugAttempts = 5

// Worker turns one uploaded document into a stored post.
type Worker struct {
	store    store.Store
	renderer post.Renderer
	postOpts post.Options
	parseOpt parser.Options
	log      *slog.Logger
}

func NewWorker(st store.Store, r post.Renderer, postOpts post.Options, parseOpt parser.Options, log *slog.Logger) *Worker {
	return &Worker{
		store:    st,
		renderer: r,
		postOpts: postOpts,
		parseOpt: parseOpt,
		log:      log,
	}
}

// Process runs the full import pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.parseOpt)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.Fail("parsing", err)
		return
	}

	d, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.Fail("parsing", fmt.Errorf("parse: %w", err))
		return
	}
	job.releaseFileData()
	if job.Title != "" {
		d.Title = job.Title
	}
	job.SetContentHash(ContentHashHex([]byte(d.Text())))

	if ctx.Err() != nil {
		job.Fail("parsing", ctx.Err())
		return
	}

	// Phase 2: Render
	job.SetStatus(StatusRendering, "rendering")
	pst := post.New(d.Title, d.HTML(), post.FormatHTML, time.Now())
	if d.Markdown != "" {
		pst.Source = d.Markdown
		pst.Format = post.FormatMarkdown
	}
	if err := post.Prepare(pst, w.renderer, w.postOpts); err != nil {
		log.Error("render failed", "error", err)
		job.Fail("rendering", err)
		return
	}
	if pst.WordCount == 0 && len(pst.Headings) == 0 {
		log.Warn("no content extracted")
		job.Fail("rendering", errors.New("no extractable content"))
		return
	}
	if job.Publish {
		pst.Publish(time.Now())
	}

	// Phase 3: Store
	job.SetStatus(StatusStoring, "storing")
	if err := w.put(ctx, pst); err != nil {
		log.Error("store failed", "error", err)
		job.Fail("storing", err)
		return
	}

	job.SetPost(pst.ID, pst.Slug)
	job.SetStatus(StatusCompleted, "done")
	log.Info("import complete", "post_id", pst.ID, "slug", pst.Slug, "words", pst.WordCount)
}

// put stores p, moving it to the next free "-N" slug when its slug is taken
// by another post.
func (w *Worker) put(ctx context.Context, p *post.Post) error {
	base := p.Slug
	return retry.Do(
		func() error { return w.store.Put(p) },
		retry.Context(ctx),
		retry.Attempts(maxSlugAttempts),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, post.ErrSlugTaken)
		}),
		retry.OnRetry(func(n uint, err error) {
			p.Slug = slug.Unique(base, func(s string) bool {
				_, err := w.store.GetBySlug(s)
				return err == nil
			})
			w.log.Debug("slug taken, retrying", "attempt", n+1, "slug", p.Slug)
		}),
	)
}
