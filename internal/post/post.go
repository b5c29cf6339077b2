// Package post defines the blog post model and derives everything a post
// shows besides its source: rendered HTML, heading outline and excerpt.
package post

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/inkwell/internal/excerpt"
	"github.com/dgallion1/inkwell/internal/headings"
	"github.com/dgallion1/inkwell/internal/permalink"
	"github.com/dgallion1/inkwell/internal/slug"
)

var (
	ErrNotFound  = errors.New("post not found")
	ErrSlugTaken = errors.New("slug already in use")
)

// Format is the markup a post's source is written in.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// Status is the publication state of a post.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Post is a single blog entry.
type Post struct {
	ID     string `json:"id"`
	Number int64  `json:"number"` // assigned by the store, used by {post_id}
	Slug   string `json:"slug"`
	Title  string `json:"title"`
	Format Format `json:"format"`
	Source string `json:"source"`

	// Derived by Prepare.
	HTML           string             `json:"html"`
	Excerpt        string             `json:"excerpt"`
	Headings       []headings.Heading `json:"headings"`
	TOC            []headings.TocNode `json:"toc"`
	WordCount      int                `json:"word_count"`
	ReadingMinutes int                `json:"reading_minutes"`

	Status      Status     `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Renderer turns Markdown source into HTML.
type Renderer interface {
	HTML(source string) (string, error)
}

// Options bundles the derivation settings used by Prepare.
type Options struct {
	Headings headings.Options
	Excerpt  excerpt.Config
}

// New creates a draft post with a fresh id and a slug derived from title.
// An unknown format is treated as Markdown.
func New(title, source string, format Format, now time.Time) *Post {
	if format != FormatHTML {
		format = FormatMarkdown
	}
	return &Post{
		ID:        uuid.NewString(),
		Slug:      slug.Make(title),
		Title:     strings.TrimSpace(title),
		Format:    format,
		Source:    source,
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Prepare fills the derived fields of p from its source. Calling it again on
// an unchanged post yields the same result.
func Prepare(p *Post, r Renderer, opts Options) error {
	body := p.Source
	if p.Format == FormatMarkdown {
		out, err := r.HTML(p.Source)
		if err != nil {
			return fmt.Errorf("prepare %s: %w", p.ID, err)
		}
		body = out
	}
	p.HTML = body

	res := headings.Parse(body, opts.Headings)
	p.Headings = res.Headings
	p.TOC = res.TOC

	st := excerpt.Analyze(body, opts.Excerpt)
	p.Excerpt = st.Summary
	p.WordCount = st.Words
	p.ReadingMinutes = st.ReadingMinutes

	if p.Slug == "" {
		p.Slug = slug.Make(p.Title)
	}
	if p.Slug == "" {
		// Titles without a single ASCII letter or digit.
		p.Slug = "post-" + strings.SplitN(p.ID, "-", 2)[0]
	}
	return nil
}

// Publish marks the post published. The first publication time is kept.
func (p *Post) Publish(now time.Time) {
	p.Status = StatusPublished
	if p.PublishedAt == nil {
		t := now
		p.PublishedAt = &t
	}
	p.UpdatedAt = now
}

// Published reports whether the post is publicly visible.
func (p *Post) Published() bool {
	return p.Status == StatusPublished
}

// Fields returns the values a permalink format can reference. Date fields
// come from the publication time, or the creation time for drafts. post_id
// is only present once the store has numbered the post.
func Fields(p *Post) map[string]string {
	t := p.CreatedAt
	if p.PublishedAt != nil {
		t = *p.PublishedAt
	}
	f := map[string]string{
		permalink.FieldPostname: p.Slug,
		permalink.FieldYear:     fmt.Sprintf("%04d", t.Year()),
		permalink.FieldMonth:    fmt.Sprintf("%02d", int(t.Month())),
		permalink.FieldDay:      fmt.Sprintf("%02d", t.Day()),
	}
	if p.Number > 0 {
		f[permalink.FieldPostID] = strconv.FormatInt(p.Number, 10)
	}
	return f
}
