package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/inkwell/internal/permalink"
	"github.com/dgallion1/inkwell/internal/post"
	"github.com/dgallion1/inkwell/internal/slug"
)

// maxPostBody caps JSON request bodies for post writes.
const maxPostBody = 4 << 20

// postView is a post plus its canonical path under the active format.
type postView struct {
	*post.Post
	Permalink string `json:"permalink,omitempty"`
}

func (s *Server) view(p *post.Post) postView {
	path, err := permalink.Build(s.format, post.Fields(p), s.cfg.PermalinkPrefix)
	if err != nil {
		// Drafts without a number cannot render numeric formats.
		path = ""
	}
	return postView{Post: p, Permalink: path}
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	status := post.Status(r.URL.Query().Get("status"))
	switch status {
	case "", post.StatusDraft, post.StatusPublished:
	default:
		jsonError(w, "status must be draft or published", http.StatusBadRequest)
		return
	}

	posts, err := s.store.List(status)
	if err != nil {
		s.log.Error("list posts", "error", err)
		jsonError(w, "failed to list posts", http.StatusInternalServerError)
		return
	}
	views := make([]postView, len(posts))
	for i, p := range posts {
		views[i] = s.view(p)
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": views})
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPost(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.view(p))
}

func (s *Server) handlePostTOC(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPost(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"headings": p.Headings,
		"toc":      p.TOC,
	})
}

func (s *Server) handlePostMarkdown(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPost(w, r)
	if !ok {
		return
	}
	out := p.Source
	if p.Format != post.FormatMarkdown {
		var err error
		out, err = s.renderer.Markdown(p.HTML)
		if err != nil {
			s.log.Error("markdown export", "post_id", p.ID, "error", err)
			jsonError(w, "failed to convert post", http.StatusInternalServerError)
			return
		}
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	io.WriteString(w, out)
}

type postRequest struct {
	Title   *string `json:"title"`
	Source  *string `json:"source"`
	Format  *string `json:"format"`
	Slug    *string `json:"slug"`
	Publish bool    `json:"publish"`
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		jsonError(w, "title is required", http.StatusBadRequest)
		return
	}

	format := post.FormatMarkdown
	if req.Format != nil {
		format = post.Format(*req.Format)
		if !validFormat(format) {
			jsonError(w, "format must be html or markdown", http.StatusBadRequest)
			return
		}
	}
	source := ""
	if req.Source != nil {
		source = *req.Source
	}

	now := time.Now()
	p := post.New(*req.Title, source, format, now)
	if req.Slug != nil {
		p.Slug = slug.Make(*req.Slug)
	}
	if req.Publish {
		p.Publish(now)
	}
	s.savePost(w, p, http.StatusCreated)
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPost(w, r)
	if !ok {
		return
	}
	var req postRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			jsonError(w, "title cannot be empty", http.StatusBadRequest)
			return
		}
		p.Title = strings.TrimSpace(*req.Title)
	}
	if req.Source != nil {
		p.Source = *req.Source
	}
	if req.Format != nil {
		f := post.Format(*req.Format)
		if !validFormat(f) {
			jsonError(w, "format must be html or markdown", http.StatusBadRequest)
			return
		}
		p.Format = f
	}
	if req.Slug != nil {
		p.Slug = slug.Make(*req.Slug)
	}
	now := time.Now()
	p.UpdatedAt = now
	if req.Publish {
		p.Publish(now)
	}
	s.savePost(w, p, http.StatusOK)
}

func (s *Server) handlePublishPost(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPost(w, r)
	if !ok {
		return
	}
	p.Publish(time.Now())
	if err := s.store.Put(p); err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(p))
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(id); err != nil {
		s.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// savePost derives p's rendered fields and stores it.
func (s *Server) savePost(w http.ResponseWriter, p *post.Post, code int) {
	if err := post.Prepare(p, s.renderer, s.cfg.PostOptions()); err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err := s.store.Put(p); err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, code, s.view(p))
}

func (s *Server) loadPost(w http.ResponseWriter, r *http.Request) (*post.Post, bool) {
	p, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.storeError(w, err)
		return nil, false
	}
	return p, true
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, post.ErrNotFound):
		jsonError(w, "post not found", http.StatusNotFound)
	case errors.Is(err, post.ErrSlugTaken):
		jsonError(w, err.Error(), http.StatusConflict)
	default:
		s.log.Error("store error", "error", err)
		jsonError(w, "storage failure", http.StatusInternalServerError)
	}
}

func validFormat(f post.Format) bool {
	return f == post.FormatHTML || f == post.FormatMarkdown
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPostBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
