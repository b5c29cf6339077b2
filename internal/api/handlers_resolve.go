package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/dgallion1/inkwell/internal/headings"
	"github.com/dgallion1/inkwell/internal/permalink"
	"github.com/dgallion1/inkwell/internal/post"
)

// handleResolve maps a public URL path to the published post it names.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		jsonError(w, "path is required", http.StatusBadRequest)
		return
	}

	m, ok := permalink.Resolve(path, s.format, s.cfg.PermalinkPrefix)
	if !ok {
		jsonError(w, "no permalink match", http.StatusNotFound)
		return
	}

	p, err := s.lookupMatch(m)
	if err != nil {
		s.storeError(w, err)
		return
	}
	// Drafts and posts whose dates disagree with the path stay hidden.
	if !p.Published() || !fieldsAgree(m, post.Fields(p)) {
		jsonError(w, "post not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"format": s.format.Name,
		"match":  m,
		"post":   s.view(p),
	})
}

func (s *Server) lookupMatch(m permalink.Match) (*post.Post, error) {
	if name := m.Postname(); name != "" {
		return s.store.GetBySlug(name)
	}
	if id, ok := m[permalink.FieldPostID]; ok {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, post.ErrNotFound
		}
		return s.store.GetByNumber(n)
	}
	return nil, post.ErrNotFound
}

func fieldsAgree(m permalink.Match, fields map[string]string) bool {
	for k, v := range m {
		if k == permalink.FieldPostID {
			// Numeric ids may be written with leading zeros.
			a, errA := strconv.ParseInt(v, 10, 64)
			b, errB := strconv.ParseInt(fields[k], 10, 64)
			if errA != nil || errB != nil || a != b {
				return false
			}
			continue
		}
		if fields[k] != v {
			return false
		}
	}
	return true
}

type formatView struct {
	Name     string   `json:"name"`
	Template string   `json:"template"`
	Fields   []string `json:"fields"`
	Active   bool     `json:"active"`
}

func (s *Server) handlePermalinks(w http.ResponseWriter, r *http.Request) {
	formats := s.permalinks.Formats()
	out := make([]formatView, len(formats))
	for i, f := range formats {
		out[i] = formatView{
			Name:     f.Name,
			Template: f.Template,
			Fields:   f.Fields(),
			Active:   f.Name == s.format.Name,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"prefix":  s.cfg.PermalinkPrefix,
		"formats": out,
	})
}

// handleTOC runs the heading extractor over a raw HTML body.
func (s *Server) handleTOC(w http.ResponseWriter, r *http.Request) {
	opts, err := tocOptions(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if int64(len(body)) > s.cfg.MaxUploadBytes {
		jsonError(w, "body too large", http.StatusRequestEntityTooLarge)
		return
	}

	writeJSON(w, http.StatusOK, headings.Parse(string(body), opts))
}

// tocOptions reads extractor options from the query string. Unset values
// keep the extractor defaults.
func tocOptions(r *http.Request) (headings.Options, error) {
	q := r.URL.Query()
	var opts headings.Options

	ints := []struct {
		key string
		dst *int
	}{
		{"min_level", &opts.MinLevel},
		{"max_level", &opts.MaxLevel},
		{"max_depth", &opts.MaxDepth},
	}
	for _, it := range ints {
		v := q.Get(it.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, &paramError{it.key}
		}
		*it.dst = n
	}

	bools := []struct {
		key    string
		dst    *bool
		invert bool
	}{
		{"ids", &opts.DisableIDs, true},
		{"require_id", &opts.RequireID, false},
		{"toc", &opts.SkipTOC, true},
	}
	for _, it := range bools {
		v := q.Get(it.key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, &paramError{it.key}
		}
		*it.dst = b != it.invert
	}
	return opts, nil
}

type paramError struct{ key string }

func (e *paramError) Error() string { return "invalid query parameter " + e.key }
