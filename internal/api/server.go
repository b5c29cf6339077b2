package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/inkwell/internal/config"
	"github.com/dgallion1/inkwell/internal/permalink"
	"github.com/dgallion1/inkwell/internal/pipeline"
	"github.com/dgallion1/inkwell/internal/render"
	"github.com/dgallion1/inkwell/internal/store"
)

// Server is the HTTP API server for inkwell.
type Server struct {
	router       chi.Router
	store        store.Store
	orchestrator *pipeline.Orchestrator
	renderer     *render.Renderer
	permalinks   *permalink.Registry
	format       permalink.Format
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. It fails when the
// configured permalink format is not registered.
func NewServer(st store.Store, orch *pipeline.Orchestrator, r *render.Renderer, reg *permalink.Registry, log *slog.Logger, cfg config.Config) (*Server, error) {
	format, err := reg.Lookup(cfg.PermalinkFormat)
	if err != nil {
		return nil, err
	}
	s := &Server{
		store:        st,
		orchestrator: orch,
		renderer:     r,
		permalinks:   reg,
		format:       format,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Get("/api/posts", s.handleListPosts)
	r.Get("/api/posts/{id}", s.handleGetPost)
	r.Get("/api/posts/{id}/toc", s.handlePostTOC)
	r.Get("/api/posts/{id}/markdown", s.handlePostMarkdown)
	r.Get("/api/resolve", s.handleResolve)
	r.Get("/api/permalinks", s.handlePermalinks)
	r.Post("/api/toc", s.handleTOC)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/posts", s.handleCreatePost)
		r.Put("/api/posts/{id}", s.handleUpdatePost)
		r.Delete("/api/posts/{id}", s.handleDeletePost)
		r.Post("/api/posts/{id}/publish", s.handlePublishPost)

		r.Post("/api/import", s.handleImport)
		r.Post("/api/import/batch", s.handleBatchImport)
		r.Get("/api/import/{jobID}/status", s.handleImportStatus)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
