package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/flowcanvas/pkg/editor"
	"github.com/matzehuels/flowcanvas/pkg/remote"
	"github.com/matzehuels/flowcanvas/pkg/session"
)

const (
	defaultLayoutTimeout = 30 * time.Second
	shutdownTimeout      = 5 * time.Second
)

// Server serves the editing API for one editor.
type Server struct {
	mu sync.Mutex
	ed *editor.Editor

	remote        remote.Saver
	sessions      session.Provider
	logger        *log.Logger
	layoutTimeout time.Duration
}

// Option configures a [Server].
type Option func(*Server)

// WithRemote sets the saver behind POST /api/remote.
func WithRemote(s remote.Saver) Option {
	return func(srv *Server) { srv.remote = s }
}

// WithSessions sets the session provider behind GET /api/session.
func WithSessions(p session.Provider) Option {
	return func(srv *Server) { srv.sessions = p }
}

// WithLogger sets the request logger.
func WithLogger(logger *log.Logger) Option {
	return func(srv *Server) {
		if logger != nil {
			srv.logger = logger
		}
	}
}

// WithLayoutTimeout bounds a single layout run.
func WithLayoutTimeout(d time.Duration) Option {
	return func(srv *Server) {
		if d > 0 {
			srv.layoutTimeout = d
		}
	}
}

// New creates a server for ed. ed should already be hydrated.
func New(ed *editor.Editor, opts ...Option) *Server {
	s := &Server{
		ed:            ed,
		remote:        remote.NotConfigured{},
		sessions:      session.NewMemoryProvider(),
		logger:        log.Default(),
		layoutTimeout: defaultLayoutTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/flow", s.getFlow)

		r.Post("/nodes", s.createNode)
		r.Patch("/nodes/{id}", s.updateNode)
		r.Delete("/nodes/{id}", s.deleteNode)

		r.Post("/edges", s.createEdge)
		r.Delete("/edges/{id}", s.deleteEdge)

		r.Post("/layout", s.runLayout)

		r.Get("/render", s.getScene)
		r.Get("/render.svg", s.getSVG)

		r.Post("/remote", s.saveRemote)
		r.Get("/session", s.getSession)

		r.Post("/pointer/{action}", s.pointer)
		r.Post("/select", s.selectNode)
		r.Post("/keys", s.key)
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully and flushes pending autosaves.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ed.Flush(shutdownCtx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
