// Package server exposes one coloring engine over HTTP.
//
// All handlers share a single engine guarded by a mutex, so requests are
// applied one at a time in arrival order. Bodies and responses are JSON;
// errors carry the engine's error code:
//
//	{"code": "DUPLICATE_EDGE", "error": "edge 3-4 already exists"}
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/fourcolor/pkg/cache"
	"github.com/matzehuels/fourcolor/pkg/engine"
	"github.com/matzehuels/fourcolor/pkg/observability"
)

// Server serves a single engine.
type Server struct {
	mu     sync.Mutex
	engine *engine.Engine
	logger *log.Logger
	router chi.Router
	svgs   cache.Cache // rendered SVGs keyed by DOT source
}

// svgCacheSize bounds the number of rendered graphs kept in memory.
const svgCacheSize = 32

// New creates a server over e.
// If logger is nil, log.Default() is used.
func New(e *engine.Engine, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{engine: e, logger: logger, svgs: cache.NewMemoryCache(svgCacheSize)}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Get("/snapshot", s.handleSnapshot)
	r.Post("/reset", s.handleReset)

	r.Route("/nodes", func(r chi.Router) {
		r.Post("/", s.handlePlace)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", s.handleRemoveNode)
			r.Post("/move", s.handleMove)
			r.Put("/lock", s.handleLock)
		})
	})

	r.Route("/edges", func(r chi.Router) {
		r.Post("/", s.handleConnect)
		r.Route("/{a}/{b}", func(r chi.Router) {
			r.Delete("/", s.handleDisconnect)
			r.Put("/curvature", s.handleCurve)
		})
	})

	r.Post("/overflow/resolve", s.handleResolve)
	r.Get("/render.dot", s.handleDOT)
	r.Get("/render.svg", s.handleSVG)
	return r
}

// observe logs each request and reports it to the HTTP hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, elapsed)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "session", s.engine.Session())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
