// Package server exposes template extraction over HTTP.
//
// Routes:
//
//	POST   /v1/templates            figure document -> template
//	POST   /v1/templates/merge      {"old": ..., "new": ...} -> merged template
//	GET    /v1/schema/{scope}/*     attribute classification
//	GET    /v1/library              stored templates
//	PUT    /v1/library/{name}       store a template
//	GET    /v1/library/{name}       fetch a stored template
//	DELETE /v1/library/{name}       remove a stored template
//	GET    /healthz                 liveness and build info
//
// Errors are returned as {"code": ..., "message": ...} using the codes of
// package errors.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/figstyle/pkg/pipeline"
	"github.com/matzehuels/figstyle/pkg/store"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = "127.0.0.1:8080"

const (
	maxBodyBytes   = 10 << 20
	requestTimeout = 30 * time.Second
)

// Server serves the HTTP API.
type Server struct {
	Runner *pipeline.Runner
	Store  store.Store // optional; library routes answer 503 without it
	Logger *log.Logger

	router chi.Router
}

// New creates a server. A nil runner uses the default schema without a
// cache; a nil logger uses log.Default().
func New(runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, nil, logger)
	}
	s := &Server{Runner: runner, Store: st, Logger: logger.WithPrefix("http")}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/templates", s.handleMake)
		r.Post("/templates/merge", s.handleMerge)
		r.Get("/schema/{scope}/*", s.handleLookup)

		r.Route("/library", func(r chi.Router) {
			r.Get("/", s.handleList)
			r.Put("/{name}", s.handlePut)
			r.Get("/{name}", s.handleGet)
			r.Delete("/{name}", s.handleDelete)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errNotFound("no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Code: "METHOD_NOT_ALLOWED", Message: r.Method + " not allowed"})
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
