// Package server exposes upload, inference and chart editing over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ukaji3/vizparse-go/internal/session"
	"github.com/ukaji3/vizparse-go/pkg/vizparse"
	"github.com/ukaji3/vizparse-go/pkg/vizparse/chart"
	"go.uber.org/zap"
)

// DefaultMaxUploadBytes caps an upload when Options.MaxUploadBytes is unset.
const DefaultMaxUploadBytes = 32 << 20

// Options configures the HTTP service.
type Options struct {
	Parse    vizparse.Options
	Inferrer chart.Inferrer
	// MaxUploadBytes caps the request body of uploads.
	MaxUploadBytes int64
	// ParseTimeout bounds one extraction. Zero means no limit.
	ParseTimeout time.Duration
}

// Server serves the vizparse HTTP API.
type Server struct {
	store  *session.Store
	opts   Options
	logger *zap.Logger
	router *chi.Mux
}

// New creates a Server backed by store.
func New(store *session.Store, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.Parse.Logger == nil {
		opts.Parse.Logger = logger
	}

	s := &Server{
		store:  store,
		opts:   opts,
		logger: logger,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Put("/file", s.handleReplaceFile)
			r.Get("/columns", s.handleColumns)
			r.Put("/chart/type", s.handleSetType)
			r.Put("/chart/color", s.handleSetColor)
			r.Put("/chart/axis", s.handleSetAxis)
			r.Get("/chartjs", s.handleChartJS)
			r.Get("/export.xlsx", s.handleExport)
		})
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	<-errCh
	s.logger.Info("server stopped")
	return nil
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("elapsed", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
