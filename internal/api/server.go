// Package api exposes the planner over HTTP: the interactive page, the
// JSON estimate endpoint and the operational probes.
package api

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/OCAP2/auvplanner/internal/config"
	"github.com/OCAP2/auvplanner/internal/planner"
	"github.com/OCAP2/auvplanner/pkg/core"
	"github.com/OCAP2/auvplanner/web"
)

const maxBodyBytes = 1 << 20

// Planner estimates a mission and returns the report.
type Planner interface {
	Estimate(ctx context.Context, in core.MissionInput) (planner.Report, error)
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	planner    Planner
	page       *template.Template
	ready      atomic.Bool
}

// NewServer creates a configured HTTP server. The server reports not ready
// until SetReady(true) is called.
func NewServer(cfg config.ServerConfig, logger *slog.Logger, p Planner, m *Metrics) (*Server, error) {
	if p == nil {
		return nil, errors.New("api: planner is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = NewMetrics()
	}

	page, err := template.ParseFS(web.Content, "index.html")
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}
	s := &Server{
		logger:  logger,
		planner: p,
		page:    page,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /{$}", s.handleIndexSubmit)
	mux.HandleFunc("POST /api/v1/estimate", s.handleEstimate)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.Handle("GET /metrics", m.Handler())
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(web.Content)))

	// Build middleware chain: metrics -> logging -> mux.
	var handler http.Handler = mux
	handler = loggingMiddleware(logger)(handler)
	handler = m.Middleware(handler)

	s.httpServer = &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// SetReady flips the readiness probe.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown marks the server not ready and drains open connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.SetReady(false)
	return s.httpServer.Shutdown(ctx)
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz" || path == "/metrics"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_ip", r.RemoteAddr,
			)
		})
	}
}
