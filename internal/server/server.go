// Package server exposes the toolrack pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz     liveness
//	GET  /v1/params   parameter definitions and defaults
//	POST /v1/layout   {tools, params} → layout summary
//	POST /v1/plan     {tools, params, name, mount_style} → plan document
//
// Fatal input and validation errors are answered with 422 and a
// {code, message, details} body; malformed JSON with 400.
package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/toolrack/pkg/observability"
	"github.com/matzehuels/toolrack/pkg/pipeline"
)

// DefaultMaxBody limits request bodies when Config.MaxBody is unset.
const DefaultMaxBody = 1 << 20

// Config configures a Server.
type Config struct {
	Runner  *pipeline.Runner
	Logger  *log.Logger
	MaxBody int64
}

// Server is the toolrack HTTP API.
type Server struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	maxBody int64
}

// New creates a server. A nil runner gets an uncached one.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	runner := cfg.Runner
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	maxBody := cfg.MaxBody
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}
	return &Server{runner: runner, logger: logger, maxBody: maxBody}
}

// Handler returns the router with all routes and middleware wired.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.Use(s.limitBody)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/params", s.handleParams)
		r.Post("/layout", s.handleLayout)
		r.Post("/plan", s.handlePlan)
	})
	return r
}

// observe reports each request to the HTTP hooks and logs it. The route is
// the matched chi pattern, so path parameters do not inflate cardinality.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, dur)
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status,
			"duration", dur, "request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
		next.ServeHTTP(w, r)
	})
}
