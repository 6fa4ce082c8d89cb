// Package server exposes the chat endpoint and its operational surface over
// HTTP. One POST route carries the whole product; everything else on the
// router is health, readiness and metrics plumbing.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/littlejunkers/leadchat/internal/analyzer"
	"github.com/littlejunkers/leadchat/internal/dispatch"
	"github.com/littlejunkers/leadchat/internal/health"
	"github.com/littlejunkers/leadchat/internal/observe"
	"github.com/littlejunkers/leadchat/internal/orchestrator"
)

// Config carries the collaborators a Server needs. Orchestrator and
// Dispatcher are required; everything else has a sane zero-value fallback.
type Config struct {
	Orchestrator *orchestrator.Orchestrator
	Dispatcher   *dispatch.Dispatcher

	// Analyzer defaults to one built on the default pattern set.
	Analyzer *analyzer.Analyzer

	// Metrics may be nil; recording is skipped.
	Metrics *observe.Metrics

	// Health defaults to a checker-less handler that always reports ready.
	Health *health.Handler

	Logger *slog.Logger

	// ProviderName labels completion metrics with the configured provider.
	ProviderName string

	// Transcript retention bounds. Non-positive values fall back to the
	// transcript package defaults.
	MaxMessages int
	KeepRecent  int

	// AllowedOrigins is the CORS allow-list. Empty means no cross-origin
	// access; "*" admits any origin.
	AllowedOrigins []string
}

// Server routes widget chat turns through the decision cascade and renders
// the reply. It holds no per-conversation state.
type Server struct {
	orch        *orchestrator.Orchestrator
	dispatcher  *dispatch.Dispatcher
	analyzer    *analyzer.Analyzer
	metrics     *observe.Metrics
	health      *health.Handler
	logger      *slog.Logger
	provider    string
	maxMessages int
	keepRecent  int
	origins     []string
}

// New creates a Server from cfg.
func New(cfg Config) *Server {
	if cfg.Analyzer == nil {
		cfg.Analyzer = analyzer.New(nil)
	}
	if cfg.Health == nil {
		cfg.Health = health.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Server{
		orch:        cfg.Orchestrator,
		dispatcher:  cfg.Dispatcher,
		analyzer:    cfg.Analyzer,
		metrics:     cfg.Metrics,
		health:      cfg.Health,
		logger:      cfg.Logger,
		provider:    cfg.ProviderName,
		maxMessages: cfg.MaxMessages,
		keepRecent:  cfg.KeepRecent,
		origins:     cfg.AllowedOrigins,
	}
}

// Router assembles the HTTP routes. The chat route is wrapped in the CORS
// and observability middleware; health and metrics stay same-origin.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeReply(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	s.health.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(CORS(s.origins))
		if s.metrics != nil {
			r.Use(observe.Middleware(s.metrics))
		}
		r.Post("/api/chat", s.handleChat)
		// Preflight requests are answered by the CORS middleware; the route
		// only has to exist so chi dispatches into the chain.
		r.Options("/api/chat", func(http.ResponseWriter, *http.Request) {})
	})

	return r
}
