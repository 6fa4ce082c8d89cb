// Package app wires all leadchat subsystems into a running application.
//
// The App struct owns the full lifecycle: New connects the completion
// provider, extraction chain, sink fallback chain and HTTP surface; Run
// serves until the context is cancelled; Shutdown tears everything down in
// order.
//
// For testing, inject doubles via functional options (WithSink,
// WithExtractor, ...). When an option is not provided, New creates real
// implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/littlejunkers/leadchat/internal/config"
	"github.com/littlejunkers/leadchat/internal/dispatch"
	"github.com/littlejunkers/leadchat/internal/extract"
	"github.com/littlejunkers/leadchat/internal/health"
	"github.com/littlejunkers/leadchat/internal/observe"
	"github.com/littlejunkers/leadchat/internal/orchestrator"
	"github.com/littlejunkers/leadchat/internal/resilience"
	"github.com/littlejunkers/leadchat/internal/server"
	"github.com/littlejunkers/leadchat/pkg/provider/llm"
	"github.com/littlejunkers/leadchat/pkg/provider/sink"
	"github.com/littlejunkers/leadchat/pkg/provider/sink/odoo"
	"github.com/littlejunkers/leadchat/pkg/provider/sink/postgres"
	"github.com/littlejunkers/leadchat/pkg/provider/sink/resend"
)

// shutdownTimeout bounds the in-flight request drain when the serve context
// is cancelled.
const shutdownTimeout = 15 * time.Second

// Providers holds the model backends. Extraction may be nil, in which case
// the completion provider doubles as the extraction backend. Populated by
// main.go via the config registry.
type Providers struct {
	Completion llm.Provider
	Extraction llm.Provider
}

// App owns all subsystem lifetimes and serves the chat endpoint.
type App struct {
	cfg       *config.Config
	providers *Providers
	logger    *slog.Logger

	// level, when set, lets a config reload adjust log verbosity in place.
	level *slog.LevelVar

	metrics   *observe.Metrics
	sink      sink.Sink
	extractor extract.Extractor
	checkers  []health.Checker

	// handler is swapped atomically on persona/catalog/limits reloads so
	// in-flight requests keep the router they started with.
	handler atomic.Value // http.Handler

	httpSrv   *http.Server
	watchPath string
	watcher   *config.Watcher

	// closers are called in order during Shutdown.
	closers []func() error

	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithSink injects a delivery sink instead of building the chain from config.
func WithSink(s sink.Sink) Option {
	return func(a *App) { a.sink = s }
}

// WithExtractor injects a contact extractor instead of the model+regex chain.
func WithExtractor(ex extract.Extractor) Option {
	return func(a *App) { a.extractor = ex }
}

// WithMetrics injects a metrics bundle instead of the process-wide default.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithLevelVar hands the app the level var backing the process logger so
// config reloads can change verbosity without a restart.
func WithLevelVar(v *slog.LevelVar) Option {
	return func(a *App) { a.level = v }
}

// WithConfigWatch starts a file watcher on path and applies persona, catalog,
// limit and log-level changes on the fly. Provider and sink changes still
// require a restart.
func WithConfigWatch(path string) Option {
	return func(a *App) { a.watchPath = path }
}

// New creates an App by wiring all subsystems together. The providers struct
// comes from main.go (populated via the config registry).
func New(ctx context.Context, cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	if providers == nil || providers.Completion == nil {
		return nil, errors.New("app: a completion provider is required")
	}

	a := &App{
		cfg:       cfg,
		providers: providers,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(a)
	}

	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	if a.sink == nil {
		s, err := a.buildSink(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.sink = s
	}

	if a.extractor == nil {
		// With a dedicated extraction provider configured, the completion
		// provider backs it up behind a circuit breaker so field extraction
		// survives the smaller model's outages.
		var backend llm.Provider = providers.Completion
		if providers.Extraction != nil {
			chain := resilience.NewLLMFallback(providers.Extraction, "extraction", resilience.FallbackConfig{})
			chain.AddFallback("completion", providers.Completion)
			backend = chain
		}
		a.extractor = extract.NewChain(extract.NewModel(backend), extract.NewRegex(nil), a.logger)
	}

	a.handler.Store(a.buildRouter(cfg))

	a.httpSrv = &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           a,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if a.watchPath != "" {
		w, err := config.NewWatcher(a.watchPath, a.reload)
		if err != nil {
			return nil, fmt.Errorf("app: start config watcher: %w", err)
		}
		a.watcher = w
	}

	return a, nil
}

// buildSink assembles the fallback chain from the configured sinks in
// priority order: Odoo, then Resend, then Postgres.
func (a *App) buildSink(ctx context.Context, cfg *config.Config) (sink.Sink, error) {
	agentName := cfg.Persona.AgentName
	if agentName == "" {
		agentName = orchestrator.DefaultPersona().AgentName
	}

	var sinks []sink.Sink
	if c := cfg.Sinks.Odoo; c.Configured() {
		s, err := odoo.New(odoo.Config{
			BaseURL:   c.BaseURL,
			Database:  c.Database,
			UserID:    c.UserID,
			APIKey:    c.APIKey,
			SourceID:  c.SourceID,
			AgentName: agentName,
		})
		if err != nil {
			return nil, fmt.Errorf("app: odoo sink: %w", err)
		}
		sinks = append(sinks, s)
	}
	if c := cfg.Sinks.Resend; c.Configured() {
		s, err := resend.New(resend.Config{
			APIKey:    c.APIKey,
			From:      c.From,
			To:        c.To,
			AgentName: agentName,
		})
		if err != nil {
			return nil, fmt.Errorf("app: resend sink: %w", err)
		}
		sinks = append(sinks, s)
	}
	if c := cfg.Sinks.Postgres; c.Configured() {
		s, err := postgres.New(ctx, c.DSN, agentName)
		if err != nil {
			return nil, fmt.Errorf("app: postgres sink: %w", err)
		}
		a.closers = append(a.closers, func() error { s.Close(); return nil })
		a.checkers = append(a.checkers, health.Checker{Name: "postgres", Check: s.Ping})
		sinks = append(sinks, s)
	}
	if len(sinks) == 0 {
		return nil, errors.New("app: no delivery sink configured")
	}

	return resilience.NewSinkFallback(sinks[0], resilience.FallbackConfig{}, sinks[1:]...), nil
}

// buildRouter assembles the HTTP surface for cfg. Called at startup and again
// on every hot-reloadable config change.
func (a *App) buildRouter(cfg *config.Config) http.Handler {
	catalog := orchestrator.DefaultCatalog()
	if cfg.Catalog != nil {
		catalog = *cfg.Catalog
	}

	orch := orchestrator.New(a.providers.Completion, cfg.Persona, catalog, a.logger)
	disp := dispatch.New(a.sink, a.extractor, catalog, a.metrics, a.logger)

	srv := server.New(server.Config{
		Orchestrator:   orch,
		Dispatcher:     disp,
		Metrics:        a.metrics,
		Health:         health.New(a.checkers...),
		Logger:         a.logger,
		ProviderName:   cfg.Providers.Completion.Name,
		MaxMessages:    cfg.Limits.MaxMessages,
		KeepRecent:     cfg.Limits.KeepRecent,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
	return srv.Router()
}

// ServeHTTP dispatches to the current router.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.Load().(http.Handler).ServeHTTP(w, r)
}

// reload is the watcher callback. It applies whatever changed without
// touching provider or sink connections.
func (a *App) reload(old, updated *config.Config) {
	d := config.Diff(old, updated)
	if !d.Any() {
		return
	}

	if d.LogLevelChanged && a.level != nil {
		a.level.Set(slogLevel(d.NewLogLevel))
		a.logger.Info("log level changed", "level", d.NewLogLevel)
	}

	if d.PersonaChanged || d.CatalogChanged || d.LimitsChanged {
		a.cfg = updated
		a.handler.Store(a.buildRouter(updated))
		a.logger.Info("configuration reloaded",
			"persona", d.PersonaChanged,
			"catalog", d.CatalogChanged,
			"limits", d.LimitsChanged,
		)
	}
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
// A clean shutdown returns nil.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if tls := a.cfg.Server.TLS; tls != nil {
			err = a.httpSrv.ListenAndServeTLS(tls.CertFile, tls.KeyFile)
		} else {
			err = a.httpSrv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.httpSrv.Shutdown(drainCtx)
	})

	return g.Wait()
}

// Shutdown stops the watcher and releases sink resources. Safe to call more
// than once.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	a.stopOnce.Do(func() {
		if a.watcher != nil {
			a.watcher.Stop()
		}
		if err := a.httpSrv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("app: http shutdown: %w", err))
		}
		for _, closeFn := range a.closers {
			if err := closeFn(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}

// slogLevel maps a config log level onto the slog scale.
func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
