package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ashishkumar256/sunspot/auth"
	"github.com/ashishkumar256/sunspot/health"
	"github.com/ashishkumar256/sunspot/observe"
	"github.com/ashishkumar256/sunspot/sunspot"
)

// Resolver is the lookup surface the handler depends on.
// *sunspot.Resolver satisfies it.
type Resolver interface {
	LookupByCity(ctx context.Context, city, date string) (*sunspot.Result, error)
	LookupByCoordinates(ctx context.Context, lat, lon, date string) (*sunspot.Result, error)
}

var _ Resolver = (*sunspot.Resolver)(nil)

// Config configures the HTTP server.
type Config struct {
	// Addr is the listen address. Default: ":8000"
	Addr string

	// ReadTimeout bounds reading a request. Default: 15s
	ReadTimeout time.Duration

	// WriteTimeout bounds writing a response. Zero means no limit.
	WriteTimeout time.Duration

	// ShutdownTimeout bounds the graceful drain. Default: 10s
	ShutdownTimeout time.Duration

	// Diagnostics mounts the crash, factorial, timeout and exhaust probes.
	Diagnostics bool
}

// Options wires the server's collaborators.
type Options struct {
	Config Config

	// Resolver answers /api/sunspot. Required.
	Resolver Resolver

	// Health backs /status and /readyz. Default: an empty aggregator.
	Health *health.Aggregator

	// Auth gates paths under AuthPrefix. Nil disables the gate.
	Auth       *auth.APIKeyAuthenticator
	AuthPrefix string

	// Observer supplies tracing, request metrics and the /metrics handler.
	// Nil falls back to Logger with no tracing or metrics.
	Observer observe.Observer

	// Logger is used when Observer is nil. Default: no-op
	Logger observe.Logger

	// Reporter receives recovered panics. Default: none
	Reporter PanicReporter
}

// Server serves the sunspot HTTP API.
//
// Contract:
//   - Concurrency: Handler is safe for concurrent use.
//   - Errors: every failure is answered with a JSON body; a panicking
//     handler yields 500 and never takes the process down.
//   - Lifecycle: Run returns after ctx is cancelled and in-flight requests
//     drain, or ShutdownTimeout elapses.
type Server struct {
	cfg      Config
	resolver Resolver
	logger   observe.Logger
	router   *mux.Router
	handler  http.Handler
}

// New builds the router and middleware chain.
func New(opts Options) (*Server, error) {
	if opts.Resolver == nil {
		return nil, ErrMissingResolver
	}
	cfg := opts.Config
	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	agg := opts.Health
	if agg == nil {
		agg = health.NewAggregator(health.AggregatorConfig{})
	}

	logger := opts.Logger
	if opts.Observer != nil {
		logger = opts.Observer.Logger()
	}
	if logger == nil {
		logger = observe.NopLogger()
	}

	s := &Server{
		cfg:      cfg,
		resolver: opts.Resolver,
		logger:   logger.WithOperation(observe.Operation{Component: "server", Name: "handler"}),
		router:   mux.NewRouter(),
	}
	s.routes(agg, opts.Observer)

	var h http.Handler = s.router
	if opts.Auth != nil {
		h = auth.Middleware(opts.Auth, auth.MiddlewareConfig{Prefix: opts.AuthPrefix, Logger: logger})(h)
	}
	h = Recovery(logger, opts.Reporter)(h)

	var mw *observe.HTTPMiddleware
	if opts.Observer != nil {
		var err error
		mw, err = observe.MiddlewareFromObserver(opts.Observer, s.route)
		if err != nil {
			return nil, err
		}
	} else {
		mw = observe.NewHTTPMiddleware(nil, nil, logger, s.route)
	}
	s.handler = mw.Wrap(h)

	return s, nil
}

func (s *Server) routes(agg *health.Aggregator, obs observe.Observer) {
	r := s.router
	r.StrictSlash(true)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.HandleFunc("/api/sunspot", s.handleSunspot).Methods(http.MethodGet)
	r.HandleFunc("/hello", handleHello).Methods(http.MethodGet)
	r.HandleFunc("/status", health.StatusHandler(agg)).Methods(http.MethodGet)
	r.HandleFunc("/healthz", health.LivenessHandler()).Methods(http.MethodGet)
	r.HandleFunc("/readyz", health.ReadinessHandler(agg)).Methods(http.MethodGet)
	if obs != nil {
		if h := obs.MetricsHandler(); h != nil {
			r.Handle("/metrics", h).Methods(http.MethodGet)
		}
	}

	if s.cfg.Diagnostics {
		r.HandleFunc("/api/crash", handleCrash).Methods(http.MethodGet)
		r.HandleFunc("/api/factorial", handleFactorial).Methods(http.MethodGet)
		r.HandleFunc("/api/timeout", handleTimeout).Methods(http.MethodGet)
		r.HandleFunc("/exhaust/{delay:[0-9]+}", handleExhaust).Methods(http.MethodGet)
	}
}

// route names the matched route template for metrics and logs.
func (s *Server) route(r *http.Request) string {
	var match mux.RouteMatch
	if s.router.Match(r, &match) && match.Route != nil {
		if tpl, err := match.Route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.cfg.Addr
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info(ctx, "server listening", observe.Field{Key: "addr", Value: ln.Addr().String()})

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info(ctx, "server shutting down")
	err := srv.Shutdown(shutdownCtx)
	if serveErr := <-errCh; !errors.Is(serveErr, http.ErrServerClosed) && serveErr != nil {
		return serveErr
	}
	return err
}
