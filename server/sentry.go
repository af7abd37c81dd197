package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryConfig configures panic reporting to Sentry.
type SentryConfig struct {
	DSN              string
	Environment      string
	Release          string
	TracesSampleRate float64

	// Transport overrides the HTTP transport; tests use it to capture events.
	Transport sentry.Transport
}

// SentryReporter is a PanicReporter backed by its own Sentry hub.
type SentryReporter struct {
	hub *sentry.Hub
}

// NewSentryReporter creates a reporter. It returns nil, nil when neither a
// DSN nor a transport is configured, which leaves reporting off.
func NewSentryReporter(cfg SentryConfig) (*SentryReporter, error) {
	if cfg.DSN == "" && cfg.Transport == nil {
		return nil, nil
	}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		SampleRate:       1.0,
		TracesSampleRate: cfg.TracesSampleRate,
		AttachStacktrace: true,
		ServerName:       "",
		Transport:        cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("sentry initialization failed: %w", err)
	}
	return &SentryReporter{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

// Report captures a recovered panic along with the request that caused it.
func (s *SentryReporter) Report(r *http.Request, recovered any) {
	hub := s.hub.Clone()
	hub.Scope().SetRequest(r)
	hub.Scope().SetTag("http.path", r.URL.Path)
	hub.RecoverWithContext(r.Context(), recovered)
}

// Flush waits up to timeout for queued events to be delivered.
func (s *SentryReporter) Flush(timeout time.Duration) bool {
	return s.hub.Flush(timeout)
}

var _ PanicReporter = (*SentryReporter)(nil)
