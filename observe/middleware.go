package observe

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

// RouteFunc names the route a request matched, for low-cardinality metrics.
type RouteFunc func(r *http.Request) string

// HTTPMiddleware wraps HTTP handlers with tracing, metrics, and logging.
//
// Contract:
//   - Concurrency: Wrap returns a handler safe for concurrent use.
//   - Context: incoming trace context is extracted and the server span is
//     placed in the request context.
//   - Ownership: request and response bodies pass through unmodified.
type HTTPMiddleware struct {
	provider trace.TracerProvider
	metrics  Metrics
	logger   Logger
	route    RouteFunc
}

// NewHTTPMiddleware creates an HTTPMiddleware. A nil route func records the
// raw URL path.
func NewHTTPMiddleware(provider trace.TracerProvider, metrics Metrics, logger Logger, route RouteFunc) *HTTPMiddleware {
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	if route == nil {
		route = func(r *http.Request) string { return r.URL.Path }
	}
	return &HTTPMiddleware{
		provider: provider,
		metrics:  metrics,
		logger:   logger.WithOperation(Operation{Component: "http", Name: "request"}),
		route:    route,
	}
}

// Wrap wraps next so each request runs inside an otelhttp server span and
// is counted and logged once it completes.
func (m *HTTPMiddleware) Wrap(next http.Handler) http.Handler {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		route := m.route(r)
		m.metrics.RecordRequest(r.Context(), r.Method, route, rec.status, duration)

		fields := []Field{
			{Key: "http.method", Value: r.Method},
			{Key: "http.route", Value: route},
			{Key: "http.status_code", Value: rec.status},
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}
		if rec.status >= http.StatusInternalServerError {
			m.logger.Error(r.Context(), "request failed", fields...)
		} else {
			m.logger.Info(r.Context(), "request completed", fields...)
		}
	})

	opts := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	}
	if m.provider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(m.provider))
	}
	return otelhttp.NewHandler(inner, "sunspot.http", opts...)
}

// MiddlewareFromObserver creates an HTTPMiddleware from an Observer.
func MiddlewareFromObserver(obs Observer, route RouteFunc) (*HTTPMiddleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewHTTPMiddleware(obs.TracerProvider(), metrics, obs.Logger(), route), nil
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
