package observe

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records lookup, decision and HTTP request metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordLookup records one resolver lookup. source is "cache" or "api"
	// on success and empty on failure.
	RecordLookup(ctx context.Context, op Operation, source string, duration time.Duration, err error)

	// RecordDecision counts one resolver decision point (cache hit, miss,
	// upstream call, ...).
	RecordDecision(ctx context.Context, decision string)

	// RecordRequest counts one served HTTP request.
	RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration)
}

// Metric instrument names.
const (
	MetricLookupTotal    = "sunspot.lookup.total"
	MetricLookupErrors   = "sunspot.lookup.errors"
	MetricLookupDuration = "sunspot.lookup.duration_ms"
	MetricDecisionTotal  = "sunspot.decision.total"
	MetricHTTPRequests   = "sunspot.http.requests"
)

type metricsImpl struct {
	totalCount    metric.Int64Counter
	errorCount    metric.Int64Counter
	durationHist  metric.Float64Histogram
	decisionCount metric.Int64Counter
	requestCount  metric.Int64Counter
}

// NewMetrics creates the sunspot instruments on the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		MetricLookupTotal,
		metric.WithDescription("Total number of sun data lookups"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		MetricLookupErrors,
		metric.WithDescription("Total number of failed sun data lookups"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		MetricLookupDuration,
		metric.WithDescription("Sun data lookup duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	decisionCount, err := meter.Int64Counter(
		MetricDecisionTotal,
		metric.WithDescription("Resolver decision points by kind"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, err
	}

	requestCount, err := meter.Int64Counter(
		MetricHTTPRequests,
		metric.WithDescription("HTTP requests served by route and status"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:    totalCount,
		errorCount:    errorCount,
		durationHist:  durationHist,
		decisionCount: decisionCount,
		requestCount:  requestCount,
	}, nil
}

// MetricsFromObserver creates Metrics on the observer's meter.
func MetricsFromObserver(obs Observer) (Metrics, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	return NewMetrics(obs.Meter())
}

func (m *metricsImpl) RecordLookup(ctx context.Context, op Operation, source string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("operation.id", op.ID()),
	}
	if source != "" {
		attrs = append(attrs, attribute.String("lookup.source", source))
	}
	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordDecision(ctx context.Context, decision string) {
	m.decisionCount.Add(ctx, 1, metric.WithAttributes(attribute.String("decision", decision)))
}

func (m *metricsImpl) RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	m.requestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.String("http.status_code", strconv.Itoa(status)),
	))
}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics {
	return noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) RecordLookup(context.Context, Operation, string, time.Duration, error) {}
func (noopMetrics) RecordDecision(context.Context, string)                               {}
func (noopMetrics) RecordRequest(context.Context, string, string, int, time.Duration)    {}
