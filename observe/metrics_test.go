package observe

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func sumOf(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	found := findMetric(rm, name)
	if found == nil {
		return 0
	}
	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64] for %s, got %T", name, found.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

// TestMetrics_LookupCounters verifies total and error counters.
func TestMetrics_LookupCounters(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()
	op := Operation{Component: "resolver", Name: "lookup_by_city"}

	m.RecordLookup(ctx, op, "api", 120*time.Millisecond, nil)
	m.RecordLookup(ctx, op, "cache", 2*time.Millisecond, nil)
	m.RecordLookup(ctx, op, "", 5*time.Millisecond, errors.New("upstream down"))

	rm := collect(t, reader)
	if got := sumOf(t, rm, MetricLookupTotal); got != 3 {
		t.Errorf("%s = %d, want 3", MetricLookupTotal, got)
	}
	if got := sumOf(t, rm, MetricLookupErrors); got != 1 {
		t.Errorf("%s = %d, want 1", MetricLookupErrors, got)
	}
}

// TestMetrics_LookupSourceAttribute verifies the source label splits cache from api.
func TestMetrics_LookupSourceAttribute(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()
	op := Operation{Component: "resolver", Name: "lookup_by_coordinates"}

	m.RecordLookup(ctx, op, "cache", time.Millisecond, nil)
	m.RecordLookup(ctx, op, "cache", time.Millisecond, nil)
	m.RecordLookup(ctx, op, "api", time.Millisecond, nil)

	rm := collect(t, reader)
	sum := findMetric(rm, MetricLookupTotal).Data.(metricdata.Sum[int64])

	bySource := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("lookup.source"))
		bySource[v.AsString()] += dp.Value
	}
	if bySource["cache"] != 2 || bySource["api"] != 1 {
		t.Errorf("unexpected per-source counts: %v", bySource)
	}
}

// TestMetrics_DurationHistogramRecords verifies the duration histogram.
func TestMetrics_DurationHistogramRecords(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordLookup(context.Background(), Operation{Name: "lookup"}, "api", 250*time.Millisecond, nil)

	rm := collect(t, reader)
	found := findMetric(rm, MetricLookupDuration)
	if found == nil {
		t.Fatalf("%s metric not found", MetricLookupDuration)
	}
	hist, ok := found.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", found.Data)
	}
	if len(hist.DataPoints) == 0 || hist.DataPoints[0].Count != 1 {
		t.Fatalf("expected one histogram sample, got %+v", hist.DataPoints)
	}
	if hist.DataPoints[0].Sum != 250 {
		t.Errorf("histogram sum = %v, want 250", hist.DataPoints[0].Sum)
	}
}

// TestMetrics_DecisionsByKind verifies decision counts are labelled.
func TestMetrics_DecisionsByKind(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()
	m.RecordDecision(ctx, "miss")
	m.RecordDecision(ctx, "upstream_call")
	m.RecordDecision(ctx, "miss")

	rm := collect(t, reader)
	sum := findMetric(rm, MetricDecisionTotal).Data.(metricdata.Sum[int64])
	byKind := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("decision"))
		byKind[v.AsString()] += dp.Value
	}
	if byKind["miss"] != 2 || byKind["upstream_call"] != 1 {
		t.Errorf("unexpected decision counts: %v", byKind)
	}
}

// TestMetrics_RequestCounter verifies HTTP request counting.
func TestMetrics_RequestCounter(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordRequest(context.Background(), "GET", "/api/sunspot", 200, time.Millisecond)
	m.RecordRequest(context.Background(), "GET", "/api/sunspot", 503, time.Millisecond)

	rm := collect(t, reader)
	if got := sumOf(t, rm, MetricHTTPRequests); got != 2 {
		t.Errorf("%s = %d, want 2", MetricHTTPRequests, got)
	}
}

// TestMetrics_ConcurrentRecording verifies concurrent use is safe.
func TestMetrics_ConcurrentRecording(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordLookup(ctx, Operation{Name: "lookup"}, "cache", time.Millisecond, nil)
			m.RecordDecision(ctx, "exact_hit")
		}()
	}
	wg.Wait()

	rm := collect(t, reader)
	if got := sumOf(t, rm, MetricLookupTotal); got != 50 {
		t.Errorf("%s = %d, want 50", MetricLookupTotal, got)
	}
	if got := sumOf(t, rm, MetricDecisionTotal); got != 50 {
		t.Errorf("%s = %d, want 50", MetricDecisionTotal, got)
	}
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}
