package sunspot

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ashishkumar256/sunspot/observe"
)

// Decision names a branch taken while resolving a lookup.
type Decision string

const (
	DecisionCityShortcutHit       Decision = "city_shortcut_hit"
	DecisionCoordinateShortcutHit Decision = "coordinate_shortcut_hit"
	DecisionExactHit              Decision = "exact_hit"
	DecisionMiss                  Decision = "miss"
	DecisionCacheCorrupt          Decision = "cache_corrupt"
	DecisionUpstreamCall          Decision = "upstream_call"
	DecisionUpstreamFailed        Decision = "upstream_failed"
	DecisionCacheWrite            Decision = "cache_write"
	DecisionCacheWriteFailed      Decision = "cache_write_failed"
	DecisionGeocodeCall           Decision = "geocode_call"
	DecisionReverseGeocodeCall    Decision = "reverse_geocode_call"
)

// Event describes one decision. Fields that do not apply are empty.
type Event struct {
	Decision Decision
	Key      string
	City     string
	Date     string
	Err      error
}

// DecisionHook observes decisions as they are made. It runs synchronously on
// the lookup path and must not block.
type DecisionHook func(ctx context.Context, ev Event)

func (r *Resolver) decide(ctx context.Context, ev Event) {
	fields := []observe.Field{{Key: "decision", Value: string(ev.Decision)}}
	attrs := []attribute.KeyValue{attribute.String("sunspot.decision", string(ev.Decision))}
	if ev.Key != "" {
		fields = append(fields, observe.Field{Key: "cache_key", Value: ev.Key})
		attrs = append(attrs, attribute.String("sunspot.cache_key", ev.Key))
	}
	if ev.City != "" {
		fields = append(fields, observe.Field{Key: "city", Value: ev.City})
	}
	if ev.Date != "" {
		fields = append(fields, observe.Field{Key: "date", Value: ev.Date})
	}

	switch {
	case ev.Err != nil:
		fields = append(fields, observe.Field{Key: "error", Value: ev.Err.Error()})
		r.logger.Warn(ctx, string(ev.Decision), fields...)
	case ev.Decision == DecisionCacheCorrupt:
		r.logger.Warn(ctx, string(ev.Decision), fields...)
	default:
		r.logger.Debug(ctx, string(ev.Decision), fields...)
	}

	trace.SpanFromContext(ctx).AddEvent(string(ev.Decision), trace.WithAttributes(attrs...))
	r.metrics.RecordDecision(ctx, string(ev.Decision))
	if r.hook != nil {
		r.hook(ctx, ev)
	}
}
