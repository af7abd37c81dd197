package sunspot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ashishkumar256/sunspot/cache"
	"github.com/ashishkumar256/sunspot/dates"
	"github.com/ashishkumar256/sunspot/geocode"
	"github.com/ashishkumar256/sunspot/observe"
	"github.com/ashishkumar256/sunspot/sunapi"
)

// ErrMissingDependency is returned by New when a required option is nil.
var ErrMissingDependency = errors.New("sunspot: missing dependency")

var (
	opLookupByCity        = observe.Operation{Component: "resolver", Name: "lookup_by_city"}
	opLookupByCoordinates = observe.Operation{Component: "resolver", Name: "lookup_by_coordinates"}
)

// Options configures a Resolver.
type Options struct {
	// Store holds sun data entries. Default: cache.Unavailable, which makes
	// every lookup a pass-through.
	Store cache.Store

	// Geocoder resolves cities to coordinates and back. Required.
	Geocoder geocode.Geocoder

	// Provider fetches sun times on a miss. Required.
	Provider sunapi.Provider

	// Dates resolves date parameters and the current day.
	// Default: dates.NewResolver(time.UTC)
	Dates *dates.Resolver

	// Keys builds cache keys. Default: cache.NewKeyBuilder("sunspot")
	Keys *cache.KeyBuilder

	// TTL chooses entry lifetimes. The zero value selects
	// cache.DefaultTTLPolicy.
	TTL cache.TTLPolicy

	// DisableWrites stops the resolver from writing fetched data back.
	DisableWrites bool

	Logger  observe.Logger
	Tracer  observe.Tracer
	Metrics observe.Metrics

	// OnDecision, if set, observes every decision.
	OnDecision DecisionHook
}

// Resolver answers sun data lookups.
//
// Contract:
//   - Concurrency: safe for concurrent use; it holds no mutable state of its
//     own and delegates shared state to the Store.
//   - Errors: failures are *LookupError values whose Kind is one of the
//     package sentinels. Cache failures never surface; they degrade to a
//     miss or a skipped write.
//   - Only the first parseable key a shortcut scan returns is consulted.
type Resolver struct {
	store    cache.Store
	geocoder geocode.Geocoder
	provider sunapi.Provider
	dates    *dates.Resolver
	keys     *cache.KeyBuilder
	ttl      cache.TTLPolicy
	noWrite  bool
	logger   observe.Logger
	tracer   observe.Tracer
	metrics  observe.Metrics
	hook     DecisionHook
}

// New creates a Resolver.
func New(opts Options) (*Resolver, error) {
	if opts.Geocoder == nil {
		return nil, errors.Join(ErrMissingDependency, errors.New("geocoder is required"))
	}
	if opts.Provider == nil {
		return nil, errors.Join(ErrMissingDependency, errors.New("provider is required"))
	}
	if opts.Store == nil {
		opts.Store = cache.Unavailable{}
	}
	if opts.Dates == nil {
		opts.Dates = dates.NewResolver(time.UTC)
	}
	if opts.Keys == nil {
		opts.Keys = cache.NewKeyBuilder(cache.DefaultPrefix)
	}
	if !opts.TTL.ShouldCache() {
		opts.TTL = cache.DefaultTTLPolicy()
	}
	if opts.Logger == nil {
		opts.Logger = observe.NopLogger()
	}
	if opts.Tracer == nil {
		opts.Tracer = observe.NopTracer()
	}
	if opts.Metrics == nil {
		opts.Metrics = observe.NopMetrics()
	}

	return &Resolver{
		store:    opts.Store,
		geocoder: opts.Geocoder,
		provider: opts.Provider,
		dates:    opts.Dates,
		keys:     opts.Keys,
		ttl:      opts.TTL,
		noWrite:  opts.DisableWrites,
		logger:   opts.Logger,
		tracer:   opts.Tracer,
		metrics:  opts.Metrics,
		hook:     opts.OnDecision,
	}, nil
}

// LookupByCity resolves sun data for city on date. An empty date means today.
//
// A cached entry for the city on that date, under any coordinates, answers
// the request without contacting the geocoder.
func (r *Resolver) LookupByCity(ctx context.Context, city, date string) (res *Result, err error) {
	start := time.Now()
	ctx, span := r.tracer.StartSpan(ctx, opLookupByCity, attribute.String("sunspot.city", city))
	defer func() { r.finish(ctx, opLookupByCity, span, start, res, err) }()

	day, err := r.dates.Resolve(date)
	if err != nil {
		return nil, lookupError(ErrInvalidDate, err)
	}

	city = strings.TrimSpace(city)
	if city == "" {
		return nil, lookupError(ErrLocationNotFound, nil)
	}

	if k, data, ok := r.shortcut(ctx, r.keys.CityPattern(city, day)); ok {
		r.decide(ctx, Event{Decision: DecisionCityShortcutHit, Key: k.raw, City: city, Date: day})
		return &Result{
			City:      city,
			Latitude:  k.Latitude,
			Longitude: k.Longitude,
			Date:      day,
			SunData:   data,
			Source:    SourceCache,
		}, nil
	}

	r.decide(ctx, Event{Decision: DecisionGeocodeCall, City: city})
	found, ok := r.geocoder.CityToCoordinates(ctx, city)
	if !ok {
		return nil, lookupError(ErrLocationNotFound, nil)
	}
	coords, cerr := geocode.CanonicalPair(found.Latitude, found.Longitude)
	if cerr != nil {
		return nil, lookupError(ErrLocationNotFound, cerr)
	}

	data, src, err := r.exact(ctx, city, coords, day)
	if err != nil {
		return nil, err
	}
	return &Result{
		City:      city,
		Latitude:  coords.Latitude,
		Longitude: coords.Longitude,
		Date:      day,
		SunData:   data,
		Source:    src,
	}, nil
}

// LookupByCoordinates resolves sun data for lat/lon on date. An empty date
// means today. The reported city is the cache label for the location.
func (r *Resolver) LookupByCoordinates(ctx context.Context, lat, lon, date string) (res *Result, err error) {
	start := time.Now()
	ctx, span := r.tracer.StartSpan(ctx, opLookupByCoordinates,
		attribute.String("sunspot.lat", lat),
		attribute.String("sunspot.lon", lon),
	)
	defer func() { r.finish(ctx, opLookupByCoordinates, span, start, res, err) }()

	day, err := r.dates.Resolve(date)
	if err != nil {
		return nil, lookupError(ErrInvalidDate, err)
	}

	coords, cerr := geocode.CanonicalPair(lat, lon)
	if cerr != nil {
		return nil, lookupError(ErrInvalidCoordinates, cerr)
	}

	if k, data, ok := r.shortcut(ctx, r.keys.CoordinatePattern(coords.Latitude, coords.Longitude, day)); ok {
		r.decide(ctx, Event{Decision: DecisionCoordinateShortcutHit, Key: k.raw, City: k.City, Date: day})
		return &Result{
			City:      k.City,
			Latitude:  coords.Latitude,
			Longitude: coords.Longitude,
			Date:      day,
			SunData:   data,
			Source:    SourceCache,
		}, nil
	}

	r.decide(ctx, Event{Decision: DecisionReverseGeocodeCall})
	label := r.geocoder.CoordinatesToCity(ctx, coords.Latitude, coords.Longitude)
	if strings.TrimSpace(label) == "" {
		label = geocode.FallbackLabel(coords.Latitude, coords.Longitude)
	}

	data, src, err := r.exact(ctx, label, coords, day)
	if err != nil {
		return nil, err
	}
	return &Result{
		City:      r.keys.NormalizeCity(label),
		Latitude:  coords.Latitude,
		Longitude: coords.Longitude,
		Date:      day,
		SunData:   data,
		Source:    src,
	}, nil
}

type matchedKey struct {
	cache.SunKey
	raw string
}

// shortcut returns the payload stored under the first parseable key that
// matches pattern. A corrupt or vanished payload reports false.
func (r *Resolver) shortcut(ctx context.Context, pattern string) (matchedKey, json.RawMessage, bool) {
	for _, raw := range r.store.Keys(ctx, pattern) {
		k, ok := r.keys.Parse(raw)
		if !ok {
			continue
		}
		b, ok := r.store.Get(ctx, raw)
		if !ok {
			return matchedKey{}, nil, false
		}
		data, ok := decodePayload(b)
		if !ok {
			r.decide(ctx, Event{Decision: DecisionCacheCorrupt, Key: raw})
			return matchedKey{}, nil, false
		}
		return matchedKey{SunKey: k, raw: raw}, data, true
	}
	return matchedKey{}, nil, false
}

// exact reads the canonical key and on a miss fetches from upstream and
// writes the result back.
func (r *Resolver) exact(ctx context.Context, city string, coords geocode.Coordinates, day string) (json.RawMessage, Source, error) {
	key := r.keys.Key(city, coords.Latitude, coords.Longitude, day)

	if b, ok := r.store.Get(ctx, key); ok {
		if data, ok := decodePayload(b); ok {
			r.decide(ctx, Event{Decision: DecisionExactHit, Key: key, Date: day})
			return data, SourceCache, nil
		}
		r.decide(ctx, Event{Decision: DecisionCacheCorrupt, Key: key, Date: day})
	} else {
		r.decide(ctx, Event{Decision: DecisionMiss, Key: key, Date: day})
	}

	r.decide(ctx, Event{Decision: DecisionUpstreamCall, Key: key, Date: day})
	data, err := r.provider.SunTimes(ctx, coords.Latitude, coords.Longitude, day)
	if err != nil {
		r.decide(ctx, Event{Decision: DecisionUpstreamFailed, Key: key, Date: day, Err: err})
		return nil, "", lookupError(ErrUpstreamUnavailable, err)
	}
	payload, ok := decodePayload(data)
	if !ok {
		err := errors.New("malformed sun data")
		r.decide(ctx, Event{Decision: DecisionUpstreamFailed, Key: key, Date: day, Err: err})
		return nil, "", lookupError(ErrUpstreamUnavailable, err)
	}

	if r.noWrite || cache.IsUnavailable(r.store) {
		return payload, SourceAPI, nil
	}
	ttl := r.ttl.For(day, r.dates.Today())
	if ttl <= 0 {
		return payload, SourceAPI, nil
	}
	if err := r.store.Set(ctx, key, payload, ttl); err != nil {
		r.decide(ctx, Event{Decision: DecisionCacheWriteFailed, Key: key, Date: day, Err: err})
	} else {
		r.decide(ctx, Event{Decision: DecisionCacheWrite, Key: key, Date: day})
	}
	return payload, SourceAPI, nil
}

func (r *Resolver) finish(ctx context.Context, op observe.Operation, span trace.Span, start time.Time, res *Result, err error) {
	source := ""
	if res != nil {
		source = string(res.Source)
		span.SetAttributes(attribute.String("sunspot.source", source))
	}
	r.tracer.EndSpan(span, err)
	r.metrics.RecordLookup(ctx, op, source, time.Since(start), err)

	if err != nil {
		r.logger.Info(ctx, "lookup failed",
			observe.Field{Key: "operation", Value: op.ID()},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return
	}
	r.logger.Info(ctx, "lookup completed",
		observe.Field{Key: "operation", Value: op.ID()},
		observe.Field{Key: "city", Value: res.City},
		observe.Field{Key: "date", Value: res.Date},
		observe.Field{Key: "source", Value: source},
	)
}

// decodePayload reports whether b holds a usable JSON document.
func decodePayload(b []byte) (json.RawMessage, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || !json.Valid(b) || bytes.Equal(b, []byte("null")) {
		return nil, false
	}
	return json.RawMessage(b), true
}
