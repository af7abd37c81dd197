package sunspot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/ashishkumar256/sunspot/cache"
	"github.com/ashishkumar256/sunspot/dates"
	"github.com/ashishkumar256/sunspot/geocode"
	"github.com/ashishkumar256/sunspot/sunapi"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const today = "2024-06-01"

type fakeGeocoder struct {
	coords    map[string]geocode.Coordinates
	label     string
	forward   atomic.Int32
	reverseCt atomic.Int32
}

func (g *fakeGeocoder) CityToCoordinates(_ context.Context, city string) (geocode.Coordinates, bool) {
	g.forward.Add(1)
	c, ok := g.coords[city]
	return c, ok
}

func (g *fakeGeocoder) CoordinatesToCity(_ context.Context, lat, lon string) string {
	g.reverseCt.Add(1)
	if g.label == "" {
		return geocode.FallbackLabel(lat, lon)
	}
	return g.label
}

type fakeProvider struct {
	calls atomic.Int32
	err   error
}

func (p *fakeProvider) SunTimes(_ context.Context, lat, lon, date string) (json.RawMessage, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return json.RawMessage(fmt.Sprintf(`{"sunrise":"05:47","lat":%q,"lon":%q,"date":%q}`, lat, lon, date)), nil
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) hook(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) decisions() []Decision {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Decision, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Decision)
	}
	return out
}

func (r *recorder) has(d Decision) bool {
	for _, got := range r.decisions() {
		if got == d {
			return true
		}
	}
	return false
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type fixture struct {
	resolver *Resolver
	store    cache.Store
	geo      *fakeGeocoder
	provider *fakeProvider
	rec      *recorder
}

func newFixture(t *testing.T, store cache.Store) *fixture {
	t.Helper()
	f := &fixture{
		store: store,
		geo: &fakeGeocoder{
			coords: map[string]geocode.Coordinates{
				"Paris": {Latitude: "48.8566", Longitude: "2.3522"},
				"Cairo": {Latitude: "30.0444", Longitude: "31.2357"},
			},
			label: "Paris",
		},
		provider: &fakeProvider{},
		rec:      &recorder{},
	}
	d := dates.NewResolver(time.UTC)
	d.Now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

	r, err := New(Options{
		Store:      store,
		Geocoder:   f.geo,
		Provider:   f.provider,
		Dates:      d,
		OnDecision: f.rec.hook,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	f.resolver = r
	return f
}

func TestNew_RequiresDependencies(t *testing.T) {
	if _, err := New(Options{Provider: &fakeProvider{}}); !errors.Is(err, ErrMissingDependency) {
		t.Errorf("missing geocoder error = %v, want ErrMissingDependency", err)
	}
	if _, err := New(Options{Geocoder: &fakeGeocoder{}}); !errors.Is(err, ErrMissingDependency) {
		t.Errorf("missing provider error = %v, want ErrMissingDependency", err)
	}
}

func TestLookupByCity_MissThenHit(t *testing.T) {
	store := cache.NewMemoryStore()
	f := newFixture(t, store)
	ctx := context.Background()

	res, err := f.resolver.LookupByCity(ctx, "  Paris ", "")
	if err != nil {
		t.Fatalf("LookupByCity() error = %v", err)
	}
	if res.Source != SourceAPI {
		t.Errorf("Source = %q, want %q", res.Source, SourceAPI)
	}
	if res.City != "Paris" || res.Latitude != "48.8566" || res.Longitude != "2.3522" || res.Date != today {
		t.Errorf("result = %+v", res)
	}

	key := "sunspot:paris:48.8566:2.3522:" + today
	if _, ok := store.Get(ctx, key); !ok {
		t.Fatalf("expected %q to be cached", key)
	}
	if ttl, ok := store.TTL(ctx, key); !ok || ttl > time.Hour || ttl < 59*time.Minute {
		t.Errorf("TTL(today) = %v, want about 1h", ttl)
	}

	f.rec.reset()
	res2, err := f.resolver.LookupByCity(ctx, "Paris", "today")
	if err != nil {
		t.Fatalf("second LookupByCity() error = %v", err)
	}
	if res2.Source != SourceCache {
		t.Errorf("second Source = %q, want %q", res2.Source, SourceCache)
	}
	if string(res2.SunData) != string(res.SunData) {
		t.Errorf("SunData = %s, want %s", res2.SunData, res.SunData)
	}
	if got := f.geo.forward.Load(); got != 1 {
		t.Errorf("geocoder calls = %d, want 1", got)
	}
	if got := f.provider.calls.Load(); got != 1 {
		t.Errorf("provider calls = %d, want 1", got)
	}
	if !f.rec.has(DecisionCityShortcutHit) {
		t.Errorf("decisions = %v, want city_shortcut_hit", f.rec.decisions())
	}
}

func TestLookupByCity_Decisions(t *testing.T) {
	f := newFixture(t, cache.NewMemoryStore())

	if _, err := f.resolver.LookupByCity(context.Background(), "Paris", ""); err != nil {
		t.Fatalf("LookupByCity() error = %v", err)
	}

	want := []Decision{DecisionGeocodeCall, DecisionMiss, DecisionUpstreamCall, DecisionCacheWrite}
	got := f.rec.decisions()
	if len(got) != len(want) {
		t.Fatalf("decisions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("decision[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLookupByCity_PastDateUsesLongTTL(t *testing.T) {
	store := cache.NewMemoryStore()
	f := newFixture(t, store)
	ctx := context.Background()

	if _, err := f.resolver.LookupByCity(ctx, "Cairo", "2024-01-15"); err != nil {
		t.Fatalf("LookupByCity() error = %v", err)
	}
	ttl, ok := store.TTL(ctx, "sunspot:cairo:30.0444:31.2357:2024-01-15")
	if !ok {
		t.Fatal("expected entry to be cached")
	}
	if ttl <= time.Hour || ttl > 7*24*time.Hour {
		t.Errorf("TTL(past) = %v, want about 7 days", ttl)
	}
}

func TestLookupByCity_FromCoordinateEntry(t *testing.T) {
	f := newFixture(t, cache.NewMemoryStore())
	ctx := context.Background()

	if _, err := f.resolver.LookupByCoordinates(ctx, "48.85660", "2.3522", ""); err != nil {
		t.Fatalf("LookupByCoordinates() error = %v", err)
	}

	res, err := f.resolver.LookupByCity(ctx, "PARIS", "")
	if err != nil {
		t.Fatalf("LookupByCity() error = %v", err)
	}
	if res.Source != SourceCache {
		t.Errorf("Source = %q, want cache", res.Source)
	}
	if res.City != "PARIS" {
		t.Errorf("City = %q, want the requested city", res.City)
	}
	if res.Latitude != "48.8566" || res.Longitude != "2.3522" {
		t.Errorf("coordinates = %s,%s, want embedded key values", res.Latitude, res.Longitude)
	}
	if got := f.geo.forward.Load(); got != 0 {
		t.Errorf("geocoder calls = %d, want 0", got)
	}
}

func TestLookupByCity_NotFound(t *testing.T) {
	f := newFixture(t, cache.NewMemoryStore())

	_, err := f.resolver.LookupByCity(context.Background(), "Atlantis", "")
	if !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("error = %v, want ErrLocationNotFound", err)
	}
	var le *LookupError
	if !errors.As(err, &le) || le.Kind != ErrLocationNotFound {
		t.Errorf("error = %#v, want *LookupError with kind ErrLocationNotFound", err)
	}
	if got := f.provider.calls.Load(); got != 0 {
		t.Errorf("provider calls = %d, want 0", got)
	}
}

func TestLookupByCity_EmptyCity(t *testing.T) {
	f := newFixture(t, cache.NewMemoryStore())

	if _, err := f.resolver.LookupByCity(context.Background(), "   ", ""); !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("error = %v, want ErrLocationNotFound", err)
	}
	if got := f.geo.forward.Load(); got != 0 {
		t.Errorf("geocoder calls = %d, want 0", got)
	}
}

func TestLookup_InvalidDate(t *testing.T) {
	f := newFixture(t, cache.NewMemoryStore())
	ctx := context.Background()

	for _, date := range []string{"not-a-date", "2024-13-45", "someday"} {
		t.Run(date, func(t *testing.T) {
			if _, err := f.resolver.LookupByCity(ctx, "Paris", date); !errors.Is(err, ErrInvalidDate) {
				t.Errorf("LookupByCity error = %v, want ErrInvalidDate", err)
			}
			if _, err := f.resolver.LookupByCoordinates(ctx, "1", "2", date); !errors.Is(err, ErrInvalidDate) {
				t.Errorf("LookupByCoordinates error = %v, want ErrInvalidDate", err)
			}
		})
	}

	if got := f.geo.forward.Load() + f.geo.reverseCt.Load() + f.provider.calls.Load(); got != 0 {
		t.Errorf("upstream calls = %d, want 0", got)
	}
}

func TestLookupByCoordinates_InvalidCoordinates(t *testing.T) {
	f := newFixture(t, cache.NewMemoryStore())

	tests := []struct {
		name     string
		lat, lon string
	}{
		{"non-numeric lat", "abc", "2"},
		{"non-numeric lon", "1", "east"},
		{"empty", "", ""},
		{"lat out of range", "91", "0"},
		{"lon out of range", "0", "-180.5"},
		{"nan", "NaN", "0"},
		{"inf", "0", "+Inf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.resolver.LookupByCoordinates(context.Background(), tt.lat, tt.lon, "")
			if !errors.Is(err, ErrInvalidCoordinates) {
				t.Errorf("error = %v, want ErrInvalidCoordinates", err)
			}
		})
	}
	if got := f.geo.reverseCt.Load() + f.provider.calls.Load(); got != 0 {
		t.Errorf("upstream calls = %d, want 0", got)
	}
}

func TestLookupByCoordinates_Canonicalization(t *testing.T) {
	store := cache.NewMemoryStore()
	f := newFixture(t, store)
	ctx := context.Background()

	first, err := f.resolver.LookupByCoordinates(ctx, "40", "-74", "2024-06-02")
	if err != nil {
		t.Fatalf("first lookup error = %v", err)
	}
	second, err := f.resolver.LookupByCoordinates(ctx, "40.0", "-74.000", "2024-06-02")
	if err != nil {
		t.Fatalf("second lookup error = %v", err)
	}

	if first.Source != SourceAPI || second.Source != SourceCache {
		t.Errorf("sources = %q, %q, want api, cache", first.Source, second.Source)
	}
	if second.Latitude != "40" || second.Longitude != "-74" {
		t.Errorf("coordinates = %s,%s, want 40,-74", second.Latitude, second.Longitude)
	}
	if got := f.provider.calls.Load(); got != 1 {
		t.Errorf("provider calls = %d, want 1", got)
	}
	if _, ok := store.Get(ctx, "sunspot:paris:40:-74:2024-06-02"); !ok {
		t.Error("expected canonical key to be cached")
	}
}

func TestLookupByCoordinates_ReportsCacheLabel(t *testing.T) {
	f := newFixture(t, cache.NewMemoryStore())
	ctx := context.Background()

	miss, err := f.resolver.LookupByCoordinates(ctx, "48.8566", "2.3522", "")
	if err != nil {
		t.Fatalf("miss error = %v", err)
	}
	hit, err := f.resolver.LookupByCoordinates(ctx, "48.8566", "2.3522", "")
	if err != nil {
		t.Fatalf("hit error = %v", err)
	}
	if miss.City != "paris" || hit.City != "paris" {
		t.Errorf("cities = %q, %q, want paris for both", miss.City, hit.City)
	}
	if got := f.geo.reverseCt.Load(); got != 1 {
		t.Errorf("reverse geocode calls = %d, want 1", got)
	}
	if !f.rec.has(DecisionCoordinateShortcutHit) {
		t.Errorf("decisions = %v, want coordinate_shortcut_hit", f.rec.decisions())
	}
}

func TestLookupByCoordinates_FromCityEntry(t *testing.T) {
	f := newFixture(t, cache.NewMemoryStore())
	ctx := context.Background()

	if _, err := f.resolver.LookupByCity(ctx, "Cairo", ""); err != nil {
		t.Fatalf("LookupByCity() error = %v", err)
	}
	res, err := f.resolver.LookupByCoordinates(ctx, "30.0444", "31.2357", "")
	if err != nil {
		t.Fatalf("LookupByCoordinates() error = %v", err)
	}
	if res.Source != SourceCache || res.City != "cairo" {
		t.Errorf("result = %+v, want cache hit labelled cairo", res)
	}
	if got := f.geo.reverseCt.Load(); got != 0 {
		t.Errorf("reverse geocode calls = %d, want 0", got)
	}
}

func TestLookupByCoordinates_NearbyIsAMiss(t *testing.T) {
	f := newFixture(t, cache.NewMemoryStore())
	ctx := context.Background()

	if _, err := f.resolver.LookupByCity(ctx, "Paris", ""); err != nil {
		t.Fatalf("LookupByCity() error = %v", err)
	}
	res, err := f.resolver.LookupByCoordinates(ctx, "48.857", "2.352", "")
	if err != nil {
		t.Fatalf("LookupByCoordinates() error = %v", err)
	}
	if res.Source != SourceAPI {
		t.Errorf("Source = %q, want api", res.Source)
	}
	if got := f.provider.calls.Load(); got != 2 {
		t.Errorf("provider calls = %d, want 2", got)
	}
}

func TestLookupByCoordinates_FallbackLabel(t *testing.T) {
	f := newFixture(t, cache.NewMemoryStore())
	f.geo.label = ""

	res, err := f.resolver.LookupByCoordinates(context.Background(), "-33.8688", "151.2093", "")
	if err != nil {
		t.Fatalf("LookupByCoordinates() error = %v", err)
	}
	if want := "location -33.8688, 151.2093"; res.City != want {
		t.Errorf("City = %q, want %q", res.City, want)
	}
}

func TestLookup_UpstreamFailure(t *testing.T) {
	store := cache.NewMemoryStore()
	f := newFixture(t, store)
	f.provider.err = fmt.Errorf("%w: status INVALID_REQUEST", sunapi.ErrUnavailable)
	ctx := context.Background()

	_, err := f.resolver.LookupByCity(ctx, "Paris", "")
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("error = %v, want ErrUpstreamUnavailable", err)
	}
	if !errors.Is(err, sunapi.ErrUnavailable) {
		t.Errorf("error = %v, want cause to be preserved", err)
	}
	if errors.Is(err, ErrLocationNotFound) || errors.Is(err, ErrInvalidDate) {
		t.Errorf("error = %v conflated with another kind", err)
	}
	if Kind(err) != ErrUpstreamUnavailable {
		t.Errorf("Kind() = %v, want ErrUpstreamUnavailable", Kind(err))
	}
	if got := store.Len(); got != 0 {
		t.Errorf("store has %d entries, want 0 after failure", got)
	}
	if !f.rec.has(DecisionUpstreamFailed) {
		t.Errorf("decisions = %v, want upstream_failed", f.rec.decisions())
	}
}

func TestLookup_CorruptEntries(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"invalid json", "{not json"},
		{"null", "null"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := cache.NewMemoryStore()
			f := newFixture(t, store)
			ctx := context.Background()
			key := "sunspot:paris:48.8566:2.3522:" + today
			_ = store.Set(ctx, key, []byte(tt.payload), time.Hour)

			res, err := f.resolver.LookupByCity(ctx, "Paris", "")
			if err != nil {
				t.Fatalf("LookupByCity() error = %v", err)
			}
			if res.Source != SourceAPI {
				t.Errorf("Source = %q, want api", res.Source)
			}
			if !f.rec.has(DecisionCacheCorrupt) {
				t.Errorf("decisions = %v, want cache_corrupt", f.rec.decisions())
			}
			b, ok := store.Get(ctx, key)
			if !ok || !json.Valid(b) {
				t.Errorf("entry = %q, want overwritten with fresh data", b)
			}
		})
	}
}

func TestLookup_MalformedMatchedKeyIsSkipped(t *testing.T) {
	store := cache.NewMemoryStore()
	f := newFixture(t, store)
	ctx := context.Background()
	_ = store.Set(ctx, "sunspot:paris:extra:48.8566:2.3522:"+today, []byte(`{"sunrise":"x"}`), time.Hour)

	res, err := f.resolver.LookupByCity(ctx, "Paris", "")
	if err != nil {
		t.Fatalf("LookupByCity() error = %v", err)
	}
	if res.Source != SourceAPI {
		t.Errorf("Source = %q, want api", res.Source)
	}
}

func TestLookup_CacheUnavailable(t *testing.T) {
	f := newFixture(t, cache.Unavailable{Reason: errors.New("connection refused")})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := f.resolver.LookupByCity(ctx, "Paris", "")
		if err != nil {
			t.Fatalf("LookupByCity() error = %v", err)
		}
		if res.Source != SourceAPI {
			t.Errorf("Source = %q, want api", res.Source)
		}
	}
	if got := f.provider.calls.Load(); got != 2 {
		t.Errorf("provider calls = %d, want 2", got)
	}
	if f.rec.has(DecisionCacheWrite) {
		t.Error("unexpected cache_write with an unavailable store")
	}
}

type failingWrites struct {
	*cache.MemoryStore
}

func (failingWrites) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("READONLY replica")
}

func TestLookup_CacheWriteFailure(t *testing.T) {
	f := newFixture(t, failingWrites{cache.NewMemoryStore()})

	res, err := f.resolver.LookupByCity(context.Background(), "Paris", "")
	if err != nil {
		t.Fatalf("LookupByCity() error = %v", err)
	}
	if res.Source != SourceAPI {
		t.Errorf("Source = %q, want api", res.Source)
	}
	if !f.rec.has(DecisionCacheWriteFailed) {
		t.Errorf("decisions = %v, want cache_write_failed", f.rec.decisions())
	}
}

func TestLookup_Concurrent(t *testing.T) {
	f := newFixture(t, cache.NewMemoryStore())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = f.resolver.LookupByCity(ctx, "Paris", "")
			} else {
				_, err = f.resolver.LookupByCoordinates(ctx, "48.8566", "2.3522", "")
			}
			if err != nil {
				t.Errorf("lookup %d error = %v", i, err)
			}
		}(i)
	}
	wg.Wait()
}
