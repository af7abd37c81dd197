package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ashishkumar256/sunspot/observe"
)

// Nominatim defaults.
const (
	DefaultSearchURL  = "https://nominatim.openstreetmap.org/search"
	DefaultReverseURL = "https://nominatim.openstreetmap.org/reverse"
	DefaultUserAgent  = "SunspotMinimal/1.0"
	DefaultTimeout    = 10 * time.Second
)

// maxResponseBytes caps how much of a provider response is read.
const maxResponseBytes = 1 << 20

// NominatimConfig configures the Nominatim client.
type NominatimConfig struct {
	// SearchURL is the forward geocoding endpoint. Default: DefaultSearchURL
	SearchURL string

	// ReverseURL is the reverse geocoding endpoint. Default: DefaultReverseURL
	ReverseURL string

	// UserAgent is sent on every request; Nominatim's usage policy requires
	// one. Default: DefaultUserAgent
	UserAgent string

	// Timeout bounds each request when HTTPClient is nil. Default: 10s
	Timeout time.Duration

	// HTTPClient overrides the default otelhttp-instrumented client.
	HTTPClient *http.Client

	// Logger receives provider failures. Default: no-op
	Logger observe.Logger
}

// Nominatim is a Geocoder over the Nominatim HTTP API.
type Nominatim struct {
	searchURL  string
	reverseURL string
	userAgent  string
	client     *http.Client
	logger     observe.Logger
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type reverseResult struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		Hamlet  string `json:"hamlet"`
	} `json:"address"`
	Error string `json:"error"`
}

// NewNominatim creates a Nominatim client.
func NewNominatim(cfg NominatimConfig) *Nominatim {
	if cfg.SearchURL == "" {
		cfg.SearchURL = DefaultSearchURL
	}
	if cfg.ReverseURL == "" {
		cfg.ReverseURL = DefaultReverseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}

	return &Nominatim{
		searchURL:  cfg.SearchURL,
		reverseURL: cfg.ReverseURL,
		userAgent:  cfg.UserAgent,
		client:     cfg.HTTPClient,
		logger:     cfg.Logger.WithOperation(observe.Operation{Component: "geocode", Name: "nominatim"}),
	}
}

// CityToCoordinates searches for city and returns the first result. Every
// failure (transport, non-2xx, bad JSON, empty result, malformed numbers) is
// logged and reported as not found.
func (n *Nominatim) CityToCoordinates(ctx context.Context, city string) (Coordinates, bool) {
	city = strings.TrimSpace(city)
	if city == "" {
		return Coordinates{}, false
	}

	params := url.Values{}
	params.Set("city", city)
	params.Set("format", "json")
	params.Set("limit", "1")

	var results []searchResult
	if err := n.getJSON(ctx, n.searchURL, params, &results); err != nil {
		n.logger.Warn(ctx, "error fetching coordinates for city",
			observe.Field{Key: "city", Value: city},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return Coordinates{}, false
	}

	if len(results) == 0 || results[0].Lat == "" || results[0].Lon == "" {
		n.logger.Info(ctx, "no coordinates found for city", observe.Field{Key: "city", Value: city})
		return Coordinates{}, false
	}

	coords, err := CanonicalPair(results[0].Lat, results[0].Lon)
	if err != nil {
		n.logger.Warn(ctx, "provider returned malformed coordinates",
			observe.Field{Key: "city", Value: city},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return Coordinates{}, false
	}
	return coords, true
}

// CoordinatesToCity reverse geocodes lat/lon. The label preference is
// city, town, village, hamlet, then the provider's display name; when all
// are missing or the call fails the label is FallbackLabel(lat, lon).
func (n *Nominatim) CoordinatesToCity(ctx context.Context, lat, lon string) string {
	params := url.Values{}
	params.Set("lat", lat)
	params.Set("lon", lon)
	params.Set("format", "json")

	var result reverseResult
	if err := n.getJSON(ctx, n.reverseURL, params, &result); err != nil {
		n.logger.Warn(ctx, "error reverse geocoding",
			observe.Field{Key: "latitude", Value: lat},
			observe.Field{Key: "longitude", Value: lon},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return FallbackLabel(lat, lon)
	}

	for _, label := range []string{
		result.Address.City,
		result.Address.Town,
		result.Address.Village,
		result.Address.Hamlet,
		result.DisplayName,
	} {
		if label = strings.TrimSpace(label); label != "" {
			return label
		}
	}

	if result.Error != "" {
		n.logger.Info(ctx, "reverse geocoding found nothing",
			observe.Field{Key: "latitude", Value: lat},
			observe.Field{Key: "longitude", Value: lon},
			observe.Field{Key: "provider_error", Value: result.Error},
		)
	}
	return FallbackLabel(lat, lon)
}

func (n *Nominatim) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("error calling geocoding provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("received non-2xx response: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("error unmarshaling geocoding response: %w", err)
	}
	return nil
}

var _ Geocoder = (*Nominatim)(nil)
