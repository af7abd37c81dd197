package sunapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Remote defaults.
const (
	DefaultURL     = "https://api.sunrise-sunset.org/json"
	DefaultTimeout = 10 * time.Second
)

const maxResponseBytes = 1 << 20

// RemoteConfig configures the remote provider.
type RemoteConfig struct {
	// URL is the API endpoint. Default: DefaultURL
	URL string

	// Formatted=false requests ISO-8601 timestamps and a numeric day length
	// (formatted=0). Default: true, matching the API default.
	Formatted *bool

	// Timeout bounds each request when HTTPClient is nil. Default: 10s
	Timeout time.Duration

	// HTTPClient overrides the default otelhttp-instrumented client.
	HTTPClient *http.Client
}

// Remote is a Provider over a sunrise-sunset.org compatible API.
type Remote struct {
	url       string
	formatted bool
	client    *http.Client
}

type apiResponse struct {
	Results json.RawMessage `json:"results"`
	Status  string          `json:"status"`
}

// NewRemote creates a remote provider.
func NewRemote(cfg RemoteConfig) *Remote {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
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
	formatted := true
	if cfg.Formatted != nil {
		formatted = *cfg.Formatted
	}
	return &Remote{url: cfg.URL, formatted: formatted, client: cfg.HTTPClient}
}

// SunTimes fetches sun times. The payload is the API's results object.
func (r *Remote) SunTimes(ctx context.Context, lat, lon, date string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("lat", lat)
	params.Set("lng", lon)
	if date != "" {
		params.Set("date", date)
	}
	if !r.formatted {
		params.Set("formatted", "0")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: error creating request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: error calling sun times provider: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: received non-2xx response: %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: error reading response body: %v", ErrUnavailable, err)
	}

	var payload apiResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: error unmarshaling response: %v", ErrUnavailable, err)
	}
	if payload.Status != "OK" {
		return nil, fmt.Errorf("%w: provider status %q", ErrUnavailable, payload.Status)
	}
	results := bytes.TrimSpace(payload.Results)
	if len(results) == 0 || bytes.Equal(results, []byte("null")) {
		return nil, fmt.Errorf("%w: provider returned no results", ErrUnavailable)
	}
	return json.RawMessage(results), nil
}

var _ Provider = (*Remote)(nil)
