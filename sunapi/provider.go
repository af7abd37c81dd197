package sunapi

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrUnavailable indicates the provider could not produce sun times: the
// upstream was unreachable, answered with a non-OK status, or the sun does
// not rise or set at the location on that date.
var ErrUnavailable = errors.New("sunapi: sun times unavailable")

// Provider returns sun times for a location and day.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - lat/lon are canonical decimal strings; date is YYYY-MM-DD.
//   - Errors: every failure wraps ErrUnavailable. Calls are single-attempt.
//   - The returned payload is an opaque JSON object owned by the caller.
type Provider interface {
	SunTimes(ctx context.Context, lat, lon, date string) (json.RawMessage, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, lat, lon, date string) (json.RawMessage, error)

// SunTimes calls f.
func (f ProviderFunc) SunTimes(ctx context.Context, lat, lon, date string) (json.RawMessage, error) {
	return f(ctx, lat, lon, date)
}
