package server

import (
	"errors"
	"net/http"

	"github.com/ashishkumar256/sunspot/sunspot"
)

// ErrMissingResolver is returned by New when Options.Resolver is nil.
var ErrMissingResolver = errors.New("server: resolver is required")

// statusFor maps a resolver failure to its HTTP status.
func statusFor(err error) int {
	switch sunspot.Kind(err) {
	case sunspot.ErrInvalidDate, sunspot.ErrInvalidCoordinates:
		return http.StatusBadRequest
	case sunspot.ErrLocationNotFound:
		return http.StatusNotFound
	case sunspot.ErrUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// messageFor renders the client-facing error text for a resolver failure.
// Causes are logged, not returned.
func messageFor(err error, city string) string {
	switch sunspot.Kind(err) {
	case sunspot.ErrInvalidDate:
		return "Invalid date format. Use YYYY-MM-DD, today, yesterday or tomorrow"
	case sunspot.ErrInvalidCoordinates:
		return "Invalid lat/lon format"
	case sunspot.ErrLocationNotFound:
		return "Could not find coordinates for city: " + city
	case sunspot.ErrUpstreamUnavailable:
		return "Sun data service unavailable"
	default:
		return "Internal server error"
	}
}
