package geocode

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidCoordinates indicates a latitude or longitude that is not a
// finite number within range.
var ErrInvalidCoordinates = errors.New("geocode: invalid coordinates")

// ErrNotFound indicates a forward lookup produced no usable result.
var ErrNotFound = errors.New("geocode: location not found")

// Coordinates is a latitude/longitude pair in canonical decimal form.
type Coordinates struct {
	Latitude  string `json:"lat"`
	Longitude string `json:"lon"`
}

// Geocoder resolves city names to coordinates and back.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Errors: neither method fails outward. CityToCoordinates reports
//     (Coordinates{}, false) when nothing was found or the provider failed;
//     CoordinatesToCity always returns a non-empty label.
//   - Coordinates in and out are canonical (see Canonical).
type Geocoder interface {
	CityToCoordinates(ctx context.Context, city string) (Coordinates, bool)
	CoordinatesToCity(ctx context.Context, lat, lon string) string
}

// Canonical parses a decimal coordinate and re-renders it in the shortest
// representation that round-trips, so "40", "40.0" and " 40.000 " collapse
// to "40".
func Canonical(v string) (string, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidCoordinates, v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCoordinates, v)
	}
	if f == 0 {
		f = 0 // normalize -0
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

// CanonicalPair canonicalizes a latitude/longitude pair and checks that
// |lat| <= 90 and |lon| <= 180.
func CanonicalPair(lat, lon string) (Coordinates, error) {
	clat, err := Canonical(lat)
	if err != nil {
		return Coordinates{}, err
	}
	clon, err := Canonical(lon)
	if err != nil {
		return Coordinates{}, err
	}

	flat, _ := strconv.ParseFloat(clat, 64)
	flon, _ := strconv.ParseFloat(clon, 64)
	if math.Abs(flat) > 90 {
		return Coordinates{}, fmt.Errorf("%w: latitude %s out of range", ErrInvalidCoordinates, clat)
	}
	if math.Abs(flon) > 180 {
		return Coordinates{}, fmt.Errorf("%w: longitude %s out of range", ErrInvalidCoordinates, clon)
	}
	return Coordinates{Latitude: clat, Longitude: clon}, nil
}

// FallbackLabel is the label used when reverse geocoding yields nothing.
func FallbackLabel(lat, lon string) string {
	return fmt.Sprintf("Location %s, %s", lat, lon)
}
