// Package geocode translates between city names and coordinates.
//
// Nominatim talks to an OpenStreetMap Nominatim-compatible service. Its two
// operations never return errors: a failed forward lookup reports
// not-found, and a failed reverse lookup synthesizes a "Location {lat}, {lon}"
// label. Caching wraps any Geocoder with a coordinate cache for forward
// lookups.
//
// Coordinates travel as canonical decimal strings (see Canonical) so that
// "40" and "40.0" produce identical cache keys downstream.
package geocode
