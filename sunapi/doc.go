// Package sunapi provides sun-times providers.
//
// Remote calls a sunrise-sunset.org compatible HTTP API and returns its
// results object verbatim. Astral computes the same fields locally, so the
// service can run without the upstream dependency.
package sunapi
