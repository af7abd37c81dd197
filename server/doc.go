// Package server is the HTTP face of sunspot.
//
// It routes requests with gorilla/mux, turns query parameters into resolver
// calls and resolver errors into status codes, and wraps everything in
// telemetry, panic recovery and the API key gate. The handler owns no
// lookup state; all of it lives behind the injected Resolver.
//
// Routes:
//
//	GET /api/sunspot?city=…|lat=…&lon=…[&date=…]  sun data (API key)
//	GET /hello                                    greeting
//	GET /status                                   JSON health report
//	GET /healthz, /readyz                         liveness, readiness
//	GET /metrics                                  Prometheus scrape, when enabled
//
// With Config.Diagnostics set, /api/crash, /api/factorial, /api/timeout and
// /exhaust/{delay} are mounted as load and failure probes.
package server
