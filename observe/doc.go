// Package observe provides the telemetry primitives shared by the sunspot
// service: an OpenTelemetry observer (tracer, meter, exporters), a JSON
// structured logger, lookup metrics and an HTTP middleware.
//
// It performs no I/O beyond exporter setup and log writes. The resolver and
// the HTTP server receive these primitives by injection; nothing here is a
// process-wide singleton except the OpenTelemetry globals that NewObserver
// installs for third-party instrumentation (otelhttp, redisotel).
package observe
