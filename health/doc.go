// Package health reports whether the sunspot service and its dependencies
// are usable.
//
// Checkers report a Status. An Aggregator runs its registered checkers
// concurrently and folds their results into a Report; the HTTP handlers
// expose reports as liveness, readiness and detailed status endpoints.
//
// A cache that cannot be reached reports Degraded rather than Unhealthy:
// lookups still succeed as pass-through requests to the upstream providers.
//
//	agg := health.NewAggregator(health.AggregatorConfig{})
//	agg.Register(health.NewCacheChecker(store))
//	agg.Register(health.NewMemoryChecker(health.MemoryCheckerConfig{}))
//
//	router.Handle("/healthz", health.LivenessHandler())
//	router.Handle("/readyz", health.ReadinessHandler(agg))
//	router.Handle("/status", health.StatusHandler(agg))
package health
