// Package resilience provides the bounded retry used when sunspot dials its
// cache tier at startup.
//
// Lookups themselves never retry: upstream calls are single attempt and a
// failure surfaces immediately. Retry exists so a cache that comes up a few
// seconds after the service is still picked up.
//
//	r := resilience.NewRetry(resilience.RetryConfig{
//	    MaxAttempts:  5,
//	    InitialDelay: 2 * time.Second,
//	    Strategy:     resilience.BackoffConstant,
//	})
//	err := r.Execute(ctx, func(ctx context.Context) error {
//	    return store.Ping(ctx)
//	})
package resilience
