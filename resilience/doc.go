// Package resilience guards calls to remote wallet endpoints.
//
// A CircuitBreaker fails fast once an endpoint keeps failing at the transport
// level and lets a probe through after a cooldown. A Bulkhead caps the number
// of calls in flight to one endpoint.
//
//	cb := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("mainnet"))
//	bh := resilience.NewBulkhead(resilience.BulkheadConfig{Name: "mainnet", MaxConcurrent: 16})
//
//	err := bh.Execute(ctx, func() error {
//	    return cb.Execute(func() error { return client.CallContext(ctx, &out, method) })
//	})
package resilience
