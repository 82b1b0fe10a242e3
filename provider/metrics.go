package provider

import (
	"context"
	"time"

	"github.com/kbukum/walletmux/observability"
)

// WithMetrics returns a Middleware that records request count and duration.
func WithMetrics(metrics *observability.Metrics) Middleware {
	return func(next RequestFunc) RequestFunc {
		return func(ctx context.Context, rec *Record, args RequestArguments) (any, error) {
			start := time.Now()
			result, err := next(ctx, rec, args)

			status := "ok"
			if err != nil {
				status = "error"
			}
			metrics.RecordRequest(ctx, rec.Info().Name, args.Method, status, time.Since(start))
			return result, err
		}
	}
}
