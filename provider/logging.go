package provider

import (
	"context"
	"time"

	"github.com/kbukum/walletmux/logger"
)

// WithLogging returns a Middleware that logs each request with the wallet,
// method, duration and outcome.
func WithLogging(log *logger.Logger) Middleware {
	return func(next RequestFunc) RequestFunc {
		return func(ctx context.Context, rec *Record, args RequestArguments) (any, error) {
			start := time.Now()
			result, err := next(ctx, rec, args)

			fields := logger.MergeWithDuration(logger.Fields(
				logger.FieldProvider, rec.Info().Name,
				logger.FieldProviderUUID, rec.UUID(),
				logger.FieldMethod, args.Method,
			), time.Since(start))

			l := log.WithContext(ctx)
			if err != nil {
				fields[logger.FieldError] = err.Error()
				l.Warn("wallet request failed", fields)
			} else {
				l.Debug("wallet request ok", fields)
			}
			return result, err
		}
	}
}
