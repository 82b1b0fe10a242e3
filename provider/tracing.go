package provider

import (
	"context"

	"github.com/kbukum/walletmux/observability"
)

// WithTracing returns a Middleware that wraps each request in a span named
// "{serviceName}.{method}".
func WithTracing(serviceName string) Middleware {
	return func(next RequestFunc) RequestFunc {
		return func(ctx context.Context, rec *Record, args RequestArguments) (any, error) {
			ctx, span := observability.StartSpan(ctx, serviceName+"."+args.Method)
			defer span.End()

			observability.SetSpanAttribute(ctx, observability.AttrServiceName, serviceName)
			observability.SetSpanAttribute(ctx, observability.AttrMethod, args.Method)
			observability.SetSpanAttribute(ctx, observability.AttrProvider, rec.Info().Name)
			observability.SetSpanAttribute(ctx, observability.AttrProviderUUID, rec.UUID())

			result, err := next(ctx, rec, args)
			if err != nil {
				observability.SetSpanError(ctx, err)
			}
			return result, err
		}
	}
}
