package provider

import "context"

// RequestFunc forwards a request to the wallet held by rec.
type RequestFunc func(ctx context.Context, rec *Record, args RequestArguments) (any, error)

// Middleware wraps a RequestFunc with cross-cutting behavior.
type Middleware func(RequestFunc) RequestFunc

// Chain composes middlewares into one. The first middleware is outermost.
//
// Chain(a, b, c)(next) is equivalent to a(b(c(next))).
func Chain(middlewares ...Middleware) Middleware {
	return func(next RequestFunc) RequestFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			if middlewares[i] != nil {
				next = middlewares[i](next)
			}
		}
		return next
	}
}

// forward calls the wallet directly.
func forward(ctx context.Context, rec *Record, args RequestArguments) (any, error) {
	return rec.Provider().Request(ctx, args)
}
