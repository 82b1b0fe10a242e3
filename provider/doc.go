// Package provider aggregates multiple announced wallet providers behind a
// single provider surface.
//
// A Registry tracks every announced wallet keyed by its uuid. A Proxy wraps the
// registry and adds three behaviors:
//   - Selection: SetCurrentProvider picks the active wallet. An unknown uuid
//     clears the selection instead of failing.
//   - Request multiplexing: Request forwards to the wallet that is active when
//     the call starts. A later switch never redirects a call already in flight.
//   - Event proxying: a fixed vocabulary of relay listeners is moved from the
//     previous wallet to the new one on every switch, so subscribers of the
//     proxy keep one stable subscription across switches.
//
// Basic usage:
//
//	bus := announce.NewBus()
//	proxy := provider.NewProxy(provider.WithAnnouncer(bus))
//	defer proxy.Close()
//
//	proxy.On(provider.EventAccountsChanged, provider.NewListener(func(ev provider.Event) {
//	    fmt.Println("accounts:", ev.Data)
//	}))
//	proxy.SetCurrentProvider(uuid)
//	chainID, err := proxy.Request(ctx, provider.RequestArguments{Method: "eth_chainId"})
//
// # Middleware
//
// Requests pass through an optional Middleware chain before reaching the wallet:
//
//	proxy := provider.NewProxy(
//	    provider.WithMiddleware(
//	        provider.WithLogging(log),
//	        provider.WithMetrics(metrics),
//	        provider.WithTracing("walletmux"),
//	    ),
//	)
//
// Middlewares observe requests. They never rewrite results or errors.
package provider
