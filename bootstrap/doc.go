// Package bootstrap runs the walletmux daemon lifecycle: start registered
// components, run hooks, print a startup summary, block until a signal and
// shut down in reverse order within a graceful timeout.
//
//	app := bootstrap.NewApp(&cfg.ServiceConfig)
//	_ = app.RegisterComponent(hubComponent)
//	app.OnStop(func(ctx context.Context) error { return proxy.Close() })
//	err := app.Run(ctx)
package bootstrap
