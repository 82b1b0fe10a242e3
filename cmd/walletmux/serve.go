package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/walletmux/bootstrap"
	"github.com/kbukum/walletmux/bridge"
	"github.com/kbukum/walletmux/config"
	"github.com/kbukum/walletmux/logger"
	"github.com/kbukum/walletmux/observability"
	"github.com/kbukum/walletmux/provider"
	"github.com/kbukum/walletmux/sse"
	"github.com/kbukum/walletmux/version"
)

func newServeCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bridge until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, cmd.OutOrStdout(), nil)
		},
	}
}

// runServe wires and runs the daemon until ctx ends or a signal arrives.
// ready, when set, receives the bridge address once startup is complete.
func runServe(ctx context.Context, cfg *config.Config, out io.Writer, ready func(addr string)) error {
	if ctx == nil {
		ctx = context.Background()
	}
	app := bootstrap.NewApp(&cfg.ServiceConfig, bootstrap.WithSummaryOutput(out))
	logger.RegisterDefaults(componentLoggers...)
	log := app.Logger

	shutdownTelemetry, err := observability.Setup(ctx, cfg.Telemetry, cfg.Name, version.Get().Short())
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			log.Warn("telemetry shutdown failed", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	metrics, err := observability.NewMetrics(observability.Meter(serviceName))
	if err != nil {
		return err
	}

	st, err := discover(ctx, cfg, logger.Get("provider"),
		provider.WithTelemetry(metrics),
		provider.WithMiddleware(
			provider.WithTracing(cfg.Name),
			provider.WithMetrics(metrics),
			provider.WithLogging(logger.Get("provider")),
		),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(); err != nil {
			log.Warn("proxy close failed", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	hub := sse.NewHub(sse.WithKeepAlive(time.Duration(cfg.Bridge.KeepAlive) * time.Second))
	if err := app.RegisterComponent(sse.NewComponent(hub, "/events")); err != nil {
		return err
	}
	for _, w := range st.wallets {
		if err := app.RegisterComponent(w); err != nil {
			return err
		}
	}
	srv := bridge.New(cfg.Bridge, st.proxy, hub, bridge.WithHealth(app.Components.HealthAll))
	if err := app.RegisterComponent(srv); err != nil {
		return err
	}

	app.OnStart(func(context.Context) error {
		selectPreferred(st.proxy, cfg.Preferred, app.Summary, log)
		return nil
	})
	app.Summary.Track("bridge", "http://"+cfg.Bridge.Addr())
	if ready != nil {
		app.OnReady(func(context.Context) error {
			ready(srv.Addr())
			return nil
		})
	}

	return app.Run(ctx)
}

// selectPreferred applies the configured rdns priority list. No match leaves
// the proxy without an active wallet.
func selectPreferred(proxy *provider.Proxy, preferred []string, summary *bootstrap.Summary, log *logger.Logger) {
	if len(preferred) == 0 {
		summary.Track("active wallet", "none (select with PUT /providers/current)")
		return
	}
	rec, ok := proxy.SelectPreferred(preferred...)
	if !ok {
		log.Warn("no announced wallet matches the preferred list", logger.Fields("preferred", preferred))
		summary.Track("active wallet", "none")
		return
	}
	info := rec.Info()
	summary.Track("active wallet", fmt.Sprintf("%s (%s)", info.Name, info.RDNS))
}
