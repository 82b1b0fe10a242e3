package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/kbukum/walletmux/announce"
	"github.com/kbukum/walletmux/config"
	"github.com/kbukum/walletmux/logger"
	"github.com/kbukum/walletmux/provider"
	"github.com/kbukum/walletmux/rpcwallet"
)

// componentLoggers are bound to the configured sink once logging is initialised.
var componentLoggers = []string{"provider", "rpcwallet", "bridge", "sse", "announce", "component"}

// stack is the discovery side of the daemon: one bus, the wallets that
// advertise on it and the proxy that listens.
type stack struct {
	bus      *announce.Bus
	proxy    *provider.Proxy
	wallets  []*rpcwallet.Wallet
	withdraw []func()
}

// discover dials every configured wallet, advertises it on a fresh bus and
// builds a proxy subscribed to that bus. The proxy's construction-time request
// for providers makes every advertised wallet announce itself.
func discover(ctx context.Context, cfg *config.Config, log *logger.Logger, opts ...provider.Option) (*stack, error) {
	st := &stack{bus: announce.NewBus()}

	for _, wc := range cfg.Wallets {
		w, err := rpcwallet.Dial(ctx, wc)
		if err != nil {
			st.close()
			return nil, fmt.Errorf("wallet %q: %w", wc.Name, err)
		}
		st.wallets = append(st.wallets, w)
		st.withdraw = append(st.withdraw, announce.Advertise(st.bus, w.Detail()))
	}

	opts = append([]provider.Option{provider.WithAnnouncer(st.bus), provider.WithLogger(log)}, opts...)
	st.proxy = provider.NewProxy(opts...)

	log.Info("wallets discovered", logger.Fields("count", st.proxy.Registry().Len()))
	return st, nil
}

// close detaches the proxy, withdraws advertisements and closes the clients.
func (st *stack) close() error {
	var errs []error
	if st.proxy != nil {
		errs = append(errs, st.proxy.Close())
	}
	for _, withdraw := range st.withdraw {
		withdraw()
	}
	for _, w := range st.wallets {
		w.Close()
	}
	return errors.Join(errs...)
}
