package rpcwallet

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/kbukum/walletmux/component"
	apperrors "github.com/kbukum/walletmux/errors"
	"github.com/kbukum/walletmux/logger"
	"github.com/kbukum/walletmux/provider"
	"github.com/kbukum/walletmux/resilience"
)

var _ component.Component = (*Wallet)(nil)

// watchState is what the watcher last observed.
type watchState struct {
	connected bool
	seen      bool
	chainID   string
	accounts  []string
	lastErr   error
	lastPoll  time.Time
}

// Name implements component.Component.
func (w *Wallet) Name() string { return "wallet:" + w.cfg.Name }

// Describe implements component.Describable.
func (w *Wallet) Describe() component.Description {
	return component.Description{
		Name:    w.cfg.Name,
		Type:    "wallet",
		Details: fmt.Sprintf("%s poll=%s rate=%g/s", w.cfg.URL, w.cfg.PollInterval, w.cfg.RateLimit),
	}
}

// Start polls once and then keeps polling every PollInterval until Stop.
func (w *Wallet) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	w.running = true
	done := w.done
	w.mu.Unlock()

	w.Poll(ctx)
	go w.loop(runCtx, done)

	w.log.Info("watcher started", logger.Fields(
		logger.FieldEndpoint, w.cfg.URL,
		"interval", w.cfg.PollInterval.String(),
	))
	return nil
}

// Stop ends the polling loop and waits for it to exit.
func (w *Wallet) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Health implements component.Component.
func (w *Wallet) Health(ctx context.Context) component.Health {
	w.mu.Lock()
	st := w.state
	w.mu.Unlock()

	h := component.Health{Name: w.Name(), Status: component.StatusHealthy}
	switch {
	case !st.seen:
		h.Status = component.StatusDegraded
		h.Message = "not polled yet"
	case !st.connected:
		h.Status = component.StatusUnhealthy
		if st.lastErr != nil {
			h.Message = st.lastErr.Error()
		}
		if state := w.breaker.State(); state != resilience.StateClosed {
			h.Message = fmt.Sprintf("circuit %s: %s", state, h.Message)
		}
	default:
		h.Message = fmt.Sprintf("chain %s, %d accounts", st.chainID, len(st.accounts))
	}
	return h
}

func (w *Wallet) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Poll(ctx)
		}
	}
}

// Poll checks the endpoint once and emits events for any change.
func (w *Wallet) Poll(ctx context.Context) {
	callCtx, cancel := context.WithTimeout(ctx, w.cfg.CallTimeout)
	defer cancel()

	chainID, accounts, err := w.fetch(callCtx)
	if ctx.Err() != nil {
		return
	}

	w.mu.Lock()
	prev := w.state
	next := prev
	next.seen = true
	next.lastPoll = time.Now()

	var events []provider.Event
	if err != nil {
		next.lastErr = err
		next.connected = false
		if prev.connected || !prev.seen {
			events = append(events, provider.Event{Name: provider.EventDisconnect, Data: disconnectError(err)})
		}
	} else {
		next.lastErr = nil
		next.connected = true
		next.chainID = chainID
		next.accounts = accounts
		if !prev.connected {
			events = append(events, provider.Event{Name: provider.EventConnect, Data: provider.ConnectInfo{ChainID: chainID}})
		}
		if prev.chainID != "" && prev.chainID != chainID {
			events = append(events, provider.Event{Name: provider.EventChainChanged, Data: chainID})
		}
		if !slices.Equal(prev.accounts, accounts) {
			events = append(events, provider.Event{Name: provider.EventAccountsChanged, Data: slices.Clone(accounts)})
		}
	}
	w.state = next
	w.mu.Unlock()

	for _, ev := range events {
		w.log.Debug("wallet event", logger.Fields(logger.FieldEvent, ev.Name))
		w.emitter.Emit(ev)
	}
}

func (w *Wallet) fetch(ctx context.Context) (string, []string, error) {
	raw, err := w.Request(ctx, provider.RequestArguments{Method: "eth_chainId"})
	if err != nil {
		return "", nil, err
	}
	var hex string
	if err := json.Unmarshal(raw.(json.RawMessage), &hex); err != nil {
		return "", nil, fmt.Errorf("decoding eth_chainId: %w", err)
	}
	id, err := hexutil.DecodeBig(hex)
	if err != nil {
		return "", nil, fmt.Errorf("decoding eth_chainId %q: %w", hex, err)
	}

	raw, err = w.Request(ctx, provider.RequestArguments{Method: "eth_accounts"})
	if err != nil {
		return "", nil, err
	}
	var addrs []string
	if err := json.Unmarshal(raw.(json.RawMessage), &addrs); err != nil {
		return "", nil, fmt.Errorf("decoding eth_accounts: %w", err)
	}
	for i, a := range addrs {
		if common.IsHexAddress(a) {
			addrs[i] = common.HexToAddress(a).Hex()
		} else {
			addrs[i] = strings.ToLower(a)
		}
	}
	return hexutil.EncodeBig(id), addrs, nil
}

// disconnectError is the payload of a disconnect event.
func disconnectError(err error) *apperrors.ProviderRPCError {
	if rpcErr, ok := apperrors.AsProviderRPCError(err); ok && rpcErr.Code == apperrors.CodeDisconnected {
		return rpcErr
	}
	out := apperrors.NewProviderRPCError(apperrors.CodeDisconnected, "The provider is disconnected from all chains.")
	out.Data = err.Error()
	return out
}
