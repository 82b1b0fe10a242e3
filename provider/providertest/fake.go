// Package providertest provides an in-memory wallet for tests.
package providertest

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/kbukum/walletmux/errors"
	"github.com/kbukum/walletmux/provider"
)

// Handler answers a request.
type Handler func(ctx context.Context, args provider.RequestArguments) (any, error)

// Wallet is a scriptable provider.Provider.
type Wallet struct {
	emitter *provider.Emitter

	mu       sync.Mutex
	handlers map[string]Handler
	calls    []provider.RequestArguments
}

var _ provider.Provider = (*Wallet)(nil)

// New creates a Wallet that rejects every method until scripted.
func New() *Wallet {
	return &Wallet{
		emitter:  provider.NewEmitter(),
		handlers: make(map[string]Handler),
	}
}

// Handle scripts method with h.
func (w *Wallet) Handle(method string, h Handler) *Wallet {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[method] = h
	return w
}

// Respond scripts method to return result.
func (w *Wallet) Respond(method string, result any) *Wallet {
	return w.Handle(method, func(context.Context, provider.RequestArguments) (any, error) {
		return result, nil
	})
}

// Fail scripts method to return err.
func (w *Wallet) Fail(method string, err error) *Wallet {
	return w.Handle(method, func(context.Context, provider.RequestArguments) (any, error) {
		return nil, err
	})
}

// Block scripts method to wait until release is closed or ctx ends, then
// return result.
func (w *Wallet) Block(method string, release <-chan struct{}, result any) *Wallet {
	return w.Handle(method, func(ctx context.Context, _ provider.RequestArguments) (any, error) {
		select {
		case <-release:
			return result, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
}

// Request records args and runs the scripted handler.
func (w *Wallet) Request(ctx context.Context, args provider.RequestArguments) (any, error) {
	w.mu.Lock()
	w.calls = append(w.calls, args)
	h, ok := w.handlers[args.Method]
	w.mu.Unlock()

	if !ok {
		return nil, apperrors.NewProviderRPCError(apperrors.CodeUnsupportedMethod,
			fmt.Sprintf("method %q not supported", args.Method))
	}
	return h(ctx, args)
}

// Calls returns the requests received so far.
func (w *Wallet) Calls() []provider.RequestArguments {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]provider.RequestArguments, len(w.calls))
	copy(out, w.calls)
	return out
}

// On implements provider.Provider.
func (w *Wallet) On(event string, l provider.Listener) { w.emitter.On(event, l) }

// RemoveListener implements provider.Provider.
func (w *Wallet) RemoveListener(event string, l provider.Listener) {
	w.emitter.RemoveListener(event, l)
}

// Emit fires an event and returns the number of listeners called.
func (w *Wallet) Emit(event string, data any) int {
	return w.emitter.Emit(provider.Event{Name: event, Data: data})
}

// ListenerCount returns the number of listeners on event.
func (w *Wallet) ListenerCount(event string) int {
	return w.emitter.ListenerCount(event)
}

// TotalListeners returns the number of listeners across events.
func (w *Wallet) TotalListeners(events ...string) int {
	n := 0
	for _, e := range events {
		n += w.emitter.ListenerCount(e)
	}
	return n
}

// Detail builds an announcement for w.
func Detail(uuid, name string, w *Wallet) provider.Detail {
	return provider.Detail{
		Info:     provider.ProviderInfo{UUID: uuid, Name: name},
		Provider: w,
	}
}

// Recorder is a Listener that records the events it receives.
type Recorder struct {
	mu     sync.Mutex
	events []provider.Event
}

// HandleEvent implements provider.Listener.
func (r *Recorder) HandleEvent(ev provider.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

// Events returns the received events.
func (r *Recorder) Events() []provider.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]provider.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Len returns the number of received events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
