package provider

import (
	"context"
	"reflect"
)

// Provider is the EIP-1193 capability exposed by a wallet.
type Provider interface {
	// Request performs a JSON-RPC style call against the wallet.
	Request(ctx context.Context, args RequestArguments) (any, error)
	// On subscribes l to the named event.
	On(event string, l Listener)
	// RemoveListener unsubscribes l from the named event.
	RemoveListener(event string, l Listener)
}

// RequestArguments is the payload of a provider request.
type RequestArguments struct {
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

// Event is a named notification emitted by a provider.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data,omitempty"`
}

// Listener receives provider events.
//
// Listeners are compared by identity when removed, so implementations must be
// comparable. Pointer receivers satisfy this; NewListener returns one.
type Listener interface {
	HandleEvent(ev Event)
}

type funcListener struct {
	fn func(Event)
}

func (l *funcListener) HandleEvent(ev Event) { l.fn(ev) }

// NewListener adapts fn to a Listener. Every call returns a distinct listener,
// so keep the returned value to remove it later.
func NewListener(fn func(Event)) Listener {
	return &funcListener{fn: fn}
}

// sameListener reports whether a and b are the same listener.
// Non-comparable listeners never match.
func sameListener(a, b Listener) bool {
	if a == nil || b == nil {
		return false
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// Wallet event names.
const (
	EventAccountsChanged = "accountsChanged"
	EventChainChanged    = "chainChanged"
	EventDisconnect      = "disconnect"
	EventConnect         = "connect"
	EventMessage         = "message"
)

// DefaultEvents returns the event vocabulary relayed by a Proxy.
func DefaultEvents() []string {
	return []string{
		EventAccountsChanged,
		EventChainChanged,
		EventDisconnect,
		EventConnect,
		EventMessage,
	}
}

// ConnectInfo is the payload of a connect event.
type ConnectInfo struct {
	ChainID string `json:"chainId"`
}

// Message is the payload of a message event.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}
