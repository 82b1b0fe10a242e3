package provider

import (
	"context"
	"sync"
	"sync/atomic"

	apperrors "github.com/kbukum/walletmux/errors"
	"github.com/kbukum/walletmux/logger"
	"github.com/kbukum/walletmux/observability"
)

// ErrNoActiveProvider is the target for errors.Is when a request finds no
// active wallet.
var ErrNoActiveProvider error = apperrors.NoActiveProvider()

// Announcer delivers wallet announcements. announce.Bus implements it.
type Announcer interface {
	// OnAnnounce subscribes fn to announcements and returns an unsubscribe func.
	OnAnnounce(fn func(Detail)) func()
	// RequestProviders asks every wallet to announce itself.
	RequestProviders()
}

// Proxy presents the active wallet of a Registry as a single Provider.
type Proxy struct {
	registry  *Registry
	emitter   *Emitter
	events    []string
	relays    map[string]*relay
	request   RequestFunc
	log       *logger.Logger
	telemetry *observability.Metrics

	// mu serializes selection changes and relay rewiring.
	mu      sync.Mutex
	current atomic.Pointer[Record]
	closed  bool
	detach  func()
}

var _ Provider = (*Proxy)(nil)

type options struct {
	announcer  Announcer
	events     []string
	log        *logger.Logger
	telemetry  *observability.Metrics
	middleware []Middleware
	registry   *Registry
}

// Option configures a Proxy.
type Option func(*options)

// WithAnnouncer subscribes the proxy to a on construction and broadcasts one
// request for providers. Close detaches the subscription.
func WithAnnouncer(a Announcer) Option {
	return func(o *options) { o.announcer = a }
}

// WithEvents adds event names to the relayed vocabulary.
func WithEvents(events ...string) Option {
	return func(o *options) { o.events = append(o.events, events...) }
}

// WithLogger sets the proxy's logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithTelemetry records announcements, switches and relayed events on m.
func WithTelemetry(m *observability.Metrics) Option {
	return func(o *options) { o.telemetry = m }
}

// WithMiddleware wraps every forwarded request with the given middlewares.
func WithMiddleware(mws ...Middleware) Option {
	return func(o *options) { o.middleware = append(o.middleware, mws...) }
}

// WithRegistry uses r instead of a fresh Registry.
func WithRegistry(r *Registry) Option {
	return func(o *options) { o.registry = r }
}

// NewProxy creates a Proxy with no active wallet.
func NewProxy(opts ...Option) *Proxy {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		o.registry = NewRegistry()
	}
	if o.log == nil {
		o.log = logger.Get("provider")
	}

	p := &Proxy{
		registry:  o.registry,
		emitter:   NewEmitter(),
		events:    vocabulary(o.events),
		log:       o.log,
		telemetry: o.telemetry,
	}
	p.relays = make(map[string]*relay, len(p.events))
	for _, name := range p.events {
		p.relays[name] = &relay{proxy: p, event: name}
	}
	p.request = Chain(o.middleware...)(forward)

	if o.announcer != nil {
		p.detach = o.announcer.OnAnnounce(p.handleAnnounce)
		o.announcer.RequestProviders()
	}
	return p
}

// vocabulary returns the default events plus extra, without duplicates.
func vocabulary(extra []string) []string {
	events := DefaultEvents()
	seen := make(map[string]bool, len(events)+len(extra))
	for _, e := range events {
		seen[e] = true
	}
	for _, e := range extra {
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		events = append(events, e)
	}
	return events
}

func (p *Proxy) handleAnnounce(d Detail) {
	_ = p.Announce(d)
}

// Announce registers d. When d re-announces the active uuid the relays move
// to the new provider at once; any other announcement leaves the selection
// alone.
func (p *Proxy) Announce(d Detail) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	rec, err := p.registry.Announce(d)
	if err != nil {
		return err
	}
	p.telemetry.RecordAnnounce(context.Background(), rec.Info().Name)

	if cur := p.current.Load(); cur != nil && cur.UUID() == rec.UUID() {
		p.switchLocked(rec)
	}
	return nil
}

// SetCurrentProvider makes the wallet with uuid active and reports whether it
// was found. An unknown uuid clears the selection. Either way the relays are
// detached from the previous wallet and attached to the new one.
func (p *Proxy) SetCurrentProvider(uuid string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return false
	}
	rec, ok := p.registry.Lookup(uuid)
	if !ok {
		p.log.Warn("unknown provider selected, clearing selection", logger.Fields(
			logger.FieldProviderUUID, uuid,
		))
		p.switchLocked(nil)
		return false
	}
	p.switchLocked(rec)
	return true
}

// SelectPreferred activates the first announced wallet whose rdns appears in
// priority, trying priority in order. The selection is unchanged when nothing
// matches.
func (p *Proxy) SelectPreferred(priority ...string) (*Record, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, false
	}
	rec, ok := selectByRDNS(p.registry.List(), priority)
	if !ok {
		return nil, false
	}
	p.switchLocked(rec)
	return rec, true
}

// switchLocked moves the relays from the active record to next and stores
// next as active. next may be nil. Callers hold p.mu.
func (p *Proxy) switchLocked(next *Record) {
	prev := p.current.Load()
	if prev != nil {
		for _, name := range p.events {
			prev.Provider().RemoveListener(name, p.relays[name])
		}
	}

	p.current.Store(next)

	if next != nil {
		for _, name := range p.events {
			next.Provider().On(name, p.relays[name])
		}
	}

	from, to := "", ""
	if prev != nil {
		from = prev.UUID()
	}
	if next != nil {
		to = next.UUID()
	}
	p.telemetry.RecordSwitch(context.Background(), from, to)
	p.log.Info("active provider changed", logger.Fields(
		"from", from,
		"to", to,
	))
}

// Request forwards args to the wallet that is active when Request is called.
// The wallet's result or error is returned unchanged. With no active wallet
// the error matches ErrNoActiveProvider.
func (p *Proxy) Request(ctx context.Context, args RequestArguments) (any, error) {
	rec := p.current.Load()
	if rec == nil {
		return nil, apperrors.NoActiveProvider()
	}

	result, err := p.request(ctx, rec, args)
	if err != nil {
		return result, err
	}
	rec.observeResult(args.Method, result)
	return result, nil
}

// On subscribes l to a proxied event. Subscriptions survive wallet switches.
func (p *Proxy) On(event string, l Listener) {
	p.emitter.On(event, l)
}

// RemoveListener unsubscribes l from a proxied event.
func (p *Proxy) RemoveListener(event string, l Listener) {
	p.emitter.RemoveListener(event, l)
}

// ListenerCount returns the number of external subscribers of event.
func (p *Proxy) ListenerCount(event string) int {
	return p.emitter.ListenerCount(event)
}

// Current returns the active record.
func (p *Proxy) Current() (*Record, bool) {
	rec := p.current.Load()
	return rec, rec != nil
}

// Providers returns every announced record sorted by name.
func (p *Proxy) Providers() []*Record {
	return p.registry.List()
}

// Registry returns the underlying registry.
func (p *Proxy) Registry() *Registry {
	return p.registry
}

// Events returns the relayed event vocabulary.
func (p *Proxy) Events() []string {
	out := make([]string, len(p.events))
	copy(out, p.events)
	return out
}

// Close detaches the announcer, unwires the active wallet, clears the
// selection and drops every external subscriber. It is safe to call more
// than once.
func (p *Proxy) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	detach := p.detach
	p.detach = nil
	if p.current.Load() != nil {
		p.switchLocked(nil)
	}
	p.emitter.RemoveAllListeners()
	p.mu.Unlock()

	if detach != nil {
		detach()
	}
	p.log.Debug("proxy closed")
	return nil
}

// relay is the listener attached to the active wallet for one event name.
// Exactly one relay exists per name for the life of the proxy.
// The record an event is credited to is the one active at delivery, so an
// event already in flight from the previous wallet when a switch lands
// updates the new record's cache once.
type relay struct {
	proxy *Proxy
	event string
}

func (r *relay) HandleEvent(ev Event) {
	rec := r.proxy.current.Load()
	if rec == nil {
		return
	}
	ev.Name = r.event
	rec.observeEvent(ev)
	r.proxy.telemetry.RecordEvent(context.Background(), rec.Info().Name, ev.Name)
	r.proxy.emitter.Emit(ev)
}
