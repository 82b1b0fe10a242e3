package announce

import (
	"sync"

	"github.com/kbukum/walletmux/logger"
	"github.com/kbukum/walletmux/provider"
)

// Event names carried by a Bus.
const (
	EventAnnounceProvider = "eip6963:announceProvider"
	EventRequestProvider  = "eip6963:requestProvider"
)

type announceSub struct {
	id uint64
	fn func(provider.Detail)
}

type requestSub struct {
	id uint64
	fn func()
}

// Bus delivers announcements and requests for providers to subscribers.
// Handlers run synchronously, in subscription order, on the caller's goroutine.
type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	announce []announceSub
	request  []requestSub
	log      *logger.Logger
}

var _ provider.Announcer = (*Bus)(nil)

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{log: logger.Get("announce")}
}

// OnAnnounce subscribes fn to announcements. The returned func unsubscribes
// and may be called more than once.
func (b *Bus) OnAnnounce(fn func(provider.Detail)) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.announce = append(b.announce, announceSub{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.announce {
				if s.id == id {
					b.announce = append(b.announce[:i:i], b.announce[i+1:]...)
					return
				}
			}
		})
	}
}

// OnRequestProviders subscribes fn to requests for providers. The returned
// func unsubscribes and may be called more than once.
func (b *Bus) OnRequestProviders(fn func()) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.request = append(b.request, requestSub{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.request {
				if s.id == id {
					b.request = append(b.request[:i:i], b.request[i+1:]...)
					return
				}
			}
		})
	}
}

// Announce delivers d to every announce subscriber.
func (b *Bus) Announce(d provider.Detail) {
	b.mu.RLock()
	subs := b.announce
	b.mu.RUnlock()

	b.log.Debug("dispatch", logger.Fields(
		logger.FieldEvent, EventAnnounceProvider,
		logger.FieldProviderUUID, d.Info.UUID,
		"subscribers", len(subs),
	))
	for _, s := range subs {
		s.fn(d)
	}
}

// RequestProviders asks every advertised wallet to announce itself.
func (b *Bus) RequestProviders() {
	b.mu.RLock()
	subs := b.request
	b.mu.RUnlock()

	b.log.Debug("dispatch", logger.Fields(
		logger.FieldEvent, EventRequestProvider,
		"subscribers", len(subs),
	))
	for _, s := range subs {
		s.fn()
	}
}
