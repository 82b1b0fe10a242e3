package provider

import "sync"

// Emitter is a small publish/subscribe hub keyed by event name. The same
// listener may be added more than once; each RemoveListener drops the most
// recently added occurrence.
type Emitter struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
}

// NewEmitter creates an empty Emitter.
func NewEmitter() *Emitter {
	return &Emitter{listeners: make(map[string][]Listener)}
}

// On subscribes l to event. A nil listener is ignored.
func (e *Emitter) On(event string, l Listener) {
	if l == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners[event] = append(e.listeners[event], l)
}

// RemoveListener unsubscribes l from event. Unknown listeners are ignored.
func (e *Emitter) RemoveListener(event string, l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ls := e.listeners[event]
	for i := len(ls) - 1; i >= 0; i-- {
		if sameListener(ls[i], l) {
			next := make([]Listener, 0, len(ls)-1)
			next = append(next, ls[:i]...)
			next = append(next, ls[i+1:]...)
			if len(next) == 0 {
				delete(e.listeners, event)
			} else {
				e.listeners[event] = next
			}
			return
		}
	}
}

// RemoveAllListeners drops every listener of the given events, or of all
// events when none are named.
func (e *Emitter) RemoveAllListeners(events ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(events) == 0 {
		e.listeners = make(map[string][]Listener)
		return
	}
	for _, ev := range events {
		delete(e.listeners, ev)
	}
}

// Emit delivers ev to the listeners subscribed to ev.Name at the time of the
// call, in subscription order, and returns how many were called. Listeners
// run outside the lock and may subscribe or unsubscribe.
func (e *Emitter) Emit(ev Event) int {
	e.mu.RLock()
	ls := e.listeners[ev.Name]
	e.mu.RUnlock()

	for _, l := range ls {
		l.HandleEvent(ev)
	}
	return len(ls)
}

// ListenerCount returns the number of listeners subscribed to event.
func (e *Emitter) ListenerCount(event string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners[event])
}
