package sse

import (
	"sync"
	"time"

	"github.com/kbukum/walletmux/logger"
)

const (
	clientBuffer     = 256
	broadcastBuffer  = 256
	defaultKeepAlive = 30 * time.Second
)

// Frame is one event delivered to a client.
type Frame struct {
	Event string
	Data  []byte
}

// Client represents a connected SSE client.
type Client struct {
	id     string
	filter map[string]bool
	frames chan Frame
}

// NewClient creates a client. With no events it receives every broadcast.
func NewClient(id string, events ...string) *Client {
	c := &Client{id: id, frames: make(chan Frame, clientBuffer)}
	for _, e := range events {
		if e == "" {
			continue
		}
		if c.filter == nil {
			c.filter = make(map[string]bool)
		}
		c.filter[e] = true
	}
	return c
}

// ID returns the client's unique identifier.
func (c *Client) ID() string { return c.id }

// Wants reports whether the client subscribed to event.
func (c *Client) Wants(event string) bool {
	return c.filter == nil || c.filter[event]
}

// Events returns the names the client subscribed to, or nil for all.
func (c *Client) Events() []string {
	if c.filter == nil {
		return nil
	}
	out := make([]string, 0, len(c.filter))
	for e := range c.filter {
		out = append(out, e)
	}
	return out
}

// Frames returns the channel of frames for this client.
func (c *Client) Frames() <-chan Frame { return c.frames }

// Send queues f. It returns false when the client's buffer is full.
func (c *Client) Send(f Frame) bool {
	select {
	case c.frames <- f:
		return true
	default:
		logger.Get("sse").Warn("client channel full, dropping frame", logger.Fields(
			"client_id", c.id,
			logger.FieldEvent, f.Event,
		))
		return false
	}
}

func (c *Client) close() { close(c.frames) }

// Hub manages SSE client connections and message broadcasting.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan Frame
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
	keepAlive  time.Duration
	log        *logger.Logger
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithKeepAlive sets the keep-alive comment interval.
func WithKeepAlive(d time.Duration) HubOption {
	return func(h *Hub) {
		if d > 0 {
			h.keepAlive = d
		}
	}
}

// NewHub creates a new SSE hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Frame, broadcastBuffer),
		done:       make(chan struct{}),
		keepAlive:  defaultKeepAlive,
		log:        logger.Get("sse"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run is the hub's event loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAllClients()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client registered", logger.Fields("client_id", client.id, "total_clients", total))

		case client := <-h.unregister:
			h.mu.Lock()
			if existing, ok := h.clients[client.id]; ok && existing == client {
				delete(h.clients, client.id)
				client.close()
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client unregistered", logger.Fields("client_id", client.id, "total_clients", total))

		case f := <-h.broadcast:
			h.deliver(f)
		}
	}
}

// Stop shuts the hub down and closes every client. Safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		client.close()
		delete(h.clients, id)
	}
}

// Register adds a client. It reports false when the hub is stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues data for every client subscribed to event. The frame is
// dropped when the hub is stopped or its queue is full.
func (h *Hub) Broadcast(event string, data []byte) {
	select {
	case <-h.done:
		return
	default:
	}
	select {
	case h.broadcast <- Frame{Event: event, Data: data}:
	default:
		h.log.Warn("broadcast queue full, dropping frame", logger.Fields(logger.FieldEvent, event))
	}
}

func (h *Hub) deliver(f Frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for _, client := range h.clients {
		if client.Wants(f.Event) && client.Send(f) {
			sent++
		}
	}
	h.log.Debug("broadcast sent", logger.Fields(
		logger.FieldEvent, f.Event,
		"match_count", sent,
		"data_size", len(f.Data),
	))
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Client returns a client by ID, or nil if not found.
func (h *Hub) Client(id string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[id]
}
