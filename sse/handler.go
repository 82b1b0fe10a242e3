package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// EventTypeConnected is the first frame sent to every client.
const EventTypeConnected = "connected"

// ConnectedEvent is the payload of the connected frame.
type ConnectedEvent struct {
	ClientID string   `json:"client_id"`
	Events   []string `json:"events,omitempty"`
}

// ServeSSE streams frames to one client until the request ends or the hub
// stops. events restricts the client to those event names.
func ServeSSE(hub *Hub, w http.ResponseWriter, r *http.Request, clientID string, events ...string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		hub.log.Error("streaming not supported", map[string]interface{}{"client_id": clientID})
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// SSE connections outlive the server's WriteTimeout.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		hub.log.Debug("could not disable write deadline", map[string]interface{}{
			"client_id": clientID,
			"error":     err.Error(),
		})
	}

	client := NewClient(clientID, events...)
	if !hub.Register(client) {
		http.Error(w, "event stream closed", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(client)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	connected, _ := json.Marshal(ConnectedEvent{ClientID: clientID, Events: client.Events()})
	writeFrame(w, Frame{Event: EventTypeConnected, Data: connected})
	flusher.Flush()

	hub.log.Debug("client connected", map[string]interface{}{
		"client_id":   clientID,
		"remote_addr": r.RemoteAddr,
	})

	keepAlive := time.NewTicker(hub.keepAlive)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			hub.log.Debug("client disconnected", map[string]interface{}{
				"client_id": clientID,
				"reason":    ctx.Err().Error(),
			})
			return

		case f, ok := <-client.Frames():
			if !ok {
				return
			}
			writeFrame(w, f)
			flusher.Flush()

		case <-keepAlive.C:
			// Lines starting with ':' are comments.
			_, _ = fmt.Fprintf(w, ": keepalive %d\n\n", time.Now().Unix())
			flusher.Flush()
		}
	}
}

func writeFrame(w http.ResponseWriter, f Frame) {
	if f.Event != "" {
		_, _ = fmt.Fprintf(w, "event: %s\n", f.Event)
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", f.Data)
}
