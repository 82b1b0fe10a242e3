// Package sse streams named events to HTTP clients using Server-Sent Events.
//
// A Hub owns the connected clients and fans out broadcasts from a single
// goroutine. Each client may restrict itself to a set of event names.
//
//	hub := sse.NewHub()
//	go hub.Run()
//	hub.Broadcast("accountsChanged", payload)
//
// ServeSSE registers a client for the lifetime of one request and writes
// "event:" and "data:" frames, plus keep-alive comments.
package sse
