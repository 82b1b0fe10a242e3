// Package component defines the lifecycle contract shared by walletmux's
// long-running parts: wallet watchers and the HTTP bridge.
//
// Components are registered with a Registry, started in registration order
// and stopped in reverse order. Health reports are aggregated for the bridge's
// /health endpoint.
package component
