// Package bridge exposes a provider.Proxy over HTTP.
//
// Routes:
//
//	POST /rpc                 JSON-RPC 2.0 requests forwarded to the active wallet
//	GET  /providers           announced wallets with their cached state
//	GET  /providers/current   the active wallet
//	PUT  /providers/current   select a wallet by uuid
//	GET  /events              proxied wallet events as Server-Sent Events
//	GET  /health              component health
//
// The server is served through h2c so HTTP/2 clients can connect without TLS.
package bridge
