// Package rpcwallet exposes a remote Ethereum JSON-RPC endpoint as a wallet
// provider.
//
// Requests are sent through a go-ethereum rpc.Client behind a rate limiter, a
// bulkhead and a circuit breaker that opens on repeated transport failures.
// Plain HTTP endpoints cannot push notifications, so a Wallet started as a
// component polls eth_chainId and eth_accounts and emits connect,
// chainChanged, accountsChanged and disconnect when they change.
package rpcwallet
