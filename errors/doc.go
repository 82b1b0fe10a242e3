// Package errors provides the structured error types used across walletmux.
//
// AppError carries a machine-readable code and an HTTP status for failures the
// multiplexer itself produces (no active provider, bad announcement). Errors
// returned by a wallet are modelled by ProviderRPCError and are never rewritten.
package errors
