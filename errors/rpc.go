package errors

import (
	stderrors "errors"
	"fmt"
)

// EIP-1193 provider error codes.
const (
	CodeUserRejectedRequest = 4001
	CodeUnauthorized        = 4100
	CodeUnsupportedMethod   = 4200
	CodeDisconnected        = 4900
	CodeChainDisconnected   = 4901
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeLimitExceeded  = -32005
)

// ProviderRPCError is an error reported by a wallet provider. It mirrors the
// EIP-1193 ProviderRpcError shape and is passed through the multiplexer untouched.
type ProviderRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// NewProviderRPCError creates a ProviderRPCError.
func NewProviderRPCError(code int, message string) *ProviderRPCError {
	return &ProviderRPCError{Code: code, Message: message}
}

// Error returns the string representation of the error.
func (e *ProviderRPCError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// ErrorCode returns the numeric code.
func (e *ProviderRPCError) ErrorCode() int { return e.Code }

// UserRejected reports whether the user declined the request in their wallet.
func (e *ProviderRPCError) UserRejected() bool { return e.Code == CodeUserRejectedRequest }

// AsProviderRPCError converts an error to a ProviderRPCError if possible.
func AsProviderRPCError(err error) (*ProviderRPCError, bool) {
	var rpcErr *ProviderRPCError
	if stderrors.As(err, &rpcErr) {
		return rpcErr, true
	}
	return nil, false
}
