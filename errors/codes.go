package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Wallet selection errors
const (
	// ErrCodeNoActiveProvider indicates a request was made before any wallet was selected.
	ErrCodeNoActiveProvider ErrorCode = "NO_ACTIVE_PROVIDER"
	// ErrCodeProviderNotFound indicates the requested wallet has not been announced.
	ErrCodeProviderNotFound ErrorCode = "PROVIDER_NOT_FOUND"
	// ErrCodeInvalidAnnouncement indicates a discovery announcement was malformed.
	ErrCodeInvalidAnnouncement ErrorCode = "INVALID_ANNOUNCEMENT"
)

// Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates the service is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeConnectionFailed indicates a failed connection to a wallet endpoint.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeConnectionFailed:   true,
	ErrCodeTimeout:            true,
	ErrCodeNoActiveProvider:   true,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
// NO_ACTIVE_PROVIDER counts as retryable: the caller can prompt for a wallet and try again.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
