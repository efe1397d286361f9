package model

import (
	"errors"
	"fmt"
)

// ErrorCode is the stable machine-readable code carried in API error responses.
type ErrorCode string

const (
	CodeKeyNotFound         ErrorCode = "KEY_NOT_FOUND"
	CodeWalletMismatch      ErrorCode = "WALLET_MISMATCH"
	CodeNotRegistered       ErrorCode = "NOT_REGISTERED"
	CodeInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
	CodeTransactionReverted ErrorCode = "TRANSACTION_REVERTED"
	CodeNetworkUnavailable  ErrorCode = "NETWORK_UNAVAILABLE"
	CodeValidation          ErrorCode = "VALIDATION_ERROR"
	CodeOperationInFlight   ErrorCode = "OPERATION_IN_FLIGHT"
	CodeNoSession           ErrorCode = "NO_SESSION"
	CodeInternal            ErrorCode = "INTERNAL"
)

var (
	// ErrKeyNotFound - no local signing key for this session; recoverable by re-login
	ErrKeyNotFound = errors.New("no signing key stored for this session")

	// ErrWalletMismatch - reconstructed key's address disagrees with the ledger's
	// bound address; fatal to the session, forces logout
	ErrWalletMismatch = errors.New("signing key does not match on-chain wallet")

	// ErrNotRegistered - email has no bound wallet on chain
	ErrNotRegistered = errors.New("email is not registered")

	// ErrInvalidCredentials - ledger-side credential check failed
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrOperationInFlight - a write on the same entity is still pending confirmation
	ErrOperationInFlight = errors.New("operation already in flight for this entity")

	// ErrNoSession - no active session bound; caller must log in first
	ErrNoSession = errors.New("no active session")
)

// RevertError wraps a transaction that was included but rejected by contract
// logic. Reason holds the decoded revert reason when one could be extracted,
// Raw preserves the underlying error text for diagnostics.
type RevertError struct {
	Reason string
	Raw    string
}

func (e *RevertError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("transaction reverted: %s", e.Reason)
	}
	return "transaction reverted"
}

// NetworkError wraps a read/write round-trip that could not complete.
// Recoverable by retry; optimistic state must be rolled back first.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network unavailable during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError is a local precondition failure. It never reaches the ledger.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// CodeFor maps an error to its stable API code.
func CodeFor(err error) ErrorCode {
	var revertErr *RevertError
	var netErr *NetworkError
	var valErr *ValidationError
	switch {
	case errors.Is(err, ErrKeyNotFound):
		return CodeKeyNotFound
	case errors.Is(err, ErrWalletMismatch):
		return CodeWalletMismatch
	case errors.Is(err, ErrNotRegistered):
		return CodeNotRegistered
	case errors.Is(err, ErrInvalidCredentials):
		return CodeInvalidCredentials
	case errors.Is(err, ErrOperationInFlight):
		return CodeOperationInFlight
	case errors.Is(err, ErrNoSession):
		return CodeNoSession
	case errors.As(err, &revertErr):
		return CodeTransactionReverted
	case errors.As(err, &netErr):
		return CodeNetworkUnavailable
	case errors.As(err, &valErr):
		return CodeValidation
	default:
		return CodeInternal
	}
}

// ErrorResponse is the consistent JSON structure for all API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
