package shared

import "errors"

// ErrorKind classifies ledger failures. The value doubles as the error code exposed to callers.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "ACCOUNT_NOT_FOUND"
	KindInactiveAccount   ErrorKind = "ACCOUNT_INACTIVE"
	KindInvalidAmount     ErrorKind = "INVALID_AMOUNT"
	KindInvalidStatus     ErrorKind = "INVALID_STATUS"
	KindSameAccount       ErrorKind = "SAME_ACCOUNT"
	KindInvalidRequest    ErrorKind = "INVALID_REQUEST"
	KindInsufficientFunds ErrorKind = "INSUFFICIENT_FUNDS"
	KindStoreFailure      ErrorKind = "STORE_FAILURE"
	KindRollbackFailure   ErrorKind = "ROLLBACK_FAILURE"
)

// IsInputViolation reports whether the kind describes a malformed caller request
func (k ErrorKind) IsInputViolation() bool {
	switch k {
	case KindInvalidAmount, KindInvalidStatus, KindSameAccount, KindInvalidRequest:
		return true
	}
	return false
}

// LedgerError is the error returned by every ledger operation.
// Message is safe to show to callers; Err carries the underlying cause, if any.
type LedgerError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *LedgerError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

// Is matches any LedgerError of the same kind. A target with an empty kind matches every LedgerError.
func (e *LedgerError) Is(target error) bool {
	t, ok := target.(*LedgerError)
	if !ok {
		return false
	}
	return t.Kind == "" || t.Kind == e.Kind
}

// Sentinels for errors.Is checks against a kind
var (
	ErrNotFound          = &LedgerError{Kind: KindNotFound}
	ErrInactiveAccount   = &LedgerError{Kind: KindInactiveAccount}
	ErrInvalidAmount     = &LedgerError{Kind: KindInvalidAmount}
	ErrInvalidStatus     = &LedgerError{Kind: KindInvalidStatus}
	ErrSameAccount       = &LedgerError{Kind: KindSameAccount}
	ErrInvalidRequest    = &LedgerError{Kind: KindInvalidRequest}
	ErrInsufficientFunds = &LedgerError{Kind: KindInsufficientFunds}
	ErrStoreFailure      = &LedgerError{Kind: KindStoreFailure}
	ErrRollbackFailure   = &LedgerError{Kind: KindRollbackFailure}
)

// NewLedgerError builds a LedgerError with a caller-facing message
func NewLedgerError(kind ErrorKind, message string) *LedgerError {
	return &LedgerError{Kind: kind, Message: message}
}

// StoreFailure wraps an underlying store error
func StoreFailure(message string, err error) *LedgerError {
	return &LedgerError{Kind: KindStoreFailure, Message: message, Err: err}
}

// RollbackFailure wraps a failed ROLLBACK TO SAVEPOINT
func RollbackFailure(err error) *LedgerError {
	return &LedgerError{Kind: KindRollbackFailure, Message: "Rollback failed: " + err.Error(), Err: err}
}

// KindOf returns the kind of err, or KindStoreFailure for errors outside the taxonomy
func KindOf(err error) ErrorKind {
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindStoreFailure
}

// AsLedgerError returns err as a LedgerError, wrapping foreign errors as store failures
func AsLedgerError(err error) *LedgerError {
	if err == nil {
		return nil
	}
	var le *LedgerError
	if errors.As(err, &le) {
		return le
	}
	return StoreFailure(err.Error(), err)
}
