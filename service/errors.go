package service

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the ledger services. Handlers map these to
// HTTP statuses; none of them are retried by the caller.
var (
	ErrValidation         = errors.New("invalid input")
	ErrUserNotFound       = errors.New("user not found")
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrRequestNotFound    = errors.New("connection request not found")
	ErrSelfRequest        = errors.New("cannot send a connection request to yourself")
	ErrDuplicateEmail     = errors.New("email is already registered")
	ErrDuplicateRequest   = errors.New("a pending request already exists between these users")
	ErrAlreadyConnected   = errors.New("users are already connected")
	ErrInvalidState       = errors.New("request is not in a state that allows this transition")
	ErrForbidden          = errors.New("user may not act on this request")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrConflict is surfaced when a storage-level write conflict persists
	// after the internal retry. The client must re-query current state.
	ErrConflict = errors.New("operation conflicted with a concurrent update")
)

// InsufficientFundsError carries the current balance for user feedback.
type InsufficientFundsError struct {
	Available int64
	Needed    int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient balance: have %d available, need %d", e.Available, e.Needed)
}

// IsInsufficientFunds reports whether err is an InsufficientFundsError.
func IsInsufficientFunds(err error) bool {
	var target *InsufficientFundsError
	return errors.As(err, &target)
}
