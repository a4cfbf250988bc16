package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the operation is not allowed in the entity's current
// state, e.g. an invalid lifecycle transition.
var ErrConflict = errors.New("operation conflicts with current state")

// ErrForbidden indicates the caller is not allowed to perform the operation.
var ErrForbidden = errors.New("operation not permitted")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// Ledger state errors.
var (
	// ErrInsufficientFunds indicates a debit would drive an account balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountNotActive indicates a posting touched an account that is not active.
	ErrAccountNotActive = errors.New("account is not active")

	// ErrReversalNotEligible indicates a journal entry falls outside the reversal
	// window or its referenced transaction no longer permits reversal.
	ErrReversalNotEligible = errors.New("journal entry is not eligible for reversal")

	// ErrAlreadyReversed indicates a journal entry has already been reversed.
	ErrAlreadyReversed = errors.New("journal entry is already reversed")
)

// AppError carries an HTTP-ish status code alongside a wrapped cause.
// Repositories use it to report infrastructure failures without leaking
// driver errors into the core.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that satisfies errors.Is(err, ErrNotFound).
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
