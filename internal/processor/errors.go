package processor

import "errors"

// Code is a machine-readable failure kind.
type Code string

const (
	CodeDecode                 Code = "DECODE_ERROR"
	CodeInsufficientCollateral Code = "INSUFFICIENT_COLLATERAL"
	CodeAlreadyInitialized     Code = "ALREADY_INITIALIZED"
	CodeUnauthorized           Code = "UNAUTHORIZED"
	CodeUninitialized          Code = "UNINITIALIZED"
	CodeInvalidAmount          Code = "INVALID_AMOUNT"
	CodeAmountOverflow         Code = "AMOUNT_OVERFLOW"
	CodeTransferFailed         Code = "TRANSFER_FAILED"
	CodeCounterOverflow        Code = "COUNTER_OVERFLOW"
	CodePayoutFailed           Code = "PAYOUT_FAILED"
	CodeOutcomeFailed          Code = "OUTCOME_FAILED"
)

// Error is a processor failure with a code and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code, so errors.Is(err, ErrUnauthorized)
// works regardless of message or cause.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

func newError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func wrapError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Sentinels for errors.Is.
var (
	ErrDecode                 = newError(CodeDecode, "malformed input")
	ErrInsufficientCollateral = newError(CodeInsufficientCollateral, "account is not rent exempt")
	ErrAlreadyInitialized     = newError(CodeAlreadyInitialized, "account already initialized")
	ErrUnauthorized           = newError(CodeUnauthorized, "bettor did not sign")
	ErrUninitialized          = newError(CodeUninitialized, "account not initialized")
	ErrInvalidAmount          = newError(CodeInvalidAmount, "bet amount must be positive")
	ErrAmountOverflow         = newError(CodeAmountOverflow, "bet amount overflows")
	ErrTransferFailed         = newError(CodeTransferFailed, "escrow transfer failed")
	ErrCounterOverflow        = newError(CodeCounterOverflow, "counter overflow")
	ErrPayoutFailed           = newError(CodePayoutFailed, "payout transfer failed")
	ErrOutcomeFailed          = newError(CodeOutcomeFailed, "outcome unavailable")
)

// CodeOf returns the code carried by err, or "" if err is not a processor error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
