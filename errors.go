// Package solvbtc implements the authorization and accounting core of the
// SolvBTC custodial vault program: deterministic program-derived addresses,
// the withdrawal-authorization digest and signature scheme, and the shared
// error taxonomy used by the program state machine.
package solvbtc

import "fmt"

// Code is a stable, machine-readable error tag. External tooling pattern
// matches on these strings, so they are part of the wire contract.
type Code string

const (
	CodeUnauthorized             Code = "Unauthorized"
	CodeInvalidInput             Code = "InvalidInput"
	CodeInvalidAddress           Code = "InvalidAddress"
	CodeInvalidSignature         Code = "InvalidSignature"
	CodeMissingRequiredSignature Code = "MissingRequiredSignature"
	CodeCurrencyAlreadyExists    Code = "CurrencyAlreadyExists"
	CodeCurrencyNotFound         Code = "CurrencyNotFound"
	CodeUnknownCurrency          Code = "UnknownCurrency"
	CodeMinterAlreadyExists      Code = "MinterAlreadyExists"
	CodeMinterNotFound           Code = "MinterNotFound"
	CodeSlippageExceeded         Code = "SlippageExceeded"
	CodeInvalidNAVValue          Code = "InvalidNAVValue"
	CodeInvalidFeeRatio          Code = "InvalidFeeRatio"
	CodeInsufficientShares       Code = "InsufficientShares"
	CodeInsufficientFunds        Code = "InsufficientFunds"
	CodeMathOverflow             Code = "MathOverflow"
	CodeNAVExceeded              Code = "NAVExceeded"
	CodeAccountExists            Code = "AccountExists"
	CodeAccountNotFound          Code = "AccountNotFound"
)

// Error carries a Code plus a human message. Two Errors match under
// errors.Is when their codes are equal, so callers can compare against the
// sentinel values below without caring about message details.
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError returns a coded error with a fixed message.
func NewError(code Code, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// Errorf returns a coded error with a formatted message.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is comparisons.
var (
	ErrUnauthorized             = NewError(CodeUnauthorized, "signer is not the required authority")
	ErrInvalidInput             = NewError(CodeInvalidInput, "invalid input")
	ErrInvalidAddress           = NewError(CodeInvalidAddress, "invalid address")
	ErrInvalidSignature         = NewError(CodeInvalidSignature, "invalid signature")
	ErrMissingRequiredSignature = NewError(CodeMissingRequiredSignature, "recovered signer does not match verifier")
	ErrCurrencyAlreadyExists    = NewError(CodeCurrencyAlreadyExists, "currency already exists")
	ErrCurrencyNotFound         = NewError(CodeCurrencyNotFound, "currency not found")
	ErrUnknownCurrency          = NewError(CodeUnknownCurrency, "currency not whitelisted in vault")
	ErrMinterAlreadyExists      = NewError(CodeMinterAlreadyExists, "minter already exists")
	ErrMinterNotFound           = NewError(CodeMinterNotFound, "minter not found")
	ErrSlippageExceeded         = NewError(CodeSlippageExceeded, "slippage exceeded")
	ErrInvalidNAVValue          = NewError(CodeInvalidNAVValue, "invalid NAV value")
	ErrInvalidFeeRatio          = NewError(CodeInvalidFeeRatio, "invalid fee ratio")
	ErrInsufficientShares       = NewError(CodeInsufficientShares, "insufficient share balance")
	ErrInsufficientFunds        = NewError(CodeInsufficientFunds, "insufficient token balance")
	ErrMathOverflow             = NewError(CodeMathOverflow, "math overflow occurred")
	ErrNAVExceeded              = NewError(CodeNAVExceeded, "request NAV exceeds the live NAV")
	ErrAccountExists            = NewError(CodeAccountExists, "account already exists")
	ErrAccountNotFound          = NewError(CodeAccountNotFound, "account not found")
)
