package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrEmptyCart is returned when a checkout is attempted with no items.
	ErrEmptyCart = errors.New("cart kosong")

	// ErrAlreadyProcessed signals that a payment was already verified or
	// rejected by another cashier. Callers should refresh state, not retry.
	ErrAlreadyProcessed = errors.New("pembayaran sudah diproses")

	// ErrAuthExpired forces a re-login before sensitive mutations.
	ErrAuthExpired = errors.New("sesi kedaluwarsa")

	ErrForbidden = errors.New("akses ditolak")
)

// ValidationError marks malformed or missing input. Field names the offending
// field so the API layer can surface an inline message.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func Invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

// GatewayError wraps failures talking to the payment gateway. The order stays
// in its pre-payment state and the caller may retry.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string { return fmt.Sprintf("gateway %s: %v", e.Op, e.Err) }
func (e *GatewayError) Unwrap() error { return e.Err }
