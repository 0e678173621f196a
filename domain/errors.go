package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across layers.
type ErrorCode string

const (
	ErrCodeNotFound    ErrorCode = "NOT_FOUND"
	ErrCodeInvalid     ErrorCode = "INVALID"
	ErrCodeConflict    ErrorCode = "CONFLICT"
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE"
	ErrCodeInternal    ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is a sentinel *Error with the same code and message,
// so wrapped copies of a sentinel still match with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation errors raised by entity constructors.
var (
	ErrEmptyID         = NewError(ErrCodeInvalid, "id is required")
	ErrEmptyName       = NewError(ErrCodeInvalid, "name is required")
	ErrEmptyCustomerID = NewError(ErrCodeInvalid, "customer id is required")
	ErrEmptyProductID  = NewError(ErrCodeInvalid, "product id is required")
	ErrInvalidQuantity = NewError(ErrCodeInvalid, "quantity must be greater than zero")
	ErrInvalidPrice    = NewError(ErrCodeInvalid, "price must not be negative")
	ErrEmptyItems      = NewError(ErrCodeInvalid, "order must have at least one item")
	ErrDuplicateItemID = NewError(ErrCodeInvalid, "order item ids must be unique")
	ErrInvalidAddress  = NewError(ErrCodeInvalid, "address is invalid")
	ErrAddressRequired = NewError(ErrCodeInvalid, "address is required to activate a customer")
	ErrInvalidPoints   = NewError(ErrCodeInvalid, "reward points must be positive")
)

// Repository errors.
var (
	ErrOrderNotFound    = NewError(ErrCodeNotFound, "order not found")
	ErrCustomerNotFound = NewError(ErrCodeNotFound, "customer not found")
	ErrProductNotFound  = NewError(ErrCodeNotFound, "product not found")
	ErrInvalidPayload   = NewError(ErrCodeInvalid, "invalid payload")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
