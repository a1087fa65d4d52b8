// Package apperrors is the error taxonomy shared by every context. Each
// service declares its own sentinels with New and callers classify failures
// with errors.Is against the kind sentinels below.
package apperrors

import "errors"

type Kind string

const (
	KindValidation        Kind = "validation"
	KindAuthorization     Kind = "authorization"
	KindConflict          Kind = "conflict"
	KindState             Kind = "state"
	KindNotFound          Kind = "not_found"
	KindInsufficientFunds Kind = "insufficient_funds"
)

// Kind sentinels. errors.Is(err, ErrConflict) holds for every conflict error.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrAuthorization     = &Error{Kind: KindAuthorization}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrState             = &Error{Kind: KindState}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInsufficientFunds = &Error{Kind: KindInsufficientFunds}
)

type Error struct {
	Kind    Kind
	Field   string
	Message string
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Invalid reports a validation failure on a named input field.
func Invalid(field string, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message == "" && t.Field == "" {
		return t.Kind == e.Kind
	}
	return t == e
}

// KindOf returns the kind of the first classified error in the chain.
func KindOf(err error) (Kind, bool) {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind, true
	}
	return "", false
}

// FieldOf returns the offending field of a validation error, if any.
func FieldOf(err error) string {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Field
	}
	return ""
}
