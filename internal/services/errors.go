package services

import (
	"errors"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrBadCreds          = errors.New("invalid email or password")
	ErrUnauthorized      = errors.New("missing or invalid session")
	ErrInvalidTransition = errors.New("status change not allowed")
)

type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lists every rejected field of one request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

// errOrNil keeps a nil *ValidationError from turning into a non-nil error.
func (e *ValidationError) errOrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// AsValidation unwraps err into a *ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
