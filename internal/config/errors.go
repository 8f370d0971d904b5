package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is matched by every FieldError.
var ErrInvalidConfig = errors.New("invalid generation config")

// FieldError names a configuration field that failed validation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidConfig) match any field error.
func (e *FieldError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func fieldErr(field, format string, args ...interface{}) *FieldError {
	return &FieldError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Fields returns the names of all invalid fields contained in err.
func Fields(err error) []string {
	var fields []string
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if fe, ok := e.(*FieldError); ok {
			fields = append(fields, fe.Field)
			return
		}
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ WrappedErrors() []error }:
			for _, inner := range u.WrappedErrors() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return fields
}

func indexed(field string, i int) string {
	return fmt.Sprintf("%s[%d]", field, i)
}
