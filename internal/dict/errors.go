package dict

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is the sentinel behind every ValidationError.
var ErrValidation = errors.New("invalid dictionary entry")

// FieldError describes one invalid field of one entry.
type FieldError struct {
	Source    string // file or "builtin", with line or index
	Character string
	Field     string
	Message   string
}

func (e FieldError) String() string {
	if e.Character != "" {
		return fmt.Sprintf("%s [%s] %s: %s", e.Source, e.Character, e.Field, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Source, e.Field, e.Message)
}

// ValidationError lists every field error found while loading.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation: " + e.Errors[0].String()
	}
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.String()
	}
	return fmt.Sprintf("validation: %d errors: %s", len(e.Errors), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
