package model

import (
	"fmt"
	"strings"
)

// ConfigurationError indicates required connection settings are missing.
// It is fatal and raised before any store access.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required database configuration: %s", strings.Join(e.Missing, ", "))
}

// ValidationError indicates an unsupported symbol or malformed parameter.
// It is raised before any store access and is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return e.Message
}

// NewValidationError creates a validation error for a named parameter
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError indicates the store returned zero rows for a data query that
// requires at least one. It carries the requested scope so callers can tell
// "no data in range" apart from a store failure.
type NotFoundError struct {
	Entity string
	Scope  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s data not found (%s)", e.Entity, e.Scope)
}

// NewNotFoundError creates a not-found error with the requested scope
func NewNotFoundError(entity, scope string) *NotFoundError {
	return &NotFoundError{Entity: entity, Scope: scope}
}

// SchemaError indicates a trade log is missing required columns
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns in trade log: %s", strings.Join(e.Missing, ", "))
}
