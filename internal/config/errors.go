// Package config models the reliverse.jsonc project configuration and
// reconciles an on-disk copy with freshly computed defaults. It also loads
// the CLI's own settings from RELIVERSE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for configuration operations.
var (
	// ErrConfigNotFound indicates no project config file exists at the path.
	ErrConfigNotFound = errors.New("config: project config not found")

	// ErrInvalidJSONC indicates the project config could not be parsed.
	ErrInvalidJSONC = errors.New("config: invalid JSONC syntax")

	// ErrInvalidConfig indicates the configuration failed validation.
	ErrInvalidConfig = errors.New("config: invalid configuration")

	// ErrInvalidBehavior indicates a behavior field outside prompt/autoYes/autoNo.
	ErrInvalidBehavior = errors.New("config: invalid behavior, must be one of: prompt, autoYes, autoNo")

	// ErrInvalidFrequency indicates an unparsable revalidation frequency.
	ErrInvalidFrequency = errors.New("config: invalid revalidate frequency")

	// ErrFieldNotFound indicates a `config get` path matched nothing.
	ErrFieldNotFound = errors.New("config: field not found")
)

// ValidationError represents a single validation error with field context.
type ValidationError struct {
	Field   string
	Message string
	Value   any
	Wrapped error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation error: field %q: %s (got: %v)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("validation error: field %q: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Wrapped
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors struct {
	Errors []ValidationError
}

// Error implements the error interface.
func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "validation: no errors"
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("validation failed with %d error(s): %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Is reports ErrInvalidConfig for any collection and otherwise matches the
// wrapped sentinels of the contained errors.
func (e *ValidationErrors) Is(target error) bool {
	if target == ErrInvalidConfig {
		return true
	}
	for _, ve := range e.Errors {
		if ve.Wrapped != nil && errors.Is(ve.Wrapped, target) {
			return true
		}
	}
	return false
}
