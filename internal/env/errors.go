// Package env composes a project's .env file from its .env.example, a
// registry of known services, and user input. Keys with a registry default
// or generator are filled automatically; only genuinely missing values are
// asked for.
package env

import (
	"errors"
	"fmt"
)

// Sentinel errors for the env package.
var (
	// ErrExampleUnavailable means no .env.example could be found or fetched.
	// It is the only failure that aborts Compose.
	ErrExampleUnavailable = errors.New("env: .env.example unavailable")

	// ErrAborted means the user cancelled a prompt. Values already written
	// stay on disk.
	ErrAborted = errors.New("env: aborted by user")

	// ErrDuplicateKey means two registry entries claim the same key.
	ErrDuplicateKey = errors.New("env: duplicate key in service registry")

	// ErrInvalidKey means a key name is not a valid environment variable name.
	ErrInvalidKey = errors.New("env: invalid key name")

	// ErrFetch means the example file could not be downloaded.
	ErrFetch = errors.New("env: fetch failed")

	// ErrLocked means another compose run holds the project's .env.
	ErrLocked = errors.New("env: .env is locked by another run")
)

// KeyError attaches the key and service to a failure.
type KeyError struct {
	Key     string
	Service string
	Err     error
}

// Error implements the error interface.
func (e *KeyError) Error() string {
	if e.Service != "" {
		return fmt.Sprintf("%s (%s): %v", e.Key, e.Service, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *KeyError) Unwrap() error {
	return e.Err
}
