// Package ui holds the terminal front end of the CLI: TTY detection, the
// huh-backed prompter used by env composition, styling, a spinner for
// network waits, and launchers for the browser and the user's editor.
package ui

import (
	"errors"
	"fmt"

	"github.com/reliverse/reliverse/internal/env"
)

var (
	// ErrCancelled is returned when the user aborts a prompt. It wraps
	// env.ErrAborted so the composer stops processing further keys.
	ErrCancelled = fmt.Errorf("ui: cancelled by user: %w", env.ErrAborted)

	// ErrHeadless means a prompt was requested without a terminal.
	ErrHeadless = errors.New("ui: no terminal available for prompts")

	// ErrNoOpener means no command could open a URL on this system.
	ErrNoOpener = errors.New("ui: no command available to open URLs")

	// ErrNoEditor means no editor could be found.
	ErrNoEditor = errors.New("ui: no editor found; set $VISUAL or $EDITOR")
)
