// Package project inspects a JavaScript project on disk and derives the
// default reliverse.jsonc values from it: framework, package manager,
// preferred libraries and feature flags.
package project

import "errors"

// Sentinel errors for the project package.
var (
	// ErrInvalidRoot indicates the given project root path is invalid or inaccessible.
	ErrInvalidRoot = errors.New("invalid project root path")

	// ErrInvalidPackageJSON indicates package.json exists but cannot be parsed.
	ErrInvalidPackageJSON = errors.New("invalid package.json")

	// ErrNotInProject indicates no project marker was found upward from a directory.
	ErrNotInProject = errors.New("not in a reliverse project")
)
