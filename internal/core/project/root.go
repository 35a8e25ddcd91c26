package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/reliverse/reliverse/internal/defs"
)

// rootMarkers identify a project root, strongest first.
var rootMarkers = []string{defs.ProjectConfigFile, defs.PackageJSON}

// @MX:ANCHOR: [AUTO] every command resolves reliverse.jsonc and .env against this root
// @MX:REASON: [AUTO] running from a subdirectory must not create files there
// FindProjectRoot walks upward from start until it finds a directory
// containing reliverse.jsonc, or failing that package.json. Returns the
// absolute path of that directory.
func FindProjectRoot(start string) (string, error) {
	absDir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	for _, marker := range rootMarkers {
		dir := absDir
		for {
			if fileExists(filepath.Join(dir, marker)) {
				return dir, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	return "", fmt.Errorf("%w: no %s or %s in %s or any parent directory",
		ErrNotInProject, defs.ProjectConfigFile, defs.PackageJSON, absDir)
}

// FindProjectRootOrCurrent is like FindProjectRoot but falls back to the
// current directory when no project marker is found.
func FindProjectRootOrCurrent() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	if root, err := FindProjectRoot(dir); err == nil {
		return root, nil
	}
	return filepath.Abs(dir)
}
