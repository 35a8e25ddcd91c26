package project

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/reliverse/reliverse/internal/defs"
)

// Detection is what could be learned about a project from its files.
// Empty fields mean "not detected".
type Detection struct {
	Name           string
	Description    string
	Version        string
	Author         string
	License        string
	Repository     string
	Framework      string
	PackageManager string
	// Libraries maps a category ("auth", "database", ...) to the library used.
	Libraries map[string]string
	// Dependencies is the union of dependencies and devDependencies.
	Dependencies map[string]string
	HasDocker    bool
	HasCI        bool
	HasAPI       bool
}

// packageJSON is the subset of package.json the detector reads. Author and
// repository may be strings or objects.
type packageJSON struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Description     string            `json:"description"`
	License         string            `json:"license"`
	Author          json.RawMessage   `json:"author"`
	Repository      json.RawMessage   `json:"repository"`
	PackageManager  string            `json:"packageManager"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// mapping ties a dependency to the value it implies.
type mapping struct {
	Dependency string
	Value      string
}

// frameworks in detection order; meta-frameworks come before the libraries
// they build on.
var frameworks = []mapping{
	{"next", "nextjs"},
	{"@remix-run/react", "remix"},
	{"@sveltejs/kit", "sveltekit"},
	{"nuxt", "nuxt"},
	{"astro", "astro"},
	{"@tanstack/react-start", "tanstack-start"},
	{"vite", "vite"},
	{"react", "react"},
	{"vue", "vue"},
	{"svelte", "svelte"},
}

// lockfiles map to the package manager that writes them.
var lockfiles = []mapping{
	{"bun.lock", "bun"},
	{"bun.lockb", "bun"},
	{"pnpm-lock.yaml", "pnpm"},
	{"yarn.lock", "yarn"},
	{"package-lock.json", "npm"},
}

// libraryCategories lists, per preferredLibraries category, the
// dependencies that select a library, first match wins.
var libraryCategories = []struct {
	Category string
	Choices  []mapping
}{
	{"auth", []mapping{{"better-auth", "better-auth"}, {"@clerk/nextjs", "clerk"}, {"next-auth", "next-auth"}, {"@auth/core", "authjs"}}},
	{"database", []mapping{{"drizzle-orm", "drizzle"}, {"@prisma/client", "prisma"}, {"mongoose", "mongoose"}}},
	{"dbProvider", []mapping{{"@neondatabase/serverless", "neon"}, {"postgres", "postgres"}, {"pg", "postgres"}, {"@libsql/client", "libsql"}}},
	{"payments", []mapping{{"@polar-sh/sdk", "polar"}, {"stripe", "stripe"}}},
	{"email", []mapping{{"resend", "resend"}, {"nodemailer", "nodemailer"}}},
	{"styling", []mapping{{"tailwindcss", "tailwind"}, {"styled-components", "styled-components"}}},
	{"uiComponents", []mapping{{"@radix-ui/react-slot", "shadcn-ui"}, {"@mantine/core", "mantine"}}},
	{"i18n", []mapping{{"next-intl", "next-intl"}, {"i18next", "i18next"}}},
	{"forms", []mapping{{"react-hook-form", "react-hook-form"}, {"@tanstack/react-form", "tanstack-form"}}},
	{"validation", []mapping{{"zod", "zod"}, {"valibot", "valibot"}}},
	{"stateManagement", []mapping{{"zustand", "zustand"}, {"jotai", "jotai"}}},
	{"fileUploads", []mapping{{"uploadthing", "uploadthing"}}},
	{"analytics", []mapping{{"@vercel/analytics", "vercel"}, {"posthog-js", "posthog"}}},
	{"testing", []mapping{{"vitest", "vitest"}, {"jest", "jest"}, {"@playwright/test", "playwright"}, {"bun-types", "bun"}}},
	{"api", []mapping{{"@trpc/server", "trpc"}, {"hono", "hono"}}},
	{"linting", []mapping{{"@biomejs/biome", "biome"}, {"eslint", "eslint"}}},
}

// Detector identifies project characteristics from the filesystem.
type Detector struct {
	logger *slog.Logger
}

// NewDetector creates a Detector. A nil logger discards output.
func NewDetector(logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Detector{logger: logger}
}

// Detect inspects root. A missing package.json is not an error; the
// detection is then based on the directory alone.
func (d *Detector) Detect(root string) (*Detection, error) {
	root = filepath.Clean(root)
	if err := validateRoot(root); err != nil {
		return nil, err
	}
	d.logger.Debug("detecting project", "root", root)

	det := &Detection{Libraries: map[string]string{}, Dependencies: map[string]string{}}

	pkg, err := readPackageJSON(filepath.Join(root, defs.PackageJSON))
	if err != nil {
		return nil, err
	}
	if pkg != nil {
		det.Name = pkg.Name
		det.Version = pkg.Version
		det.Description = pkg.Description
		det.License = pkg.License
		det.Author = personName(pkg.Author)
		det.Repository = repositoryURL(pkg.Repository)
		det.PackageManager = packageManagerField(pkg.PackageManager)
		maps.Copy(det.Dependencies, pkg.DevDependencies)
		maps.Copy(det.Dependencies, pkg.Dependencies)
	}

	det.Framework = firstMatch(frameworks, det.Dependencies)
	for _, cat := range libraryCategories {
		if lib := firstMatch(cat.Choices, det.Dependencies); lib != "" {
			det.Libraries[cat.Category] = lib
		}
	}
	if det.PackageManager == "" {
		for _, lf := range lockfiles {
			if fileExists(filepath.Join(root, lf.Dependency)) {
				det.PackageManager = lf.Value
				break
			}
		}
	}

	det.HasDocker = fileExists(filepath.Join(root, "Dockerfile")) || fileExists(filepath.Join(root, "docker-compose.yml"))
	det.HasCI = dirExists(filepath.Join(root, ".github", "workflows"))
	det.HasAPI = det.Libraries["api"] != "" ||
		dirExists(filepath.Join(root, "src", "app", "api")) ||
		dirExists(filepath.Join(root, "app", "api"))

	d.logger.Debug("project detected",
		"framework", det.Framework,
		"packageManager", det.PackageManager,
		"libraries", len(det.Libraries))
	return det, nil
}

func readPackageJSON(path string) (*packageJSON, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPackageJSON, path, err)
	}
	return &pkg, nil
}

// personName reads an author given as "Name <mail> (url)" or {"name": ...}.
func personName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if i := strings.IndexAny(s, "<("); i >= 0 {
			s = s[:i]
		}
		return strings.TrimSpace(s)
	}
	var obj struct {
		Name string `json:"name"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return obj.Name
	}
	return ""
}

// repositoryURL reads a repository given as a string or {"url": ...}.
func repositoryURL(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj struct {
		URL string `json:"url"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return strings.TrimPrefix(obj.URL, "git+")
	}
	return ""
}

// packageManagerField reads the corepack "packageManager" field, e.g. "pnpm@9.1.0".
func packageManagerField(v string) string {
	name, _, _ := strings.Cut(v, "@")
	switch name {
	case "bun", "pnpm", "yarn", "npm":
		return name
	}
	return ""
}

func firstMatch(choices []mapping, deps map[string]string) string {
	for _, m := range choices {
		if _, ok := deps[m.Dependency]; ok {
			return m.Value
		}
	}
	return ""
}

// validateRoot checks that the root path is a valid, accessible directory.
func validateRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRoot, root)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, root)
	}
	return nil
}

// dirExists checks if a path exists and is a directory.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// fileExists checks if a path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
