package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/reliverse/reliverse/internal/config"
)

const samplePackageJSON = `{
  "name": "@acme/My Shop",
  "version": "1.2.3",
  "description": "A store",
  "license": "Apache-2.0",
  "author": "Jane Doe <jane@example.com> (https://jane.dev)",
  "repository": {"type": "git", "url": "git+https://github.com/acme/shop.git"},
  "dependencies": {
    "next": "15.0.0",
    "react": "19.0.0",
    "better-auth": "1.0.0",
    "drizzle-orm": "0.36.0",
    "@neondatabase/serverless": "0.10.0",
    "@polar-sh/sdk": "0.20.0",
    "stripe": "17.0.0",
    "next-intl": "3.0.0"
  },
  "devDependencies": {
    "tailwindcss": "4.0.0",
    "vitest": "2.0.0",
    "typescript": "5.6.0"
  }
}`

func writeProjectFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDetector_Detect(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeProjectFile(t, root, "package.json", samplePackageJSON)
	writeProjectFile(t, root, "pnpm-lock.yaml", "")
	writeProjectFile(t, root, "Dockerfile", "FROM node")
	writeProjectFile(t, root, ".github/workflows/ci.yml", "on: push")

	det, err := NewDetector(nil).Detect(root)
	if err != nil {
		t.Fatalf("Detect() error: %v", err)
	}

	checks := []struct {
		field, got, want string
	}{
		{"Framework", det.Framework, "nextjs"},
		{"PackageManager", det.PackageManager, "pnpm"},
		{"Author", det.Author, "Jane Doe"},
		{"Repository", det.Repository, "https://github.com/acme/shop.git"},
		{"auth", det.Libraries["auth"], "better-auth"},
		{"database", det.Libraries["database"], "drizzle"},
		{"dbProvider", det.Libraries["dbProvider"], "neon"},
		{"payments", det.Libraries["payments"], "polar"},
		{"styling", det.Libraries["styling"], "tailwind"},
		{"testing", det.Libraries["testing"], "vitest"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}
	if !det.HasDocker || !det.HasCI || det.HasAPI {
		t.Errorf("HasDocker=%v HasCI=%v HasAPI=%v", det.HasDocker, det.HasCI, det.HasAPI)
	}
}

func TestDetector_PackageManagerField(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeProjectFile(t, root, "package.json", `{"name":"x","packageManager":"bun@1.1.0"}`)
	writeProjectFile(t, root, "package-lock.json", "{}")

	det, err := NewDetector(nil).Detect(root)
	if err != nil {
		t.Fatal(err)
	}
	if det.PackageManager != "bun" {
		t.Errorf("PackageManager = %q, want the packageManager field to win", det.PackageManager)
	}
}

func TestDetector_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewDetector(nil).Detect(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, ErrInvalidRoot) {
		t.Errorf("Detect(missing) error = %v, want ErrInvalidRoot", err)
	}

	root := t.TempDir()
	writeProjectFile(t, root, "package.json", "{not json")
	if _, err := NewDetector(nil).Detect(root); !errors.Is(err, ErrInvalidPackageJSON) {
		t.Errorf("Detect(bad json) error = %v, want ErrInvalidPackageJSON", err)
	}
}

func TestGenerateDefaults_DetectedOverCompiled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeProjectFile(t, root, "package.json", samplePackageJSON)
	writeProjectFile(t, root, "yarn.lock", "")

	cfg, err := NewGenerator(nil).GenerateDefaults(root)
	if err != nil {
		t.Fatalf("GenerateDefaults() error: %v", err)
	}

	if cfg.ProjectName != "my-shop" {
		t.Errorf("ProjectName = %q, want my-shop", cfg.ProjectName)
	}
	if cfg.ProjectDomain != "my-shop.vercel.app" {
		t.Errorf("ProjectDomain = %q", cfg.ProjectDomain)
	}
	if cfg.ProjectLicense != "Apache-2.0" || cfg.Version != "1.2.3" {
		t.Errorf("detected license/version lost: %q %q", cfg.ProjectLicense, cfg.Version)
	}
	if cfg.ProjectPackageManager != "yarn" {
		t.Errorf("ProjectPackageManager = %q, want yarn", cfg.ProjectPackageManager)
	}
	if !cfg.Features.I18n || !cfg.Features.Authentication || !cfg.Features.Database || !cfg.Features.Testing {
		t.Errorf("Features = %+v", cfg.Features)
	}

	// Compiled defaults fill what detection left empty.
	if cfg.ProjectDeployService != config.DefaultDeployService {
		t.Errorf("ProjectDeployService = %q", cfg.ProjectDeployService)
	}
	if cfg.CodeStyle.LineWidth != config.DefaultLineWidth {
		t.Errorf("CodeStyle.LineWidth = %d", cfg.CodeStyle.LineWidth)
	}
	if cfg.Features.ThemeMode != config.DefaultThemeMode {
		t.Errorf("Features.ThemeMode = %q", cfg.Features.ThemeMode)
	}
	if cfg.ConfigRevalidateFrequency != config.DefaultRevalidateFrequency {
		t.Errorf("ConfigRevalidateFrequency = %q", cfg.ConfigRevalidateFrequency)
	}
	if cfg.GitBehavior != config.BehaviorPrompt {
		t.Errorf("GitBehavior = %q", cfg.GitBehavior)
	}
	if err := config.Validate(cfg); err != nil {
		t.Errorf("generated config is invalid: %v", err)
	}
}

func TestGenerateDefaults_NoPackageJSON(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "Cool Project")
	if err := os.Mkdir(root, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewGenerator(nil).GenerateDefaults(root)
	if err != nil {
		t.Fatalf("GenerateDefaults() error: %v", err)
	}
	if cfg.ProjectName != "cool-project" {
		t.Errorf("ProjectName = %q, want cool-project", cfg.ProjectName)
	}
	if cfg.ProjectFramework != config.DefaultProjectFramework {
		t.Errorf("ProjectFramework = %q, want the compiled default", cfg.ProjectFramework)
	}
	if cfg.ProjectPackageManager != config.DefaultPackageManager {
		t.Errorf("ProjectPackageManager = %q", cfg.ProjectPackageManager)
	}
}

func TestFindProjectRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeProjectFile(t, root, "package.json", "{}")
	nested := filepath.Join(root, "src", "app")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot() error: %v", err)
	}
	if got != root {
		t.Errorf("FindProjectRoot() = %q, want %q", got, root)
	}

	// reliverse.jsonc is preferred over a closer package.json.
	writeProjectFile(t, nested, "package.json", "{}")
	writeProjectFile(t, root, "reliverse.jsonc", "{}")
	if got, _ := FindProjectRoot(nested); got != root {
		t.Errorf("FindProjectRoot() = %q, want %q", got, root)
	}
}
