package project

import (
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/gosimple/slug"

	"github.com/reliverse/reliverse/internal/config"
)

// Generator computes the default project config for a directory.
type Generator struct {
	detector *Detector
	logger   *slog.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(logger *slog.Logger) *Generator {
	d := NewDetector(logger)
	return &Generator{detector: d, logger: d.logger}
}

// GenerateDefaults returns the detected settings of root layered over the
// compiled defaults. Detected values win; compiled defaults fill the rest.
func (g *Generator) GenerateDefaults(root string) (*config.ProjectConfig, error) {
	det, err := g.detector.Detect(root)
	if err != nil {
		return nil, err
	}

	cfg := fromDetection(det, root)
	if err := mergo.Merge(cfg, config.NewDefaultProjectConfig()); err != nil {
		return nil, fmt.Errorf("layer defaults: %w", err)
	}
	g.logger.Debug("default project config computed", "root", root, "name", cfg.ProjectName)
	return cfg, nil
}

// DefaultsFunc adapts GenerateDefaults to the reconciler.
func (g *Generator) DefaultsFunc(root string) config.DefaultsFunc {
	return func() (*config.ProjectConfig, error) {
		return g.GenerateDefaults(root)
	}
}

// fromDetection maps a Detection onto a sparse ProjectConfig holding only
// what was detected.
func fromDetection(det *Detection, root string) *config.ProjectConfig {
	name := det.Name
	if i := strings.LastIndex(name, "/"); i >= 0 {
		// Scoped package: "@scope/name".
		name = name[i+1:]
	}
	if name == "" {
		name = filepath.Base(filepath.Clean(root))
	}
	name = ProjectSlug(name)

	cfg := &config.ProjectConfig{
		ProjectName:           name,
		ProjectAuthor:         det.Author,
		ProjectDescription:    det.Description,
		Version:               det.Version,
		ProjectLicense:        det.License,
		ProjectRepository:     det.Repository,
		ProjectFramework:      det.Framework,
		ProjectPackageManager: det.PackageManager,
		PreferredLibraries:    maps.Clone(det.Libraries),
	}
	if name != "" {
		cfg.ProjectDomain = name + ".vercel.app"
	}
	if strings.Contains(det.Repository, "gitlab.com") {
		cfg.ProjectGitService = "gitlab"
	}

	cfg.Features = config.Features{
		I18n:           det.Libraries["i18n"] != "",
		Analytics:      det.Libraries["analytics"] != "",
		Authentication: det.Libraries["auth"] != "",
		API:            det.HasAPI,
		Database:       det.Libraries["database"] != "" || det.Libraries["dbProvider"] != "",
		Testing:        det.Libraries["testing"] != "",
		Docker:         det.HasDocker,
		CICD:           det.HasCI,
	}
	if _, ok := det.Dependencies["typescript"]; ok {
		cfg.Features.Language = []string{"typescript"}
	}
	return cfg
}

// ProjectSlug turns a display name into the slug used for projectName.
func ProjectSlug(name string) string {
	return slug.Make(strings.TrimSpace(name))
}
