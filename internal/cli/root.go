package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reliverse/reliverse/internal/config"
	"github.com/reliverse/reliverse/internal/core/project"
	"github.com/reliverse/reliverse/internal/defs"
	"github.com/reliverse/reliverse/pkg/version"
)

// skipReconcileAnnotation marks commands that manage reliverse.jsonc
// themselves and must not trigger the session-start reconcile.
const skipReconcileAnnotation = "reliverse/skip-reconcile"

var rootCmd = &cobra.Command{
	Use:   "reliverse",
	Short: "Reliverse: project config and .env companion for web app templates",
	Long: `Reliverse keeps a project's reliverse.jsonc in step with the current
defaults and composes a working .env from the project's .env.example.

On every run the project config is reconciled: fields added by newer
releases are filled in, values you have set are never changed.`,
	Version:           version.GetVersion(),
	SilenceUsage:      true,
	PersistentPreRunE: reconcileAtStart,
}

// @MX:ANCHOR: [AUTO] Execute is the main entry point for the reliverse CLI
// @MX:REASON: [AUTO] fan_in=2, called from cmd/reliverse/main.go and root_test.go
// Execute initializes dependencies and runs the root command.
func Execute() error {
	if err := InitDependencies(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("reliverse %s\n", version.GetVersion()))

	rootCmd.PersistentFlags().String("cwd", "", "Project directory (default: nearest project root)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
}

// reconcileAtStart applies global flags and reconciles the project config
// once per session.
func reconcileAtStart(cmd *cobra.Command, _ []string) error {
	if deps == nil {
		return fmt.Errorf("dependencies not initialized")
	}
	if level := getStringFlag(cmd, "log-level"); level != "" {
		deps.SetLogLevel(level)
	}
	if cmd.Annotations[skipReconcileAnnotation] == "true" {
		return nil
	}

	root, err := resolveProjectRoot(cmd)
	if err != nil {
		deps.Logger.Debug("no project root, skipping config reconcile", "error", err)
		return nil
	}
	path := filepath.Join(root, defs.ProjectConfigFile)
	_, outcome := deps.Reconciler.Reconcile(path, deps.Generator.DefaultsFunc(root))
	deps.Logger.Debug("project config reconciled", "path", path, "outcome", outcome)
	return nil
}

// resolveProjectRoot returns --cwd when given, otherwise the nearest
// project root above the working directory.
func resolveProjectRoot(cmd *cobra.Command) (string, error) {
	if dir := getStringFlag(cmd, "cwd"); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", dir, err)
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			return "", fmt.Errorf("%w: %s", project.ErrInvalidRoot, abs)
		}
		return abs, nil
	}
	return project.FindProjectRootOrCurrent()
}

// projectConfigPath returns the reliverse.jsonc path for the command's project.
func projectConfigPath(cmd *cobra.Command) (root, path string, err error) {
	root, err = resolveProjectRoot(cmd)
	if err != nil {
		return "", "", err
	}
	return root, filepath.Join(root, defs.ProjectConfigFile), nil
}

// loadProjectConfig reads the project config if one exists. A missing or
// unreadable file yields nil.
func loadProjectConfig(path string) *config.ProjectConfig {
	cfg, err := config.Load(path)
	if err != nil {
		deps.Logger.Debug("project config not loaded", "path", path, "error", err)
		return nil
	}
	return cfg
}

// getStringFlag reads a string flag, including persistent flags inherited
// from a parent command.
func getStringFlag(cmd *cobra.Command, name string) string {
	f := cmd.Flag(name)
	if f == nil {
		return ""
	}
	return f.Value.String()
}

// getBoolFlag reads a boolean flag.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	f := cmd.Flag(name)
	return f != nil && f.Value.String() == "true"
}
