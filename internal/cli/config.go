package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/cobra"

	"github.com/reliverse/reliverse/internal/config"
	"github.com/reliverse/reliverse/internal/defs"
	"github.com/reliverse/reliverse/internal/fsutil"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and reconcile reliverse.jsonc",
}

var configReconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Fill fields missing from reliverse.jsonc with current defaults",
	Long: `Reconcile reliverse.jsonc with the defaults computed for this project.

Fields missing from the file are added; values already present, including
empty ones, are kept. The file is rewritten only when something was added.
Reconciliation runs only when configRevalidateFrequency has elapsed since
configLastRevalidate, unless --force is given.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipReconcileAnnotation: "true"},
	RunE:        runConfigReconcile,
}

var configGetCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Print one field of reliverse.jsonc (for example features.i18n)",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

func init() {
	configReconcileCmd.Flags().Bool("create", false, "Create reliverse.jsonc from defaults when it does not exist")
	configReconcileCmd.Flags().Bool("force", false, "Reconcile even if revalidation is not due")

	configCmd.AddCommand(configReconcileCmd, configGetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigReconcile(cmd *cobra.Command, _ []string) error {
	if deps == nil {
		return fmt.Errorf("dependencies not initialized")
	}
	out := cmd.OutOrStdout()

	root, path, err := projectConfigPath(cmd)
	if err != nil {
		return err
	}

	if !fsutil.Exists(path) {
		if !getBoolFlag(cmd, "create") {
			return fmt.Errorf("%w: %s (use --create)", config.ErrConfigNotFound, path)
		}
		cfg, err := deps.Generator.GenerateDefaults(root)
		if err != nil {
			return fmt.Errorf("compute defaults: %w", err)
		}
		if err := config.Create(path, cfg, time.Now()); err != nil && !errors.Is(err, fs.ErrExist) {
			return err
		}
		_, _ = fmt.Fprintf(out, "%s %s\n", deps.Theme.Success.Render("created"), path)
		return nil
	}

	reconciler := deps.Reconciler
	if getBoolFlag(cmd, "force") {
		reconciler = config.NewReconciler(config.WithLogger(deps.Logger), config.WithForce())
	}
	_, outcome := reconciler.Reconcile(path, deps.Generator.DefaultsFunc(root))
	if outcome == config.OutcomeSkipped {
		return fmt.Errorf("%s was not reconciled, see the log above", defs.ProjectConfigFile)
	}
	_, _ = fmt.Fprintf(out, "%s %s\n", deps.Theme.Success.Render(outcome.String()), path)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if deps == nil {
		return fmt.Errorf("dependencies not initialized")
	}
	_, path, err := projectConfigPath(cmd)
	if err != nil {
		return err
	}
	res, err := config.Get(path, args[0])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), res.String())
	return err
}
