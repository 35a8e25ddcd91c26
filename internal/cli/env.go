package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/reliverse/reliverse/internal/config"
	"github.com/reliverse/reliverse/internal/env"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Compose .env from .env.example",
	Long: `Compose a working .env for the project.

The keys listed in .env.example are required. Keys with a registry default
or a secret generator are filled automatically; remaining keys can be
copied from another .env file, edited in your editor, or entered one
service at a time. Values already present in .env are never overwritten.

When the project has no .env.example it is fetched from --example-url
(or RELIVERSE_EXAMPLE_URL), which may also be a local file or directory.`,
	Args: cobra.NoArgs,
	RunE: runEnv,
}

var envServicesCmd = &cobra.Command{
	Use:         "services",
	Short:       "List known services and their environment keys",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipReconcileAnnotation: "true"},
	RunE:        runEnvServices,
}

func init() {
	envCmd.Flags().Bool("skip-prompts", false, "Never prompt; only apply defaults and generated secrets")
	envCmd.Flags().Bool("no-mask", false, "Show typed values of secret keys")
	envCmd.Flags().Bool("no-browser", false, "Never offer to open service dashboards")
	envCmd.Flags().String("example-url", "", "Source of .env.example when the project has none (URL, file or directory)")

	envServicesCmd.Flags().Bool("yaml", false, "Print the registry as YAML")

	envCmd.AddCommand(envServicesCmd)
	rootCmd.AddCommand(envCmd)
}

func runEnv(cmd *cobra.Command, _ []string) error {
	if deps == nil {
		return fmt.Errorf("dependencies not initialized")
	}
	out := cmd.OutOrStdout()

	root, cfgPath, err := projectConfigPath(cmd)
	if err != nil {
		return err
	}
	opts := composeOptions(cmd, deps.Settings, loadProjectConfig(cfgPath), deps.Headless.IsHeadless())

	source := getStringFlag(cmd, "example-url")
	if source == "" {
		source = deps.Settings.ExampleURL
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	report, err := deps.NewComposer(!opts.SkipPrompts).Compose(ctx, root, source, deps.Registry, opts)
	if errors.Is(err, env.ErrAborted) {
		_, _ = fmt.Fprintln(out, deps.Theme.Warning.Render("Cancelled. Values entered so far were saved."))
		return nil
	}
	if err != nil {
		return err
	}
	return renderReport(out, report, deps.Registry, deps.Settings.NoColor)
}

// composeOptions merges settings, flags and the project config. Flags can
// only narrow what settings allow; a headless terminal always skips prompts.
func composeOptions(cmd *cobra.Command, s *config.Settings, cfg *config.ProjectConfig, headless bool) env.Options {
	opts := env.Options{
		MaskInput:   s.MaskInput && !getBoolFlag(cmd, "no-mask"),
		SkipPrompts: s.SkipPrompts || headless || getBoolFlag(cmd, "skip-prompts"),
		OpenBrowser: s.OpenBrowser && !getBoolFlag(cmd, "no-browser"),
	}
	if cfg != nil && !cfg.EnvComposerOpenBrowser {
		opts.OpenBrowser = false
	}
	return opts
}

func runEnvServices(cmd *cobra.Command, _ []string) error {
	if deps == nil {
		return fmt.Errorf("dependencies not initialized")
	}
	out := cmd.OutOrStdout()
	services := deps.Registry.Services()

	if getBoolFlag(cmd, "yaml") {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(services); err != nil {
			return fmt.Errorf("encode services: %w", err)
		}
		return enc.Close()
	}
	return printServices(out, services)
}

func printServices(w io.Writer, services []env.ServiceDefinition) error {
	th := deps.Theme
	for _, svc := range services {
		header := th.Title.Render(svc.Name)
		if svc.DashboardURL != "" {
			header += "  " + th.Muted.Render(svc.DashboardURL)
		}
		if _, err := fmt.Fprintln(w, header); err != nil {
			return err
		}
		hidden := 0
		for _, def := range svc.Keys {
			if def.Hidden {
				hidden++
				continue
			}
			line := "  " + th.Key.Render(fmt.Sprintf("%-36s", def.Key)) + fmt.Sprintf(" %-13s", def.Type.Label())
			switch {
			case def.Default != "":
				line += th.Muted.Render("default " + def.Default)
			case def.Generator != nil:
				line += th.Success.Render("generated")
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		if hidden > 0 {
			if _, err := fmt.Fprintln(w, "  "+th.Muted.Render(hiddenCount(hidden))); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
