// Package cli provides the Cobra command tree for the reliverse binary.
// This file defines the Dependencies struct (Composition Root) that wires
// the config, env, memory and ui packages together.
package cli

import (
	"io"
	"log/slog"
	"os"
	"sync"

	charmlog "github.com/charmbracelet/log"

	"github.com/reliverse/reliverse/internal/config"
	"github.com/reliverse/reliverse/internal/core/project"
	"github.com/reliverse/reliverse/internal/env"
	"github.com/reliverse/reliverse/internal/memory"
	"github.com/reliverse/reliverse/internal/ui"
)

// Dependencies holds the services used by CLI commands. Concrete types are
// only instantiated here; commands reach them through this struct.
type Dependencies struct {
	Settings   *config.Settings
	Logger     *slog.Logger
	Theme      *ui.Theme
	Headless   *ui.HeadlessManager
	Registry   *env.Registry
	Reconciler *config.Reconciler
	Generator  *project.Generator
	Fetcher    env.ExampleFetcher
	Prompter   env.Prompter
	Browser    env.BrowserOpener
	Editor     env.EditorLauncher

	logHandler *charmlog.Logger
	memoryOnce sync.Once
	memory     env.KeyValueStore
}

// deps is the global dependencies instance, initialized by InitDependencies.
var deps *Dependencies

// @MX:ANCHOR: [AUTO] InitDependencies is the Composition Root that wires all domain modules
// @MX:REASON: [AUTO] fan_in=2, called from root.go and deps_test.go
// InitDependencies loads the RELIVERSE_* settings and wires every
// dependency. Logs go to stderr.
func InitDependencies() error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	deps = NewDependencies(settings, os.Stderr)
	return nil
}

// NewDependencies wires dependencies for settings. Logs and progress
// output go to logOut.
func NewDependencies(settings *config.Settings, logOut io.Writer) *Dependencies {
	logger, handler := newLogger(logOut, settings.LogLevel)
	theme := ui.NewTheme(settings.NoColor)
	hm := ui.NewHeadlessManager()

	return &Dependencies{
		Settings:   settings,
		Logger:     logger,
		Theme:      theme,
		Headless:   hm,
		Registry:   env.DefaultRegistry(),
		Reconciler: config.NewReconciler(config.WithLogger(logger)),
		Generator:  project.NewGenerator(logger),
		Fetcher: &ui.SpinnerFetcher{
			Next:     env.NewHTTPFetcher(settings.FetchTimeout),
			Theme:    theme,
			Headless: hm,
			Out:      logOut,
		},
		Prompter:   ui.NewHuhPrompter(theme, hm),
		Browser:    ui.NewSystemBrowser(),
		Editor:     ui.NewExecEditor(),
		logHandler: handler,
	}
}

// GetDeps returns the current dependencies.
func GetDeps() *Dependencies {
	return deps
}

// SetDeps replaces the current dependencies. Tests use it to inject fakes.
func SetDeps(d *Dependencies) {
	deps = d
}

// SetLogLevel changes the level of the CLI logger.
func (d *Dependencies) SetLogLevel(level string) {
	if d.logHandler != nil {
		d.logHandler.SetLevel(parseLevel(level))
	}
}

// Memory opens the encrypted memory store under the reliverse home on
// first use. When it cannot be opened, a warning is logged and nil is
// returned; composing then runs without remembered values.
func (d *Dependencies) Memory() env.KeyValueStore {
	d.memoryOnce.Do(func() {
		store, err := memory.Open(d.Settings.HomeDir)
		if err != nil {
			d.Logger.Warn("memory store unavailable", "dir", d.Settings.HomeDir, "error", err)
			return
		}
		d.memory = store
	})
	return d.memory
}

// SetMemory replaces the memory store.
func (d *Dependencies) SetMemory(m env.KeyValueStore) {
	d.memoryOnce.Do(func() {})
	d.memory = m
}

// NewComposer builds an EnvComposer. Without interactive, no prompter is
// wired and the composer runs in skip-prompts mode.
func (d *Dependencies) NewComposer(interactive bool) *env.Composer {
	opts := []env.ComposerOption{
		env.WithLogger(d.Logger),
		env.WithFetcher(d.Fetcher),
		env.WithBrowser(d.Browser),
		env.WithEditor(d.Editor),
	}
	if m := d.Memory(); m != nil {
		opts = append(opts, env.WithMemory(m))
	}
	if interactive && d.Prompter != nil {
		opts = append(opts, env.WithPrompter(d.Prompter))
	}
	return env.NewComposer(opts...)
}
