package env

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"
	"github.com/otiai10/copy"

	"github.com/reliverse/reliverse/internal/defs"
	"github.com/reliverse/reliverse/internal/fsutil"
)

// Options control a single Compose run.
type Options struct {
	// MaskInput hides typed values for secret-like keys.
	MaskInput bool
	// SkipPrompts disables every interactive prompt.
	SkipPrompts bool
	// OpenBrowser allows offering to open service dashboards.
	OpenBrowser bool
}

// Strategy is how the remaining missing keys get resolved.
type Strategy string

const (
	StrategyReuseLast Strategy = "reuse-last"
	StrategyEditor    Strategy = "editor"
	StrategyCopyFrom  Strategy = "copy-from"
	StrategyGuided    Strategy = "guided"
	StrategyAutoOnly  Strategy = "auto-only"
	StrategyNone      Strategy = "none"
)

// InputRequest describes one value prompt.
type InputRequest struct {
	Key        string
	Definition KeyDefinition
	Service    ServiceDefinition
	Masked     bool
}

// Prompter asks the user for decisions and values. Implementations return
// an error wrapping ErrAborted when the user cancels.
type Prompter interface {
	SelectStrategy(ctx context.Context, choices []Strategy, lastPath string) (Strategy, error)
	// SelectServices returns the names of the services to configure now.
	SelectServices(ctx context.Context, groups []ServiceGroup) ([]string, error)
	ConfirmOpenDashboard(ctx context.Context, service ServiceDefinition) (bool, error)
	InputValue(ctx context.Context, req InputRequest) (string, error)
	InputPath(ctx context.Context, title string) (string, error)
}

// BrowserOpener opens a URL in the user's browser.
type BrowserOpener interface {
	Open(url string) error
}

// EditorLauncher opens a file in an editor and waits for it to close.
type EditorLauncher interface {
	Edit(ctx context.Context, path string) error
}

// KeyValueStore remembers small values between runs.
type KeyValueStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Report summarizes what Compose did.
type Report struct {
	EnvPath        string
	ExampleCreated bool
	EnvCreated     bool
	Strategy       Strategy
	Required       []string
	// Defaulted keys received a registry default; Generated keys a fresh secret.
	Defaulted []string
	Generated []string
	// Imported keys were copied from another .env file.
	Imported []string
	// Provided keys were entered by the user.
	Provided     []string
	StillMissing []string
	Warnings     []string
}

func (r *Report) warn(logger *slog.Logger, msg string, args ...any) {
	logger.Warn(msg, args...)
	var sb strings.Builder
	sb.WriteString(msg)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&sb, " %v=%v", args[i], args[i+1])
	}
	r.Warnings = append(r.Warnings, sb.String())
}

// Composer fills a project's .env from its .env.example.
type Composer struct {
	logger   *slog.Logger
	fetcher  ExampleFetcher
	prompter Prompter
	browser  BrowserOpener
	editor   EditorLauncher
	memory   KeyValueStore
	lockWait time.Duration
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ComposerOption {
	return func(c *Composer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFetcher sets the fetcher used for remote example sources.
func WithFetcher(f ExampleFetcher) ComposerOption {
	return func(c *Composer) { c.fetcher = f }
}

// WithPrompter sets the interactive prompter.
func WithPrompter(p Prompter) ComposerOption {
	return func(c *Composer) { c.prompter = p }
}

// WithBrowser sets the dashboard opener.
func WithBrowser(b BrowserOpener) ComposerOption {
	return func(c *Composer) { c.browser = b }
}

// WithEditor sets the editor used by the editor strategy.
func WithEditor(e EditorLauncher) ComposerOption {
	return func(c *Composer) { c.editor = e }
}

// WithMemory sets the store remembering the last imported .env path.
func WithMemory(m KeyValueStore) ComposerOption {
	return func(c *Composer) { c.memory = m }
}

// NewComposer creates a Composer. Without a prompter every run behaves as
// if prompts were skipped.
func NewComposer(opts ...ComposerOption) *Composer {
	c := &Composer{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		fetcher:  NewHTTPFetcher(0),
		lockWait: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// run holds the state of one Compose call.
type run struct {
	*Composer
	reg         *Registry
	opts        Options
	envPath     string
	examplePath string
	env         *File
	report      *Report
}

// @MX:ANCHOR: [AUTO] Compose is the only writer of a project's .env
// @MX:REASON: [AUTO] non-empty values are never overwritten; answers are flushed one key at a time
// Compose makes sure projectDir has a .env.example (copied or fetched from
// source when absent) and a .env seeded from it, fills every required key
// the registry has a default or generator for, and resolves the rest with
// the chosen strategy. Only ErrExampleUnavailable and cancellation (ErrAborted
// or a context error) are returned; every other failure is logged, recorded
// in the report, and skipped.
func (c *Composer) Compose(ctx context.Context, projectDir, source string, reg *Registry, opts Options) (*Report, error) {
	if reg == nil {
		reg = DefaultRegistry()
	}
	if c.prompter == nil {
		opts.SkipPrompts = true
	}
	r := &run{
		Composer:    c,
		reg:         reg,
		opts:        opts,
		envPath:     filepath.Join(projectDir, defs.EnvFile),
		examplePath: filepath.Join(projectDir, defs.EnvExampleFile),
		report:      &Report{Strategy: StrategyNone},
	}
	r.report.EnvPath = r.envPath

	unlock, err := r.lock(ctx)
	if err != nil {
		return r.report, err
	}
	defer unlock()

	example, err := r.ensureExample(ctx, source)
	if err != nil {
		return r.report, err
	}
	r.ensureEnv()

	required := RequiredKeys(example)
	r.report.Required = required
	if len(required) == 0 {
		c.logger.Info("example declares no keys", "path", r.examplePath)
		return r.report, nil
	}

	analysis := Analyze(required, r.env, reg)
	r.autoFill(analysis.Defaulted)

	if analysis.Complete() {
		c.logger.Info("all required keys have values", "path", r.envPath)
		r.finish(required)
		return r.report, nil
	}

	err = r.resolve(ctx, analysis.Missing)
	r.finish(required)
	return r.report, err
}

// lock serializes Compose runs on the same .env. Failing to create the
// lock is logged and ignored.
func (r *run) lock(ctx context.Context) (func(), error) {
	abs, err := filepath.Abs(r.envPath)
	if err != nil {
		abs = r.envPath
	}
	sum := sha256.Sum256([]byte(abs))
	lockPath := filepath.Join(os.TempDir(), "reliverse-"+hex.EncodeToString(sum[:8])+defs.EnvLockFile)

	fl := flock.New(lockPath)
	locked, err := fl.TryLockContext(ctx, r.lockWait)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrLocked, ctx.Err())
		}
		r.report.warn(r.logger, "could not lock .env, continuing without a lock", "path", lockPath, "error", err)
		return func() {}, nil
	}
	if !locked {
		return nil, ErrLocked
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			r.logger.Debug("unlock .env", "path", lockPath, "error", err)
		}
	}, nil
}

// ensureExample returns the parsed example file, obtaining it from source
// when the project has none.
func (r *run) ensureExample(ctx context.Context, source string) (*File, error) {
	if !fsutil.Exists(r.examplePath) {
		if err := r.obtainExample(ctx, source); err != nil {
			r.logger.Error("could not obtain .env.example", "path", r.examplePath, "source", source, "error", err)
			return nil, fmt.Errorf("%w: %w", ErrExampleUnavailable, err)
		}
		r.report.ExampleCreated = true
		r.logger.Info("created .env.example", "path", r.examplePath, "source", source)
	}

	example, err := ReadFile(r.examplePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExampleUnavailable, err)
	}
	return example, nil
}

func (r *run) obtainExample(ctx context.Context, source string) error {
	switch {
	case source == "":
		return errors.New("no fallback source configured")
	case isURL(source):
		if r.fetcher == nil {
			return errors.New("no fetcher configured")
		}
		data, err := r.fetcher.Fetch(ctx, source)
		if err != nil {
			return err
		}
		return fsutil.WriteFileAtomic(r.examplePath, data, 0o644)
	default:
		info, err := os.Stat(source)
		if err != nil {
			return err
		}
		if info.IsDir() {
			source = filepath.Join(source, defs.EnvExampleFile)
		}
		return copy.Copy(source, r.examplePath)
	}
}

// ensureEnv loads .env, seeding it from the example when absent.
func (r *run) ensureEnv() {
	if !fsutil.Exists(r.envPath) {
		if err := copy.Copy(r.examplePath, r.envPath); err != nil {
			r.report.warn(r.logger, "could not create .env from example", "path", r.envPath, "error", err)
		} else {
			r.report.EnvCreated = true
			r.logger.Info("created .env from example", "path", r.envPath)
		}
	}

	f, err := loadOrEmpty(r.envPath)
	if err != nil {
		r.report.warn(r.logger, "could not read .env, starting empty", "path", r.envPath, "error", err)
		f = NewFile()
	}
	r.env = f
}

// autoFill writes registry defaults and generated secrets for keys.
func (r *run) autoFill(keys []string) {
	if len(keys) == 0 {
		return
	}
	filled, err := ApplyDefaults(r.env, keys, r.reg)
	if err != nil {
		r.report.warn(r.logger, "could not generate value", "error", err)
	}
	if len(filled) == 0 {
		return
	}
	if !r.save() {
		return
	}
	for _, f := range filled {
		if f.Generated {
			r.report.Generated = append(r.report.Generated, f.Key)
		} else {
			r.report.Defaulted = append(r.report.Defaulted, f.Key)
		}
	}
	r.logger.Info("filled keys with default values", "path", r.envPath, "count", len(filled))
}

// save writes the in-memory .env and reports success.
func (r *run) save() bool {
	if err := r.env.WriteFile(r.envPath); err != nil {
		r.report.warn(r.logger, "could not write .env", "path", r.envPath, "error", err)
		return false
	}
	return true
}

// resolve picks a strategy for the missing keys and runs it.
func (r *run) resolve(ctx context.Context, missing []string) error {
	lastPath := r.lastEnvPath()

	if r.opts.SkipPrompts {
		if lastPath != "" {
			r.report.Strategy = StrategyReuseLast
			r.importFrom(lastPath, missing)
			return nil
		}
		r.report.Strategy = StrategyAutoOnly
		r.logger.Info("prompts skipped, leaving keys unset", "path", r.envPath, "missing", strings.Join(missing, ","))
		return nil
	}

	choices := make([]Strategy, 0, 4)
	if lastPath != "" {
		choices = append(choices, StrategyReuseLast)
	}
	if r.editor != nil {
		choices = append(choices, StrategyEditor)
	}
	choices = append(choices, StrategyCopyFrom, StrategyGuided)

	strategy, err := r.prompter.SelectStrategy(ctx, choices, lastPath)
	if err != nil {
		return r.promptFailed("strategy", err)
	}
	r.report.Strategy = strategy

	switch strategy {
	case StrategyReuseLast:
		r.importFrom(lastPath, missing)
	case StrategyEditor:
		r.openEditor(ctx)
	case StrategyCopyFrom:
		path, err := r.prompter.InputPath(ctx, "Path to an existing .env file")
		if err != nil {
			return r.promptFailed("path", err)
		}
		if r.importFrom(path, missing) {
			r.remember(path)
		}
	default:
		return r.guided(ctx, missing)
	}
	return nil
}

// promptFailed turns a prompt error into the Compose result. Cancellation
// aborts the run; anything else is recorded and the step skipped.
func (r *run) promptFailed(what string, err error) error {
	if errors.Is(err, ErrAborted) {
		r.logger.Info("aborted by user", "prompt", what)
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrAborted, err)
	}
	r.report.warn(r.logger, "prompt failed, skipping", "prompt", what, "error", err)
	return nil
}

// lastEnvPath returns the remembered .env path if it still points to a
// readable env file.
func (r *run) lastEnvPath() string {
	if r.memory == nil {
		return ""
	}
	path, ok, err := r.memory.Get(defs.MemoryLastEnvPath)
	if err != nil {
		r.logger.Debug("could not read memory", "key", defs.MemoryLastEnvPath, "error", err)
		return ""
	}
	if !ok || path == "" || sameFile(path, r.envPath) {
		return ""
	}
	if _, err := godotenv.Read(path); err != nil {
		r.logger.Debug("remembered .env is not usable, forgetting it", "path", path, "error", err)
		if err := r.memory.Delete(defs.MemoryLastEnvPath); err != nil {
			r.logger.Debug("could not forget .env path", "path", path, "error", err)
		}
		return ""
	}
	return path
}

func (r *run) remember(path string) {
	if r.memory == nil {
		return
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if err := r.memory.Set(defs.MemoryLastEnvPath, path); err != nil {
		r.report.warn(r.logger, "could not remember .env path", "path", path, "error", err)
	}
}

// importFrom copies non-empty values for keys from another env file.
// Existing non-empty values are kept.
func (r *run) importFrom(path string, keys []string) bool {
	path = strings.TrimSpace(path)
	if path == "" || sameFile(path, r.envPath) {
		r.report.warn(r.logger, "no other .env to copy from", "path", path)
		return false
	}
	values, err := godotenv.Read(path)
	if err != nil {
		r.report.warn(r.logger, "could not read .env to copy from", "path", path, "error", err)
		return false
	}

	var imported []string
	for _, key := range keys {
		v := strings.TrimSpace(values[key])
		if v == "" || r.env.HasValue(key) {
			continue
		}
		r.env.Set(key, v)
		imported = append(imported, key)
	}
	if len(imported) == 0 {
		r.logger.Info("no missing keys found in source .env", "source", path)
		return true
	}
	if !r.save() {
		return false
	}
	r.report.Imported = append(r.report.Imported, imported...)
	r.logger.Info("copied values from existing .env", "source", path, "count", len(imported))
	return true
}

// openEditor hands the file to the user's editor and reloads it.
func (r *run) openEditor(ctx context.Context) {
	if err := r.editor.Edit(ctx, r.envPath); err != nil {
		r.report.warn(r.logger, "could not open editor", "path", r.envPath, "error", err)
		return
	}
	f, err := loadOrEmpty(r.envPath)
	if err != nil {
		r.report.warn(r.logger, "could not re-read .env after editing", "path", r.envPath, "error", err)
		return
	}
	r.env = f
}

// guided prompts for missing keys service by service, writing each answer
// as soon as it is given.
func (r *run) guided(ctx context.Context, missing []string) error {
	groups := GroupByService(missing, r.reg)
	selected, err := r.prompter.SelectServices(ctx, groups)
	if err != nil {
		return r.promptFailed("services", err)
	}
	want := make(map[string]bool, len(selected))
	for _, name := range selected {
		want[name] = true
	}

	for _, g := range groups {
		if !want[g.Service.Name] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrAborted, err)
		}
		if err := r.offerDashboard(ctx, g.Service); err != nil {
			return err
		}
		for _, key := range g.Keys {
			if err := r.promptKey(ctx, key, g.Service); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *run) offerDashboard(ctx context.Context, svc ServiceDefinition) error {
	if !r.opts.OpenBrowser || r.browser == nil || svc.DashboardURL == "" {
		return nil
	}
	open, err := r.prompter.ConfirmOpenDashboard(ctx, svc)
	if err != nil {
		return r.promptFailed("dashboard", err)
	}
	if !open {
		return nil
	}
	if err := r.browser.Open(svc.DashboardURL); err != nil {
		r.report.warn(r.logger, "could not open dashboard", "service", svc.Name, "url", svc.DashboardURL, "error", err)
	}
	return nil
}

func (r *run) promptKey(ctx context.Context, key string, svc ServiceDefinition) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrAborted, err)
	}
	def, _, known := r.reg.Lookup(key)
	if !known {
		def = KeyDefinition{Key: Key(key), Type: TypeString}
	}
	req := InputRequest{
		Key:        key,
		Definition: def,
		Service:    svc,
		Masked:     r.opts.MaskInput && (def.Type.IsSecret() || (!known && looksSecret(key))),
	}

	raw, err := r.prompter.InputValue(ctx, req)
	if err != nil {
		return r.promptFailed(key, err)
	}
	value := NormalizeInput(key, raw)
	if value == "" {
		r.logger.Debug("no value entered", "key", key, "service", svc.Name)
		return nil
	}

	r.env.Set(key, value)
	if r.save() {
		r.report.Provided = append(r.report.Provided, key)
	}
	return nil
}

// finish records the keys still lacking values.
func (r *run) finish(required []string) {
	r.report.StillMissing = Analyze(required, r.env, r.reg).Missing
	if len(r.report.StillMissing) > 0 {
		r.logger.Warn("required keys still have no value",
			"path", r.envPath, "keys", strings.Join(r.report.StillMissing, ","))
	}
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func sameFile(a, b string) bool {
	ia, err := os.Stat(a)
	if err != nil {
		return false
	}
	ib, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ia, ib)
}

func looksSecret(key string) bool {
	k := strings.ToUpper(key)
	for _, s := range []string{"SECRET", "TOKEN", "PASSWORD", "PRIVATE", "API_KEY"} {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}
