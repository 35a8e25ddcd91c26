package config

import (
	"errors"
	"io"
	"log/slog"
	"time"
)

// DefaultsFunc computes the default project config for the current
// project. It is only called when revalidation is due.
type DefaultsFunc func() (*ProjectConfig, error)

// Outcome describes what Reconcile did.
type Outcome int

const (
	// OutcomeSkipped means no reconciliation happened: the file is missing
	// or unreadable, or defaults could not be computed. The file is untouched.
	OutcomeSkipped Outcome = iota
	// OutcomeFresh means revalidation was not due; the parsed config is returned.
	OutcomeFresh
	// OutcomeUnchanged means the merge added nothing; only the revalidation
	// stamp was written.
	OutcomeUnchanged
	// OutcomeUpdated means the merge filled gaps and the file was rewritten.
	OutcomeUpdated
)

// String returns a short name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeFresh:
		return "fresh"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeUpdated:
		return "updated"
	default:
		return "skipped"
	}
}

// Reconciler merges an on-disk project config with computed defaults
// without overwriting anything the user has set.
type Reconciler struct {
	logger *slog.Logger
	now    func() time.Time
	force  bool
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithLogger sets the logger used for notices and warnings.
func WithLogger(logger *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) ReconcilerOption {
	return func(r *Reconciler) {
		if now != nil {
			r.now = now
		}
	}
}

// WithForce makes every Reconcile call merge, ignoring the revalidation
// schedule.
func WithForce() ReconcilerOption {
	return func(r *Reconciler) {
		r.force = true
	}
}

// NewReconciler creates a Reconciler.
func NewReconciler(opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// @MX:ANCHOR: [AUTO] Reconcile is the only path that rewrites reliverse.jsonc
// @MX:REASON: [AUTO] user-set values must survive every call; the file is never written on error
// Reconcile reads the config at path and, when revalidation is due, fills
// fields missing from it with the values computeDefaults returns. Values
// present in the file always win. When the merge added nothing only the
// configLastRevalidate stamp is written, so the revalidation window
// restarts. Errors are logged and reported as (nil, OutcomeSkipped).
func (r *Reconciler) Reconcile(path string, computeDefaults DefaultsFunc) (*ProjectConfig, Outcome) {
	existing, err := readDocument(path)
	if err != nil {
		if errors.Is(err, ErrConfigNotFound) {
			r.logger.Debug("no project config to reconcile", "path", path)
		} else {
			r.logger.Warn("could not parse project config, leaving it untouched", "path", path, "error", err)
		}
		return nil, OutcomeSkipped
	}

	parsed, err := existing.decode()
	if err != nil {
		r.logger.Warn("project config has unexpected field types, leaving it untouched", "path", path, "error", err)
		return nil, OutcomeSkipped
	}

	now := r.now()
	if !r.force && !ShouldRevalidate(parsed.ConfigLastRevalidate, parsed.ConfigRevalidateFrequency, now) {
		r.logger.Debug("project config revalidation not due",
			"path", path,
			"last", parsed.ConfigLastRevalidate,
			"frequency", parsed.ConfigRevalidateFrequency)
		return parsed, OutcomeFresh
	}

	if computeDefaults == nil {
		r.logger.Warn("no defaults generator supplied, skipping reconciliation", "path", path)
		return nil, OutcomeSkipped
	}
	defaultsCfg, err := computeDefaults()
	if err != nil || defaultsCfg == nil {
		r.logger.Warn("could not compute default project config", "path", path, "error", err)
		return nil, OutcomeSkipped
	}
	defaults, err := documentFromConfig(defaultsCfg)
	if err != nil {
		r.logger.Warn("could not encode default project config", "path", path, "error", err)
		return nil, OutcomeSkipped
	}

	merged := mergeDocuments(existing, defaults)
	merged.set(FieldLastRevalidate, FormatRevalidate(now))

	result, err := merged.decode()
	if err != nil {
		r.logger.Warn("merged project config is not decodable, leaving file untouched", "path", path, "error", err)
		return nil, OutcomeSkipped
	}
	if verr := Validate(result); verr != nil {
		r.logger.Warn("project config has invalid values", "path", path, "error", verr)
	}

	if equalExcept(existing, merged, FieldLastRevalidate) {
		// Only the stamp moves, so the window restarts without a notice.
		if err := writeDocument(path, merged); err != nil {
			r.logger.Warn("could not stamp project config", "path", path, "error", err)
		}
		r.logger.Debug("project config already complete", "path", path)
		return result, OutcomeUnchanged
	}

	if err := writeDocument(path, merged); err != nil {
		r.logger.Warn("could not write reconciled project config", "path", path, "error", err)
		return nil, OutcomeSkipped
	}
	r.logger.Info("project config updated with new defaults", "path", path)
	return result, OutcomeUpdated
}
