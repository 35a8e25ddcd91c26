package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/reliverse/reliverse/internal/env"
)

// HuhPrompter asks env composition questions with huh forms.
type HuhPrompter struct {
	theme    *Theme
	headless *HeadlessManager
}

var _ env.Prompter = (*HuhPrompter)(nil)

// NewHuhPrompter creates a prompter styled with theme.
func NewHuhPrompter(theme *Theme, hm *HeadlessManager) *HuhPrompter {
	return &HuhPrompter{theme: theme, headless: hm}
}

// run shows a single-field form. Each question is its own form, which
// keeps huh's viewport from scrolling away on long groups.
func (p *HuhPrompter) run(ctx context.Context, field huh.Field) error {
	if p.headless.IsHeadless() {
		return ErrHeadless
	}
	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(p.theme.HuhTheme()).
		WithAccessible(os.Getenv("ACCESSIBLE") != "")
	return formError(form.RunWithContext(ctx))
}

// formError maps huh's abort to ErrCancelled.
func formError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, huh.ErrUserAborted):
		return ErrCancelled
	default:
		return fmt.Errorf("prompt: %w", err)
	}
}

// StrategyLabel is the menu text for a strategy.
func StrategyLabel(s env.Strategy, lastPath string) string {
	switch s {
	case env.StrategyReuseLast:
		return "Reuse values from " + lastPath
	case env.StrategyEditor:
		return "Open .env in my editor"
	case env.StrategyCopyFrom:
		return "Copy values from another .env file"
	case env.StrategyGuided:
		return "Enter missing values one by one"
	default:
		return string(s)
	}
}

// SelectStrategy implements env.Prompter.
func (p *HuhPrompter) SelectStrategy(ctx context.Context, choices []env.Strategy, lastPath string) (env.Strategy, error) {
	opts := make([]huh.Option[env.Strategy], len(choices))
	for i, c := range choices {
		opts[i] = huh.NewOption(StrategyLabel(c, lastPath), c)
	}
	choice := env.StrategyGuided
	field := huh.NewSelect[env.Strategy]().
		Title("Some required environment variables are missing").
		Description("How do you want to fill them in?").
		Options(opts...).
		Value(&choice)
	if err := p.run(ctx, field); err != nil {
		return "", err
	}
	return choice, nil
}

// SelectServices implements env.Prompter. Every service starts selected.
func (p *HuhPrompter) SelectServices(ctx context.Context, groups []env.ServiceGroup) ([]string, error) {
	opts := make([]huh.Option[string], len(groups))
	for i, g := range groups {
		label := fmt.Sprintf("%s (%d missing)", g.Service.Name, len(g.Keys))
		opts[i] = huh.NewOption(label, g.Service.Name).Selected(true)
	}
	var selected []string
	field := huh.NewMultiSelect[string]().
		Title("Which services do you want to configure now?").
		Options(opts...).
		Value(&selected)
	if err := p.run(ctx, field); err != nil {
		return nil, err
	}
	return selected, nil
}

// ConfirmOpenDashboard implements env.Prompter.
func (p *HuhPrompter) ConfirmOpenDashboard(ctx context.Context, svc env.ServiceDefinition) (bool, error) {
	open := true
	field := huh.NewConfirm().
		Title(fmt.Sprintf("Open the %s dashboard in your browser?", svc.Name)).
		Description(svc.DashboardURL).
		Value(&open)
	if err := p.run(ctx, field); err != nil {
		return false, err
	}
	return open, nil
}

// InputValue implements env.Prompter. Empty answers are rejected in the
// form, so the user is asked again.
func (p *HuhPrompter) InputValue(ctx context.Context, req env.InputRequest) (string, error) {
	var value string
	input := huh.NewInput().
		Title(req.Key).
		Description(inputDescription(req)).
		Value(&value).
		Validate(func(s string) error {
			if env.NormalizeInput(req.Key, s) == "" {
				return errors.New("a value is required")
			}
			return nil
		})
	if req.Masked {
		input = input.EchoMode(huh.EchoModePassword)
	}
	if err := p.run(ctx, input); err != nil {
		return "", err
	}
	return value, nil
}

func inputDescription(req env.InputRequest) string {
	var parts []string
	if req.Service.Name != "" {
		parts = append(parts, req.Service.Name)
	}
	if req.Definition.Type != "" {
		parts = append(parts, req.Definition.Type.Label())
	}
	desc := strings.Join(parts, " · ")
	if req.Definition.Instruction != "" {
		desc += "\n" + req.Definition.Instruction
	}
	if url := req.Definition.DashboardURL; url != "" {
		desc += "\n" + url
	}
	return desc
}

// InputPath implements env.Prompter.
func (p *HuhPrompter) InputPath(ctx context.Context, title string) (string, error) {
	var path string
	field := huh.NewInput().
		Title(title).
		Placeholder("../my-app/.env").
		Value(&path).
		Validate(validateEnvPath)
	if err := p.run(ctx, field); err != nil {
		return "", err
	}
	return expandHome(strings.TrimSpace(path)), nil
}

func validateEnvPath(s string) error {
	path := expandHome(strings.TrimSpace(s))
	if path == "" {
		return errors.New("a path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot read %s", path)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && rest[0] != '/' && rest[0] != filepath.Separator) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
