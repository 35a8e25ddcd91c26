package ui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Brand colors (dark background variants).
const (
	ColorPrimary   = "#7C3AED"
	ColorSecondary = "#22D3EE"
	ColorSuccess   = "#10B981"
	ColorWarning   = "#F59E0B"
	ColorError     = "#EF4444"
	ColorText      = "#E5E7EB"
	ColorMuted     = "#6B7280"
	ColorBorder    = "#374151"
)

// Palette holds the adaptive colors used by every style.
type Palette struct {
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor
	Warning   lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor
	Text      lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
}

// Theme carries the CLI's styles. With NoColor every style is plain.
type Theme struct {
	NoColor bool
	Colors  Palette

	Title   lipgloss.Style
	Key     lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}

// NewTheme builds the reliverse theme.
func NewTheme(noColor bool) *Theme {
	t := &Theme{
		NoColor: noColor,
		Colors: Palette{
			Primary:   lipgloss.AdaptiveColor{Light: "#5B21B6", Dark: ColorPrimary},
			Secondary: lipgloss.AdaptiveColor{Light: "#0E7490", Dark: ColorSecondary},
			Success:   lipgloss.AdaptiveColor{Light: "#059669", Dark: ColorSuccess},
			Warning:   lipgloss.AdaptiveColor{Light: "#B45309", Dark: ColorWarning},
			Error:     lipgloss.AdaptiveColor{Light: "#DC2626", Dark: ColorError},
			Text:      lipgloss.AdaptiveColor{Light: "#111827", Dark: ColorText},
			Muted:     lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: ColorMuted},
			Border:    lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: ColorBorder},
		},
	}
	if noColor {
		plain := lipgloss.NewStyle()
		t.Title, t.Key, t.Success, t.Warning, t.Error, t.Muted = plain, plain, plain, plain, plain, plain
		return t
	}
	t.Title = lipgloss.NewStyle().Foreground(t.Colors.Primary).Bold(true)
	t.Key = lipgloss.NewStyle().Foreground(t.Colors.Secondary)
	t.Success = lipgloss.NewStyle().Foreground(t.Colors.Success)
	t.Warning = lipgloss.NewStyle().Foreground(t.Colors.Warning)
	t.Error = lipgloss.NewStyle().Foreground(t.Colors.Error).Bold(true)
	t.Muted = lipgloss.NewStyle().Foreground(t.Colors.Muted)
	return t
}

// HuhTheme maps the palette onto a huh form theme.
func (t *Theme) HuhTheme() *huh.Theme {
	if t.NoColor {
		return huh.ThemeBase()
	}
	h := huh.ThemeBase()
	c := t.Colors

	h.Focused.Base = h.Focused.Base.BorderForeground(c.Border)
	h.Focused.Card = h.Focused.Base
	h.Focused.Title = h.Focused.Title.Foreground(c.Primary).Bold(true)
	h.Focused.NoteTitle = h.Focused.NoteTitle.Foreground(c.Primary).Bold(true).MarginBottom(1)
	h.Focused.Description = h.Focused.Description.Foreground(c.Muted)
	h.Focused.ErrorIndicator = h.Focused.ErrorIndicator.Foreground(c.Error)
	h.Focused.ErrorMessage = h.Focused.ErrorMessage.Foreground(c.Error)
	h.Focused.SelectSelector = h.Focused.SelectSelector.Foreground(c.Primary).SetString("▸ ")
	h.Focused.Option = h.Focused.Option.Foreground(c.Text)
	h.Focused.MultiSelectSelector = h.Focused.MultiSelectSelector.Foreground(c.Primary)
	h.Focused.SelectedOption = h.Focused.SelectedOption.Foreground(c.Success)
	h.Focused.SelectedPrefix = lipgloss.NewStyle().Foreground(c.Success).SetString("◆ ")
	h.Focused.UnselectedOption = h.Focused.UnselectedOption.Foreground(c.Text)
	h.Focused.UnselectedPrefix = lipgloss.NewStyle().Foreground(c.Muted).SetString("◇ ")
	h.Focused.TextInput.Cursor = h.Focused.TextInput.Cursor.Foreground(c.Primary)
	h.Focused.TextInput.Placeholder = h.Focused.TextInput.Placeholder.Foreground(c.Muted)
	h.Focused.TextInput.Prompt = h.Focused.TextInput.Prompt.Foreground(c.Secondary)
	h.Focused.FocusedButton = h.Focused.FocusedButton.
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}).
		Background(c.Primary)
	h.Focused.BlurredButton = h.Focused.BlurredButton.
		Foreground(c.Text).
		Background(lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#374151"})
	h.Focused.Next = h.Focused.FocusedButton

	h.Blurred = h.Focused
	h.Blurred.Base = h.Focused.Base.BorderStyle(lipgloss.HiddenBorder())
	h.Blurred.Card = h.Blurred.Base

	h.Group.Title = h.Focused.Title
	h.Group.Description = h.Focused.Description
	return h
}
