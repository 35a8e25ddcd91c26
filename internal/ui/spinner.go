package ui

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/reliverse/reliverse/internal/env"
)

// Spinner shows that the CLI is waiting on something.
type Spinner interface {
	SetTitle(title string)
	Stop()
}

// NewSpinner starts a spinner writing to w. Headless or colorless
// terminals get a single plain line instead of an animation.
func NewSpinner(theme *Theme, hm *HeadlessManager, w io.Writer, title string) Spinner {
	if hm.IsHeadless() || theme.NoColor {
		return newHeadlessSpinner(title, w)
	}
	return newInteractiveSpinner(theme, title, w)
}

type spinnerTitleMsg string

type spinnerStopMsg struct{}

type spinnerModel struct {
	spinner spinner.Model
	title   string
	done    bool
}

func newSpinnerModel(theme *Theme, title string) spinnerModel {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	if !theme.NoColor {
		s.Style = lipgloss.NewStyle().Foreground(theme.Colors.Primary)
	}
	return spinnerModel{spinner: s, title: title}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerTitleMsg:
		m.title = string(msg)
		return m, nil
	case spinnerStopMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.title + "\n"
}

type interactiveSpinner struct {
	program *tea.Program
	once    sync.Once
}

// @MX:WARN: [AUTO] the program goroutine exits only after Stop sends spinnerStopMsg
// @MX:REASON: [AUTO] every caller must defer Stop
func newInteractiveSpinner(theme *Theme, title string, w io.Writer) *interactiveSpinner {
	p := tea.NewProgram(newSpinnerModel(theme, title),
		tea.WithOutput(w),
		tea.WithInput(nil),
	)
	go func() {
		_, _ = p.Run()
	}()
	return &interactiveSpinner{program: p}
}

func (s *interactiveSpinner) SetTitle(title string) {
	s.program.Send(spinnerTitleMsg(title))
}

func (s *interactiveSpinner) Stop() {
	s.once.Do(func() {
		s.program.Send(spinnerStopMsg{})
		s.program.Wait()
	})
}

type headlessSpinner struct {
	writer io.Writer
}

func newHeadlessSpinner(title string, w io.Writer) *headlessSpinner {
	_, _ = fmt.Fprintln(w, title)
	return &headlessSpinner{writer: w}
}

func (s *headlessSpinner) SetTitle(title string) {
	_, _ = fmt.Fprintln(s.writer, title)
}

func (s *headlessSpinner) Stop() {}

// SpinnerFetcher shows a spinner while another fetcher downloads.
type SpinnerFetcher struct {
	Next     env.ExampleFetcher
	Theme    *Theme
	Headless *HeadlessManager
	Out      io.Writer
}

// Fetch implements env.ExampleFetcher.
func (f *SpinnerFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	s := NewSpinner(f.Theme, f.Headless, f.Out, "Fetching .env.example from "+url)
	defer s.Stop()
	return f.Next.Fetch(ctx, url)
}
