package ui

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// SystemBrowser opens URLs with the platform's opener.
type SystemBrowser struct {
	// start runs a command without waiting. Tests replace it.
	start func(name string, args ...string) error
}

// NewSystemBrowser returns a SystemBrowser.
func NewSystemBrowser() *SystemBrowser {
	return &SystemBrowser{start: func(name string, args ...string) error {
		return exec.Command(name, args...).Start()
	}}
}

// openCommands lists the candidate commands for goos in preference order.
func openCommands(goos, target string) [][]string {
	switch goos {
	case "darwin":
		return [][]string{{"open", target}}
	case "windows":
		return [][]string{{"rundll32", "url.dll,FileProtocolHandler", target}, {"cmd", "/c", "start", "", target}}
	default:
		return [][]string{{"xdg-open", target}, {"gio", "open", target}, {"wslview", target}}
	}
}

// Open launches target. Only http and https URLs are accepted.
func (b *SystemBrowser) Open(target string) error {
	target = strings.TrimSpace(target)
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("ui: refusing to open %q", target)
	}
	for _, args := range openCommands(runtime.GOOS, target) {
		if err := b.start(args[0], args[1:]...); err == nil {
			return nil
		}
	}
	return ErrNoOpener
}

// ExecEditor runs the user's editor attached to the terminal.
type ExecEditor struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecEditor returns an editor attached to the process's stdio.
func NewExecEditor() *ExecEditor {
	return &ExecEditor{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// editorCommand resolves the editor command line: $VISUAL, then $EDITOR,
// then the first known editor found on PATH.
func editorCommand(lookPath func(string) (string, error)) ([]string, error) {
	for _, name := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(os.Getenv(name)); len(fields) > 0 {
			return fields, nil
		}
	}
	fallbacks := [][]string{{"code", "--wait"}, {"nano"}, {"vim"}, {"vi"}}
	if runtime.GOOS == "windows" {
		fallbacks = [][]string{{"code", "--wait"}, {"notepad"}}
	}
	for _, cmd := range fallbacks {
		if _, err := lookPath(cmd[0]); err == nil {
			return cmd, nil
		}
	}
	return nil, ErrNoEditor
}

// Edit implements env.EditorLauncher and blocks until the editor exits.
func (e *ExecEditor) Edit(ctx context.Context, path string) error {
	args, err := editorCommand(exec.LookPath)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = e.Stdin, e.Stdout, e.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ui: editor %s: %w", args[0], err)
	}
	return nil
}
