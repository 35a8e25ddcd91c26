package cli

import (
	"io"
	"log/slog"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// newLogger returns a slog.Logger backed by a charm log handler writing
// to w. The handler is returned too so the level can change later.
func newLogger(w io.Writer, level string) (*slog.Logger, *charmlog.Logger) {
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Prefix:          "reliverse",
		Level:           parseLevel(level),
		ReportTimestamp: false,
	})
	return slog.New(handler), handler
}

// parseLevel maps debug/info/warn/error to a charm level. Unknown values
// fall back to info.
func parseLevel(level string) charmlog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return charmlog.DebugLevel
	case "warn", "warning":
		return charmlog.WarnLevel
	case "error":
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}
