package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/reliverse/reliverse/internal/env"
)

// reportMarkdown describes a compose run as markdown. Only key names are
// listed; values never appear.
func reportMarkdown(r *env.Report, reg *env.Registry) string {
	var b strings.Builder
	b.WriteString("# Environment\n\n")
	fmt.Fprintf(&b, "File: `%s`\n\n", r.EnvPath)

	if r.ExampleCreated {
		b.WriteString("- Created `.env.example`\n")
	}
	if r.EnvCreated {
		b.WriteString("- Created `.env` from `.env.example`\n")
	}
	if r.Strategy != "" && r.Strategy != env.StrategyNone {
		fmt.Fprintf(&b, "- Strategy: %s\n", r.Strategy)
	}
	fmt.Fprintf(&b, "- Required keys: %d\n\n", len(r.Required))

	keyList(&b, "Defaults applied", r.Defaulted, reg)
	keyList(&b, "Secrets generated", r.Generated, reg)
	keyList(&b, "Copied from another file", r.Imported, reg)
	keyList(&b, "Entered", r.Provided, reg)

	if len(r.StillMissing) == 0 {
		b.WriteString("All required keys have values.\n\n")
	} else {
		b.WriteString("## Still missing\n\n")
		for _, group := range env.GroupByService(r.StillMissing, reg) {
			fmt.Fprintf(&b, "**%s**", group.Service.Name)
			if group.Service.DashboardURL != "" {
				fmt.Fprintf(&b, " (%s)", group.Service.DashboardURL)
			}
			b.WriteString("\n\n")
			for _, key := range group.Keys {
				fmt.Fprintf(&b, "- `%s`\n", key)
			}
			b.WriteString("\n")
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// keyList writes a section of key names. Keys the registry marks hidden
// are collapsed into a count.
func keyList(b *strings.Builder, title string, keys []string, reg *env.Registry) {
	if len(keys) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	hidden := 0
	for _, key := range keys {
		if def, _, ok := reg.Lookup(key); ok && def.Hidden {
			hidden++
			continue
		}
		fmt.Fprintf(b, "- `%s`\n", key)
	}
	if hidden > 0 {
		fmt.Fprintf(b, "- %s\n", hiddenCount(hidden))
	}
	b.WriteString("\n")
}

func hiddenCount(n int) string {
	if n == 1 {
		return "1 hidden key"
	}
	return fmt.Sprintf("%d hidden keys", n)
}

// renderReport writes the report to w through glamour. If rendering fails
// the plain markdown is written instead.
func renderReport(w io.Writer, r *env.Report, reg *env.Registry, noColor bool) error {
	md := reportMarkdown(r, reg)

	style := glamour.WithAutoStyle()
	if noColor {
		style = glamour.WithStandardStyle("notty")
	}
	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(100))
	if err == nil {
		var out string
		if out, err = renderer.Render(md); err == nil {
			_, err = io.WriteString(w, out)
			return err
		}
	}
	_, err = io.WriteString(w, md)
	return err
}
