package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator translates headings and labels.
func WithTranslator(t func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = t
	}
}

// WithVersion prints the tool version in the footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{translate: func(s string) string { return s }}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Sampling Summary"))

	fmt.Fprintf(&b, "## %s\n\n", t("Run"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	fmt.Fprintf(&b, "| %s | %s |\n", t("Step"), s.Run.Step)
	fmt.Fprintf(&b, "| %s | `%s` |\n", t("Input"), s.Run.InputDir)
	fmt.Fprintf(&b, "| %s | `%s` |\n", t("Output"), s.Run.OutputDir)
	fmt.Fprintf(&b, "| %s | %d |\n", t("Stills per video"), s.Run.NumStills)
	fmt.Fprintf(&b, "| %s | %d |\n", t("Videos"), len(s.Videos))
	fmt.Fprintf(&b, "| %s | %d |\n", t("Stills written"), s.TotalStills())
	if s.Run.Cleared > 0 {
		fmt.Fprintf(&b, "| %s | %d |\n", t("Files cleared"), s.Run.Cleared)
	}
	fmt.Fprintf(&b, "| %s | %s |\n\n", t("Elapsed"), formatElapsed(s.Run.Elapsed))

	fmt.Fprintf(&b, "## %s\n\n", t("Settings"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	fmt.Fprintf(&b, "| %s | %d |\n", t("Workers"), s.Settings.Workers)
	fmt.Fprintf(&b, "| %s | %s |\n", t("Format"), s.Settings.Format)
	fmt.Fprintf(&b, "| %s | %s |\n", t("Demuxer"), s.Settings.Demuxer)
	maxWidth := t("Native")
	if s.Settings.MaxWidth > 0 {
		maxWidth = fmt.Sprintf("%d px", s.Settings.MaxWidth)
	}
	fmt.Fprintf(&b, "| %s | %s |\n\n", t("Max width"), maxWidth)

	fmt.Fprintf(&b, "## %s\n\n", t("Videos"))
	if len(s.Videos) == 0 {
		fmt.Fprintf(&b, "%s\n\n", t("No videos were processed."))
	} else {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n|---|---:|---|---:|---:|\n",
			t("Video"), t("Duration"), t("Duration source"), t("Stills"), t("Elapsed"))
		for _, v := range s.Videos {
			fmt.Fprintf(&b, "| %s | %s | %s | %d | %s |\n",
				escapeCell(v.Name), formatSeconds(v.Duration), t(v.Source), v.Stills, formatElapsed(v.Elapsed))
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\n")
	footer := fmt.Sprintf("%s %s", t("Generated at"), s.GeneratedAt.Format(time.RFC3339))
	if f.version != "" {
		footer += fmt.Sprintf(" (stills %s)", f.version)
	}
	b.WriteString(footer + "\n")

	return b.String()
}

func formatSeconds(sec float64) string {
	return fmt.Sprintf("%.3f s", sec)
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%d ms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2f s", d.Seconds())
}

// escapeCell keeps file names from breaking the table.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
