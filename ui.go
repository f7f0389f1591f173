package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/phobologic/pyorder/internal/format"
)

var (
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleDim         = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
)

// printSummary writes the end-of-run summary to w.
func printSummary(w io.Writer, s format.Summary, check bool) {
	changed := s.Changed()
	failed := s.Failed()
	unchanged := s.Count(format.StatusUnchanged)
	skipped := s.Count(format.StatusSkipped)

	switch {
	case changed > 0 && check:
		printLine(w, styleIconWarning.Render(iconWarning), "%s would be reformatted", plural(changed, "file"))
	case changed > 0:
		printLine(w, styleIconSuccess.Render(iconSuccess), "%s reformatted", plural(changed, "file"))
	case failed == 0:
		printLine(w, styleIconSuccess.Render(iconSuccess), "all done, nothing to change")
	}
	if failed > 0 {
		printLine(w, styleIconError.Render(iconError), "%s failed", plural(failed, "file"))
	}

	parts := []string{fmt.Sprintf("%d unchanged", unchanged)}
	if skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", skipped))
	}
	parts = append(parts, s.Elapsed.Round(time.Millisecond).String())
	_, _ = fmt.Fprintln(w, "  "+styleDim.Render(strings.Join(parts, " · ")))
}

func printLine(w io.Writer, icon, format string, args ...any) {
	_, _ = fmt.Fprintln(w, icon+" "+fmt.Sprintf(format, args...))
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
