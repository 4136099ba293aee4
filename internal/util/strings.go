// Package util holds small string helpers shared by the terminal
// surfaces.
package util

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// TruncateString shortens s to maxLen runes, ending in "..." when it
// had to cut. Plain text only; styled terminal output needs
// TruncateANSI so escape codes are not sliced in half.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 3 {
		return "..."
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// TruncateANSI shortens s to maxWidth visual columns, ending in "..."
// when it had to cut. Escape sequences and wide runes are measured the
// way the terminal renders them, so a styled line never overflows its
// row in the dashboard.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	// ansi.Truncate counts the tail against maxWidth.
	return ansi.Truncate(s, maxWidth, "...")
}
