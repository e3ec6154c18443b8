package main

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	accentColor = lipgloss.Color("#10B981")
	errorColor  = lipgloss.Color("#EF4444")
	mutedColor  = lipgloss.Color("#94A3B8")

	infoStyle  = lipgloss.NewStyle().Foreground(accentColor)
	errorStyle = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	chatStyle  = lipgloss.NewStyle().Foreground(mutedColor)
)

// terminalWidth reports the connected terminal's column count, falling
// back to 80 when stdout isn't a tty (piped output, CI logs).
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}
