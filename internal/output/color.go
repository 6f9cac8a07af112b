package output

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ConfigureColor applies a color mode ("auto", "always" or "never") to
// every style and reports whether output is colored. In auto mode color
// follows tty.
func ConfigureColor(mode string, tty bool) bool {
	switch mode {
	case "always":
		lipgloss.SetColorProfile(termenv.ANSI256)
		return true
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
		return false
	}
	if !tty {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return tty
}
