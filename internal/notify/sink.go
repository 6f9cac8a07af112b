package notify

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	destructiveStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	defaultStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("34"))
	hintStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// TerminalSink writes notifications as single lines. Destructive
// notifications and warnings go to Err, the rest to Out.
type TerminalSink struct {
	Out   io.Writer
	Err   io.Writer
	Quiet bool // suppress default notifications
	Color bool
}

// Show implements Sink.
func (s *TerminalSink) Show(n Notification) {
	if n.Variant == VariantDestructive {
		title := "error: " + n.Title
		if s.Color {
			title = destructiveStyle.Render(title)
		}
		line := title
		if n.Message != "" {
			line += ": " + n.Message
		}
		if n.Retryable {
			hint := fmt.Sprintf("(retry %s to try again)", n.ID)
			if s.Color {
				hint = hintStyle.Render(hint)
			}
			line += " " + hint
		}
		fmt.Fprintln(s.Err, line)
		return
	}

	if s.Quiet {
		return
	}
	w := s.Out
	if n.Warning {
		w = s.Err
	}
	title := n.Title
	if s.Color {
		title = defaultStyle.Render(title)
	}
	if n.Message == "" {
		fmt.Fprintln(w, title)
		return
	}
	fmt.Fprintf(w, "%s: %s\n", title, n.Message)
}
