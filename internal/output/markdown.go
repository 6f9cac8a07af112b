package output

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// DefaultWrap is the word-wrap width for rendered descriptions.
const DefaultWrap = 80

// Markdown renders a task description for a terminal. Styles follow the
// terminal background unless color is false.
func Markdown(src string, width int, color bool) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	style := glamour.WithAutoStyle()
	if !color {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", err
	}
	out, err := r.Render(src)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}
