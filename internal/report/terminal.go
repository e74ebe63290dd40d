package report

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// DefaultWidth is the word-wrap width used when none is given.
const DefaultWidth = 100

// RenderTerminal styles Markdown for display in a terminal.
func RenderTerminal(md string, width int) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create terminal renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
