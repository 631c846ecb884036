package toolview

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	labelStyle   = lipgloss.NewStyle().Bold(true)
	detailStyle  = lipgloss.NewStyle().Faint(true)
)

// Plain renders a line without styling, e.g. "✓ Set Title: Title → Draft".
// Failed calls append the backend error when one was reported.
func (l DisplayLine) Plain() string {
	text := l.Indicator() + " " + l.Label + ": " + l.Detail
	if !l.Success && l.Error != "" {
		text += " (" + l.Error + ")"
	}
	return text
}

func (l DisplayLine) Indicator() string {
	if l.Success {
		return "✓"
	}
	return "✗"
}

// Render styles the line for a terminal and truncates it to width cells.
// A width of zero disables truncation.
func (l DisplayLine) Render(width int) string {
	style := successStyle
	if !l.Success {
		style = failureStyle
	}

	detail := l.Detail
	if !l.Success && l.Error != "" {
		detail += " (" + l.Error + ")"
	}

	line := style.Render(l.Indicator()) + " " + labelStyle.Render(l.Label+":") + " " + detailStyle.Render(detail)
	if width > 0 {
		line = truncate.StringWithTail(line, uint(width), "…")
	}
	return line
}
