package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	purple = lipgloss.Color("#7D56F4")
	green  = lipgloss.Color("#04B575")
	red    = lipgloss.Color("#FF5F57")
	orange = lipgloss.Color("#FFA500")
	gray   = lipgloss.Color("#626262")
)

var styles = newTheme()

// theme holds the styles shared by every view.
type theme struct {
	title   lipgloss.Style
	ok      lipgloss.Style
	err     lipgloss.Style
	warn    lipgloss.Style
	help    lipgloss.Style
	added   lipgloss.Style
	removed lipgloss.Style
	bar     lipgloss.Style
	track   lipgloss.Style
}

func newTheme() theme {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return theme{
		title:   fg(purple).Bold(true).MarginBottom(1),
		ok:      fg(green).Bold(true),
		err:     fg(red).Bold(true),
		warn:    fg(orange),
		help:    fg(gray).Italic(true),
		added:   fg(green),
		removed: fg(red),
		bar:     fg(purple),
		track:   fg(gray),
	}
}

// progressBar renders step/total as a bar width cells wide.
func progressBar(step, total, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if total > 0 {
		filled = min(width, max(0, step*width/total))
	}
	return styles.bar.Render(strings.Repeat("█", filled)) + styles.track.Render(strings.Repeat("░", width-filled))
}
