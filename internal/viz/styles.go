package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

type styles struct {
	canvas  lipgloss.Style
	stats   lipgloss.Style
	header  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	focus   lipgloss.Style
	graph   lipgloss.Style
	help    lipgloss.Style
	running lipgloss.Style
	paused  lipgloss.Style
	errText lipgloss.Style
	overlay lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas: lipgloss.NewStyle().Padding(0, 1),
		stats: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Border).
			Padding(0, 2).
			Width(statsWidth),
		header:  lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1),
		label:   lipgloss.NewStyle().Foreground(t.Muted).Width(10),
		value:   lipgloss.NewStyle().Foreground(t.Text),
		focus:   lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		graph:   lipgloss.NewStyle().Foreground(t.Primary),
		help:    lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1),
		running: lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		paused:  lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		errText: lipgloss.NewStyle().Foreground(t.Error),
		overlay: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Foreground(t.Text).
			Padding(0, 2),
	}
}

// BodyColor converts a body's display color for the terminal.
func BodyColor(c colorful.Color) lipgloss.Color {
	return lipgloss.Color(c.Clamped().Hex())
}
