package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the color scheme of the panels. Bodies keep their own colors.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Border  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Trail   lipgloss.Color
}

var (
	ThemeDeepSpace = Theme{
		Name:    "deep-space",
		Primary: lipgloss.Color("#00ffff"),
		Accent:  lipgloss.Color("#ffcc00"),
		Text:    lipgloss.Color("#e0e0ff"),
		Muted:   lipgloss.Color("#666688"),
		Border:  lipgloss.Color("#444466"),
		Success: lipgloss.Color("#00ff88"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff4444"),
		Trail:   lipgloss.Color("#333355"),
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Primary: lipgloss.Color("#00ff00"),
		Accent:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Border:  lipgloss.Color("#00aa00"),
		Success: lipgloss.Color("#88ff88"),
		Warning: lipgloss.Color("#ffff00"),
		Error:   lipgloss.Color("#ff0000"),
		Trail:   lipgloss.Color("#004400"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#cccccc"),
		Text:    lipgloss.Color("#dddddd"),
		Muted:   lipgloss.Color("#777777"),
		Border:  lipgloss.Color("#555555"),
		Success: lipgloss.Color("#ffffff"),
		Warning: lipgloss.Color("#bbbbbb"),
		Error:   lipgloss.Color("#ff5555"),
		Trail:   lipgloss.Color("#3a3a3a"),
	}
)

var themes = []Theme{ThemeDeepSpace, ThemeRetroGreen, ThemeMinimal}

func ThemeNames() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

// GetTheme returns the named theme, or the default one.
func GetTheme(name string) Theme {
	for _, t := range themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeDeepSpace
}

// NextTheme returns the theme after t, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range themes {
		if th.Name == t.Name {
			return themes[(i+1)%len(themes)]
		}
	}
	return themes[0]
}
