package components

import (
	"github.com/charmbracelet/lipgloss"
)

// Color definitions
var (
	// Primary colors
	PrimaryColor   = lipgloss.Color("#7D56F4")
	SecondaryColor = lipgloss.Color("#04B575")
	AccentColor    = lipgloss.Color("#FFD700")
	DangerColor    = lipgloss.Color("#F25D94")

	// Grayscale
	LightGray = lipgloss.Color("#D9D9D9")
	Gray      = lipgloss.Color("#8B8B8B")
	DarkGray  = lipgloss.Color("#383838")

	// Texture layer colors
	WaterColor = lipgloss.Color("#1E5AA8")
	SandColor  = lipgloss.Color("#D8C58A")
	GrassColor = lipgloss.Color("#4C8C2B")
	RockColor  = lipgloss.Color("#7A6E64")
	SnowColor  = lipgloss.Color("#F4F4F8")
)

// Base styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			Padding(0, 1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Bold(true).
			Padding(0, 1)

	InfoPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SecondaryColor).
			Padding(0, 1).
			Width(32)

	MapStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Gray)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(DarkGray).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(DangerColor).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(Gray).
			Italic(true).
			Padding(0, 1)
)

// shades runs from low to high ground.
const shades = " .:-=+*#%@"

// Shade returns a single character for a height in [0,1]. Out of range
// heights are clamped.
func Shade(h float64) byte {
	if !(h > 0) {
		return shades[0]
	}
	if h >= 1 {
		return shades[len(shades)-1]
	}
	return shades[int(h*float64(len(shades)))]
}

// LayerColor returns the display color for a texture layer. Unknown layers
// are gray.
func LayerColor(layer string) lipgloss.Color {
	switch layer {
	case "water":
		return WaterColor
	case "sand", "beach":
		return SandColor
	case "grass", "forest":
		return GrassColor
	case "rock", "mountain":
		return RockColor
	case "snow", "ice":
		return SnowColor
	default:
		return Gray
	}
}

// Cell renders one map cell: the shade character on the layer color.
func Cell(layer string, h float64) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#101010")).
		Background(LayerColor(layer)).
		Render(string(Shade(h)))
}
