package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors - all colors meet WCAG AA contrast (4.5:1) on both black and dark surfaces
	PrimaryColor = lipgloss.Color("#A78BFA") // Purple
	NorthColor   = lipgloss.Color("#60A5FA") // Blue
	SouthColor   = lipgloss.Color("#FBBF24") // Yellow
	SuccessColor = lipgloss.Color("#10B981") // Green
	WarningColor = lipgloss.Color("#F59E0B") // Amber
	ErrorColor   = lipgloss.Color("#F87171") // Red
	MutedColor   = lipgloss.Color("#9CA3AF") // Gray
	TextColor    = lipgloss.Color("#F9FAFB") // Light text
	BorderColor  = lipgloss.Color("#6B7280") // Gray

	// Convenience styles for colors
	Primary = lipgloss.NewStyle().Foreground(PrimaryColor)
	North   = lipgloss.NewStyle().Foreground(NorthColor)
	South   = lipgloss.NewStyle().Foreground(SouthColor)
	Success = lipgloss.NewStyle().Foreground(SuccessColor)
	Warning = lipgloss.NewStyle().Foreground(WarningColor)
	Muted   = lipgloss.NewStyle().Foreground(MutedColor)

	// Base styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor)

	Subtitle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	// Bridge panel
	PanelBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	// Crossing log area
	LogBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor)

	// Help bar
	HelpBar = lipgloss.NewStyle().
		Foreground(MutedColor).
		MarginTop(1)

	HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(SuccessColor)

	// Status messages
	ErrorMsg = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	SuccessMsg = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)
)

// DirectionColor returns the color for a direction name
func DirectionColor(direction string) lipgloss.Color {
	switch direction {
	case "north":
		return NorthColor
	case "south":
		return SouthColor
	default:
		return MutedColor
	}
}

// DirectionStyle returns the inline style for a direction name
func DirectionStyle(direction string) lipgloss.Style {
	switch direction {
	case "north":
		return North
	case "south":
		return South
	default:
		return Muted
	}
}

// DirectionArrow returns a flow marker for a direction name
func DirectionArrow(direction string) string {
	switch direction {
	case "north":
		return "▲▲"
	case "south":
		return "▼▼"
	default:
		return "--"
	}
}
