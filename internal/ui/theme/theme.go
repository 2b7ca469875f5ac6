// Package theme holds the shared lipgloss styles.
package theme

import "github.com/charmbracelet/lipgloss"

var (
	Orange = lipgloss.Color("#FF6600")
	Gray   = lipgloss.Color("#828282")

	// DepthColors cycles through these for nested comment bars.
	DepthColors = []lipgloss.Color{
		"#FF6600", // orange
		"#828282", // gray
		"#00BFFF", // deep sky blue
		"#32CD32", // lime green
		"#FFD700", // gold
		"#FF69B4", // hot pink
		"#9370DB", // medium purple
		"#20B2AA", // light sea green
	}

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF"))

	SelectedTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Orange)

	Meta = lipgloss.NewStyle().
		Foreground(Gray)

	SelectedMeta = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))

	Dim = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666666"))

	Author = lipgloss.NewStyle().
		Foreground(Orange).
		Bold(true)

	OPBadge = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#000000")).
		Background(Orange).
		Bold(true)

	Selected = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333"))

	Deleted = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#555555")).
		Italic(true)

	Separator = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#444444"))

	VoteArrow = lipgloss.NewStyle().
			Foreground(Gray)

	VotePending = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	Voted = lipgloss.NewStyle().
		Foreground(Orange).
		Bold(true)

	Error = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF0000"))

	Label = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true)

	Heading = lipgloss.NewStyle().
		Foreground(Orange).
		Bold(true).
		Padding(1, 0)

	StatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#FFFFFF"))

	ActiveTab = lipgloss.NewStyle().
			Background(Orange).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)

	InactiveTab = lipgloss.NewStyle().
			Background(lipgloss.Color("#555555")).
			Foreground(lipgloss.Color("#CCCCCC")).
			Padding(0, 1)

	StatusUser = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#00FF00")).
			Padding(0, 1)

	StatusText = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#AAAAAA")).
			Padding(0, 1)

	StatusError = lipgloss.NewStyle().
			Background(lipgloss.Color("#8B0000")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)
)
