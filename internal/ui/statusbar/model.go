package statusbar

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/hackers/internal/api"
	"github.com/fragmede/hackers/internal/ui/theme"
)

var tabLabels = map[api.StoryType]string{
	api.StoryTypeTop:  "Top",
	api.StoryTypeNew:  "New",
	api.StoryTypeBest: "Best",
	api.StoryTypeAsk:  "Ask",
	api.StoryTypeShow: "Show",
	api.StoryTypeJobs: "Jobs",
}

// Model is the status bar at the bottom of the screen.
type Model struct {
	width      int
	activeType api.StoryType
	username   string
	karma      int
	statusText string
	isError    bool
}

// New creates a new status bar.
func New() Model {
	return Model{activeType: api.StoryTypeTop}
}

// SetSize sets the width.
func (m *Model) SetSize(w int) {
	m.width = w
}

// SetActiveTab sets the active story type tab.
func (m *Model) SetActiveTab(st api.StoryType) {
	m.activeType = st
}

// SetUser sets the logged-in username. An empty name shows the login hint.
func (m *Model) SetUser(username string) {
	if username != m.username {
		m.karma = 0
	}
	m.username = username
}

// SetKarma sets the karma shown next to the username.
func (m *Model) SetKarma(karma int) {
	m.karma = karma
}

// SetStatus sets the status message.
func (m *Model) SetStatus(text string, isError bool) {
	m.statusText = text
	m.isError = isError
}

// View renders the status bar.
func (m Model) View() string {
	var tabs string
	for _, st := range api.StoryTypes {
		if st == m.activeType {
			tabs += theme.ActiveTab.Render(tabLabels[st])
		} else {
			tabs += theme.InactiveTab.Render(tabLabels[st])
		}
	}

	var right string
	if m.statusText != "" {
		if m.isError {
			right += theme.StatusError.Render(m.statusText)
		} else {
			right += theme.StatusText.Render(m.statusText)
		}
	}
	switch {
	case m.username == "":
		right += theme.StatusText.Render("L:login")
	case m.karma > 0:
		right += theme.StatusUser.Render(fmt.Sprintf("%s (%d)", m.username, m.karma))
	default:
		right += theme.StatusUser.Render(m.username)
	}

	gap := max(m.width-lipgloss.Width(tabs)-lipgloss.Width(right), 0)
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs, theme.StatusBar.Width(gap).Render(""), right)
}
