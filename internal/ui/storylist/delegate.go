package storylist

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/hackers/internal/ui/theme"
)

var rankStyle = lipgloss.NewStyle().
	Foreground(theme.Orange).
	Width(4).
	Align(lipgloss.Right)

type Delegate struct{}

func (d Delegate) Height() int                             { return 2 }
func (d Delegate) Spacing() int                            { return 1 }
func (d Delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d Delegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(StoryItem)
	if !ok {
		return
	}

	rank := rankStyle.Render(fmt.Sprintf("%d.", item.Rank+1))
	titleStyle, descStyle := theme.Title, theme.Meta
	if index == m.Index() {
		titleStyle, descStyle = theme.SelectedTitle, theme.SelectedMeta
	}
	fmt.Fprintf(w, "%s %s\n     %s", rank, titleStyle.Render(item.Title()), descStyle.Render(item.Description()))
}
