// Package keys holds the key bindings shared by every view.
package keys

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit        key.Binding
	Back        key.Binding
	Enter       key.Binding
	Refresh     key.Binding
	Reload      key.Binding
	Login       key.Binding
	OpenURL     key.Binding
	Upvote      key.Binding
	UpvoteStory key.Binding
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Home        key.Binding
	End         key.Binding
	Toggle      key.Binding
	FoldAll     key.Binding
	Parent      key.Binding
	NextSib     key.Binding
	NextTab     key.Binding
	PrevTab     key.Binding
	Tabs        []key.Binding
	NextField   key.Binding
}

var Keys = KeyMap{
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Enter:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Reload:      key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload")),
	Login:       key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "login")),
	OpenURL:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open url")),
	Upvote:      key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upvote")),
	UpvoteStory: key.NewBinding(key.WithKeys("U"), key.WithHelp("U", "upvote story")),
	Up:          key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
	Down:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
	PageUp:      key.NewBinding(key.WithKeys("ctrl+u", "pgup"), key.WithHelp("ctrl+u", "page up")),
	PageDown:    key.NewBinding(key.WithKeys("ctrl+d", "pgdown"), key.WithHelp("ctrl+d", "page down")),
	Home:        key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	End:         key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
	Toggle:      key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "collapse")),
	FoldAll:     key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "fold all")),
	Parent:      key.NewBinding(key.WithKeys("p", "["), key.WithHelp("p", "parent")),
	NextSib:     key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "sibling")),
	NextTab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
	PrevTab:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
	Tabs: []key.Binding{
		key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "top")),
		key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "new")),
		key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "best")),
		key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "ask")),
		key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "show")),
		key.NewBinding(key.WithKeys("6"), key.WithHelp("6", "jobs")),
	},
	NextField: key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
}

// StoryHelp is the help.KeyMap shown under a story.
type StoryHelp struct{}

func (StoryHelp) ShortHelp() []key.Binding {
	k := Keys
	return []key.Binding{k.Down, k.Toggle, k.FoldAll, k.Parent, k.NextSib, k.Upvote, k.UpvoteStory, k.Back}
}

func (h StoryHelp) FullHelp() [][]key.Binding {
	k := Keys
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End},
		{k.Toggle, k.FoldAll, k.Parent, k.NextSib},
		{k.Upvote, k.UpvoteStory, k.OpenURL, k.Reload, k.Back},
	}
}
