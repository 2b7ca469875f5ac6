package ui

import (
	"context"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/fragmede/hackers/internal/api"
	"github.com/fragmede/hackers/internal/auth"
	"github.com/fragmede/hackers/internal/cache"
	"github.com/fragmede/hackers/internal/config"
	"github.com/fragmede/hackers/internal/ui/keys"
	"github.com/fragmede/hackers/internal/ui/login"
	"github.com/fragmede/hackers/internal/ui/messages"
	"github.com/fragmede/hackers/internal/ui/statusbar"
	"github.com/fragmede/hackers/internal/ui/storylist"
	"github.com/fragmede/hackers/internal/ui/storyview"
	"github.com/fragmede/hackers/internal/voting"
)

// ViewType identifies the active view.
type ViewType int

const (
	ViewStoryList ViewType = iota
	ViewStoryDetail
	ViewLogin
)

// App is the root Bubble Tea model.
type App struct {
	activeView    ViewType
	previousViews []ViewType

	storyList storylist.Model
	storyView *storyview.Model
	loginForm login.Model
	statusBar statusbar.Model

	cfg     config.Config
	client  *api.Client
	cache   *cache.DB
	session *auth.Session
	log     zerolog.Logger

	width  int
	height int

	// send posts a message to the running program from outside Update.
	send func(tea.Msg)
}

// NewApp creates the root application model.
func NewApp(cfg config.Config, client *api.Client, db *cache.DB, session *auth.Session, log zerolog.Logger) *App {
	return &App{
		activeView: ViewStoryList,
		storyList:  storylist.New(cfg, client, db, log),
		statusBar:  statusbar.New(),
		cfg:        cfg,
		client:     client,
		cache:      db,
		session:    session,
		log:        log.With().Str("component", "app").Logger(),
	}
}

// SetProgram stores the program so background work can post messages.
func (a *App) SetProgram(p *tea.Program) {
	a.send = p.Send
}

// Init starts the application.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.storyList.Init(), a.restoreSession())
}

func (a *App) restoreSession() tea.Cmd {
	session, timeout, log := a.session, a.cfg.RequestTimeout, a.log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := session.Load(ctx); err != nil {
			log.Debug().Err(err).Msg("no saved session")
			return nil
		}
		return messages.SessionRestoredMsg{Username: session.Username()}
	}
}

// Update handles all messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.storyList.SetSize(msg.Width, a.contentHeight())
		a.statusBar.SetSize(msg.Width)
		if a.storyView != nil {
			a.storyView.SetSize(msg.Width, a.contentHeight())
		}
		a.loginForm.SetSize(msg.Width, a.contentHeight())
		return a, nil

	case tea.KeyMsg:
		if cmd, handled := a.handleGlobalKey(msg); handled {
			return a, cmd
		}

	case messages.OpenStoryMsg:
		votes := voting.New(a.session, a.session, a.loginPrompt(), a.log)
		sv := storyview.New(msg.StoryID, a.cfg, a.client, a.cache, votes, a.session.Username(), a.log)
		sv.SetSize(a.width, a.contentHeight())
		a.storyView = &sv
		a.pushView(ViewStoryDetail)
		return a, sv.Init()

	case messages.GoBackMsg:
		a.goBack()
		return a, nil

	case messages.OpenLoginMsg:
		if !a.session.LoggedIn() {
			a.statusBar.SetUser("")
			if a.storyView != nil {
				a.storyView.SetUser("")
			}
		}
		a.openLogin()
		return a, nil

	case messages.OpenURLMsg:
		a.statusBar.SetStatus("Opening "+msg.URL, false)
		go openBrowser(msg.URL)
		return a, nil

	case messages.SessionRestoredMsg:
		a.setUser(msg.Username)
		return a, a.loadUser(msg.Username)

	case messages.LoginResultMsg:
		if msg.Err != nil {
			break // shown by the login form
		}
		if err := a.session.Save(); err != nil {
			a.log.Warn().Err(err).Msg("saving session")
		}
		a.setUser(msg.Username)
		a.statusBar.SetStatus("Logged in as "+msg.Username, false)
		a.goBack()
		cmds = append(cmds, a.loadUser(msg.Username))
		if a.activeView == ViewStoryDetail && a.storyView != nil {
			// Vote links are only on pages fetched while logged in.
			cmds = append(cmds, a.storyView.Reload())
		}
		return a, tea.Batch(cmds...)

	case messages.UserLoadedMsg:
		if msg.Err != nil {
			a.log.Debug().Err(msg.Err).Msg("loading user profile")
		} else if msg.User.ID == a.session.Username() {
			a.statusBar.SetKarma(msg.User.Karma)
		}
		return a, nil

	case messages.StatusMsg:
		a.statusBar.SetStatus(msg.Text, msg.IsError)
		return a, nil

	case messages.PageLoadedMsg, messages.VoteResultMsg:
		// Results land on the story view even when another view is on top.
		if a.storyView == nil {
			return a, nil
		}
		sv, cmd := a.storyView.Update(msg)
		a.storyView = &sv
		return a, cmd
	}

	var cmd tea.Cmd
	switch a.activeView {
	case ViewStoryList:
		a.storyList, cmd = a.storyList.Update(msg)
		a.statusBar.SetActiveTab(a.storyList.StoryType())
	case ViewStoryDetail:
		if a.storyView != nil {
			sv, c := a.storyView.Update(msg)
			a.storyView, cmd = &sv, c
		}
	case ViewLogin:
		a.loginForm, cmd = a.loginForm.Update(msg)
	}
	return a, cmd
}

// handleGlobalKey processes keys that work on every view. The login form
// only gets esc and ctrl+c so typing is not intercepted.
func (a *App) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	k := keys.Keys
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit, true
	}
	if a.activeView == ViewLogin {
		if key.Matches(msg, k.Back) {
			a.goBack()
			return nil, true
		}
		return nil, false
	}
	if a.activeView == ViewStoryList && a.storyList.Filtering() {
		return nil, false
	}

	switch {
	case key.Matches(msg, k.Quit):
		if a.activeView == ViewStoryList {
			return tea.Quit, true
		}
		a.goBack()
		return nil, true
	case key.Matches(msg, k.Back):
		if a.activeView == ViewStoryList {
			return nil, false
		}
		a.goBack()
		return nil, true
	case key.Matches(msg, k.NextTab):
		return a.switchTab(1), true
	case key.Matches(msg, k.PrevTab):
		return a.switchTab(-1), true
	case key.Matches(msg, k.Login):
		if !a.session.LoggedIn() {
			a.openLogin()
		}
		return nil, true
	}
	for i, b := range k.Tabs {
		if key.Matches(msg, b) {
			return a.selectTab(api.StoryTypes[i]), true
		}
	}
	return nil, false
}

// View renders the application.
func (a *App) View() string {
	var content string
	switch a.activeView {
	case ViewStoryList:
		content = a.storyList.View()
	case ViewStoryDetail:
		if a.storyView != nil {
			content = a.storyView.View()
		}
	case ViewLogin:
		content = a.loginForm.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, content, a.statusBar.View())
}

// loginPrompt is the coordinator's Navigator. It runs inside Update, so the
// message is posted from a goroutine.
func (a *App) loginPrompt() voting.Navigator {
	return voting.NavigatorFunc(func() {
		if send := a.send; send != nil {
			go send(messages.OpenLoginMsg{})
		}
	})
}

func (a *App) openLogin() {
	if a.activeView == ViewLogin {
		return
	}
	a.loginForm = login.New(a.session, a.cfg.RequestTimeout)
	a.loginForm.SetSize(a.width, a.contentHeight())
	a.pushView(ViewLogin)
}

func (a *App) setUser(username string) {
	a.statusBar.SetUser(username)
	if a.storyView != nil {
		a.storyView.SetUser(username)
	}
}

// loadUser fetches the profile for the karma display, cache first.
func (a *App) loadUser(username string) tea.Cmd {
	client, db, cfg := a.client, a.cache, a.cfg
	return func() tea.Msg {
		if u, fresh, _ := db.GetUser(username, cfg.UserTTL); u != nil && fresh {
			return messages.UserLoadedMsg{User: u}
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		defer cancel()
		u, err := client.GetUser(ctx, username)
		if err != nil {
			return messages.UserLoadedMsg{Err: err}
		}
		_ = db.PutUser(u)
		return messages.UserLoadedMsg{User: u}
	}
}

func (a *App) contentHeight() int {
	return max(a.height-1, 0)
}

func (a *App) pushView(v ViewType) {
	a.previousViews = append(a.previousViews, a.activeView)
	a.activeView = v
}

func (a *App) goBack() {
	if n := len(a.previousViews); n > 0 {
		a.activeView = a.previousViews[n-1]
		a.previousViews = a.previousViews[:n-1]
		return
	}
	a.activeView = ViewStoryList
}

func (a *App) switchTab(step int) tea.Cmd {
	current := a.storyList.StoryType()
	n := len(api.StoryTypes)
	for i, st := range api.StoryTypes {
		if st == current {
			return a.selectTab(api.StoryTypes[(i+step+n)%n])
		}
	}
	return a.selectTab(api.StoryTypes[0])
}

func (a *App) selectTab(st api.StoryType) tea.Cmd {
	a.activeView = ViewStoryList
	a.previousViews = nil
	var cmd tea.Cmd
	a.storyList, cmd = a.storyList.Update(messages.SwitchTabMsg{StoryType: st})
	a.statusBar.SetActiveTab(st)
	return cmd
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	default:
		return
	}
	_ = cmd.Run()
}
