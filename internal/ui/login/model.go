package login

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/hackers/internal/api"
	"github.com/fragmede/hackers/internal/ui/keys"
	"github.com/fragmede/hackers/internal/ui/messages"
	"github.com/fragmede/hackers/internal/ui/theme"
)

// Authenticator logs a user in.
type Authenticator interface {
	Login(ctx context.Context, username, password string) error
}

// Model is the login form view.
type Model struct {
	usernameInput textinput.Model
	passwordInput textinput.Model
	focusIndex    int
	err           string
	submitting    bool
	auth          Authenticator
	timeout       time.Duration
	width         int
	height        int
}

// New creates a new login form.
func New(auth Authenticator, timeout time.Duration) Model {
	usernameInput := textinput.New()
	usernameInput.Placeholder = "username"
	usernameInput.Focus()
	usernameInput.Width = 30

	passwordInput := textinput.New()
	passwordInput.Placeholder = "password"
	passwordInput.EchoMode = textinput.EchoPassword
	passwordInput.Width = 30

	return Model{
		usernameInput: usernameInput,
		passwordInput: passwordInput,
		auth:          auth,
		timeout:       timeout,
	}
}

// SetSize sets the view dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Keys.NextField):
			if m.focusIndex == 0 {
				m.focusIndex = 1
				m.usernameInput.Blur()
				return m, m.passwordInput.Focus()
			}
			m.focusIndex = 0
			m.passwordInput.Blur()
			return m, m.usernameInput.Focus()

		case key.Matches(msg, keys.Keys.Enter):
			if m.submitting {
				return m, nil
			}
			username := strings.TrimSpace(m.usernameInput.Value())
			password := m.passwordInput.Value()
			if username == "" || password == "" {
				m.err = "Username and password required"
				return m, nil
			}
			m.submitting = true
			m.err = ""
			auth, timeout := m.auth, m.timeout
			return m, func() tea.Msg {
				ctx, cancel := context.WithTimeout(context.Background(), timeout)
				defer cancel()
				if err := auth.Login(ctx, username, password); err != nil {
					return messages.LoginResultMsg{Err: err}
				}
				return messages.LoginResultMsg{Username: username}
			}
		}

	case messages.LoginResultMsg:
		m.submitting = false
		switch {
		case msg.Err == nil:
			m.err = ""
		case errors.Is(msg.Err, api.ErrUnauthenticated):
			m.err = "Bad login."
			m.passwordInput.SetValue("")
		default:
			m.err = msg.Err.Error()
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.focusIndex == 0 {
		m.usernameInput, cmd = m.usernameInput.Update(msg)
	} else {
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

// View renders the login form.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(theme.Heading.Render("Login to Hacker News"))
	sb.WriteString("\n\n")
	sb.WriteString(theme.Label.Render("Username:"))
	sb.WriteString("\n")
	sb.WriteString(m.usernameInput.View())
	sb.WriteString("\n\n")
	sb.WriteString(theme.Label.Render("Password:"))
	sb.WriteString("\n")
	sb.WriteString(m.passwordInput.View())
	sb.WriteString("\n\n")

	if m.err != "" {
		sb.WriteString(theme.Error.Render(m.err))
		sb.WriteString("\n\n")
	}

	if m.submitting {
		sb.WriteString("Logging in...")
	} else {
		hint := lipgloss.NewStyle().Foreground(theme.Orange)
		sb.WriteString(hint.Render("Enter") + " to submit, " + hint.Render("Esc") + " to cancel")
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, sb.String())
}
