package login

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fragmede/hackers/internal/api"
	"github.com/fragmede/hackers/internal/ui/messages"
)

type fakeAuth struct {
	user, pass string
	err        error
}

func (f *fakeAuth) Login(ctx context.Context, username, password string) error {
	f.user, f.pass = username, password
	return f.err
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestSubmitLogsIn(t *testing.T) {
	auth := &fakeAuth{}
	m := New(auth, time.Second)
	m = typeText(m, "alice")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(m, "hunter2")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || !m.submitting {
		t.Fatal("expected login to start")
	}
	res, ok := cmd().(messages.LoginResultMsg)
	if !ok || res.Err != nil || res.Username != "alice" {
		t.Fatalf("unexpected result: %#v", res)
	}
	if auth.user != "alice" || auth.pass != "hunter2" {
		t.Fatalf("unexpected credentials: %q %q", auth.user, auth.pass)
	}
}

func TestSubmitRequiresBothFields(t *testing.T) {
	m := New(&fakeAuth{}, time.Second)
	m = typeText(m, "alice")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("expected no login attempt without a password")
	}
	if !strings.Contains(m.View(), "required") {
		t.Fatal("expected validation message")
	}
}

func TestBadLoginClearsPassword(t *testing.T) {
	m := New(&fakeAuth{}, time.Second)
	m, _ = m.Update(messages.LoginResultMsg{Err: fmt.Errorf("login failed: %w", api.ErrUnauthenticated)})
	if m.err != "Bad login." || m.passwordInput.Value() != "" {
		t.Fatalf("unexpected state: err=%q", m.err)
	}
}
