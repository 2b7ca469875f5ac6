package statusbar

import (
	"strings"
	"testing"

	"github.com/fragmede/hackers/internal/api"
)

func TestViewShowsUserAndStatus(t *testing.T) {
	m := New()
	m.SetSize(120)

	if !strings.Contains(m.View(), "L:login") {
		t.Fatal("expected login hint when logged out")
	}

	m.SetUser("alice")
	m.SetKarma(1234)
	m.SetStatus("Upvoted", false)
	m.SetActiveTab(api.StoryTypeAsk)
	v := m.View()
	for _, want := range []string{"alice (1234)", "Upvoted", "Ask", "Jobs"} {
		if !strings.Contains(v, want) {
			t.Fatalf("expected %q in %q", want, v)
		}
	}

	m.SetUser("")
	if v := m.View(); strings.Contains(v, "alice") || !strings.Contains(v, "L:login") {
		t.Fatalf("expected logged-out bar, got %q", v)
	}
}
