package storylist

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/fragmede/hackers/internal/api"
	"github.com/fragmede/hackers/internal/cache"
	"github.com/fragmede/hackers/internal/config"
	"github.com/fragmede/hackers/internal/ui/messages"
)

func newTestModel(t *testing.T) (Model, *atomic.Int32) {
	t.Helper()
	var listHits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/topstories.json":
			listHits.Add(1)
			fmt.Fprint(w, `[11, 12]`)
		case "/item/11.json":
			fmt.Fprint(w, `{"id":11,"type":"story","title":"First","by":"pg","score":10,"url":"https://www.example.com/a"}`)
		case "/item/12.json":
			fmt.Fprint(w, `{"id":12,"type":"story","title":"Second","by":"dang","score":3}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)

	db, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("cache.Open returned error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := config.Default()
	client := api.NewClient(api.WithHTTPClient(ts.Client()), api.WithBaseURLs(ts.URL, ts.URL))
	m := New(cfg, client, db, zerolog.Nop())
	m.SetSize(80, 40)
	return m, &listHits
}

func TestInitLoadsAndCachesFeed(t *testing.T) {
	m, hits := newTestModel(t)

	msg, ok := m.Init()().(messages.StoriesLoadedMsg)
	if !ok {
		t.Fatal("expected StoriesLoadedMsg")
	}
	if msg.Err != nil {
		t.Fatalf("load returned error: %v", msg.Err)
	}
	if len(msg.Items) != 2 || msg.Items[0].Title != "First" {
		t.Fatalf("unexpected items: %+v", msg.Items)
	}

	again := m.Init()().(messages.StoriesLoadedMsg)
	if len(again.Items) != 2 {
		t.Fatalf("expected cached items, got %+v", again.Items)
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("expected the fresh cached list to be reused, got %d list fetches", n)
	}
}

func TestRefreshBypassesCache(t *testing.T) {
	m, hits := newTestModel(t)
	m.Init()()

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if cmd == nil {
		t.Fatal("expected a reload command")
	}
	cmd()
	if n := hits.Load(); n != 2 {
		t.Fatalf("expected refresh to refetch the list, got %d fetches", n)
	}
}

func TestEnterOpensSelectedStory(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = m.Update(m.Init()())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	open, ok := cmd().(messages.OpenStoryMsg)
	if !ok || open.StoryID != 11 {
		t.Fatalf("expected OpenStoryMsg for 11, got %#v", cmd())
	}
}

func TestIgnoresOtherFeeds(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = m.Update(messages.StoriesLoadedMsg{
		StoryType: api.StoryTypeJobs,
		Items:     []*api.Item{{ID: 99, Title: "Hiring"}},
	})
	if len(m.list.Items()) != 0 {
		t.Fatal("items from another feed must be ignored")
	}
}

func TestDescription(t *testing.T) {
	item := StoryItem{Item: &api.Item{Score: 10, By: "pg", Descendants: 4, URL: "https://www.example.com/a"}}
	want := "10 points | by pg | 4 comments  (example.com)"
	if got := item.Description(); got != want {
		t.Fatalf("Description() = %q, want %q", got, want)
	}
}
