package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fragmede/hackers/internal/api"
)

// fakeHN serves just enough of the site for login and voting.
type fakeHN struct {
	votes       atomic.Int32
	expireVotes bool
	voteBody    string
}

func (f *fakeHN) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if r.FormValue("pw") != "hunter2" {
				fmt.Fprint(w, "Bad login.")
				return
			}
			http.SetCookie(w, &http.Cookie{Name: "user", Value: r.FormValue("acct") + "&token", Path: "/"})
			http.Redirect(w, r, "/news", http.StatusFound)
			return
		}
		fmt.Fprint(w, "<form action=login>login</form>")
	})
	mux.HandleFunc("/news", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("user"); err == nil && c.Value != "" {
			fmt.Fprint(w, `<a id="logout" href="logout">logout</a>`)
			return
		}
		fmt.Fprint(w, `<a href="login">login</a>`)
	})
	mux.HandleFunc("/vote", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("user"); err != nil || f.expireVotes {
			http.Redirect(w, r, "/login?goto=news", http.StatusFound)
			return
		}
		f.votes.Add(1)
		fmt.Fprint(w, f.voteBody)
	})
	mux.HandleFunc("/item", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		fmt.Fprintf(w, `<table><tr class="athing comtr" id="%[1]s"><td>
<table><tr><td class="ind" indent="0"></td>
<td class="votelinks"><a id="up_%[1]s" href="vote?id=%[1]s&amp;how=up&amp;auth=zzz"></a></td>
<td class="default"><span class="comhead"><a class="hnuser">carol</a></span>
<div class="commtext">hi</div></td></tr></table></td></tr></table>`, id)
	})
	return mux
}

func newTestSession(t *testing.T) (*Session, *fakeHN, string) {
	t.Helper()
	f := &fakeHN{}
	ts := httptest.NewServer(f.handler())
	t.Cleanup(ts.Close)

	path := filepath.Join(t.TempDir(), "session.json")
	s := NewSession(WithBaseURL(ts.URL), WithPath(path))
	return s, f, ts.URL
}

func TestLoginAndSave(t *testing.T) {
	s, _, baseURL := newTestSession(t)
	ctx := context.Background()

	if err := s.Login(ctx, "alice", "hunter2"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if !s.LoggedIn() || s.Username() != "alice" {
		t.Fatalf("unexpected session state: loggedIn=%v user=%q", s.LoggedIn(), s.Username())
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	restored := NewSession(WithBaseURL(baseURL), WithPath(s.path))
	if err := restored.Load(ctx); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if restored.Username() != "alice" {
		t.Fatalf("expected restored user alice, got %q", restored.Username())
	}
}

func TestLoginBadPassword(t *testing.T) {
	s, _, _ := newTestSession(t)

	err := s.Login(context.Background(), "alice", "wrong")
	if !errors.Is(err, api.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if s.LoggedIn() {
		t.Fatal("session should stay logged out")
	}
}

func TestLogoutClearsState(t *testing.T) {
	s, _, _ := newTestSession(t)
	ctx := context.Background()
	if err := s.Login(ctx, "alice", "hunter2"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if err := s.Logout(); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if s.LoggedIn() || s.Username() != "" {
		t.Fatal("expected logged-out session")
	}
	if _, err := os.Stat(s.path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected session file removed, stat err = %v", err)
	}
	if err := s.validate(ctx); !errors.Is(err, api.ErrUnauthenticated) {
		t.Fatalf("expected cookies cleared, validate returned %v", err)
	}
}

func TestLogoutWhileVoting(t *testing.T) {
	s, _, _ := newTestSession(t)
	ctx := context.Background()
	if err := s.Login(ctx, "alice", "hunter2"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	jar := s.client.Jar

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				// Errors are expected once the logout lands.
				_ = s.SubmitUpvote(ctx, 101, "vote?id=101&how=up&auth=bbb")
				_, _, _ = s.get(ctx, s.baseURL+"/news")
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 20 {
			_ = s.Logout()
			_ = s.Save()
		}
	}()
	wg.Wait()

	if s.client.Jar != jar {
		t.Fatal("the client's cookie jar must not be replaced")
	}
	if s.LoggedIn() {
		t.Fatal("expected logged-out session")
	}
	if err := s.validate(ctx); !errors.Is(err, api.ErrUnauthenticated) {
		t.Fatalf("expected cookies cleared, validate returned %v", err)
	}
}

func TestSubmitUpvote(t *testing.T) {
	s, f, _ := newTestSession(t)
	ctx := context.Background()
	if err := s.Login(ctx, "alice", "hunter2"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if err := s.SubmitUpvote(ctx, 101, "vote?id=101&how=up&auth=bbb"); err != nil {
		t.Fatalf("SubmitUpvote returned error: %v", err)
	}
	if n := f.votes.Load(); n != 1 {
		t.Fatalf("expected 1 vote, got %d", n)
	}
}

func TestSubmitUpvote_FindsLinkWhenMissing(t *testing.T) {
	s, f, _ := newTestSession(t)
	ctx := context.Background()
	if err := s.Login(ctx, "alice", "hunter2"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if err := s.SubmitUpvote(ctx, 555, ""); err != nil {
		t.Fatalf("SubmitUpvote returned error: %v", err)
	}
	if n := f.votes.Load(); n != 1 {
		t.Fatalf("expected 1 vote, got %d", n)
	}
}

func TestSubmitUpvote_Unauthenticated(t *testing.T) {
	t.Run("logged out", func(t *testing.T) {
		s, f, _ := newTestSession(t)
		err := s.SubmitUpvote(context.Background(), 101, "vote?id=101")
		if !errors.Is(err, api.ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated, got %v", err)
		}
		if f.votes.Load() != 0 {
			t.Fatal("no request should be made when logged out")
		}
	})

	t.Run("redirected to login", func(t *testing.T) {
		s, f, _ := newTestSession(t)
		ctx := context.Background()
		if err := s.Login(ctx, "alice", "hunter2"); err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		f.expireVotes = true
		err := s.SubmitUpvote(ctx, 101, "vote?id=101")
		if !errors.Is(err, api.ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("logged in message", func(t *testing.T) {
		s, f, _ := newTestSession(t)
		ctx := context.Background()
		if err := s.Login(ctx, "alice", "hunter2"); err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		f.voteBody = "You have to be logged in to vote."
		err := s.SubmitUpvote(ctx, 101, "vote?id=101")
		if !errors.Is(err, api.ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated, got %v", err)
		}
	})
}

func TestSubmitUpvote_NetworkError(t *testing.T) {
	f := &fakeHN{}
	ts := httptest.NewServer(f.handler())
	s := NewSession(WithBaseURL(ts.URL))
	if err := s.Login(context.Background(), "alice", "hunter2"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	ts.Close()

	err := s.SubmitUpvote(context.Background(), 101, "vote?id=101")
	if !errors.Is(err, api.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestCheckHNResponse(t *testing.T) {
	tests := []struct {
		body    string
		wantErr bool
	}{
		{"<html>ok</html>", false},
		{"Unknown.", true},
		{"You're submitting too fast. Please slow down.", true},
		{"You have to be logged in to vote.", true},
	}
	for _, tt := range tests {
		err := checkHNResponse(tt.body)
		if (err != nil) != tt.wantErr {
			t.Errorf("checkHNResponse(%q) = %v, wantErr %v", strings.TrimSpace(tt.body), err, tt.wantErr)
		}
	}
}
