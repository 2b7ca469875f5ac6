package voting

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/rs/zerolog"

	"github.com/fragmede/hackers/internal/api"
)

type fakeItem struct {
	id     int
	fields Fields
}

func (f *fakeItem) VoteID() int             { return f.id }
func (f *fakeItem) VoteFields() Fields      { return f.fields }
func (f *fakeItem) SetVoteFields(nf Fields) { f.fields = nf }

type fakeSubmitter struct {
	err   error
	calls []int
	// during runs inside SubmitUpvote so tests can observe in-flight state.
	during func()
}

func (f *fakeSubmitter) SubmitUpvote(_ context.Context, id int, _ string) error {
	f.calls = append(f.calls, id)
	if f.during != nil {
		f.during()
	}
	return f.err
}

type fakeAuth struct{ logouts int }

func (f *fakeAuth) Logout() error {
	f.logouts++
	return nil
}

func intPtr(n int) *int { return &n }

func newItem(id, score int) *fakeItem {
	return &fakeItem{id: id, fields: Fields{Score: intPtr(score), UpvoteURL: fmt.Sprintf("vote?id=%d&how=up&auth=x", id)}}
}

func newCoordinator(sub Submitter) (*Coordinator, *fakeAuth, *int) {
	auth := &fakeAuth{}
	prompts := 0
	nav := NavigatorFunc(func() { prompts++ })
	return New(sub, auth, nav, zerolog.Nop()), auth, &prompts
}

func TestUpvote_Success(t *testing.T) {
	sub := &fakeSubmitter{}
	c, auth, prompts := newCoordinator(sub)
	item := newItem(1, 10)

	sub.during = func() {
		st := c.State(item)
		if !st.IsVoting {
			t.Fatal("expected item to be voting while the request is in flight")
		}
		if !st.IsUpvoted || *st.Score != 11 {
			t.Fatalf("optimistic state not applied: %+v", st)
		}
	}

	if err := c.Upvote(context.Background(), item); err != nil {
		t.Fatalf("Upvote returned error: %v", err)
	}

	st := c.State(item)
	if !st.IsUpvoted || st.Score == nil || *st.Score != 11 {
		t.Fatalf("unexpected state after success: %+v", st)
	}
	if st.IsVoting || st.Err != nil {
		t.Fatalf("expected idle state without error: %+v", st)
	}
	if auth.logouts != 0 || *prompts != 0 {
		t.Fatalf("unexpected side effects: logouts=%d prompts=%d", auth.logouts, *prompts)
	}
}

func TestUpvote_AlreadyUpvotedIsNoop(t *testing.T) {
	sub := &fakeSubmitter{}
	c, _, _ := newCoordinator(sub)
	item := newItem(2, 5)
	item.fields.Upvoted = true

	if err := c.Upvote(context.Background(), item); err != nil {
		t.Fatalf("Upvote returned error: %v", err)
	}
	if len(sub.calls) != 0 {
		t.Fatalf("expected no remote call, got %v", sub.calls)
	}
	if *item.fields.Score != 5 || !item.fields.Upvoted {
		t.Fatalf("item changed: %+v", item.fields)
	}
}

func TestUpvote_UnauthenticatedRollsBackAndPromptsLogin(t *testing.T) {
	sub := &fakeSubmitter{err: fmt.Errorf("vote redirected to login: %w", api.ErrUnauthenticated)}
	c, auth, prompts := newCoordinator(sub)
	item := newItem(3, 42)

	err := c.Upvote(context.Background(), item)
	var verr *Error
	if !errors.As(err, &verr) || verr.Kind != KindUnauthenticated {
		t.Fatalf("expected unauthenticated vote error, got %v", err)
	}
	if item.fields.Upvoted || *item.fields.Score != 42 {
		t.Fatalf("state not rolled back: %+v", item.fields)
	}
	if auth.logouts != 1 {
		t.Fatalf("expected one logout, got %d", auth.logouts)
	}
	if *prompts != 1 {
		t.Fatalf("expected one login prompt, got %d", *prompts)
	}
	if st := c.State(item); st.Err == nil || st.IsVoting {
		t.Fatalf("expected stored error and idle state: %+v", st)
	}
}

func TestUpvote_NetworkFailureStoresError(t *testing.T) {
	sub := &fakeSubmitter{err: &url.Error{Op: "Get", URL: "https://news.ycombinator.com/vote", Err: errors.New("connection reset")}}
	c, auth, prompts := newCoordinator(sub)
	item := newItem(4, 1)

	err := c.Upvote(context.Background(), item)
	if Classify(err) != KindNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
	if item.fields.Upvoted || *item.fields.Score != 1 {
		t.Fatalf("state not rolled back: %+v", item.fields)
	}
	if auth.logouts != 0 || *prompts != 0 {
		t.Fatalf("network failure must not log out: logouts=%d prompts=%d", auth.logouts, *prompts)
	}
	st := c.State(item)
	if st.Err == nil {
		t.Fatal("expected error to be stored")
	}
	var verr *Error
	if !errors.As(st.Err, &verr) || verr.Kind != KindNetwork {
		t.Fatalf("unexpected stored error: %v", st.Err)
	}
}

func TestUpvote_RetryClearsStoredError(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("HN error: Unknown.")}
	c, _, _ := newCoordinator(sub)
	item := newItem(5, 3)

	if err := c.Upvote(context.Background(), item); Classify(err) != KindUnknown {
		t.Fatalf("expected unknown error, got %v", err)
	}
	sub.err = nil
	if err := c.Upvote(context.Background(), item); err != nil {
		t.Fatalf("Upvote returned error: %v", err)
	}
	if st := c.State(item); st.Err != nil || !st.IsUpvoted {
		t.Fatalf("unexpected state after retry: %+v", st)
	}
}

func TestBegin_InFlightIsPerItem(t *testing.T) {
	c, _, _ := newCoordinator(&fakeSubmitter{})
	a := newItem(10, 1)
	b := newItem(11, 1)

	ta, ok := c.Begin(a)
	if !ok {
		t.Fatal("expected first vote to start")
	}
	if _, ok := c.Begin(a); ok {
		t.Fatal("second vote on the same item must be rejected")
	}
	tb, ok := c.Begin(b)
	if !ok {
		t.Fatal("vote on another item must not be blocked")
	}

	if err := c.Finish(a, ta, errors.New("boom")); err == nil {
		t.Fatal("expected error from Finish")
	}
	if c.State(a).IsVoting {
		t.Fatal("item a should be idle")
	}
	if !c.State(b).IsVoting {
		t.Fatal("item b should still be voting")
	}
	if err := c.Finish(b, tb, nil); err != nil {
		t.Fatalf("Finish returned error: %v", err)
	}
	if !b.fields.Upvoted || a.fields.Upvoted {
		t.Fatalf("unexpected fields: a=%+v b=%+v", a.fields, b.fields)
	}
}

func TestBegin_ItemWithoutScore(t *testing.T) {
	c, _, _ := newCoordinator(&fakeSubmitter{})
	item := &fakeItem{id: 20, fields: Fields{UpvoteURL: "vote?id=20"}}

	tk, ok := c.Begin(item)
	if !ok {
		t.Fatal("expected vote to start")
	}
	if item.fields.Score != nil || !item.fields.Upvoted {
		t.Fatalf("unexpected optimistic fields: %+v", item.fields)
	}
	_ = c.Finish(item, tk, errors.New("nope"))
	if item.fields.Upvoted {
		t.Fatal("expected rollback")
	}
}

func TestState_CanVote(t *testing.T) {
	c, _, _ := newCoordinator(&fakeSubmitter{})

	if !c.State(newItem(1, 1)).CanVote {
		t.Fatal("item with a vote link should be votable")
	}
	if c.State(&fakeItem{id: 2}).CanVote {
		t.Fatal("item without a vote link should not be votable")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindNone},
		{api.ErrUnauthenticated, KindUnauthenticated},
		{fmt.Errorf("wrapped: %w", api.ErrNetwork), KindNetwork},
		{context.DeadlineExceeded, KindNetwork},
		{errors.New("HN error: Unknown."), KindUnknown},
	}
	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Fatalf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
