package voting

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Fields are the vote-relevant fields of a story or comment.
type Fields struct {
	Upvoted bool
	// Score is nil when HN does not show a score for the item.
	Score *int
	// UpvoteURL is the vote link scraped from the page. Empty means voting
	// is not available.
	UpvoteURL string
}

// Item is anything that can be upvoted.
type Item interface {
	VoteID() int
	VoteFields() Fields
	SetVoteFields(Fields)
}

// State is the vote affordance for one item.
type State struct {
	IsUpvoted bool
	Score     *int
	CanVote   bool
	IsVoting  bool
	Err       error
}

// Submitter sends an upvote to HN.
type Submitter interface {
	SubmitUpvote(ctx context.Context, itemID int, upvoteURL string) error
}

// Authenticator tears down the current session.
type Authenticator interface {
	Logout() error
}

// Navigator asks the UI to show the login screen.
type Navigator interface {
	ShowLogin()
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func()

func (f NavigatorFunc) ShowLogin() { f() }

// Ticket identifies one in-flight vote and carries what is needed to roll it
// back.
type Ticket struct {
	ItemID    int
	UpvoteURL string
	original  Fields
}

// Coordinator applies votes optimistically and reconciles them with HN.
// Each item has its own in-flight flag.
type Coordinator struct {
	sub  Submitter
	auth Authenticator
	nav  Navigator
	log  zerolog.Logger

	mu       sync.Mutex
	inFlight map[int]bool
	errs     map[int]error
}

// New creates a Coordinator. auth and nav may be nil.
func New(sub Submitter, auth Authenticator, nav Navigator, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		sub:      sub,
		auth:     auth,
		nav:      nav,
		log:      log.With().Str("component", "voting").Logger(),
		inFlight: make(map[int]bool),
		errs:     make(map[int]error),
	}
}

// Begin applies the optimistic upvote to item. It returns false and leaves
// everything untouched when the item is already upvoted or a vote on it is
// still in flight.
func (c *Coordinator) Begin(item Item) (Ticket, bool) {
	id := item.VoteID()
	f := item.VoteFields()

	c.mu.Lock()
	defer c.mu.Unlock()
	if f.Upvoted || c.inFlight[id] {
		return Ticket{}, false
	}

	t := Ticket{ItemID: id, UpvoteURL: f.UpvoteURL, original: copyFields(f)}
	next := copyFields(f)
	next.Upvoted = true
	if next.Score != nil {
		*next.Score++
	}
	item.SetVoteFields(next)

	c.inFlight[id] = true
	delete(c.errs, id)
	c.log.Debug().Int("item", id).Msg("upvote started")
	return t, true
}

// Submit performs the remote call for t. It does not touch coordinator state
// and may run off the UI goroutine.
func (c *Coordinator) Submit(ctx context.Context, t Ticket) error {
	return c.sub.SubmitUpvote(ctx, t.ItemID, t.UpvoteURL)
}

// Finish reconciles item with the result of Submit. On failure the original
// fields are restored and the classified error is stored and returned. An
// unauthenticated failure also logs the session out and asks for the login
// screen.
func (c *Coordinator) Finish(item Item, t Ticket, err error) error {
	c.mu.Lock()
	delete(c.inFlight, t.ItemID)
	if err == nil {
		delete(c.errs, t.ItemID)
		c.mu.Unlock()
		c.log.Info().Int("item", t.ItemID).Msg("upvote accepted")
		return nil
	}

	item.SetVoteFields(copyFields(t.original))
	verr := &Error{Kind: Classify(err), ItemID: t.ItemID, Err: err}
	c.errs[t.ItemID] = verr
	c.mu.Unlock()

	c.log.Warn().Err(err).Int("item", t.ItemID).Str("kind", verr.Kind.String()).Msg("upvote rolled back")

	if verr.Kind == KindUnauthenticated {
		if c.auth != nil {
			if lerr := c.auth.Logout(); lerr != nil {
				c.log.Error().Err(lerr).Msg("logout after rejected vote")
			}
		}
		if c.nav != nil {
			c.nav.ShowLogin()
		}
	}
	return verr
}

// Upvote runs Begin, Submit and Finish in sequence. It returns nil without
// calling HN when Begin rejects the vote.
func (c *Coordinator) Upvote(ctx context.Context, item Item) error {
	t, ok := c.Begin(item)
	if !ok {
		return nil
	}
	return c.Finish(item, t, c.Submit(ctx, t))
}

// State reports the vote affordance for item.
func (c *Coordinator) State(item Item) State {
	id := item.VoteID()
	f := item.VoteFields()

	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		IsUpvoted: f.Upvoted,
		Score:     f.Score,
		CanVote:   f.UpvoteURL != "",
		IsVoting:  c.inFlight[id],
		Err:       c.errs[id],
	}
}

// ClearError drops the stored error for an item.
func (c *Coordinator) ClearError(id int) {
	c.mu.Lock()
	delete(c.errs, id)
	c.mu.Unlock()
}

func copyFields(f Fields) Fields {
	if f.Score != nil {
		s := *f.Score
		f.Score = &s
	}
	return f
}
