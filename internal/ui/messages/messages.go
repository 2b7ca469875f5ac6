package messages

import (
	"github.com/fragmede/hackers/internal/api"
	"github.com/fragmede/hackers/internal/voting"
)

// View transition messages.
type (
	OpenStoryMsg struct{ StoryID int }
	GoBackMsg    struct{}
	SwitchTabMsg struct{ StoryType api.StoryType }
	OpenLoginMsg struct{}
	OpenURLMsg   struct{ URL string }
)

// Data messages.
type (
	StoriesLoadedMsg struct {
		StoryType api.StoryType
		Items     []*api.Item
		Err       error
	}

	// PageLoadedMsg carries a scraped item page. Stale is set when the
	// network failed and an expired cached copy is shown instead.
	PageLoadedMsg struct {
		StoryID int
		Page    *api.Page
		Stale   bool
		Err     error
	}

	LoginResultMsg struct {
		Username string
		Err      error
	}

	// VoteResultMsg reports the outcome of an upvote started on a story view.
	VoteResultMsg struct {
		StoryID int
		Ticket  voting.Ticket
		Err     error
	}

	UserLoadedMsg struct {
		User *api.User
		Err  error
	}

	StatusMsg struct {
		Text    string
		IsError bool
	}

	SessionRestoredMsg struct {
		Username string
	}
)
