package storyview

import (
	"github.com/fragmede/hackers/internal/api"
	"github.com/fragmede/hackers/internal/comments"
	"github.com/fragmede/hackers/internal/voting"
)

// commentVote exposes one comment of a tree to the vote coordinator.
type commentVote struct {
	tree *comments.Tree
	id   int
}

func (c commentVote) VoteID() int { return c.id }

func (c commentVote) VoteFields() voting.Fields {
	cm, err := c.tree.Comment(c.id)
	if err != nil {
		return voting.Fields{}
	}
	return voting.Fields{Upvoted: cm.Upvoted, Score: cm.Score, UpvoteURL: cm.UpvoteURL}
}

func (c commentVote) SetVoteFields(f voting.Fields) {
	_ = c.tree.SetVote(c.id, f.Upvoted, f.Score)
}

// postVote exposes the page's story to the vote coordinator.
type postVote struct {
	post *api.Post
}

func (p postVote) VoteID() int { return p.post.ID }

func (p postVote) VoteFields() voting.Fields {
	return voting.Fields{Upvoted: p.post.Upvoted, Score: p.post.Score, UpvoteURL: p.post.UpvoteURL}
}

func (p postVote) SetVoteFields(f voting.Fields) {
	p.post.Upvoted = f.Upvoted
	p.post.Score = f.Score
}
