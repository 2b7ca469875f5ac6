package comments

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an id is not part of the tree.
	ErrNotFound = errors.New("comment not found")
	// ErrHidden is returned when toggling a comment that a collapsed ancestor hides.
	ErrHidden = errors.New("comment is hidden by a collapsed ancestor")
)

// Visibility is the display state of a single comment.
type Visibility int

const (
	// Visible comments are shown with their text.
	Visible Visibility = iota
	// CollapsedRoot comments are shown compactly; their descendants are hidden.
	CollapsedRoot
	// HiddenChild comments are not shown because an ancestor is collapsed.
	HiddenChild
)

func (v Visibility) String() string {
	switch v {
	case Visible:
		return "visible"
	case CollapsedRoot:
		return "collapsed"
	case HiddenChild:
		return "hidden"
	default:
		return fmt.Sprintf("Visibility(%d)", int(v))
	}
}

// Comment is one row of a discussion as scraped from an item page.
type Comment struct {
	ID         int        `json:"id"`
	Depth      int        `json:"depth"`
	Author     string     `json:"author"`
	Age        string     `json:"age"`
	Time       int64      `json:"time"`
	Text       string     `json:"text"` // raw HN HTML
	UpvoteURL  string     `json:"upvote_url,omitempty"`
	Upvoted    bool       `json:"upvoted"`
	Score      *int       `json:"score,omitempty"`
	Dead       bool       `json:"dead,omitempty"`
	Deleted    bool       `json:"deleted,omitempty"`
	Visibility Visibility `json:"-"`
}

// Toggle describes the outcome of collapsing or expanding a comment.
type Toggle struct {
	// Indices are positions in the visible list of the rows that disappeared
	// (collapse, positions before the change) or appeared (expand, positions
	// after the change).
	Indices []int
	// State is the toggled comment's new visibility.
	State Visibility
}

// Tree owns the flat, depth-ordered comment sequence of one discussion.
// The descendants of the comment at index i are the contiguous run of later
// comments whose depth is greater than comments[i].Depth.
type Tree struct {
	comments []Comment
	index    map[int]int
}

// New builds a tree from records in display order. Depths are trusted as given.
func New(records []Comment) *Tree {
	t := &Tree{
		comments: make([]Comment, len(records)),
		index:    make(map[int]int, len(records)),
	}
	copy(t.comments, records)
	for i, c := range t.comments {
		t.index[c.ID] = i
	}
	return t
}

// Len returns the number of comments, hidden ones included.
func (t *Tree) Len() int {
	return len(t.comments)
}

// At returns the comment at position i of the full sequence.
func (t *Tree) At(i int) Comment {
	return t.comments[i]
}

// Index returns the position of id in the full sequence.
func (t *Tree) Index(id int) (int, bool) {
	i, ok := t.index[id]
	return i, ok
}

// Comment returns a copy of the comment with the given id.
func (t *Tree) Comment(id int) (Comment, error) {
	i, ok := t.index[id]
	if !ok {
		return Comment{}, fmt.Errorf("comment %d: %w", id, ErrNotFound)
	}
	return t.comments[i], nil
}

// Visible returns every comment that is not hidden by a collapsed ancestor.
func (t *Tree) Visible() []Comment {
	out := make([]Comment, 0, len(t.comments))
	for _, c := range t.comments {
		if c.Visibility != HiddenChild {
			out = append(out, c)
		}
	}
	return out
}

// Toggle collapses a visible comment or expands a collapsed one.
func (t *Tree) Toggle(id int) (Toggle, error) {
	i, ok := t.index[id]
	if !ok {
		return Toggle{}, fmt.Errorf("toggle %d: %w", id, ErrNotFound)
	}
	target := &t.comments[i]
	if target.Visibility == HiddenChild {
		return Toggle{}, fmt.Errorf("toggle %d: %w", id, ErrHidden)
	}

	end := t.subtreeEnd(i)
	pos := t.visibleBefore(i) + 1
	var res Toggle

	if target.Visibility == Visible {
		target.Visibility = CollapsedRoot
		for j := i + 1; j < end; j++ {
			d := &t.comments[j]
			if d.Visibility != HiddenChild {
				res.Indices = append(res.Indices, pos)
				pos++
			}
			d.Visibility = HiddenChild
		}
		res.State = CollapsedRoot
		return res, nil
	}

	target.Visibility = Visible
	// Comments below a collapsed descendant stay hidden.
	collapsedDepth := -1
	for j := i + 1; j < end; j++ {
		d := &t.comments[j]
		if collapsedDepth >= 0 && d.Depth > collapsedDepth {
			if d.Visibility != HiddenChild {
				pos++
			}
			continue
		}
		collapsedDepth = -1

		wasHidden := d.Visibility == HiddenChild
		if d.Visibility == CollapsedRoot {
			collapsedDepth = d.Depth
		} else {
			d.Visibility = Visible
		}
		if wasHidden {
			res.Indices = append(res.Indices, pos)
		}
		pos++
	}
	res.State = Visible
	return res, nil
}

// DescendantCount returns the size of the comment's reply subtree.
func (t *Tree) DescendantCount(id int) int {
	i, ok := t.index[id]
	if !ok {
		return 0
	}
	return t.subtreeEnd(i) - i - 1
}

// Parent returns the id of the nearest preceding comment with a smaller depth.
func (t *Tree) Parent(id int) (int, bool) {
	i, ok := t.index[id]
	if !ok {
		return 0, false
	}
	depth := t.comments[i].Depth
	for j := i - 1; j >= 0; j-- {
		if t.comments[j].Depth < depth {
			return t.comments[j].ID, true
		}
	}
	return 0, false
}

// NextSibling returns the id of the next comment at the same depth under the
// same parent.
func (t *Tree) NextSibling(id int) (int, bool) {
	i, ok := t.index[id]
	if !ok {
		return 0, false
	}
	depth := t.comments[i].Depth
	for j := i + 1; j < len(t.comments); j++ {
		switch d := t.comments[j].Depth; {
		case d < depth:
			return 0, false
		case d == depth:
			return t.comments[j].ID, true
		}
	}
	return 0, false
}

// SetVote updates the vote fields of a comment in place.
func (t *Tree) SetVote(id int, upvoted bool, score *int) error {
	i, ok := t.index[id]
	if !ok {
		return fmt.Errorf("set vote %d: %w", id, ErrNotFound)
	}
	t.comments[i].Upvoted = upvoted
	t.comments[i].Score = score
	return nil
}

// HasExpanded reports whether any shown comment with replies is expanded.
func (t *Tree) HasExpanded() bool {
	for i, c := range t.comments {
		if c.Visibility == Visible && t.subtreeEnd(i) > i+1 {
			return true
		}
	}
	return false
}

// CollapseAll folds every outermost comment that has replies.
func (t *Tree) CollapseAll() {
	collapsedDepth := -1
	for i := range t.comments {
		c := &t.comments[i]
		if collapsedDepth >= 0 && c.Depth > collapsedDepth {
			c.Visibility = HiddenChild
			continue
		}
		collapsedDepth = -1
		if t.subtreeEnd(i) > i+1 {
			c.Visibility = CollapsedRoot
			collapsedDepth = c.Depth
		} else {
			c.Visibility = Visible
		}
	}
}

// ExpandAll shows every comment.
func (t *Tree) ExpandAll() {
	for i := range t.comments {
		t.comments[i].Visibility = Visible
	}
}

// subtreeEnd returns the index one past the last descendant of i.
func (t *Tree) subtreeEnd(i int) int {
	depth := t.comments[i].Depth
	j := i + 1
	for j < len(t.comments) && t.comments[j].Depth > depth {
		j++
	}
	return j
}

func (t *Tree) visibleBefore(i int) int {
	n := 0
	for j := 0; j < i; j++ {
		if t.comments[j].Visibility != HiddenChild {
			n++
		}
	}
	return n
}
