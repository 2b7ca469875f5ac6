package storyview

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/fragmede/hackers/internal/api"
	"github.com/fragmede/hackers/internal/cache"
	"github.com/fragmede/hackers/internal/comments"
	"github.com/fragmede/hackers/internal/config"
	"github.com/fragmede/hackers/internal/ui/keys"
	"github.com/fragmede/hackers/internal/ui/messages"
	"github.com/fragmede/hackers/internal/voting"
)

const scrollStep = 3

type commentOffset struct {
	startLine int
	endLine   int
}

// Model is the story detail view: the post, its comment tree and the vote
// affordances.
type Model struct {
	storyID  int
	page     *api.Page
	tree     *comments.Tree
	visible  []comments.Comment
	offsets  []commentOffset
	selected int

	votes    *voting.Coordinator
	viewport viewport.Model
	help     help.Model
	client   *api.Client
	cache    *cache.DB
	cfg      config.Config
	log      zerolog.Logger
	username string
	loading  bool
	stale    bool
	err      error
	width    int
	height   int
}

// New creates a story view for storyID. votes is owned by this view.
func New(storyID int, cfg config.Config, client *api.Client, db *cache.DB, votes *voting.Coordinator, username string, log zerolog.Logger) Model {
	vp := viewport.New(0, 0)
	vp.SetContent("  Loading...")

	return Model{
		storyID:  storyID,
		votes:    votes,
		viewport: vp,
		help:     help.New(),
		client:   client,
		cache:    db,
		cfg:      cfg,
		log:      log.With().Str("component", "storyview").Int("story", storyID).Logger(),
		username: username,
		loading:  true,
	}
}

// Init loads the page, from the cache when fresh.
func (m Model) Init() tea.Cmd {
	return m.load(false)
}

// Reload refetches the page from HN and drops stored vote errors.
func (m *Model) Reload() tea.Cmd {
	m.loading = true
	m.votes.ClearError(m.storyID)
	for _, c := range m.visible {
		m.votes.ClearError(c.ID)
	}
	return m.load(true)
}

// StoryID returns the item this view shows.
func (m Model) StoryID() int {
	return m.storyID
}

// SetUser updates the logged-in user seen by the vote keys.
func (m *Model) SetUser(username string) {
	m.username = username
}

// SetSize updates viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.help.Width = w
	m.resizeViewport()
	m.rebuildContent()
}

func (m *Model) resizeViewport() {
	m.viewport.Height = max(m.height-lipgloss.Height(m.renderHeader()), 1)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.PageLoadedMsg:
		if msg.StoryID != m.storyID {
			return m, nil
		}
		m.loading = false
		m.err = msg.Err
		if msg.Page == nil {
			m.rebuildContent()
			return m, status("Error loading story: "+msg.Err.Error(), true)
		}
		m.setPage(msg.Page)
		m.stale = msg.Stale
		if msg.Stale {
			return m, status("Offline: showing cached copy", true)
		}
		return m, nil

	case messages.VoteResultMsg:
		return m.finishVote(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	k := keys.Keys
	switch {
	case key.Matches(msg, k.Down):
		if off, ok := m.selectedOffset(); ok && off.endLine >= m.viewport.YOffset+m.viewport.Height {
			// Long comment: scroll through it before moving on.
			m.viewport.SetYOffset(m.viewport.YOffset + scrollStep)
			return m, nil
		}
		if m.selected < len(m.visible)-1 {
			m.selected++
			m.rebuildContent()
			m.scrollToCursor()
		}
		return m, nil

	case key.Matches(msg, k.Up):
		if off, ok := m.selectedOffset(); ok && off.startLine < m.viewport.YOffset {
			m.viewport.SetYOffset(max(m.viewport.YOffset-scrollStep, off.startLine))
			return m, nil
		}
		if m.selected > 0 {
			m.selected--
			m.rebuildContent()
			m.scrollToCursor()
		}
		return m, nil

	case key.Matches(msg, k.Toggle):
		c, ok := m.selectedComment()
		if !ok {
			return m, nil
		}
		tg, err := m.tree.Toggle(c.ID)
		if err != nil {
			return m, status(err.Error(), true)
		}
		// Only rows after the toggled comment change, so the cursor index
		// stays put.
		m.visible = m.tree.Visible()
		m.rebuildContent()
		if tg.State == comments.Visible {
			m.reveal(tg.Indices)
		}
		m.scrollToCursor()
		if tg.State == comments.CollapsedRoot && len(tg.Indices) > 0 {
			return m, status(fmt.Sprintf("%d hidden", len(tg.Indices)), false)
		}
		return m, nil

	case key.Matches(msg, k.FoldAll):
		if m.tree == nil {
			return m, nil
		}
		if m.tree.HasExpanded() {
			m.tree.CollapseAll()
			m.refresh(0)
			m.viewport.GotoTop()
			return m, nil
		}
		c, _ := m.selectedComment()
		m.tree.ExpandAll()
		m.refresh(c.ID)
		m.scrollToCursor()
		return m, nil

	case key.Matches(msg, k.Parent):
		if c, ok := m.selectedComment(); ok {
			if pid, ok := m.tree.Parent(c.ID); ok {
				m.refresh(pid)
				m.scrollToCursor()
			}
		}
		return m, nil

	case key.Matches(msg, k.NextSib):
		if c, ok := m.selectedComment(); ok {
			if sid, ok := m.tree.NextSibling(c.ID); ok {
				m.refresh(sid)
				m.scrollToCursor()
			}
		}
		return m, nil

	case key.Matches(msg, k.Home):
		m.selected = 0
		m.rebuildContent()
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, k.End):
		if len(m.visible) > 0 {
			m.selected = len(m.visible) - 1
			m.rebuildContent()
			m.viewport.GotoBottom()
		}
		return m, nil

	case key.Matches(msg, k.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, k.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, k.Upvote):
		if c, ok := m.selectedComment(); ok {
			return m.startVote(commentVote{tree: m.tree, id: c.ID})
		}
		return m, nil

	case key.Matches(msg, k.UpvoteStory):
		if m.page != nil {
			return m.startVote(postVote{post: &m.page.Post})
		}
		return m, nil

	case key.Matches(msg, k.Reload):
		cmd := m.Reload()
		return m, cmd

	case key.Matches(msg, k.OpenURL):
		if m.page != nil && m.page.Post.URL != "" {
			u := m.page.Post.URL
			return m, func() tea.Msg { return messages.OpenURLMsg{URL: u} }
		}
		return m, nil
	}
	return m, nil
}

// startVote applies an optimistic upvote and returns the command that
// submits it.
func (m Model) startVote(item voting.Item) (Model, tea.Cmd) {
	st := m.votes.State(item)
	switch {
	case st.IsVoting:
		return m, nil
	case st.IsUpvoted:
		return m, status("Already upvoted", false)
	case m.username == "":
		return m, func() tea.Msg { return messages.OpenLoginMsg{} }
	case !st.CanVote:
		return m, status("Voting is not available for this item", false)
	}

	t, ok := m.votes.Begin(item)
	if !ok {
		return m, nil
	}
	m.rebuildContent()

	votes, storyID, timeout := m.votes, m.storyID, m.cfg.RequestTimeout
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return messages.VoteResultMsg{StoryID: storyID, Ticket: t, Err: votes.Submit(ctx, t)}
	}
}

func (m Model) finishVote(msg messages.VoteResultMsg) (Model, tea.Cmd) {
	if msg.StoryID != m.storyID || m.page == nil {
		return m, nil
	}
	item := m.voteItem(msg.Ticket.ItemID)
	if item == nil {
		return m, nil
	}

	err := m.votes.Finish(item, msg.Ticket, msg.Err)
	m.rebuildContent()
	if err == nil {
		// The cached page still has the old vote link and score.
		if cerr := m.cache.InvalidateCommentPage(m.storyID); cerr != nil {
			m.log.Warn().Err(cerr).Msg("invalidating page after vote")
		}
		if msg.Ticket.ItemID == m.storyID {
			// Story list rows read the item's score from the cache.
			if cerr := m.cache.InvalidateItem(m.storyID); cerr != nil {
				m.log.Warn().Err(cerr).Msg("invalidating story after vote")
			}
		}
		return m, status("Upvoted", false)
	}

	var verr *voting.Error
	if errors.As(err, &verr) && verr.Kind == voting.KindUnauthenticated {
		m.username = ""
		return m, status("Session expired, please log in again", true)
	}
	return m, status("Vote failed: "+msg.Err.Error(), true)
}

func (m Model) voteItem(id int) voting.Item {
	if id == m.page.Post.ID {
		return postVote{post: &m.page.Post}
	}
	if m.tree != nil {
		if _, ok := m.tree.Index(id); ok {
			return commentVote{tree: m.tree, id: id}
		}
	}
	return nil
}

// View renders the story view.
func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.viewport.View())
}

// Page returns the loaded page, or nil.
func (m Model) Page() *api.Page {
	return m.page
}

func (m *Model) setPage(page *api.Page) {
	keep := 0
	if c, ok := m.selectedComment(); ok {
		keep = c.ID
	}
	m.page = page
	m.tree = comments.New(page.Comments)
	m.resizeViewport()
	m.refresh(keep)
}

// refresh recomputes the visible rows and moves the cursor to id when it is
// shown, clamping otherwise.
func (m *Model) refresh(id int) {
	if m.tree == nil {
		m.visible = nil
	} else {
		m.visible = m.tree.Visible()
	}
	for i, c := range m.visible {
		if c.ID == id {
			m.selected = i
			break
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = len(m.visible) - 1
	}
	if m.selected < 0 || id == 0 {
		m.selected = 0
	}
	m.rebuildContent()
}

func (m Model) selectedComment() (comments.Comment, bool) {
	if m.selected < 0 || m.selected >= len(m.visible) {
		return comments.Comment{}, false
	}
	// visible is a snapshot; read through the tree for current vote state.
	c, err := m.tree.Comment(m.visible[m.selected].ID)
	return c, err == nil
}

func (m Model) selectedOffset() (commentOffset, bool) {
	if m.selected < 0 || m.selected >= len(m.offsets) {
		return commentOffset{}, false
	}
	return m.offsets[m.selected], true
}

// reveal scrolls down so the rows at the given visible indices are on
// screen, as far as that keeps the cursor row in view.
func (m *Model) reveal(rows []int) {
	if len(rows) == 0 {
		return
	}
	last := rows[len(rows)-1]
	cur, ok := m.selectedOffset()
	if !ok || last >= len(m.offsets) {
		return
	}
	bottom := m.offsets[last].endLine
	if bottom < m.viewport.YOffset+m.viewport.Height {
		return
	}
	m.viewport.SetYOffset(min(bottom-m.viewport.Height+1, cur.startLine))
}

func (m *Model) scrollToCursor() {
	off, ok := m.selectedOffset()
	if !ok {
		return
	}
	if off.startLine < m.viewport.YOffset || off.startLine >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(off.startLine)
	}
}

// load returns the command that fetches the page. Fresh cache entries are
// used unless force is set; an expired entry is still served if HN cannot
// be reached.
func (m Model) load(force bool) tea.Cmd {
	id, client, db, cfg, log := m.storyID, m.client, m.cache, m.cfg, m.log
	return func() tea.Msg {
		cached, fresh, err := db.GetCommentPage(id, cfg.CommentTTL)
		if err != nil {
			log.Warn().Err(err).Msg("reading cached page")
		}
		if cached != nil && fresh && !force {
			return messages.PageLoadedMsg{StoryID: id, Page: cached}
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		defer cancel()
		page, err := client.GetItemPage(ctx, id)
		if err != nil {
			if cached != nil {
				return messages.PageLoadedMsg{StoryID: id, Page: cached, Stale: true, Err: err}
			}
			return messages.PageLoadedMsg{StoryID: id, Err: err}
		}
		if err := db.PutCommentPage(page); err != nil {
			log.Warn().Err(err).Msg("caching page")
		}
		return messages.PageLoadedMsg{StoryID: id, Page: page}
	}
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg { return messages.StatusMsg{Text: text, IsError: isErr} }
}
