package storyview

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/hackers/internal/comments"
	"github.com/fragmede/hackers/internal/render"
	"github.com/fragmede/hackers/internal/ui/keys"
	"github.com/fragmede/hackers/internal/ui/theme"
	"github.com/fragmede/hackers/internal/voting"
)

const maxIndent = 30

func (m *Model) rebuildContent() {
	if len(m.visible) == 0 {
		m.offsets = nil
		switch {
		case m.loading:
			m.viewport.SetContent("  Loading comments...")
		case m.page == nil && m.err != nil:
			m.viewport.SetContent("  " + theme.Error.Render(m.err.Error()))
		default:
			m.viewport.SetContent("  No comments yet.")
		}
		return
	}

	var sb strings.Builder
	m.offsets = make([]commentOffset, len(m.visible))
	availWidth := max(m.width-4, 20)
	op := ""
	if m.page != nil {
		op = m.page.Post.Author
	}

	line := 0
	for i, snap := range m.visible {
		start := line
		c, err := m.tree.Comment(snap.ID)
		if err != nil {
			c = snap
		}
		indent := min(c.Depth*2, maxIndent)
		prefix := strings.Repeat(" ", indent)
		selected := i == m.selected

		barColor := theme.DepthColors[c.Depth%len(theme.DepthColors)]
		if selected {
			barColor = theme.Orange
		}
		prefix += lipgloss.NewStyle().Foreground(barColor).Render("│") + " "

		emit := func(s string) {
			s = prefix + s
			if selected {
				s = theme.Selected.Render(s)
			}
			sb.WriteString(s + "\n")
			line++
		}

		switch {
		case c.Deleted:
			emit(theme.Deleted.Render("[deleted]"))
		case c.Dead && c.Text == "":
			emit(theme.Deleted.Render("[flagged]"))
		default:
			emit(m.commentHeader(c, op))
			if c.Visibility != comments.CollapsedRoot {
				for _, l := range strings.Split(render.HNToText(c.Text, max(availWidth-indent-4, 20)), "\n") {
					emit(l)
				}
			}
		}
		sb.WriteString("\n")
		line++
		m.offsets[i] = commentOffset{startLine: start, endLine: line - 1}
	}
	m.viewport.SetContent(sb.String())
}

func (m Model) commentHeader(c comments.Comment, op string) string {
	parts := []string{theme.Author.Render(c.Author)}
	parts = append(parts, theme.Dim.Render(age(c.Age, c.Time)))
	if c.Score != nil {
		parts = append(parts, theme.Dim.Render(points(*c.Score)))
	}
	if c.Author != "" && c.Author == op {
		parts = append(parts, theme.OPBadge.Render(" OP "))
	}
	if badge := voteBadge(m.votes.State(commentVote{tree: m.tree, id: c.ID})); badge != "" {
		parts = append(parts, badge)
	}
	if c.Visibility == comments.CollapsedRoot {
		parts = append(parts, theme.Dim.Render(fmt.Sprintf("[+%d]", m.tree.DescendantCount(c.ID))))
	}
	if c.Dead {
		parts = append(parts, theme.Deleted.Render("[dead]"))
	}
	return strings.Join(parts, " ")
}

func (m Model) renderHeader() string {
	if m.page == nil {
		if m.loading {
			return theme.Title.Padding(0, 1).Render("Loading...")
		}
		return theme.Title.Padding(0, 1).Render(fmt.Sprintf("Item %d", m.storyID))
	}

	p := m.page.Post
	var parts []string
	if p.Title != "" {
		parts = append(parts, theme.Title.Padding(0, 1).Render(p.Title))
	}

	meta := make([]string, 0, 6)
	if badge := voteBadge(m.votes.State(postVote{post: &m.page.Post})); badge != "" {
		meta = append(meta, badge)
	}
	if p.Score != nil {
		meta = append(meta, points(*p.Score))
	}
	if p.Author != "" {
		meta = append(meta, "by "+p.Author)
	}
	meta = append(meta, age(p.Age, p.Time))
	if p.Title != "" {
		meta = append(meta, fmt.Sprintf("%d comments", p.Comments))
	}
	if host := render.Host(p.URL); host != "" {
		meta = append(meta, host)
	}
	if m.stale {
		meta = append(meta, theme.Error.Render("offline"))
	}
	parts = append(parts, theme.Meta.Padding(0, 1).Render(strings.Join(meta, " | ")))

	if p.Text != "" {
		parts = append(parts, theme.Meta.Padding(0, 1).Render(render.HNToText(p.Text, max(m.width-4, 20))))
	}

	parts = append(parts, theme.Separator.Render(strings.Repeat("─", max(m.width, 0))))
	parts = append(parts, m.help.View(keys.StoryHelp{}))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// voteBadge draws the vote affordance for st.
func voteBadge(st voting.State) string {
	switch {
	case st.IsVoting:
		return theme.VotePending.Render("▲ voting…")
	case st.IsUpvoted:
		return theme.Voted.Render("✓")
	case st.Err != nil:
		return theme.Error.Render("▲ " + voteErrorLabel(st.Err))
	case st.CanVote:
		return theme.VoteArrow.Render("▲")
	default:
		return ""
	}
}

func voteErrorLabel(err error) string {
	var verr *voting.Error
	if !errors.As(err, &verr) {
		return "vote failed"
	}
	switch verr.Kind {
	case voting.KindUnauthenticated:
		return "login required"
	case voting.KindNetwork:
		return "network error"
	default:
		return "vote failed"
	}
}

func age(text string, unix int64) string {
	if unix > 0 {
		return render.TimeAgo(unix)
	}
	return text
}

func points(n int) string {
	if n == 1 {
		return "1 point"
	}
	return fmt.Sprintf("%d points", n)
}
