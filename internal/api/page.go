package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/fragmede/hackers/internal/comments"
)

// GetItemPage scrapes /item?id=N. Concurrent requests for the same id share
// one fetch.
func (c *Client) GetItemPage(ctx context.Context, id int) (*Page, error) {
	v, err, shared := c.pages.Do(strconv.Itoa(id), func() (any, error) {
		url := fmt.Sprintf("%s/item?id=%d", c.siteURL, id)
		body, err := c.fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		return ParseItemPage(body)
	})
	if err != nil {
		return nil, fmt.Errorf("item page %d: %w", id, err)
	}
	page := v.(*Page)
	c.log.Debug().Int("item", id).Int("comments", len(page.Comments)).Bool("shared", shared).Msg("item page loaded")
	if shared {
		// Callers own their page; hand out a copy.
		cp := *page
		cp.Comments = append([]comments.Comment(nil), page.Comments...)
		return &cp, nil
	}
	return page, nil
}

// ParseItemPage extracts the post and its comment rows from an HN item page.
func ParseItemPage(r io.Reader) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing item page: %w", err)
	}

	page := &Page{}
	found := false
	walk(doc, func(n *html.Node) bool {
		if n.DataAtom != atom.Tr || !hasClass(n, "athing") {
			return true
		}
		id, err := strconv.Atoi(attr(n, "id"))
		if err != nil {
			return false
		}
		if hasClass(n, "comtr") {
			page.Comments = append(page.Comments, parseComment(n, id))
			return false
		}
		if !found {
			page.Post = parsePost(n, id)
			found = true
		}
		return false
	})

	if !found {
		if strings.Contains(textOf(doc), "No such item.") {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("no item found on page")
	}
	return page, nil
}

func parsePost(row *html.Node, id int) Post {
	p := Post{ID: id}
	p.UpvoteURL, p.Upvoted = voteLink(row, id)

	if a := find(row, func(n *html.Node) bool {
		return n.DataAtom == atom.A && n.Parent != nil && hasClass(n.Parent, "titleline")
	}); a != nil {
		p.Title = textOf(a)
		p.URL = attr(a, "href")
	}

	// Story rows are followed by a subtext row; a comment opened on its own
	// page keeps its comhead and text inside the same row.
	meta := nextElement(row)
	if findClass(row, "hnuser") != nil || meta == nil {
		meta = row
	}
	if t := findClass(row, "commtext"); t != nil {
		p.Text = innerHTML(t)
	}
	if s := findClass(meta, "score"); s != nil {
		p.Score = parsePoints(textOf(s))
	}
	if a := findClass(meta, "hnuser"); a != nil {
		p.Author = textOf(a)
	}
	if s := findClass(meta, "age"); s != nil {
		p.Age, p.Time = parseAge(s)
	}
	if _, unvoted := findID(meta, fmt.Sprintf("un_%d", id)); unvoted {
		p.Upvoted = true
	}
	walk(meta, func(n *html.Node) bool {
		if n.DataAtom == atom.A {
			if t := textOf(n); strings.HasSuffix(t, "comments") || strings.HasSuffix(t, "comment") {
				p.Comments, _ = strconv.Atoi(strings.Fields(t)[0])
			}
		}
		return true
	})

	// Ask HN text sits in a later row of the fat item table.
	if table := ancestor(row, atom.Table); table != nil {
		if t := findClass(table, "toptext"); t != nil {
			p.Text = innerHTML(t)
		}
	}
	return p
}

func parseComment(row *html.Node, id int) comments.Comment {
	c := comments.Comment{ID: id}
	if ind := findClass(row, "ind"); ind != nil {
		c.Depth, _ = strconv.Atoi(attr(ind, "indent"))
	}
	c.UpvoteURL, c.Upvoted = voteLink(row, id)
	if _, unvoted := findID(row, fmt.Sprintf("un_%d", id)); unvoted {
		c.Upvoted = true
	}
	if a := findClass(row, "hnuser"); a != nil {
		c.Author = textOf(a)
	}
	if s := findClass(row, "age"); s != nil {
		c.Age, c.Time = parseAge(s)
	}
	if s := findClass(row, "score"); s != nil {
		c.Score = parsePoints(textOf(s))
	}
	if t := findClass(row, "commtext"); t != nil {
		c.Text = innerHTML(t)
	}

	if head := findClass(row, "comhead"); head != nil {
		h := textOf(head)
		c.Deleted = strings.Contains(h, "[deleted]")
		c.Dead = strings.Contains(h, "[dead]") || strings.Contains(h, "[flagged]")
	}
	return c
}

// voteLink returns the up-arrow href for id. HN keeps the arrow in the page
// after a vote but hides it with the "nosee" class.
func voteLink(row *html.Node, id int) (string, bool) {
	a, ok := findID(row, fmt.Sprintf("up_%d", id))
	if !ok {
		return "", false
	}
	if hasClass(a, "nosee") {
		return "", true
	}
	return attr(a, "href"), false
}

func parseAge(n *html.Node) (string, int64) {
	text := textOf(n)
	// title="2024-01-02T03:04:05 1704164645"
	fields := strings.Fields(attr(n, "title"))
	if len(fields) < 2 {
		return text, 0
	}
	ts, _ := strconv.ParseInt(fields[len(fields)-1], 10, 64)
	return text, ts
}

func parsePoints(s string) *int {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil
	}
	return &n
}

// walk visits n and its descendants depth-first. Returning false from fn
// skips the node's children.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if n.Type == html.ElementNode && !fn(n) {
		return
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		walk(ch, fn)
	}
}

func find(root *html.Node, match func(*html.Node) bool) *html.Node {
	var out *html.Node
	walk(root, func(n *html.Node) bool {
		if out != nil {
			return false
		}
		if match(n) {
			out = n
			return false
		}
		return true
	})
	return out
}

func findClass(root *html.Node, class string) *html.Node {
	return find(root, func(n *html.Node) bool { return hasClass(n, class) })
}

func findID(root *html.Node, id string) (*html.Node, bool) {
	n := find(root, func(n *html.Node) bool { return attr(n, "id") == id })
	return n, n != nil
}

func nextElement(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

func ancestor(n *html.Node, a atom.Atom) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.DataAtom == a {
			return p
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			collect(ch)
		}
	}
	collect(n)
	return strings.TrimSpace(sb.String())
}

// innerHTML serializes the children of n, dropping HN's trailing reply link
// container if it is nested inside.
func innerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == html.ElementNode && hasClass(ch, "reply") {
			continue
		}
		_ = html.Render(&buf, ch)
	}
	return strings.TrimSpace(buf.String())
}
