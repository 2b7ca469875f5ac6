package storylist

import (
	"fmt"
	"strings"

	"github.com/fragmede/hackers/internal/api"
	"github.com/fragmede/hackers/internal/render"
)

// StoryItem wraps an API item for the bubbles list.
type StoryItem struct {
	*api.Item
	Rank int
}

func (s StoryItem) Title() string {
	if s.Item.Title != "" {
		return s.Item.Title
	}
	return fmt.Sprintf("[%s]", s.Item.Type)
}

func (s StoryItem) Description() string {
	parts := make([]string, 0, 4)
	if s.Item.Score > 0 {
		parts = append(parts, fmt.Sprintf("%d points", s.Item.Score))
	}
	if s.Item.By != "" {
		parts = append(parts, "by "+s.Item.By)
	}
	if s.Item.Time > 0 {
		parts = append(parts, render.TimeAgo(s.Item.Time))
	}
	if s.Item.Descendants > 0 {
		parts = append(parts, fmt.Sprintf("%d comments", s.Item.Descendants))
	}

	desc := strings.Join(parts, " | ")
	if host := render.Host(s.Item.URL); host != "" {
		desc += "  (" + host + ")"
	}
	return desc
}

func (s StoryItem) FilterValue() string {
	return s.Item.Title + " " + s.Item.By
}
