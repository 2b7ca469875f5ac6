package api

import (
	"context"
	"fmt"
)

var storyEndpoints = map[StoryType]string{
	StoryTypeTop:  "/topstories.json",
	StoryTypeNew:  "/newstories.json",
	StoryTypeBest: "/beststories.json",
	StoryTypeAsk:  "/askstories.json",
	StoryTypeShow: "/showstories.json",
	StoryTypeJobs: "/jobstories.json",
}

// GetStoryIDs fetches the ranked id list for a feed.
func (c *Client) GetStoryIDs(ctx context.Context, st StoryType) ([]int, error) {
	path, ok := storyEndpoints[st]
	if !ok {
		return nil, fmt.Errorf("unknown story type: %s", st)
	}
	var ids []int
	if err := c.get(ctx, c.apiURL+path, &ids); err != nil {
		return nil, fmt.Errorf("fetching %s stories: %w", st, err)
	}
	return ids, nil
}

// GetStories fetches a feed and the first limit items of it (0 = all).
func (c *Client) GetStories(ctx context.Context, st StoryType, limit int) ([]*Item, error) {
	ids, err := c.GetStoryIDs(ctx, st)
	if err != nil {
		return nil, err
	}
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	return c.BatchGetItems(ctx, ids)
}
