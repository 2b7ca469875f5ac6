package api

import "github.com/fragmede/hackers/internal/comments"

// StoryType names an HN feed.
type StoryType string

const (
	StoryTypeTop  StoryType = "top"
	StoryTypeNew  StoryType = "new"
	StoryTypeBest StoryType = "best"
	StoryTypeAsk  StoryType = "ask"
	StoryTypeShow StoryType = "show"
	StoryTypeJobs StoryType = "jobs"
)

// StoryTypes lists the feeds in tab order.
var StoryTypes = []StoryType{
	StoryTypeTop, StoryTypeNew, StoryTypeBest,
	StoryTypeAsk, StoryTypeShow, StoryTypeJobs,
}

// Item is an HN item as served by the Firebase API.
type Item struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	By          string `json:"by"`
	Time        int64  `json:"time"`
	Text        string `json:"text"`
	Parent      int    `json:"parent"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
	Dead        bool   `json:"dead"`
	Deleted     bool   `json:"deleted"`
	Kids        []int  `json:"kids,omitempty"`
}

// Post is the head of an item page: the story (or comment) being discussed.
type Post struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Author    string `json:"author"`
	Age       string `json:"age"`
	Time      int64  `json:"time"`
	Text      string `json:"text"`
	Score     *int   `json:"score,omitempty"`
	Comments  int    `json:"comments"`
	UpvoteURL string `json:"upvote_url,omitempty"`
	Upvoted   bool   `json:"upvoted"`
}

// Page is a scraped item page: the post plus its comments in display order.
type Page struct {
	Post     Post               `json:"post"`
	Comments []comments.Comment `json:"comments"`
}

// User is a public HN profile.
type User struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
	Karma   int    `json:"karma"`
	About   string `json:"about"`
}
