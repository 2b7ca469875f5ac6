package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultAPIBaseURL  = "https://hacker-news.firebaseio.com/v0"
	DefaultSiteBaseURL = "https://news.ycombinator.com"

	requestTimeout = 10 * time.Second
	maxConcurrent  = 10
	userAgent      = "hackers/1.0"
)

// Client talks to the HN Firebase API and scrapes item pages from the site.
type Client struct {
	http    *http.Client
	apiURL  string
	siteURL string
	log     zerolog.Logger
	pages   singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient makes the client share an *http.Client, typically the
// logged-in session's so scraped pages carry vote links.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithBaseURLs overrides the Firebase API and site roots.
func WithBaseURLs(apiURL, siteURL string) Option {
	return func(c *Client) {
		c.apiURL = apiURL
		c.siteURL = siteURL
	}
}

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log.With().Str("component", "api").Logger() }
}

// NewClient creates a new HN client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: requestTimeout},
		apiURL:  DefaultAPIBaseURL,
		siteURL: DefaultSiteBaseURL,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// fetch performs a GET and returns the response body for a 200 reply.
func (c *Client) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w: %w", url, ErrNetwork, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("fetching %s: %w", url, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, url, string(body))
	}
	return resp.Body, nil
}

// get fetches a URL and decodes the JSON response into dst.
func (c *Client) get(ctx context.Context, url string, dst any) error {
	body, err := c.fetch(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return fmt.Errorf("decoding response from %s: %w", url, err)
	}
	return nil
}

// GetItem fetches a single item by ID. Firebase answers "null" for unknown
// ids, which is reported as ErrNotFound.
func (c *Client) GetItem(ctx context.Context, id int) (*Item, error) {
	url := fmt.Sprintf("%s/item/%d.json", c.apiURL, id)
	var item *Item
	if err := c.get(ctx, url, &item); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	return item, nil
}

// BatchGetItems fetches items concurrently, at most maxConcurrent at a time.
// The result is aligned with ids; items that failed to load are nil.
func (c *Client) BatchGetItems(ctx context.Context, ids []int) ([]*Item, error) {
	results := make([]*Item, len(ids))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, id := range ids {
		g.Go(func() error {
			item, err := c.GetItem(ctx, id)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				c.log.Debug().Err(err).Int("item", id).Msg("batch item failed")
				return nil
			}
			mu.Lock()
			results[i] = item
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// GetUser fetches a user profile by username.
func (c *Client) GetUser(ctx context.Context, username string) (*User, error) {
	url := fmt.Sprintf("%s/user/%s.json", c.apiURL, username)
	var user *User
	if err := c.get(ctx, url, &user); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	return user, nil
}
