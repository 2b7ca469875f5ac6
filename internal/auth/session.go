package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fragmede/hackers/internal/api"
)

const requestTimeout = 10 * time.Second

// Session holds the HN login cookie and performs authenticated actions.
type Session struct {
	client  *http.Client
	jar     *swapJar
	baseURL string
	path    string
	log     zerolog.Logger

	mu       sync.RWMutex
	username string
	loggedIn bool
}

// Option configures a Session.
type Option func(*Session)

// WithBaseURL points the session at another HN host.
func WithBaseURL(u string) Option {
	return func(s *Session) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithPath sets the file the session is persisted to.
func WithPath(path string) Option {
	return func(s *Session) { s.path = path }
}

// WithTimeout sets the HTTP timeout for session requests.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) { s.client.Timeout = d }
}

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) { s.log = log.With().Str("component", "auth").Logger() }
}

// NewSession creates a logged-out session.
func NewSession(opts ...Option) *Session {
	jar := newSwapJar()
	s := &Session{
		client:  &http.Client{Jar: jar, Timeout: requestTimeout},
		jar:     jar,
		baseURL: api.DefaultSiteBaseURL,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HTTPClient returns the cookie-carrying client so page scrapes see the
// logged-in view (vote links with auth tokens).
func (s *Session) HTTPClient() *http.Client {
	return s.client
}

// Username returns the logged-in user, or "".
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// LoggedIn reports whether the session holds a validated login.
func (s *Session) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

// Login authenticates with username and password.
func (s *Session) Login(ctx context.Context, username, password string) error {
	form := url.Values{
		"acct": {username},
		"pw":   {password},
		"goto": {"news"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w: %w", api.ErrNetwork, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if err := s.validate(ctx); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	s.mu.Lock()
	s.username = username
	s.loggedIn = true
	s.mu.Unlock()
	s.log.Info().Str("user", username).Msg("logged in")
	return nil
}

// Logout forgets the login cookie and removes the persisted session.
func (s *Session) Logout() error {
	s.jar.reset()
	s.mu.Lock()
	user := s.username
	s.username = ""
	s.loggedIn = false
	s.mu.Unlock()

	s.log.Info().Str("user", user).Msg("logged out")
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

// savedSession is the JSON structure written to disk.
type savedSession struct {
	Username string        `json:"username"`
	Cookies  []savedCookie `json:"cookies"`
	SavedAt  time.Time     `json:"saved_at"`
}

type savedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path"`
	Expires  time.Time `json:"expires"`
	Secure   bool      `json:"secure"`
	HttpOnly bool      `json:"http_only"`
}

// Save writes the login cookies to the session file.
func (s *Session) Save() error {
	if !s.LoggedIn() || s.path == "" {
		return nil
	}

	u, _ := url.Parse(s.baseURL)
	cookies := s.jar.Cookies(u)
	sc := make([]savedCookie, 0, len(cookies))
	for _, c := range cookies {
		sc = append(sc, savedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		})
	}

	data, err := json.MarshalIndent(savedSession{
		Username: s.Username(),
		Cookies:  sc,
		SavedAt:  time.Now(),
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Load restores a saved session and checks it is still accepted by HN.
// A stale session file is removed.
func (s *Session) Load(ctx context.Context) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	var saved savedSession
	if err := json.Unmarshal(data, &saved); err != nil {
		return fmt.Errorf("decoding session file: %w", err)
	}
	if saved.Username == "" || len(saved.Cookies) == 0 {
		return fmt.Errorf("session file is empty: %w", api.ErrUnauthenticated)
	}

	u, _ := url.Parse(s.baseURL)
	cookies := make([]*http.Cookie, len(saved.Cookies))
	for i, sc := range saved.Cookies {
		cookies[i] = &http.Cookie{
			Name:     sc.Name,
			Value:    sc.Value,
			Path:     sc.Path,
			Expires:  sc.Expires,
			Secure:   sc.Secure,
			HttpOnly: sc.HttpOnly,
		}
	}
	s.jar.SetCookies(u, cookies)

	if err := s.validate(ctx); err != nil {
		if errors.Is(err, api.ErrUnauthenticated) {
			_ = os.Remove(s.path)
		}
		return err
	}

	s.mu.Lock()
	s.username = saved.Username
	s.loggedIn = true
	s.mu.Unlock()
	s.log.Info().Str("user", saved.Username).Msg("session restored")
	return nil
}

func (s *Session) validate(ctx context.Context) error {
	body, _, err := s.get(ctx, s.baseURL+"/news")
	if err != nil {
		return err
	}
	if !strings.Contains(body, "logout") {
		return fmt.Errorf("no logout link found: %w", api.ErrUnauthenticated)
	}
	return nil
}

// SubmitUpvote follows an item's vote link. When upvoteURL is empty the item
// page is fetched to find it.
func (s *Session) SubmitUpvote(ctx context.Context, itemID int, upvoteURL string) error {
	if !s.LoggedIn() {
		return fmt.Errorf("upvote %d: %w", itemID, api.ErrUnauthenticated)
	}

	if upvoteURL == "" {
		link, err := s.findVoteURL(ctx, itemID)
		if err != nil {
			return err
		}
		upvoteURL = link
	}

	body, final, err := s.get(ctx, s.resolve(upvoteURL))
	if err != nil {
		return fmt.Errorf("voting on %d: %w", itemID, err)
	}
	if final != nil && strings.TrimPrefix(final.Path, "/") == "login" {
		return fmt.Errorf("vote on %d redirected to login: %w", itemID, api.ErrUnauthenticated)
	}
	if err := checkHNResponse(body); err != nil {
		return fmt.Errorf("voting on %d: %w", itemID, err)
	}
	s.log.Debug().Int("item", itemID).Msg("vote submitted")
	return nil
}

func (s *Session) findVoteURL(ctx context.Context, itemID int) (string, error) {
	body, _, err := s.get(ctx, fmt.Sprintf("%s/item?id=%d", s.baseURL, itemID))
	if err != nil {
		return "", fmt.Errorf("fetching item page: %w", err)
	}
	page, err := api.ParseItemPage(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parsing item page: %w", err)
	}
	if page.Post.ID == itemID && page.Post.UpvoteURL != "" {
		return page.Post.UpvoteURL, nil
	}
	for _, c := range page.Comments {
		if c.ID == itemID && c.UpvoteURL != "" {
			return c.UpvoteURL, nil
		}
	}
	return "", fmt.Errorf("could not find vote link for item %d", itemID)
}

func (s *Session) resolve(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return s.baseURL + "/" + strings.TrimPrefix(ref, "/")
}

// get returns the body and the final URL after redirects.
func (s *Session) get(ctx context.Context, u string) (string, *url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", api.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("reading response: %w: %w", api.ErrNetwork, err)
	}
	if resp.StatusCode >= 400 {
		return "", resp.Request.URL, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return string(body), resp.Request.URL, nil
}

// checkHNResponse looks for the plain-text error pages HN serves with a 200.
func checkHNResponse(body string) error {
	if strings.Contains(body, "You have to be logged in") {
		return api.ErrUnauthenticated
	}
	for _, errText := range []string{"Unknown.", "Please try again.", "You're submitting too fast."} {
		if strings.TrimSpace(body) == errText || strings.HasPrefix(strings.TrimSpace(body), errText) {
			return fmt.Errorf("HN error: %s", errText)
		}
	}
	return nil
}
