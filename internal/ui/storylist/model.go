package storylist

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/fragmede/hackers/internal/api"
	"github.com/fragmede/hackers/internal/cache"
	"github.com/fragmede/hackers/internal/config"
	"github.com/fragmede/hackers/internal/ui/keys"
	"github.com/fragmede/hackers/internal/ui/messages"
)

// Model is the story list view.
type Model struct {
	list      list.Model
	storyType api.StoryType
	client    *api.Client
	cache     *cache.DB
	cfg       config.Config
	log       zerolog.Logger
	loading   bool
}

// New creates a new story list model.
func New(cfg config.Config, client *api.Client, db *cache.DB, log zerolog.Logger) Model {
	l := list.New(nil, Delegate{}, 0, 0)
	l.Title = storyTypeTitle(api.StoryTypeTop)
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)

	return Model{
		list:      l,
		storyType: api.StoryTypeTop,
		client:    client,
		cache:     db,
		cfg:       cfg,
		log:       log.With().Str("component", "storylist").Logger(),
		loading:   true,
	}
}

// Init loads the initial story list.
func (m Model) Init() tea.Cmd {
	return m.load(false)
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(w, h int) {
	m.list.SetSize(w, h)
}

// Filtering reports whether the filter prompt has focus.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.StoriesLoadedMsg:
		if msg.StoryType != m.storyType {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.list.Title = storyTypeTitle(m.storyType) + " (error)"
			return m, func() tea.Msg {
				return messages.StatusMsg{Text: msg.Err.Error(), IsError: true}
			}
		}
		items := make([]list.Item, 0, len(msg.Items))
		for i, item := range msg.Items {
			if item != nil {
				items = append(items, StoryItem{Item: item, Rank: i})
			}
		}
		m.list.Title = storyTypeTitle(m.storyType)
		return m, m.list.SetItems(items)

	case messages.SwitchTabMsg:
		if msg.StoryType == m.storyType && !m.loading {
			return m, nil
		}
		m.storyType = msg.StoryType
		m.list.Title = storyTypeTitle(m.storyType) + " (loading...)"
		m.list.ResetSelected()
		m.loading = true
		return m, m.load(false)

	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, keys.Keys.Enter):
			if item, ok := m.list.SelectedItem().(StoryItem); ok {
				id := item.Item.ID
				return m, func() tea.Msg { return messages.OpenStoryMsg{StoryID: id} }
			}
			return m, nil
		case key.Matches(msg, keys.Keys.OpenURL):
			if item, ok := m.list.SelectedItem().(StoryItem); ok && item.Item.URL != "" {
				u := item.Item.URL
				return m, func() tea.Msg { return messages.OpenURLMsg{URL: u} }
			}
			return m, nil
		case key.Matches(msg, keys.Keys.Refresh), key.Matches(msg, keys.Keys.Reload):
			m.loading = true
			m.list.Title = storyTypeTitle(m.storyType) + " (refreshing...)"
			return m, m.load(true)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the story list.
func (m Model) View() string {
	return m.list.View()
}

// StoryType returns the current story type.
func (m Model) StoryType() api.StoryType {
	return m.storyType
}

// load reads the feed from the cache when fresh, else from the API. With
// force the cached list is dropped first.
func (m Model) load(force bool) tea.Cmd {
	st := m.storyType
	client, db, cfg, log := m.client, m.cache, m.cfg, m.log

	return func() tea.Msg {
		if force {
			if err := db.InvalidateStoryList(st); err != nil {
				log.Warn().Err(err).Str("feed", string(st)).Msg("invalidate story list")
			}
		}
		ids, fresh, err := db.GetStoryList(st, cfg.StoryListTTL)
		if err != nil {
			log.Warn().Err(err).Str("feed", string(st)).Msg("reading cached story list")
		}
		if fresh && len(ids) > 0 {
			return loadFromCache(st, ids, client, db, cfg)
		}
		return fetchAndCache(st, client, db, cfg, log, ids)
	}
}

// loadFromCache resolves ids from the item cache, fetching any that are
// missing or stale.
func loadFromCache(st api.StoryType, ids []int, client *api.Client, db *cache.DB, cfg config.Config) messages.StoriesLoadedMsg {
	ids = ids[:min(cfg.FetchPageSize, len(ids))]
	items := make([]*api.Item, len(ids))
	var missing []int
	for i, id := range ids {
		item, fresh, _ := db.GetItem(id, cfg.ItemTTL)
		items[i] = item
		if item == nil || !fresh {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return messages.StoriesLoadedMsg{StoryType: st, Items: items}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()
	fetched, err := client.BatchGetItems(ctx, missing)
	if err != nil {
		// Serve what the cache had.
		return messages.StoriesLoadedMsg{StoryType: st, Items: items}
	}
	_ = db.PutItems(fetched)
	byID := make(map[int]*api.Item, len(fetched))
	for _, it := range fetched {
		if it != nil {
			byID[it.ID] = it
		}
	}
	for i, id := range ids {
		if it, ok := byID[id]; ok {
			items[i] = it
		}
	}
	return messages.StoriesLoadedMsg{StoryType: st, Items: items}
}

func fetchAndCache(st api.StoryType, client *api.Client, db *cache.DB, cfg config.Config, log zerolog.Logger, fallbackIDs []int) messages.StoriesLoadedMsg {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	ids, err := client.GetStoryIDs(ctx, st)
	if err != nil {
		if len(fallbackIDs) > 0 {
			log.Warn().Err(err).Str("feed", string(st)).Msg("serving stale story list")
			return loadFromCache(st, fallbackIDs, client, db, cfg)
		}
		return messages.StoriesLoadedMsg{StoryType: st, Err: err}
	}
	if err := db.PutStoryList(st, ids); err != nil {
		log.Warn().Err(err).Msg("caching story list")
	}

	items, err := client.BatchGetItems(ctx, ids[:min(cfg.FetchPageSize, len(ids))])
	if err != nil {
		return messages.StoriesLoadedMsg{StoryType: st, Err: err}
	}
	if err := db.PutItems(items); err != nil {
		log.Warn().Err(err).Msg("caching items")
	}
	return messages.StoriesLoadedMsg{StoryType: st, Items: items}
}

func storyTypeTitle(st api.StoryType) string {
	switch st {
	case api.StoryTypeTop:
		return "Top Stories"
	case api.StoryTypeNew:
		return "New"
	case api.StoryTypeBest:
		return "Best Stories"
	case api.StoryTypeAsk:
		return "Ask HN"
	case api.StoryTypeShow:
		return "Show HN"
	case api.StoryTypeJobs:
		return "Jobs"
	default:
		return "Hacker News"
	}
}
