package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/fragmede/hackers/internal/api"
	"github.com/fragmede/hackers/internal/auth"
	"github.com/fragmede/hackers/internal/cache"
	"github.com/fragmede/hackers/internal/config"
	"github.com/fragmede/hackers/internal/logging"
	"github.com/fragmede/hackers/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "creating cache dir: %v\n", err)
		os.Exit(1)
	}

	log, logFile, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging disabled: %v\n", err)
	}
	defer logFile.Close()

	db, err := cache.Open(cfg.DBPath, log)
	if err != nil {
		log.Error().Err(err).Msg("opening cache")
		fmt.Fprintf(os.Stderr, "opening cache: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	session := auth.NewSession(
		auth.WithBaseURL(cfg.HNBaseURL),
		auth.WithPath(cfg.SessionPath),
		auth.WithTimeout(cfg.RequestTimeout),
		auth.WithLogger(log),
	)
	// Page scrapes share the session's cookies so vote links are present.
	client := api.NewClient(
		api.WithHTTPClient(session.HTTPClient()),
		api.WithBaseURLs(cfg.APIBaseURL, cfg.HNBaseURL),
		api.WithLogger(log),
	)

	go prefetch(cfg, client, db, log)

	app := ui.NewApp(cfg, client, db, session, log)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	app.SetProgram(p)
	log.Info().Msg("starting")
	if _, err := p.Run(); err != nil {
		log.Error().Err(err).Msg("program exited")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// prefetch drops expired cache rows and warms the cache for the feeds behind
// the other tabs.
func prefetch(cfg config.Config, client *api.Client, db *cache.DB, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*cfg.RequestTimeout)
	defer cancel()

	if n, err := db.Prune(cfg.CacheMaxAge); err != nil {
		log.Warn().Err(err).Msg("pruning cache")
	} else if n > 0 {
		log.Info().Int64("rows", n).Msg("pruned cache")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(2)
	for _, st := range api.StoryTypes[1:] {
		g.Go(func() error {
			if _, fresh, _ := db.GetStoryList(st, cfg.StoryListTTL); fresh {
				return nil
			}
			ids, err := client.GetStoryIDs(ctx, st)
			if err != nil {
				log.Debug().Err(err).Str("feed", string(st)).Msg("prefetch")
				return nil
			}
			if err := db.PutStoryList(st, ids); err != nil {
				return err
			}
			items, err := client.BatchGetItems(ctx, ids[:min(cfg.FetchPageSize, len(ids))])
			if err != nil {
				return nil
			}
			return db.PutItems(items)
		})
	}
	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Msg("prefetch failed")
	}
}
