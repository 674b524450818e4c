package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/rss-hub/app/api"
	"github.com/lysyi3m/rss-hub/app/cfg"
	"github.com/lysyi3m/rss-hub/app/database"
)

type sourceCreator interface {
	CreateSource(ctx context.Context, source database.Source) (*database.Source, error)
}

// seedSources registers the default sources. Sources that already exist are left untouched.
func seedSources(ctx context.Context, repo sourceCreator, seeds []cfg.SeedSource) error {
	created := 0
	for _, seed := range seeds {
		favicon := seed.Favicon
		if favicon == "" {
			favicon = api.FaviconURL(seed.URL, seed.FeedURL)
		}

		_, err := repo.CreateSource(ctx, database.Source{
			Name:     seed.Name,
			URL:      seed.URL,
			FeedURL:  seed.FeedURL,
			Category: seed.Category,
			Favicon:  favicon,
		})
		if errors.Is(err, database.ErrConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to seed source %s: %w", seed.Name, err)
		}
		created++
	}

	if len(seeds) > 0 {
		slog.Info("Default sources registered", "total", len(seeds), "created", created)
	}

	return nil
}
