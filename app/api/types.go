package api

import (
	"context"

	"github.com/lysyi3m/rss-hub/app/database"
	"github.com/lysyi3m/rss-hub/app/feed"
	"github.com/lysyi3m/rss-hub/app/ingest"
	"github.com/lysyi3m/rss-hub/app/tasks"
)

// FeedValidator fetches a feed to check that a new source is usable
type FeedValidator interface {
	Fetch(ctx context.Context, feedURL string) (*feed.Result, error)
}

var _ FeedValidator = (*feed.Fetcher)(nil)

type Handler struct {
	sourceRepo  database.SourceRepository
	articleRepo database.ArticleRepository
	validator   FeedValidator
	scheduler   tasks.TaskSchedulerInterface
}

type createSourceRequest struct {
	Name     string `json:"name" binding:"required"`
	URL      string `json:"url"`
	FeedURL  string `json:"feed_url" binding:"required"`
	Category string `json:"category"`
}

type updateSourceRequest struct {
	Active *bool `json:"active" binding:"required"`
}

type refreshResponse struct {
	Message string `json:"message"`
	ingest.RunSummary
}

type statsResponse struct {
	TotalArticles  int `json:"totalArticles"`
	UnreadArticles int `json:"unreadArticles"`
	TotalSources   int `json:"totalSources"`
}
