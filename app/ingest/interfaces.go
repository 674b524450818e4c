package ingest

import (
	"context"
	"time"

	"github.com/lysyi3m/rss-hub/app/database"
	"github.com/lysyi3m/rss-hub/app/feed"
)

// SourceStore and ArticleStore together form the dedup store gateway used by a cycle.
type SourceStore interface {
	ListActiveSources(ctx context.Context) ([]database.Source, error)
	TouchSourceLastFetched(ctx context.Context, id string, at time.Time) error
}

type ArticleStore interface {
	FindArticleByURL(ctx context.Context, url string) (*database.Article, error)
	InsertArticle(ctx context.Context, article database.Article) (*database.Article, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, feedURL string) (*feed.Result, error)
}

var (
	_ SourceStore  = (*database.SourceRepo)(nil)
	_ ArticleStore = (*database.ArticleRepo)(nil)
	_ Fetcher      = (*feed.Fetcher)(nil)
)
