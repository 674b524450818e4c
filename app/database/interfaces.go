package database

import (
	"context"
	"time"
)

type SourceRepository interface {
	ListSources(ctx context.Context) ([]Source, error)
	ListActiveSources(ctx context.Context) ([]Source, error)
	GetSource(ctx context.Context, id string) (*Source, error)
	CountActiveSources(ctx context.Context) (int, error)

	CreateSource(ctx context.Context, source Source) (*Source, error)
	SetSourceActive(ctx context.Context, id string, active bool) (*Source, error)
	TouchSourceLastFetched(ctx context.Context, id string, at time.Time) error
	DeleteSource(ctx context.Context, id string) error
}

type ArticleRepository interface {
	FindArticleByURL(ctx context.Context, url string) (*Article, error)
	GetArticle(ctx context.Context, id string) (*ArticleWithSource, error)
	ListArticles(ctx context.Context, filter ArticleFilter) ([]ArticleWithSource, error)
	SearchArticles(ctx context.Context, query string, limit int) ([]ArticleWithSource, error)
	CountArticles(ctx context.Context) (total int, unread int, err error)

	InsertArticle(ctx context.Context, article Article) (*Article, error)
	MarkArticleRead(ctx context.Context, id string) (*Article, error)
	DeleteArticlesBySource(ctx context.Context, sourceID string) (int64, error)
}

var (
	_ SourceRepository  = (*SourceRepo)(nil)
	_ ArticleRepository = (*ArticleRepo)(nil)
)
