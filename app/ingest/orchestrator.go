package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/rss-hub/app/database"
	"github.com/lysyi3m/rss-hub/app/feed"
	"github.com/lysyi3m/rss-hub/app/logger"
)

const ExcerptLength = 300

// RunSummary holds the counts of one ingestion cycle.
type RunSummary struct {
	SourcesConsidered int `json:"totalFeeds"`
	SourcesSucceeded  int `json:"successfulFeeds"`
	ArticlesAdded     int `json:"newArticles"`
}

type Orchestrator struct {
	sources     SourceStore
	articles    ArticleStore
	fetcher     Fetcher
	workerCount int
	now         func() time.Time
}

func NewOrchestrator(sources SourceStore, articles ArticleStore, fetcher Fetcher, workerCount int) *Orchestrator {
	return &Orchestrator{
		sources:     sources,
		articles:    articles,
		fetcher:     fetcher,
		workerCount: max(workerCount, 1),
		now:         time.Now,
	}
}

// RunCycle visits every active source once. Failures are logged and reflected
// only in the returned counts.
func (o *Orchestrator) RunCycle(ctx context.Context) RunSummary {
	sources, err := o.sources.ListActiveSources(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list active sources", "error", err)
		return RunSummary{}
	}

	var succeeded, added atomic.Int64

	var g errgroup.Group
	g.SetLimit(o.workerCount)
	for _, source := range sources {
		g.Go(func() error {
			n, ok := o.ingestSource(ctx, source)
			if ok {
				succeeded.Add(1)
			}
			added.Add(int64(n))
			return nil
		})
	}
	_ = g.Wait()

	return RunSummary{
		SourcesConsidered: len(sources),
		SourcesSucceeded:  int(succeeded.Load()),
		ArticlesAdded:     int(added.Load()),
	}
}

func (o *Orchestrator) ingestSource(ctx context.Context, source database.Source) (added int, ok bool) {
	ctx = logger.Ctx(ctx, slog.String("source", source.Name))

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "Source ingestion panicked", "error", fmt.Sprint(r))
			ok = false
		}
	}()

	result, err := o.fetcher.Fetch(ctx, source.FeedURL)
	if err != nil {
		slog.WarnContext(ctx, "Failed to fetch source", "feed_url", source.FeedURL, "error", err)
		return 0, false
	}

	for _, item := range result.Items {
		if o.ingestItem(ctx, source, item) {
			added++
		}
	}

	if err := o.sources.TouchSourceLastFetched(ctx, source.ID, o.now()); err != nil {
		slog.ErrorContext(ctx, "Failed to update last fetched time", "error", err)
	}

	slog.InfoContext(ctx, "Source ingested", "items", len(result.Items), "new", added)

	return added, true
}

// ingestItem reports whether a new article was stored.
func (o *Orchestrator) ingestItem(ctx context.Context, source database.Source, item feed.Item) bool {
	if item.Link == "" {
		slog.DebugContext(ctx, "Skipping item without link", "title", item.Title)
		return false
	}

	existing, err := o.articles.FindArticleByURL(ctx, item.Link)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to look up article", "url", item.Link, "error", err)
		return false
	}
	if existing != nil {
		return false
	}

	_, err = o.articles.InsertArticle(ctx, newArticle(source.ID, item))
	if errors.Is(err, database.ErrConflict) {
		slog.DebugContext(ctx, "Article already exists", "url", item.Link)
		return false
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to store article", "url", item.Link, "error", err)
		return false
	}

	return true
}

func newArticle(sourceID string, item feed.Item) database.Article {
	return database.Article{
		SourceID: sourceID,
		Title:    item.Title,
		URL:      item.Link,
		Excerpt:  excerpt(item.Content),
		Content:  item.Content,
		PubDate:  item.PublishedAt,
		Author:   item.Author,
		Tags:     database.Tags(item.Categories),
	}
}

func excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= ExcerptLength {
		return content
	}
	return string(runes[:ExcerptLength])
}
