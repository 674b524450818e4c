package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/rss-hub/app/database"
	"github.com/lysyi3m/rss-hub/app/feed"
)

func rssFeed(title string, links ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0"?><rss version="2.0"><channel><title>%s</title><link>https://example.com</link>`, title)
	for i, link := range links {
		fmt.Fprintf(&b, `<item><title>Item %d</title><link>%s</link><description>%s</description><pubDate>Mon, 03 Jul 2023 1%d:00:00 GMT</pubDate></item>`,
			i, link, strings.Repeat("word ", 100), i)
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func TestRunCycleAgainstSQLite(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("/tech.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rssFeed("Tech", "https://example.com/a", "https://example.com/b", "https://example.com/shared")))
	})
	mux.HandleFunc("/news.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rssFeed("News", "https://example.com/shared", "https://example.com/c")))
	})
	mux.HandleFunc("/broken.xml", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dsn := filepath.Join(t.TempDir(), "ingest.db") + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := database.Open(database.DriverSQLite, dsn)
	require.NoError(t, err)
	defer db.Close()
	_, _, err = database.RunMigrations(db)
	require.NoError(t, err)

	sources := database.NewSourceRepository(db)
	articles := database.NewArticleRepository(db)
	for _, name := range []string{"tech", "news", "broken"} {
		_, err := sources.CreateSource(ctx, database.Source{Name: name, FeedURL: srv.URL + "/" + name + ".xml"})
		require.NoError(t, err)
	}

	fetcher := feed.NewFetcher(srv.Client(), feed.NewParser(), "test-agent/1.0", 5*time.Second, 0)
	o := NewOrchestrator(sources, articles, fetcher, 2)

	summary := o.RunCycle(ctx)
	assert.Equal(t, 3, summary.SourcesConsidered)
	assert.Equal(t, 2, summary.SourcesSucceeded)
	assert.Equal(t, 4, summary.ArticlesAdded)

	total, unread, err := articles.CountArticles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Equal(t, 4, unread)

	stored, err := articles.FindArticleByURL(ctx, "https://example.com/a")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, []rune(stored.Excerpt), ExcerptLength)
	assert.Equal(t, "Tech", stored.Author)

	all, err := sources.ListSources(ctx)
	require.NoError(t, err)
	for _, s := range all {
		if s.Name == "broken" {
			assert.Nil(t, s.LastFetched)
		} else {
			assert.NotNil(t, s.LastFetched, s.Name)
		}
	}

	again := o.RunCycle(ctx)
	assert.Equal(t, RunSummary{SourcesConsidered: 3, SourcesSucceeded: 2, ArticlesAdded: 0}, again)
}
