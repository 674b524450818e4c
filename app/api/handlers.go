package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/rss-hub/app/database"
	"github.com/lysyi3m/rss-hub/app/tasks"
)

const faviconService = "https://www.google.com/s2/favicons"

func NewHandler(sourceRepo database.SourceRepository, articleRepo database.ArticleRepository,
	validator FeedValidator, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		sourceRepo:  sourceRepo,
		articleRepo: articleRepo,
		validator:   validator,
		scheduler:   scheduler,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if sourceCount, err := h.sourceRepo.CountActiveSources(c.Request.Context()); err == nil {
		health["sources"] = sourceCount
	} else {
		slog.Error("Database error", "operation", "count_sources", "error", err)
		health["status"] = "degraded"
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) ListArticles(c *gin.Context) {
	limit, err := queryInt(c, "limit", database.DefaultArticleLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offset"})
		return
	}

	articles, err := h.articleRepo.ListArticles(c.Request.Context(), database.ArticleFilter{
		SourceID:   c.Query("source_id"),
		UnreadOnly: c.Query("unread") == "true",
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		databaseError(c, "list_articles", err)
		return
	}

	c.JSON(http.StatusOK, articles)
}

func (h *Handler) GetArticle(c *gin.Context) {
	article, err := h.articleRepo.GetArticle(c.Request.Context(), c.Param("id"))
	if err != nil {
		databaseError(c, "get_article", err)
		return
	}
	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}

	c.JSON(http.StatusOK, article)
}

func (h *Handler) MarkArticleRead(c *gin.Context) {
	article, err := h.articleRepo.MarkArticleRead(c.Request.Context(), c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}
	if err != nil {
		databaseError(c, "mark_article_read", err)
		return
	}

	c.JSON(http.StatusOK, article)
}

func (h *Handler) SearchArticles(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search query required"})
		return
	}

	articles, err := h.articleRepo.SearchArticles(c.Request.Context(), q, database.SearchLimit)
	if err != nil {
		databaseError(c, "search_articles", err)
		return
	}

	c.JSON(http.StatusOK, articles)
}

func (h *Handler) ListSources(c *gin.Context) {
	sources, err := h.sourceRepo.ListSources(c.Request.Context())
	if err != nil {
		databaseError(c, "list_sources", err)
		return
	}

	c.JSON(http.StatusOK, sources)
}

func (h *Handler) CreateSource(c *gin.Context) {
	var req createSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and feed_url are required"})
		return
	}

	ctx := c.Request.Context()

	result, err := h.validator.Fetch(ctx, req.FeedURL)
	if err != nil {
		slog.Warn("Rejected source with unreadable feed", "feed_url", req.FeedURL, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid RSS feed URL"})
		return
	}

	siteURL := req.URL
	if siteURL == "" {
		siteURL = result.Link
	}

	source, err := h.sourceRepo.CreateSource(ctx, database.Source{
		Name:     req.Name,
		URL:      siteURL,
		FeedURL:  req.FeedURL,
		Category: req.Category,
		Favicon:  FaviconURL(siteURL, req.FeedURL),
	})
	if errors.Is(err, database.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": "Source already exists"})
		return
	}
	if err != nil {
		databaseError(c, "create_source", err)
		return
	}

	slog.Info("Source added", "source", source.Name, "feed_url", source.FeedURL)

	c.JSON(http.StatusCreated, source)
}

func (h *Handler) UpdateSource(c *gin.Context) {
	var req updateSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Field active is required"})
		return
	}

	source, err := h.sourceRepo.SetSourceActive(c.Request.Context(), c.Param("id"), *req.Active)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Source not found"})
		return
	}
	if err != nil {
		databaseError(c, "update_source", err)
		return
	}

	c.JSON(http.StatusOK, source)
}

// DeleteSource removes a source's articles before the source itself.
func (h *Handler) DeleteSource(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	source, err := h.sourceRepo.GetSource(ctx, id)
	if err != nil {
		databaseError(c, "get_source", err)
		return
	}
	if source == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Source not found"})
		return
	}

	deleted, err := h.articleRepo.DeleteArticlesBySource(ctx, id)
	if err != nil {
		databaseError(c, "delete_articles", err)
		return
	}

	err = h.sourceRepo.DeleteSource(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Source not found"})
		return
	}
	if err != nil {
		databaseError(c, "delete_source", err)
		return
	}

	slog.Info("Source deleted", "source", source.Name, "articles", deleted)

	c.JSON(http.StatusOK, gin.H{
		"message":         "Source deleted successfully",
		"source":          source,
		"deletedArticles": deleted,
	})
}

func (h *Handler) Refresh(c *gin.Context) {
	// A client disconnect must not cut the cycle short
	summary := h.scheduler.RunNow(context.WithoutCancel(c.Request.Context()))

	c.JSON(http.StatusOK, refreshResponse{
		Message:    "Refresh complete",
		RunSummary: summary,
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	total, unread, err := h.articleRepo.CountArticles(ctx)
	if err != nil {
		databaseError(c, "count_articles", err)
		return
	}

	sources, err := h.sourceRepo.CountActiveSources(ctx)
	if err != nil {
		databaseError(c, "count_sources", err)
		return
	}

	c.JSON(http.StatusOK, statsResponse{
		TotalArticles:  total,
		UnreadArticles: unread,
		TotalSources:   sources,
	})
}

// FaviconURL points at the favicon service for the site host, falling back to the feed host.
func FaviconURL(siteURL, feedURL string) string {
	domain := hostOf(siteURL)
	if domain == "" {
		domain = hostOf(feedURL)
	}
	if domain == "" {
		return ""
	}

	return faviconService + "?" + url.Values{"domain": {domain}, "sz": {"32"}}.Encode()
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New("invalid integer")
	}
	return n, nil
}

func databaseError(c *gin.Context, operation string, err error) {
	slog.Error("Database error", "operation", operation, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "message": err.Error()})
}
