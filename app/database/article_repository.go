package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

const (
	DefaultArticleLimit = 50
	SearchLimit         = 50
)

var articleColumns = []string{
	"id", "source_id", "title", "url", "excerpt", "content",
	"pub_date", "author", "tags", "read", "created_at",
}

var articleWithSourceColumns = []string{
	"a.id", "a.source_id", "a.title", "a.url", "a.excerpt", "a.content",
	"a.pub_date", "a.author", "a.tags", "a.read", "a.created_at",
	"s.name AS source_name", "s.url AS source_url", "s.favicon AS source_favicon",
}

// ArticleRepo handles database operations for articles
type ArticleRepo struct {
	db *DB
}

func NewArticleRepository(db *DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

// FindArticleByURL returns nil when the url has never been stored
func (r *ArticleRepo) FindArticleByURL(ctx context.Context, url string) (*Article, error) {
	query, args, err := r.db.sb.Select(articleColumns...).
		From("articles").
		Where(sq.Eq{"url": url}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build article lookup: %w", err)
	}

	var article Article
	err = r.db.GetContext(ctx, &article, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find article by url: %w", err)
	}

	return &article, nil
}

// InsertArticle stores a first sighting. A url that is already stored yields ErrConflict.
func (r *ArticleRepo) InsertArticle(ctx context.Context, article Article) (*Article, error) {
	article.ID = uuid.NewString()
	article.PubDate = article.PubDate.UTC()
	article.CreatedAt = time.Now().UTC()
	article.Read = false
	if article.Tags == nil {
		article.Tags = Tags{}
	}

	query, args, err := r.db.sb.Insert("articles").
		Columns(articleColumns...).
		Values(article.ID, article.SourceID, article.Title, article.URL, article.Excerpt,
			article.Content, article.PubDate, article.Author, article.Tags, article.Read,
			article.CreatedAt).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build article insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("article with url %s: %w", article.URL, ErrConflict)
		}
		return nil, fmt.Errorf("failed to insert article: %w", err)
	}

	return &article, nil
}

func (r *ArticleRepo) joined() sq.SelectBuilder {
	return r.db.sb.Select(articleWithSourceColumns...).
		From("articles a").
		Join("sources s ON a.source_id = s.id")
}

// GetArticle returns nil when no article has the given id
func (r *ArticleRepo) GetArticle(ctx context.Context, id string) (*ArticleWithSource, error) {
	query, args, err := r.joined().Where(sq.Eq{"a.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build article query: %w", err)
	}

	var article ArticleWithSource
	err = r.db.GetContext(ctx, &article, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	return &article, nil
}

// ListArticles returns articles newest first, joined with their source
func (r *ArticleRepo) ListArticles(ctx context.Context, filter ArticleFilter) ([]ArticleWithSource, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultArticleLimit
	}
	offset := max(filter.Offset, 0)

	q := r.joined()
	if filter.SourceID != "" {
		q = q.Where(sq.Eq{"a.source_id": filter.SourceID})
	}
	if filter.UnreadOnly {
		q = q.Where(sq.Eq{"a.read": false})
	}
	q = q.OrderBy("a.pub_date DESC").Limit(uint64(limit)).Offset(uint64(offset))

	return r.selectJoined(ctx, q)
}

// SearchArticles matches the query as a case-insensitive substring of title, excerpt or content
func (r *ArticleRepo) SearchArticles(ctx context.Context, query string, limit int) ([]ArticleWithSource, error) {
	if limit <= 0 {
		limit = SearchLimit
	}

	pattern := "%" + query + "%"
	var match sq.Or
	for _, column := range []string{"a.title", "a.excerpt", "a.content"} {
		if r.db.driver == DriverPostgres {
			match = append(match, sq.ILike{column: pattern})
		} else {
			// SQLite LIKE is case-insensitive for ASCII already
			match = append(match, sq.Like{column: pattern})
		}
	}

	q := r.joined().Where(match).OrderBy("a.pub_date DESC").Limit(uint64(limit))
	return r.selectJoined(ctx, q)
}

func (r *ArticleRepo) selectJoined(ctx context.Context, q sq.SelectBuilder) ([]ArticleWithSource, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build articles query: %w", err)
	}

	articles := []ArticleWithSource{}
	if err := r.db.SelectContext(ctx, &articles, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	return articles, nil
}

func (r *ArticleRepo) CountArticles(ctx context.Context) (int, int, error) {
	query, args, err := r.db.sb.Select(
		"COUNT(*)",
		"COALESCE(SUM(CASE WHEN read THEN 0 ELSE 1 END), 0)",
	).From("articles").ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total, unread int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total, &unread); err != nil {
		return 0, 0, fmt.Errorf("failed to count articles: %w", err)
	}

	return total, unread, nil
}

func (r *ArticleRepo) MarkArticleRead(ctx context.Context, id string) (*Article, error) {
	query, args, err := r.db.sb.Update("articles").
		Set("read", true).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build article update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to mark article read: %w", err)
	}
	if err := requireAffected(result, "article", id); err != nil {
		return nil, err
	}

	article, err := r.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, fmt.Errorf("article %s: %w", id, ErrNotFound)
	}

	return &article.Article, nil
}

// DeleteArticlesBySource removes every article of a source and returns how many were removed
func (r *ArticleRepo) DeleteArticlesBySource(ctx context.Context, sourceID string) (int64, error) {
	query, args, err := r.db.sb.Delete("articles").Where(sq.Eq{"source_id": sourceID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build articles delete: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete articles: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return n, nil
}
