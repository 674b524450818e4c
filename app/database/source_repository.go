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

var sourceColumns = []string{
	"id", "name", "url", "feed_url", "category", "favicon",
	"active", "last_fetched", "created_at",
}

// SourceRepo handles database operations for feed sources
type SourceRepo struct {
	db *DB
}

func NewSourceRepository(db *DB) *SourceRepo {
	return &SourceRepo{db: db}
}

// ListSources returns every source ordered by name
func (r *SourceRepo) ListSources(ctx context.Context) ([]Source, error) {
	return r.list(ctx, nil)
}

// ListActiveSources returns the sources visited by an ingestion cycle, ordered by name
func (r *SourceRepo) ListActiveSources(ctx context.Context) ([]Source, error) {
	return r.list(ctx, sq.Eq{"active": true})
}

func (r *SourceRepo) list(ctx context.Context, where sq.Sqlizer) ([]Source, error) {
	q := r.db.sb.Select(sourceColumns...).From("sources").OrderBy("name ASC")
	if where != nil {
		q = q.Where(where)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sources query: %w", err)
	}

	sources := []Source{}
	if err := r.db.SelectContext(ctx, &sources, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}

	return sources, nil
}

// GetSource returns nil when no source has the given id
func (r *SourceRepo) GetSource(ctx context.Context, id string) (*Source, error) {
	query, args, err := r.db.sb.Select(sourceColumns...).
		From("sources").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build source query: %w", err)
	}

	var source Source
	err = r.db.GetContext(ctx, &source, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}

	return &source, nil
}

func (r *SourceRepo) CountActiveSources(ctx context.Context) (int, error) {
	query, args, err := r.db.sb.Select("COUNT(*)").
		From("sources").
		Where(sq.Eq{"active": true}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count active sources: %w", err)
	}

	return count, nil
}

// CreateSource inserts a new active source. A duplicate feed URL yields ErrConflict.
func (r *SourceRepo) CreateSource(ctx context.Context, source Source) (*Source, error) {
	source.ID = uuid.NewString()
	source.Active = true
	source.LastFetched = nil
	source.CreatedAt = time.Now().UTC()

	query, args, err := r.db.sb.Insert("sources").
		Columns(sourceColumns...).
		Values(source.ID, source.Name, source.URL, source.FeedURL, source.Category,
			source.Favicon, source.Active, source.LastFetched, source.CreatedAt).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build source insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("source with feed url %s: %w", source.FeedURL, ErrConflict)
		}
		return nil, fmt.Errorf("failed to create source: %w", err)
	}

	return &source, nil
}

func (r *SourceRepo) SetSourceActive(ctx context.Context, id string, active bool) (*Source, error) {
	if err := r.update(ctx, id, sq.Eq{"active": active}); err != nil {
		return nil, err
	}
	return r.GetSource(ctx, id)
}

// TouchSourceLastFetched records a successful fetch of the source
func (r *SourceRepo) TouchSourceLastFetched(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, id, sq.Eq{"last_fetched": at.UTC()})
}

func (r *SourceRepo) update(ctx context.Context, id string, set sq.Eq) error {
	query, args, err := r.db.sb.Update("sources").
		SetMap(set).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build source update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update source: %w", err)
	}

	return requireAffected(result, "source", id)
}

// DeleteSource removes the source row only. Its articles must be deleted first.
func (r *SourceRepo) DeleteSource(ctx context.Context, id string) error {
	query, args, err := r.db.sb.Delete("sources").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build source delete: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete source: %w", err)
	}

	return requireAffected(result, "source", id)
}

func requireAffected(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
