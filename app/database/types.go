package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Source struct {
	ID          string     `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	URL         string     `db:"url" json:"url"`           // Site homepage
	FeedURL     string     `db:"feed_url" json:"feed_url"` // Unique across sources
	Category    string     `db:"category" json:"category"`
	Favicon     string     `db:"favicon" json:"favicon"`
	Active      bool       `db:"active" json:"active"`
	LastFetched *time.Time `db:"last_fetched" json:"last_fetched"` // Set only after a successful fetch
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

type Article struct {
	ID        string    `db:"id" json:"id"`
	SourceID  string    `db:"source_id" json:"source_id"`
	Title     string    `db:"title" json:"title"`
	URL       string    `db:"url" json:"url"` // Global dedup key
	Excerpt   string    `db:"excerpt" json:"excerpt"`
	Content   string    `db:"content" json:"content"`
	PubDate   time.Time `db:"pub_date" json:"pub_date"`
	Author    string    `db:"author" json:"author"`
	Tags      Tags      `db:"tags" json:"tags"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ArticleWithSource is an article joined with the display fields of its source.
type ArticleWithSource struct {
	Article
	SourceName    string `db:"source_name" json:"source_name"`
	SourceURL     string `db:"source_url" json:"source_url"`
	SourceFavicon string `db:"source_favicon" json:"source_favicon"`
}

type ArticleFilter struct {
	SourceID   string
	UnreadOnly bool
	Limit      int
	Offset     int
}

// Tags is stored as a JSON array so both dialects share one column type.
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		t = Tags{}
	}
	data, err := json.Marshal([]string(t))
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(data), nil
}

func (t *Tags) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("unsupported tags column type %T", src)
	}

	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return fmt.Errorf("failed to decode tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	*t = tags
	return nil
}
