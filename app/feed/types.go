package feed

import (
	"fmt"
	"time"
)

// Result is a fetched feed with every item normalized, in feed order.
type Result struct {
	Title       string
	Description string
	Link        string
	Items       []Item
}

type Item struct {
	Title       string
	Link        string
	PublishedAt time.Time
	Content     string
	Author      string
	Categories  []string // Never nil
}

// FetchError reports that a feed could not be retrieved or parsed.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch feed %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
