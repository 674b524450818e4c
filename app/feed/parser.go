package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
	"golang.org/x/text/unicode/norm"
)

var stripPolicy = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

type Parser struct {
	now func() time.Time
}

func NewParser() *Parser {
	return &Parser{now: time.Now}
}

// Run parses RSS or Atom data and normalizes every item.
func (p *Parser) Run(data []byte) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("feed parser panicked: %v", r)
		}
	}()

	// gofeed parsers keep per-parse state and are not safe for concurrent use
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	fetchedAt := p.now()
	result = &Result{
		Title:       feed.Title,
		Description: feed.Description,
		Link:        feed.Link,
		Items:       make([]Item, 0, len(feed.Items)),
	}

	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		result.Items = append(result.Items, p.normalizeItem(item, feed.Title, fetchedAt))
	}

	return result, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item, feedTitle string, fetchedAt time.Time) Item {
	normalized := Item{
		Title:      strings.TrimSpace(item.Title),
		Link:       strings.TrimSpace(item.Link),
		Content:    cmp.Or(snippet(cmp.Or(item.Content, item.Description)), item.Content, item.Description),
		Author:     cmp.Or(p.extractAuthor(item), dublinCoreCreator(item), feedTitle),
		Categories: []string{},
	}

	switch {
	case item.PublishedParsed != nil:
		normalized.PublishedAt = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		normalized.PublishedAt = *item.UpdatedParsed
	default:
		normalized.PublishedAt = fetchedAt
	}

	for _, category := range item.Categories {
		if category = strings.TrimSpace(category); category != "" {
			normalized.Categories = append(normalized.Categories, category)
		}
	}

	return normalized
}

func (p *Parser) extractAuthor(item *gofeed.Item) string {
	var authors []string

	if len(item.Authors) > 0 {
		for _, author := range item.Authors {
			if author != nil {
				if name := formatAuthor(author.Name, author.Email); name != "" {
					authors = append(authors, name)
				}
			}
		}
	} else if item.Author != nil {
		if name := formatAuthor(item.Author.Name, item.Author.Email); name != "" {
			authors = append(authors, name)
		}
	}

	return strings.Join(authors, ", ")
}

func formatAuthor(name, email string) string {
	return cmp.Or(strings.TrimSpace(name), strings.TrimSpace(email))
}

func dublinCoreCreator(item *gofeed.Item) string {
	if item.DublinCoreExt == nil {
		return ""
	}
	for _, creator := range item.DublinCoreExt.Creator {
		if creator = strings.TrimSpace(creator); creator != "" {
			return creator
		}
	}
	return ""
}

// snippet reduces HTML to normalized plain text.
func snippet(s string) string {
	s = stripPolicy.Sanitize(s)
	s = html.UnescapeString(s)
	s = strings.Join(strings.Fields(s), " ")
	return norm.NFC.String(s)
}
