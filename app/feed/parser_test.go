package feed

import (
	"strings"
	"testing"
	"time"
)

var fixedNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func newTestParser() *Parser {
	p := NewParser()
	p.now = func() time.Time { return fixedNow }
	return p
}

func TestParseRSS2(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    <item>
      <title>Test Item 1</title>
      <link>https://example.com/item1</link>
      <description>Short description</description>
      <content:encoded><![CDATA[<p>Fish &amp; Chips</p>   <p>are   <b>great</b></p>]]></content:encoded>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
      <author>test@example.com (Test Author)</author>
      <category>Technology</category>
      <category>Programming</category>
    </item>
    <item>
      <title>Test Item 2</title>
      <link>https://example.com/item2</link>
      <description><![CDATA[Plain <i>description</i>]]></description>
      <pubDate>Mon, 03 Jul 2023 11:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

	result, err := newTestParser().Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.Title != "Test Feed" {
		t.Errorf("Expected title 'Test Feed', got: %s", result.Title)
	}
	if result.Link != "https://example.com" {
		t.Errorf("Expected link 'https://example.com', got: %s", result.Link)
	}
	if result.Description != "Test Description" {
		t.Errorf("Expected description 'Test Description', got: %s", result.Description)
	}

	if len(result.Items) != 2 {
		t.Fatalf("Expected 2 items, got: %d", len(result.Items))
	}

	item1 := result.Items[0]
	if item1.Title != "Test Item 1" {
		t.Errorf("Expected title 'Test Item 1', got: %s", item1.Title)
	}
	if item1.Link != "https://example.com/item1" {
		t.Errorf("Expected link 'https://example.com/item1', got: %s", item1.Link)
	}
	if item1.Content != "Fish & Chips are great" {
		t.Errorf("Expected plain text content, got: %q", item1.Content)
	}
	if item1.Author != "Test Author" {
		t.Errorf("Expected author 'Test Author', got: %s", item1.Author)
	}
	if len(item1.Categories) != 2 || item1.Categories[0] != "Technology" {
		t.Errorf("Expected categories [Technology Programming], got: %v", item1.Categories)
	}
	expectedDate := time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)
	if !item1.PublishedAt.Equal(expectedDate) {
		t.Errorf("Expected published date %v, got: %v", expectedDate, item1.PublishedAt)
	}

	item2 := result.Items[1]
	if item2.Content != "Plain description" {
		t.Errorf("Expected description snippet, got: %q", item2.Content)
	}
	if item2.Author != "Test Feed" {
		t.Errorf("Expected author to fall back to feed title, got: %s", item2.Author)
	}
	if item2.Categories == nil || len(item2.Categories) != 0 {
		t.Errorf("Expected empty non-nil categories, got: %#v", item2.Categories)
	}
}

func TestParseAtom(t *testing.T) {
	atomData := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Feed</title>
  <link href="https://atom.example.com/"/>
  <updated>2023-07-03T12:00:00Z</updated>
  <id>urn:uuid:feed</id>
  <entry>
    <title>Atom Entry</title>
    <link href="https://atom.example.com/entry1"/>
    <id>urn:uuid:entry1</id>
    <updated>2023-07-02T08:00:00Z</updated>
    <author><name>Jane Doe</name></author>
    <content type="html">&lt;p&gt;Hello &lt;em&gt;Atom&lt;/em&gt;&lt;/p&gt;</content>
  </entry>
</feed>`

	result, err := newTestParser().Run([]byte(atomData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.Title != "Atom Feed" {
		t.Errorf("Expected title 'Atom Feed', got: %s", result.Title)
	}
	if len(result.Items) != 1 {
		t.Fatalf("Expected 1 item, got: %d", len(result.Items))
	}

	item := result.Items[0]
	if item.Link != "https://atom.example.com/entry1" {
		t.Errorf("Expected entry link, got: %s", item.Link)
	}
	if item.Author != "Jane Doe" {
		t.Errorf("Expected author 'Jane Doe', got: %s", item.Author)
	}
	if item.Content != "Hello Atom" {
		t.Errorf("Expected content 'Hello Atom', got: %q", item.Content)
	}
	// No published date, so the updated date is used
	expectedDate := time.Date(2023, 7, 2, 8, 0, 0, 0, time.UTC)
	if !item.PublishedAt.Equal(expectedDate) {
		t.Errorf("Expected published date %v, got: %v", expectedDate, item.PublishedAt)
	}
}

func TestParseFallbacks(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:content="http://purl.org/rss/1.0/modules/content/">
  <channel>
    <title>Fallback Feed</title>
    <link>https://example.com</link>
    <description>Fallbacks</description>
    <item>
      <title>Creator only</title>
      <link>https://example.com/creator</link>
      <dc:creator>Dublin Writer</dc:creator>
    </item>
    <item>
      <title>Markup only</title>
      <link>https://example.com/markup</link>
      <content:encoded><![CDATA[<img src="https://example.com/a.png"/>]]></content:encoded>
    </item>
    <item>
      <title>Bad date</title>
      <link>https://example.com/bad-date</link>
      <pubDate>not a date</pubDate>
    </item>
  </channel>
</rss>`

	result, err := newTestParser().Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(result.Items) != 3 {
		t.Fatalf("Expected 3 items, got: %d", len(result.Items))
	}

	creator := result.Items[0]
	if creator.Author != "Dublin Writer" {
		t.Errorf("Expected author 'Dublin Writer', got: %s", creator.Author)
	}
	if creator.Content != "" {
		t.Errorf("Expected empty content, got: %q", creator.Content)
	}
	if !creator.PublishedAt.Equal(fixedNow) {
		t.Errorf("Expected fetch time %v when undated, got: %v", fixedNow, creator.PublishedAt)
	}

	markup := result.Items[1]
	if !strings.Contains(markup.Content, "<img") {
		t.Errorf("Expected raw content when snippet is empty, got: %q", markup.Content)
	}

	badDate := result.Items[2]
	if !badDate.PublishedAt.Equal(fixedNow) {
		t.Errorf("Expected fetch time %v for an unparsable date, got: %v", fixedNow, badDate.PublishedAt)
	}
}

func TestSnippetNormalizesUnicode(t *testing.T) {
	// "e" followed by a combining acute accent composes to "é"
	got := snippet("<p>Cafe\u0301</p>")
	if got != "Caf\u00e9" {
		t.Errorf("Expected NFC composed text, got: %q", got)
	}
}

func TestParseInvalidData(t *testing.T) {
	if _, err := newTestParser().Run([]byte("this is not a feed")); err == nil {
		t.Error("Expected error for invalid feed data")
	}
}
