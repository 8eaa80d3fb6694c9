package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// maxExcerptLength bounds excerpts taken from feed descriptions.
const maxExcerptLength = 300

// ParseFeed maps the items of an RSS or Atom document to feed cards. Items
// without a title or link are skipped.
func (e *Extractor) ParseFeed(xml string) ([]FeedCard, error) {
	feed, err := gofeed.NewParser().ParseString(xml)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return e.feedCards(feed), nil
}

// FetchFeed downloads and parses the feed at feedURL.
func (e *Extractor) FetchFeed(ctx context.Context, feedURL string) ([]FeedCard, error) {
	fp := gofeed.NewParser()
	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", feedURL, err)
	}
	return e.feedCards(feed), nil
}

func (e *Extractor) feedCards(feed *gofeed.Feed) []FeedCard {
	cards := make([]FeedCard, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		title := cleanText(item.Title)
		link := e.canonical(item.Link)
		if title == "" || link == "" {
			continue
		}

		card := FeedCard{
			Title:   title,
			URL:     link,
			Excerpt: feedExcerpt(item),
			Date:    item.Published,
		}
		if item.PublishedParsed != nil {
			card.Date = item.PublishedParsed.Format("Jan 2, 2006")
		}
		if item.Author != nil {
			card.Author = item.Author.Name
		} else if len(item.Authors) > 0 && item.Authors[0] != nil {
			card.Author = item.Authors[0].Name
		}
		if item.Image != nil {
			card.Image = item.Image.URL
		}
		cards = append(cards, card)
	}
	return dedupe(cards, func(c FeedCard) string { return c.URL })
}

func feedExcerpt(item *gofeed.Item) string {
	raw := item.Description
	if raw == "" {
		raw = item.Content
	}
	text := stripTags(raw)
	if r := []rune(text); len(r) > maxExcerptLength {
		text = strings.TrimSpace(string(r[:maxExcerptLength])) + "…"
	}
	return text
}
