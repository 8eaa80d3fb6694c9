package medium

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/entrhq/inkwell/pkg/browser"
	"github.com/entrhq/inkwell/pkg/extract"
)

// FeedKind selects which feed to read.
type FeedKind string

const (
	FeedHome      FeedKind = "home"
	FeedFollowing FeedKind = "following"
	FeedTag       FeedKind = "tag"
)

// FeedSpec names one feed. Tag is required for FeedTag only.
type FeedSpec struct {
	Kind FeedKind
	Tag  string
}

// ParseFeedSpec reads "home", "following" or "tag:<name>".
func ParseFeedSpec(s string) (FeedSpec, error) {
	s = strings.TrimSpace(s)
	if kind, tag, ok := strings.Cut(s, ":"); ok {
		spec := FeedSpec{Kind: FeedKind(strings.ToLower(kind)), Tag: tag}
		return spec, spec.Validate()
	}
	spec := FeedSpec{Kind: FeedKind(strings.ToLower(s))}
	return spec, spec.Validate()
}

// Validate checks the kind and the tag.
func (f FeedSpec) Validate() error {
	switch f.Kind {
	case FeedHome, FeedFollowing:
		return nil
	case FeedTag:
		if strings.TrimSpace(f.Tag) == "" {
			return fmt.Errorf("tag feed requires a tag")
		}
		return nil
	}
	return fmt.Errorf("unknown feed %q", f.Kind)
}

// Name is the label put on merged cards.
func (f FeedSpec) Name() string {
	if f.Kind == FeedTag {
		return "tag:" + f.tagSlug()
	}
	return string(f.Kind)
}

func (f FeedSpec) tagSlug() string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(f.Tag)), " ", "-")
}

func (f FeedSpec) path() string {
	switch f.Kind {
	case FeedFollowing:
		return "/?feed=following"
	case FeedTag:
		return "/tag/" + url.PathEscape(f.tagSlug())
	}
	return "/"
}

func (f FeedSpec) rssPath() string {
	return "/feed/tag/" + url.PathEscape(f.tagSlug())
}

// Search returns the story cards the site's search shows for query.
func (c *Client) Search(ctx context.Context, query string) ([]extract.FeedCard, error) {
	return authenticated(ctx, c, "search", func() ([]extract.FeedCard, error) {
		query = strings.TrimSpace(query)
		if query == "" {
			return nil, fmt.Errorf("search query must not be empty")
		}

		cards := []extract.FeedCard{}
		if err := c.navigate(c.siteURL("/search?q=" + url.QueryEscape(query))); err != nil {
			c.logger.Warnf("Search for %q failed: %v", query, err)
			return cards, nil
		}
		return c.collectCards(cards, "search"), nil
	})
}

// GetFeed reads one feed. Tag feeds fall back to the tag's RSS feed when
// the page yields no cards.
func (c *Client) GetFeed(ctx context.Context, spec FeedSpec) ([]extract.FeedCard, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return authenticated(ctx, c, "get feed", func() ([]extract.FeedCard, error) {
		return c.feed(ctx, spec), nil
	})
}

// GetFeeds reads several feeds and merges them. Each card carries the name
// of the feed it came from; a story seen twice keeps its first source.
func (c *Client) GetFeeds(ctx context.Context, specs ...FeedSpec) ([]extract.FeedCard, error) {
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, err
		}
	}
	return authenticated(ctx, c, "get feeds", func() ([]extract.FeedCard, error) {
		merged := []extract.FeedCard{}
		seen := map[string]bool{}
		for _, spec := range specs {
			if ctx.Err() != nil {
				break
			}
			for _, card := range c.feed(ctx, spec) {
				if seen[card.URL] {
					continue
				}
				seen[card.URL] = true
				card.Source = spec.Name()
				merged = append(merged, card)
			}
		}
		return merged, nil
	})
}

func (c *Client) feed(ctx context.Context, spec FeedSpec) []extract.FeedCard {
	cards := []extract.FeedCard{}
	if err := c.navigate(c.siteURL(spec.path())); err != nil {
		c.logger.Warnf("Feed %s unavailable: %v", spec.Name(), err)
	} else {
		cards = c.collectCards(cards, spec.Name())
	}
	if len(cards) > 0 || spec.Kind != FeedTag || c.fetchFeed == nil {
		return cards
	}

	rssURL := c.siteURL(spec.rssPath())
	c.logger.Infof("No cards on %s page, trying %s", spec.Name(), rssURL)
	fromRSS, err := c.fetchFeed(ctx, rssURL)
	if err != nil {
		c.logger.Warnf("RSS fallback for %s failed: %v", spec.Name(), err)
		return cards
	}
	return append(cards, fromRSS...)
}

func (c *Client) collectCards(into []extract.FeedCard, source string) []extract.FeedCard {
	c.loadMore()
	out, err := browser.EvaluateOnPage(c.driver, c.extractor.Cards)
	if err != nil {
		c.logger.Warnf("Could not read %s cards: %v", source, err)
		return into
	}
	c.logger.Debugf("Extracted %d %s cards using %q", len(out.Items), source, out.Strategy)
	return append(into, out.Items...)
}
