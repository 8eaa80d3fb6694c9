package medium

import (
	"context"
	"fmt"
	"strings"

	"github.com/entrhq/inkwell/pkg/browser"
	"github.com/entrhq/inkwell/pkg/extract"
)

const listsPath = "/me/lists"

// ListReadingLists returns the account's reading lists.
func (c *Client) ListReadingLists(ctx context.Context) ([]extract.ReadingList, error) {
	return authenticated(ctx, c, "list reading lists", func() ([]extract.ReadingList, error) {
		lists, err := c.readingLists()
		if err != nil {
			c.logger.Warnf("Reading lists unavailable: %v", err)
		}
		return lists, nil
	})
}

// ListReadingListArticles returns the stories saved in the list with id
// listID. ErrListNotFound is returned when the account has no such list.
func (c *Client) ListReadingListArticles(ctx context.Context, listID string) ([]extract.FeedCard, error) {
	return authenticated(ctx, c, "list reading list articles", func() ([]extract.FeedCard, error) {
		listID = strings.TrimSpace(listID)
		if listID == "" {
			return nil, fmt.Errorf("list id must not be empty")
		}

		lists, err := c.readingLists()
		if err != nil {
			return nil, fmt.Errorf("failed to look up list %s: %w", listID, err)
		}
		var target *extract.ReadingList
		for i := range lists {
			if lists[i].ID == listID {
				target = &lists[i]
				break
			}
		}
		if target == nil {
			return nil, fmt.Errorf("%w: %s", ErrListNotFound, listID)
		}

		cards := []extract.FeedCard{}
		if err := c.navigate(target.URL); err != nil {
			c.logger.Warnf("List %s unavailable: %v", listID, err)
			return cards, nil
		}
		return c.collectCards(cards, "list:"+listID), nil
	})
}

func (c *Client) readingLists() ([]extract.ReadingList, error) {
	lists := []extract.ReadingList{}
	if err := c.navigate(c.siteURL(listsPath)); err != nil {
		return lists, err
	}
	c.loadMore()
	out, err := browser.EvaluateOnPage(c.driver, c.extractor.ReadingLists)
	if err != nil {
		return lists, err
	}
	c.logger.Debugf("Extracted %d reading lists using %q", len(out.Items), out.Strategy)
	return append(lists, out.Items...), nil
}
