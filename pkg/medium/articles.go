package medium

import (
	"context"
	"fmt"
	"strings"

	"github.com/entrhq/inkwell/pkg/browser"
	"github.com/entrhq/inkwell/pkg/extract"
	"github.com/entrhq/inkwell/pkg/tabs"
)

const storiesPath = "/me/stories"

// ListArticles lists the account's stories across every non-empty status
// view. Navigation failures yield a shorter or empty list, not an error.
func (c *Client) ListArticles(ctx context.Context) ([]extract.Article, error) {
	return authenticated(ctx, c, "list articles", func() ([]extract.Article, error) {
		return c.listArticles(ctx), nil
	})
}

func (c *Client) listArticles(ctx context.Context) []extract.Article {
	articles := []extract.Article{}
	if err := c.navigate(c.siteURL(storiesPath)); err != nil {
		c.logger.Warnf("Stories page unavailable: %v", err)
		return articles
	}

	views, err := browser.EvaluateOnPage(c.driver, tabs.DiscoverHTML)
	if err != nil {
		c.logger.Warnf("Could not read stories page: %v", err)
		return articles
	}
	if len(views) == 0 {
		c.logger.Debugf("No status tabs found, reading the stories page as is")
		return c.collectArticles(articles, extract.StatusUnknown)
	}

	for _, view := range tabs.SelectNonEmpty(views) {
		if ctx.Err() != nil {
			break
		}
		if err := c.openView(view); err != nil {
			c.logger.Warnf("Skipping %s tab: %v", view.Name, err)
			continue
		}
		articles = c.collectArticles(articles, view.Status)
	}

	seen := make(map[string]bool, len(articles))
	out := articles[:0]
	for _, a := range articles {
		if !seen[a.URL] {
			seen[a.URL] = true
			out = append(out, a)
		}
	}
	c.logger.Infof("Listed %d articles from %d tabs", len(out), len(views))
	return out
}

// openView activates a status view by route, or by its label when the
// route is unknown.
func (c *Client) openView(view tabs.Descriptor) error {
	if view.Path != "" {
		return c.navigate(c.siteURL(view.Path))
	}
	if err := c.driver.Click(view.Locator, c.cfg.Timeouts.Indicator); err != nil {
		return fmt.Errorf("failed to activate %s: %w", view.Locator, err)
	}
	c.driver.Settle(c.cfg.Timeouts.Settle)
	return nil
}

func (c *Client) collectArticles(into []extract.Article, status extract.ArticleStatus) []extract.Article {
	c.loadMore()
	out, err := browser.EvaluateOnPage(c.driver, func(html string) extract.Outcome[extract.Article] {
		return c.extractor.Articles(html, status)
	})
	if err != nil {
		c.logger.Warnf("Could not read %s articles: %v", status, err)
		return into
	}
	c.logger.Debugf("Extracted %d %s articles using %q", len(out.Items), status, out.Strategy)
	return append(into, out.Items...)
}

// GetArticleContent fetches the full text of the story at url. Unlike
// listings, navigation failures are returned.
func (c *Client) GetArticleContent(ctx context.Context, url string) (extract.Content, error) {
	return authenticated(ctx, c, "get article content", func() (extract.Content, error) {
		if strings.TrimSpace(url) == "" {
			return extract.Content{}, fmt.Errorf("article URL must not be empty")
		}
		if err := c.navigate(url); err != nil {
			return extract.Content{}, fmt.Errorf("failed to load article: %w", err)
		}
		if err := c.driver.WaitFor("article, main", c.cfg.Timeouts.Indicator); err != nil {
			c.logger.Debugf("No article container appeared on %s", url)
		}

		content, err := browser.EvaluateOnPage(c.driver, c.extractor.Content)
		if err != nil {
			return extract.Content{}, fmt.Errorf("failed to read article: %w", err)
		}
		switch {
		case content.Paywalled:
			c.logger.Infof("Article %s is paywalled (%s)", url, strings.Join(content.Keywords, ", "))
		case content.Preview:
			c.logger.Infof("Article %s shows a preview only", url)
		default:
			c.logger.Debugf("Extracted article %s using %q", url, content.Strategy)
		}
		return content, nil
	})
}
