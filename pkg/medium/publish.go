package medium

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrPublishControlNotFound is returned when the editor shows no publish
// control, usually because the draft does not belong to the account.
var ErrPublishControlNotFound = errors.New("publish control not found")

var draftID = regexp.MustCompile(`^[0-9a-f]{8,16}$`)

var (
	publishSelectors = []string{
		`[data-testid="publishButton"]`,
		`button[data-action="show-prepublish"]`,
		`button:has-text("Publish")`,
	}
	confirmSelectors = []string{
		`[data-testid="publishConfirmButton"]`,
		`button[data-action="publish"]`,
		`button:has-text("Publish now")`,
	}
)

// PublishDraft opens the draft's editor, presses the publish control and
// confirms. It returns the URL the page lands on.
func (c *Client) PublishDraft(ctx context.Context, id string) (string, error) {
	return authenticated(ctx, c, "publish draft", func() (string, error) {
		id = strings.ToLower(strings.TrimSpace(id))
		if !draftID.MatchString(id) {
			return "", fmt.Errorf("invalid draft id %q", id)
		}

		if err := c.navigate(c.siteURL("/p/" + id + "/edit")); err != nil {
			return "", fmt.Errorf("failed to open draft editor: %w", err)
		}
		if err := c.clickFirst(publishSelectors); err != nil {
			return "", fmt.Errorf("%w for draft %s", err, id)
		}
		if err := c.clickFirst(confirmSelectors); err != nil {
			return "", fmt.Errorf("failed to confirm publication of %s: %w", id, err)
		}
		c.driver.Settle(c.cfg.Timeouts.Settle)

		c.logger.Infof("Published draft %s, now at %s", id, c.driver.URL())
		return c.driver.URL(), nil
	})
}

// clickFirst clicks the first selector that appears within the indicator
// timeout.
func (c *Client) clickFirst(selectors []string) error {
	for _, sel := range selectors {
		if err := c.driver.WaitFor(sel, c.cfg.Timeouts.Indicator); err != nil {
			continue
		}
		if err := c.driver.Click(sel, c.cfg.Timeouts.Indicator); err != nil {
			c.logger.Debugf("Click on %s failed: %v", sel, err)
			continue
		}
		return nil
	}
	return ErrPublishControlNotFound
}
