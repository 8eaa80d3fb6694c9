// Package medium is the client for the platform: it owns one browser, keeps
// the stored session fresh and exposes listing and fetch operations as typed
// records.
package medium

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/inkwell/pkg/auth"
	"github.com/entrhq/inkwell/pkg/browser"
	"github.com/entrhq/inkwell/pkg/config"
	"github.com/entrhq/inkwell/pkg/extract"
	"github.com/entrhq/inkwell/pkg/logging"
	"github.com/entrhq/inkwell/pkg/session"
)

var (
	// ErrNotInitialized is returned by every operation issued before
	// Initialize or after Close.
	ErrNotInitialized = errors.New("client not initialized")

	// ErrLoginFailed wraps the reason an operation could not authenticate.
	ErrLoginFailed = errors.New("login failed")

	// ErrListNotFound is returned when a reading list id is not among the
	// account's lists.
	ErrListNotFound = errors.New("reading list not found")
)

// scrollRounds is how far listings scroll to trigger lazy loading.
const scrollRounds = 3

// Driver is the page driver the client runs on. *browser.Driver implements it.
type Driver interface {
	auth.Page
	browser.Snapshotter

	Launch(ctx context.Context, opts browser.LaunchOptions) error
	Relaunch(ctx context.Context, headless bool) error
	Close() error
	Launched() bool
	Click(selector string, timeout time.Duration) error
	Settle(wait time.Duration)
	Scroll(rounds int, pause time.Duration) error
	StorageState() ([]byte, error)
}

var _ Driver = (*browser.Driver)(nil)

// FeedFetcher downloads an RSS feed as cards.
type FeedFetcher func(ctx context.Context, feedURL string) ([]extract.FeedCard, error)

// InitOptions tune one Initialize call.
type InitOptions struct {
	// ForceHeadless overrides the mode decision when set. When nil the
	// configured browser.headless value applies, then the session state.
	ForceHeadless *bool
}

// Client runs operations one at a time against a single page.
type Client struct {
	mu sync.Mutex

	cfg       *config.Config
	driver    Driver
	store     *session.FileStore
	validator *session.Validator
	extractor *extract.Extractor
	login     *auth.Machine
	fetchFeed FeedFetcher
	logger    *logging.Logger

	status      session.Status
	initialized bool
}

// NewDriver builds the Playwright driver described by cfg.
func NewDriver(cfg *config.Config) *browser.Driver {
	return browser.NewDriver(browser.Options{
		UserAgent: cfg.Browser.UserAgent,
		Viewport: &browser.Viewport{
			Width:  cfg.Browser.ViewportWidth,
			Height: cfg.Browser.ViewportHeight,
		},
		DefaultTimeout: cfg.Timeouts.Navigation,
		SkipInstall:    cfg.Browser.SkipInstall,
	})
}

// New creates a client. A nil driver means the Playwright driver built from
// cfg; a nil logger discards output.
func New(cfg *config.Config, driver Driver, logger *logging.Logger) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}
	if driver == nil {
		driver = NewDriver(cfg)
	}

	validator, err := session.NewValidator(cfg.Session.CriticalCookies, cfg.Session.CriticalDomains)
	if err != nil {
		return nil, err
	}
	extractor, err := extract.New(cfg.Site.BaseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:       cfg,
		driver:    driver,
		store:     session.NewFileStore(cfg.Session.Path),
		validator: validator,
		extractor: extractor,
		fetchFeed: extractor.FetchFeed,
		logger:    logger,
	}
	c.login = auth.NewMachine(auth.Config{
		LoginURL:          cfg.Site.LoginURL,
		Indicators:        cfg.Site.LoggedInIndicators,
		IndicatorTimeout:  cfg.Timeouts.Indicator,
		LoginTimeout:      cfg.Timeouts.Login,
		NavigationTimeout: cfg.Timeouts.Navigation,
	}, auth.Hooks{
		Relaunch: func(ctx context.Context) error { return c.driver.Relaunch(ctx, false) },
		Persist:  func(context.Context) error { return c.saveSession() },
	}, logger.With("auth"))
	return c, nil
}

// SetFeedFetcher replaces the RSS downloader.
func (c *Client) SetFeedFetcher(f FeedFetcher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchFeed = f
}

// Status returns the current session status.
func (c *Client) Status() session.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Initialize validates the stored session, picks the launch mode and starts
// the browser. Calling it again on a live client returns the current status.
func (c *Client) Initialize(ctx context.Context, opts InitOptions) (session.Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return c.status, nil
	}

	status, _ := session.PreValidate(c.store, c.validator)
	switch {
	case status.Authenticated:
		c.logger.Infof("Stored session at %s is valid (earliest expiry %s)",
			c.store.Path(), formatExpiry(status.EarliestExpiry))
	case status.Load == session.LoadLoaded:
		c.logger.Infof("Stored session at %s has expired", c.store.Path())
	default:
		c.logger.Infof("No usable stored session at %s (%s)", c.store.Path(), status.Load)
	}

	force := opts.ForceHeadless
	if force == nil {
		force = c.cfg.Browser.Headless
	}
	mode := session.DecideMode(force, status)

	launch := browser.LaunchOptions{Headless: mode.Headless()}
	if status.Authenticated {
		launch.StorageStatePath = c.store.Path()
	}
	c.logger.Infof("Launching browser in %s mode", mode)
	if err := c.driver.Launch(ctx, launch); err != nil {
		return session.Status{}, fmt.Errorf("failed to launch browser: %w", err)
	}

	c.status = status
	c.initialized = true
	return c.status, nil
}

// EnsureLoggedIn verifies the session against the site, running the
// interactive login when it is not live. A verified client is not re-checked.
func (c *Client) EnsureLoggedIn(ctx context.Context) (session.Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.ensureLoggedIn(ctx)
	return c.status, err
}

func (c *Client) ensureLoggedIn(ctx context.Context) error {
	if !c.initialized {
		return ErrNotInitialized
	}
	if c.status.Verified {
		return nil
	}

	res, err := c.login.Run(ctx, c.driver)
	c.logger.Debugf("Login flow trace: %v", res.Trace)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	c.status = c.status.LoggedIn(res.State == auth.StateAuthenticated)
	return nil
}

// Close shuts the browser down and forgets the session status, so the next
// Initialize validates from scratch.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status = session.Status{}
	if !c.initialized {
		return nil
	}
	c.initialized = false

	err := c.driver.Close()
	if s, ok := c.driver.(interface{ Shutdown() error }); ok {
		if sErr := s.Shutdown(); sErr != nil && err == nil {
			err = sErr
		}
	}
	return err
}

// authenticated runs fn under the client lock after making sure the session
// is live, then refreshes the stored session.
func authenticated[T any](ctx context.Context, c *Client, op string, fn func() (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	if err := c.ensureLoggedIn(ctx); err != nil {
		return zero, err
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	c.logger.Debugf("Running %s", op)
	out, err := fn()
	if saveErr := c.saveSession(); saveErr != nil {
		c.logger.Warnf("Session not refreshed after %s: %v", op, saveErr)
	}
	return out, err
}

func (c *Client) saveSession() error {
	raw, err := c.driver.StorageState()
	if err != nil {
		return err
	}
	return c.store.SaveStorageState(raw)
}

// navigate opens url and lets the page settle.
func (c *Client) navigate(url string) error {
	err := c.driver.Navigate(url, browser.NavigateOptions{
		WaitUntil: browser.WaitDOMContentLoaded,
		Timeout:   c.cfg.Timeouts.Navigation,
	})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	c.driver.Settle(c.cfg.Timeouts.Settle)
	return nil
}

// loadMore scrolls the page to pull in lazily loaded entries. Failures only
// cost entries, so they are logged.
func (c *Client) loadMore() {
	if err := c.driver.Scroll(scrollRounds, c.cfg.Timeouts.Settle); err != nil {
		c.logger.Debugf("Scrolling failed: %v", err)
	}
}

func (c *Client) siteURL(path string) string {
	return c.extractor.BaseURL() + "/" + strings.TrimLeft(path, "/")
}

func formatExpiry(t time.Time) string {
	if t.IsZero() {
		return "none"
	}
	return t.Format(time.RFC3339)
}
