package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Driver owns exactly one browser, context and page. It knows how to move the
// page around and hand out its document; it does not know what pages mean.
type Driver struct {
	mu sync.Mutex

	opts Options

	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page

	launch   LaunchOptions
	launched bool
}

// NewDriver creates a driver. Nothing is started until Launch.
func NewDriver(opts Options) *Driver {
	if opts.Viewport == nil {
		opts.Viewport = &Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}
	if opts.DefaultTimeout == 0 {
		opts.DefaultTimeout = DefaultTimeout
	}
	if opts.Locale == "" {
		opts.Locale = DefaultLocale
	}
	return &Driver{opts: opts}
}

func (d *Driver) startPlaywright() error {
	if d.pw != nil {
		return nil
	}

	// Keep driver output away from the caller's stdout.
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if !d.opts.SkipInstall {
		if err := playwright.Install(runOpts); err != nil {
			return fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}
	d.pw = pw
	return nil
}

// Launch starts the browser triple. Launching an already launched driver is
// an error; use Relaunch to switch modes.
func (d *Driver) Launch(ctx context.Context, opts LaunchOptions) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.launched {
		return fmt.Errorf("browser already launched")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.launchLocked(opts)
}

func (d *Driver) launchLocked(opts LaunchOptions) error {
	if err := d.startPlaywright(); err != nil {
		return err
	}

	headless := opts.Headless
	browser, err := d.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &headless,
		Args:     launchArgs,
	})
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(d.opts.UserAgent),
		Locale:    playwright.String(d.opts.Locale),
		Viewport: &playwright.Size{
			Width:  d.opts.Viewport.Width,
			Height: d.opts.Viewport.Height,
		},
	}
	if d.opts.UserAgent == "" {
		contextOpts.UserAgent = nil
	}
	if opts.StorageStatePath != "" {
		if _, statErr := os.Stat(opts.StorageStatePath); statErr == nil {
			contextOpts.StorageStatePath = playwright.String(opts.StorageStatePath)
		}
	}

	bctx, err := browser.NewContext(contextOpts)
	if err != nil {
		browser.Close()
		return fmt.Errorf("failed to create context: %w", err)
	}

	if err := bctx.AddInitScript(playwright.Script{Content: playwright.String(stealthScript)}); err != nil {
		bctx.Close()
		browser.Close()
		return fmt.Errorf("failed to install init script: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		browser.Close()
		return fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(millis(d.opts.DefaultTimeout))
	page.SetDefaultNavigationTimeout(millis(d.opts.DefaultTimeout))

	d.browser = browser
	d.context = bctx
	d.page = page
	d.launch = opts
	d.launched = true
	return nil
}

// Relaunch tears down the current triple and starts a new one in the given
// mode with the same storage state path.
func (d *Driver) Relaunch(ctx context.Context, headless bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	opts := d.launch
	opts.Headless = headless
	d.closeLocked()
	return d.launchLocked(opts)
}

func (d *Driver) closeLocked() {
	if !d.launched {
		return
	}
	// Ignore errors, continue cleanup
	_ = d.page.Close()
	_ = d.context.Close()
	_ = d.browser.Close()
	d.page = nil
	d.context = nil
	d.browser = nil
	d.launched = false
}

// Close closes the browser triple. The Playwright process stays up so a later
// Launch is cheap; call Shutdown to stop it.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closeLocked()
	return nil
}

// Shutdown closes the browser and stops Playwright.
func (d *Driver) Shutdown() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closeLocked()
	if d.pw != nil {
		err := d.pw.Stop()
		d.pw = nil
		if err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
	}
	return nil
}

// Launched reports whether a browser triple is live.
func (d *Driver) Launched() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.launched
}

// Headless reports the mode of the live browser.
func (d *Driver) Headless() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.launched && d.launch.Headless
}

func (d *Driver) currentPage() (playwright.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.launched {
		return nil, ErrNotLaunched
	}
	return d.page, nil
}

// Navigate navigates the page to url.
func (d *Driver) Navigate(url string, opts NavigateOptions) error {
	page, err := d.currentPage()
	if err != nil {
		return err
	}

	gotoOpts := playwright.PageGotoOptions{}
	if opts.WaitUntil != "" {
		waitUntil := playwright.WaitUntilState(opts.WaitUntil)
		gotoOpts.WaitUntil = &waitUntil
	}
	if opts.Timeout > 0 {
		timeout := millis(opts.Timeout)
		gotoOpts.Timeout = &timeout
	}

	if _, err := page.Goto(url, gotoOpts); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, wrapTimeout(err))
	}
	return nil
}

// URL returns the page's current URL, or "" when not launched.
func (d *Driver) URL() string {
	page, err := d.currentPage()
	if err != nil {
		return ""
	}
	return page.URL()
}

// Content returns the serialized DOM of the live page.
func (d *Driver) Content() (string, error) {
	page, err := d.currentPage()
	if err != nil {
		return "", err
	}
	html, err := page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return html, nil
}

// WaitFor waits until selector is attached to the DOM or timeout elapses.
func (d *Driver) WaitFor(selector string, timeout time.Duration) error {
	page, err := d.currentPage()
	if err != nil {
		return err
	}

	ms := millis(timeout)
	state := playwright.WaitForSelectorState("attached")
	_, err = page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   &state,
		Timeout: &ms,
	})
	if err != nil {
		return fmt.Errorf("wait for %q failed: %w", selector, wrapTimeout(err))
	}
	return nil
}

// Click clicks the first element matching selector.
func (d *Driver) Click(selector string, timeout time.Duration) error {
	page, err := d.currentPage()
	if err != nil {
		return err
	}
	ms := millis(timeout)
	if err := page.Click(selector, playwright.PageClickOptions{Timeout: &ms}); err != nil {
		return fmt.Errorf("click %q failed: %w", selector, wrapTimeout(err))
	}
	return nil
}

// Settle pauses for wait to let client-side rendering catch up.
func (d *Driver) Settle(wait time.Duration) {
	page, err := d.currentPage()
	if err != nil || wait <= 0 {
		return
	}
	page.WaitForTimeout(millis(wait))
}

// Scroll scrolls to the bottom rounds times, pausing between rounds so
// lazily loaded content can render. It stops early once the page stops growing.
func (d *Driver) Scroll(rounds int, pause time.Duration) error {
	page, err := d.currentPage()
	if err != nil {
		return err
	}

	var lastHeight float64
	for i := 0; i < rounds; i++ {
		result, err := page.Evaluate(scrollScript)
		if err != nil {
			return fmt.Errorf("scroll failed: %w", err)
		}
		page.WaitForTimeout(millis(pause))

		height := asFloat(result)
		if height == lastHeight {
			break
		}
		lastHeight = height
	}
	return nil
}

// StorageState dumps the context's cookies and local storage as JSON in the
// storage-state layout.
func (d *Driver) StorageState() ([]byte, error) {
	d.mu.Lock()
	bctx, launched := d.context, d.launched
	d.mu.Unlock()
	if !launched {
		return nil, ErrNotLaunched
	}

	state, err := bctx.StorageState()
	if err != nil {
		return nil, fmt.Errorf("failed to read storage state: %w", err)
	}
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode storage state: %w", err)
	}
	return data, nil
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

func wrapTimeout(err error) error {
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
