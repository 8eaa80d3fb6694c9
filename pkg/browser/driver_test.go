package browser

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDriverDefaults(t *testing.T) {
	d := NewDriver(Options{})
	assert.Equal(t, DefaultViewportWidth, d.opts.Viewport.Width)
	assert.Equal(t, DefaultViewportHeight, d.opts.Viewport.Height)
	assert.Equal(t, DefaultTimeout, d.opts.DefaultTimeout)
	assert.Equal(t, DefaultLocale, d.opts.Locale)

	d = NewDriver(Options{Viewport: &Viewport{Width: 800, Height: 600}, DefaultTimeout: time.Second})
	assert.Equal(t, 800, d.opts.Viewport.Width)
	assert.Equal(t, time.Second, d.opts.DefaultTimeout)
}

func TestDriverOperationsBeforeLaunch(t *testing.T) {
	d := NewDriver(Options{})

	assert.False(t, d.Launched())
	assert.False(t, d.Headless())
	assert.Equal(t, "", d.URL())

	assert.ErrorIs(t, d.Navigate("https://example.com", NavigateOptions{}), ErrNotLaunched)
	_, err := d.Content()
	assert.ErrorIs(t, err, ErrNotLaunched)
	assert.ErrorIs(t, d.WaitFor("body", time.Second), ErrNotLaunched)
	assert.ErrorIs(t, d.Click("button", time.Second), ErrNotLaunched)
	assert.ErrorIs(t, d.Scroll(2, time.Millisecond), ErrNotLaunched)
	_, err = d.StorageState()
	assert.ErrorIs(t, err, ErrNotLaunched)

	// no-ops
	d.Settle(time.Second)
	require.NoError(t, d.Close())
	require.NoError(t, d.Shutdown())
}

func TestLaunchHonoursCancelledContext(t *testing.T) {
	d := NewDriver(Options{SkipInstall: true})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Launch(ctx, LaunchOptions{Headless: true})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, d.Launched())
}

func TestMillis(t *testing.T) {
	assert.Equal(t, 1500.0, millis(1500*time.Millisecond))
	assert.Equal(t, 0.0, millis(0))
}

func TestStealthScriptHidesWebdriver(t *testing.T) {
	assert.Contains(t, stealthScript, "navigator, 'webdriver'")
	assert.Contains(t, launchArgs, "--disable-blink-features=AutomationControlled")
}

type staticPage struct {
	html string
	err  error
}

func (p staticPage) Content() (string, error) { return p.html, p.err }

func TestEvaluateOnPage(t *testing.T) {
	n, err := EvaluateOnPage(staticPage{html: "<p>a</p><p>b</p>"}, func(html string) int {
		return strings.Count(html, "<p>")
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = EvaluateOnPage(staticPage{err: errors.New("detached")}, func(string) int { return 1 })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to snapshot page")
}
