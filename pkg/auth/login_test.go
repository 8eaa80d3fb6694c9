package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/entrhq/inkwell/pkg/browser"
	"github.com/entrhq/inkwell/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loginURL = "https://medium.com/m/signin"

// fakePage scripts where navigation lands and which selectors appear.
type fakePage struct {
	headless   bool
	landOn     string
	present    map[string]bool
	loginAfter int // number of WaitFor calls before the union selector appears
	navErr     error

	url       string
	navCount  int
	waits     []string
	waitTimes []time.Duration
}

func (p *fakePage) Navigate(u string, _ browser.NavigateOptions) error {
	p.navCount++
	if p.navErr != nil {
		return p.navErr
	}
	if p.landOn != "" {
		p.url = p.landOn
	} else {
		p.url = u
	}
	return nil
}

func (p *fakePage) URL() string { return p.url }

func (p *fakePage) WaitFor(sel string, timeout time.Duration) error {
	p.waits = append(p.waits, sel)
	p.waitTimes = append(p.waitTimes, timeout)
	if p.present[sel] {
		return nil
	}
	if strings.Contains(sel, ", ") && p.loginAfter > 0 && len(p.waits) >= p.loginAfter {
		return nil
	}
	return browser.ErrTimeout
}

func (p *fakePage) Headless() bool { return p.headless }

func testConfig() Config {
	return Config{
		LoginURL:          loginURL,
		Indicators:        []string{"#avatar", "#write"},
		IndicatorTimeout:  10 * time.Millisecond,
		LoginTimeout:      50 * time.Millisecond,
		NavigationTimeout: time.Second,
	}
}

type hookRecorder struct {
	relaunches int
	persists   int
	persistErr error
	page       *fakePage
}

func (h *hookRecorder) hooks() Hooks {
	return Hooks{
		Relaunch: func(context.Context) error {
			h.relaunches++
			h.page.headless = false
			return nil
		},
		Persist: func(context.Context) error {
			h.persists++
			return h.persistErr
		},
	}
}

func TestRunRedirectMeansAlreadyAuthenticated(t *testing.T) {
	page := &fakePage{landOn: "https://medium.com/?source=login"}
	rec := &hookRecorder{page: page}
	m := NewMachine(testConfig(), rec.hooks(), logging.Discard())

	res, err := m.Run(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, StateAlreadyAuthenticated, res.State)
	assert.Equal(t, []State{StateCheckRedirect, StateAlreadyAuthenticated}, res.Trace)
	assert.Empty(t, page.waits, "redirect path must not inspect the DOM")
	assert.Equal(t, 1, rec.persists)
}

func TestRunIsIdempotentWhenAuthenticated(t *testing.T) {
	page := &fakePage{landOn: "https://medium.com/"}
	rec := &hookRecorder{page: page}
	m := NewMachine(testConfig(), rec.hooks(), logging.Discard())

	for i := 0; i < 2; i++ {
		res, err := m.Run(context.Background(), page)
		require.NoError(t, err)
		assert.Equal(t, StateAlreadyAuthenticated, res.State)
		assert.NotContains(t, res.Trace, StateWaitForUser)
	}
	assert.Equal(t, 0, rec.relaunches)
	assert.Equal(t, 2, rec.persists)
}

func TestRunIndicatorOnLoginPage(t *testing.T) {
	page := &fakePage{present: map[string]bool{"#write": true}}
	rec := &hookRecorder{page: page}
	m := NewMachine(testConfig(), rec.hooks(), logging.Discard())

	res, err := m.Run(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, StateAlreadyAuthenticated, res.State)
	assert.Equal(t, "#write", res.Indicator)
	assert.Equal(t, []string{"#avatar", "#write"}, page.waits, "indicators are tried in order")
	assert.Equal(t, []State{StateCheckRedirect, StateCheckIndicators, StateAlreadyAuthenticated}, res.Trace)
}

func TestRunInteractiveLoginSucceeds(t *testing.T) {
	page := &fakePage{loginAfter: 3}
	rec := &hookRecorder{page: page}
	m := NewMachine(testConfig(), rec.hooks(), logging.Discard())

	res, err := m.Run(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, res.State)
	assert.Equal(t, []State{
		StateCheckRedirect, StateCheckIndicators, StateNeedsLogin, StateWaitForUser, StateAuthenticated,
	}, res.Trace)
	assert.Equal(t, 0, rec.relaunches)
	assert.Equal(t, 1, rec.persists)

	// the final wait uses the union of indicators with the long timeout
	assert.Equal(t, "#avatar, #write", page.waits[2])
	assert.Equal(t, 50*time.Millisecond, page.waitTimes[2])
	assert.Equal(t, 10*time.Millisecond, page.waitTimes[0])
}

func TestRunHeadlessRejectedSessionRestartsVisible(t *testing.T) {
	page := &fakePage{headless: true, loginAfter: 3}
	rec := &hookRecorder{page: page}
	m := NewMachine(testConfig(), rec.hooks(), logging.Discard())

	res, err := m.Run(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, res.State)
	assert.Contains(t, res.Trace, StateRestartVisible)
	assert.Equal(t, 1, rec.relaunches)
	assert.Equal(t, 2, page.navCount, "login page is reopened after the restart")
	assert.False(t, page.headless)
}

func TestRunTimesOutWithoutPersisting(t *testing.T) {
	page := &fakePage{}
	rec := &hookRecorder{page: page}
	m := NewMachine(testConfig(), rec.hooks(), logging.Discard())

	res, err := m.Run(context.Background(), page)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoginTimedOut)
	assert.Equal(t, StateTimedOut, res.State)
	assert.Equal(t, 0, rec.persists)
	assert.True(t, res.State.Terminal())
	assert.False(t, res.State.Success())
}

func TestRunPersistFailureIsNotFatal(t *testing.T) {
	page := &fakePage{landOn: "https://medium.com/"}
	rec := &hookRecorder{page: page, persistErr: errors.New("read-only filesystem")}
	m := NewMachine(testConfig(), rec.hooks(), logging.Discard())

	res, err := m.Run(context.Background(), page)
	require.NoError(t, err)
	assert.True(t, res.State.Success())
	assert.Equal(t, 1, rec.persists)
}

func TestRunNavigationFailure(t *testing.T) {
	page := &fakePage{navErr: browser.ErrTimeout}
	m := NewMachine(testConfig(), Hooks{}, logging.Discard())

	res, err := m.Run(context.Background(), page)
	require.Error(t, err)
	assert.ErrorIs(t, err, browser.ErrTimeout)
	assert.Equal(t, StateCheckRedirect, res.State)
}

func TestRunHeadlessWithoutRelaunchHook(t *testing.T) {
	page := &fakePage{headless: true}
	m := NewMachine(testConfig(), Hooks{}, logging.Discard())

	res, err := m.Run(context.Background(), page)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relaunch hook")
	assert.Equal(t, StateNeedsLogin, res.State)
}

func TestRunCancelledContext(t *testing.T) {
	page := &fakePage{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMachine(testConfig(), Hooks{}, logging.Discard()).Run(ctx, page)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, page.waits)
}

func TestSameLocation(t *testing.T) {
	tests := []struct {
		current string
		want    bool
	}{
		{"https://medium.com/m/signin", true},
		{"https://medium.com/m/signin?redirect=%2F", true},
		{"https://MEDIUM.com/m/signin/", true},
		{"https://medium.com/", false},
		{"https://medium.com/@someone", false},
	}
	for _, tt := range tests {
		t.Run(tt.current, func(t *testing.T) {
			assert.Equal(t, tt.want, sameLocation(tt.current, loginURL))
		})
	}
}
