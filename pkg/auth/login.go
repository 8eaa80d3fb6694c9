// Package auth drives the login flow: a cheap redirect probe first, then a
// short indicator poll, and only if both fail an interactive wait for the
// user to sign in through a visible browser.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/entrhq/inkwell/pkg/browser"
	"github.com/entrhq/inkwell/pkg/logging"
)

// ErrLoginTimedOut is returned when the user did not finish signing in within
// the login timeout. The attempt is over; callers must start a new one.
var ErrLoginTimedOut = errors.New("timed out waiting for login")

// State is a step of the login flow.
type State string

const (
	StateCheckRedirect        State = "check_redirect"
	StateCheckIndicators      State = "check_indicators"
	StateAlreadyAuthenticated State = "already_authenticated"
	StateNeedsLogin           State = "needs_login"
	StateRestartVisible       State = "restart_visible"
	StateWaitForUser          State = "wait_for_user"
	StateAuthenticated        State = "authenticated"
	StateTimedOut             State = "timed_out"
)

// Terminal reports whether the flow stops at s.
func (s State) Terminal() bool {
	switch s {
	case StateAlreadyAuthenticated, StateAuthenticated, StateTimedOut:
		return true
	}
	return false
}

// Success reports whether s means the page is signed in.
func (s State) Success() bool {
	return s == StateAlreadyAuthenticated || s == StateAuthenticated
}

// Page is the part of the page driver the login flow needs.
type Page interface {
	Navigate(url string, opts browser.NavigateOptions) error
	URL() string
	WaitFor(selector string, timeout time.Duration) error
	Headless() bool
}

// Config holds the login flow's URLs, markers and time bounds.
type Config struct {
	LoginURL string

	// Indicators are selectors only present for a signed-in user.
	Indicators []string

	IndicatorTimeout  time.Duration
	LoginTimeout      time.Duration
	NavigationTimeout time.Duration
}

// Hooks connect the flow to the rest of the client.
type Hooks struct {
	// Relaunch restarts the browser in visible mode. Required when the flow
	// can reach needs_login while headless.
	Relaunch func(ctx context.Context) error

	// Persist saves the now-authenticated session. Failures are logged only.
	Persist func(ctx context.Context) error
}

// Result is the outcome of one Run.
type Result struct {
	State State

	// Trace lists every state visited, in order.
	Trace []State

	// Indicator is the selector that confirmed the login, if any.
	Indicator string
}

// Machine runs the login flow. It holds no per-run state and may be reused.
type Machine struct {
	cfg    Config
	hooks  Hooks
	logger *logging.Logger
}

// NewMachine creates a login flow.
func NewMachine(cfg Config, hooks Hooks, logger *logging.Logger) *Machine {
	return &Machine{cfg: cfg, hooks: hooks, logger: logger}
}

type run struct {
	result Result
}

func (r *run) enter(s State) {
	r.result.State = s
	r.result.Trace = append(r.result.Trace, s)
}

// Run drives page from check_redirect to a terminal state. A nil error means
// the page is signed in; timed_out yields ErrLoginTimedOut.
func (m *Machine) Run(ctx context.Context, page Page) (Result, error) {
	r := &run{}

	r.enter(StateCheckRedirect)
	if err := m.navigateToLogin(page); err != nil {
		return r.result, err
	}
	if !sameLocation(page.URL(), m.cfg.LoginURL) {
		m.logger.Infof("Redirected away from login page to %s, session is live", page.URL())
		r.enter(StateAlreadyAuthenticated)
		m.persist(ctx)
		return r.result, nil
	}

	if err := ctx.Err(); err != nil {
		return r.result, err
	}
	r.enter(StateCheckIndicators)
	for _, sel := range m.cfg.Indicators {
		if err := page.WaitFor(sel, m.cfg.IndicatorTimeout); err == nil {
			m.logger.Infof("Found logged-in indicator %s", sel)
			r.result.Indicator = sel
			r.enter(StateAlreadyAuthenticated)
			m.persist(ctx)
			return r.result, nil
		}
	}

	r.enter(StateNeedsLogin)
	if page.Headless() {
		if m.hooks.Relaunch == nil {
			return r.result, fmt.Errorf("login requires a visible browser but no relaunch hook is configured")
		}
		r.enter(StateRestartVisible)
		m.logger.Infof("Stored session was rejected; restarting browser in visible mode")
		if err := m.hooks.Relaunch(ctx); err != nil {
			return r.result, fmt.Errorf("failed to restart browser for login: %w", err)
		}
		if err := m.navigateToLogin(page); err != nil {
			return r.result, err
		}
	}

	if err := ctx.Err(); err != nil {
		return r.result, err
	}
	r.enter(StateWaitForUser)
	m.logger.Infof("Waiting up to %v for the user to sign in", m.cfg.LoginTimeout)
	if err := page.WaitFor(strings.Join(m.cfg.Indicators, ", "), m.cfg.LoginTimeout); err != nil {
		r.enter(StateTimedOut)
		m.logger.Warnf("Login not completed: %v", err)
		return r.result, fmt.Errorf("%w after %v", ErrLoginTimedOut, m.cfg.LoginTimeout)
	}

	r.enter(StateAuthenticated)
	m.persist(ctx)
	return r.result, nil
}

func (m *Machine) navigateToLogin(page Page) error {
	err := page.Navigate(m.cfg.LoginURL, browser.NavigateOptions{
		WaitUntil: browser.WaitDOMContentLoaded,
		Timeout:   m.cfg.NavigationTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to open login page: %w", err)
	}
	return nil
}

func (m *Machine) persist(ctx context.Context) {
	if m.hooks.Persist == nil {
		return
	}
	if err := m.hooks.Persist(ctx); err != nil {
		m.logger.Warnf("Session not persisted: %v", err)
	}
}

// sameLocation compares scheme-less host and path, ignoring query and fragment.
func sameLocation(current, login string) bool {
	cu, err1 := url.Parse(current)
	lu, err2 := url.Parse(login)
	if err1 != nil || err2 != nil {
		return current == login
	}
	return strings.EqualFold(cu.Host, lu.Host) &&
		strings.TrimRight(cu.Path, "/") == strings.TrimRight(lu.Path, "/")
}
