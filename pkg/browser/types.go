package browser

import (
	"errors"
	"time"
)

var (
	// ErrNotLaunched is returned by every page operation issued before Launch
	// or after Close.
	ErrNotLaunched = errors.New("browser not launched")

	// ErrTimeout wraps Playwright timeouts so callers need not import playwright.
	ErrTimeout = errors.New("browser wait timed out")
)

// WaitUntil specifies when navigation is considered finished.
type WaitUntil string

const (
	WaitLoad             WaitUntil = "load"
	WaitDOMContentLoaded WaitUntil = "domcontentloaded"
	WaitNetworkIdle      WaitUntil = "networkidle"
	WaitCommit           WaitUntil = "commit"
)

// NavigateOptions configures page navigation behavior.
type NavigateOptions struct {
	WaitUntil WaitUntil

	// Timeout bounds the navigation; zero uses the driver default.
	Timeout time.Duration
}

// LaunchOptions configures one browser/context/page triple.
type LaunchOptions struct {
	Headless bool

	// StorageStatePath, when set, seeds the context with a saved session.
	StorageStatePath string
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// Options are fixed for the lifetime of a Driver.
type Options struct {
	UserAgent      string
	Viewport       *Viewport
	Locale         string
	DefaultTimeout time.Duration

	// SkipInstall skips the Playwright driver/browser download check.
	SkipInstall bool
}

// Default values for driver options
const (
	DefaultTimeout        = 30 * time.Second
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 800
	DefaultLocale         = "en-US"
)

func millis(d time.Duration) float64 {
	return float64(d / time.Millisecond)
}
