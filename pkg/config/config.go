// Package config loads inkwell's YAML configuration and applies defaults and
// environment overrides.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvSessionPath = "INKWELL_SESSION_PATH"
	EnvHeadless    = "INKWELL_HEADLESS"
	EnvBaseURL     = "INKWELL_BASE_URL"
)

// Config is the complete inkwell configuration.
type Config struct {
	Site     SiteConfig    `yaml:"site" json:"site"`
	Session  SessionConfig `yaml:"session" json:"session"`
	Browser  BrowserConfig `yaml:"browser" json:"browser"`
	Timeouts TimeoutConfig `yaml:"timeouts" json:"timeouts"`
	Logging  LoggingConfig `yaml:"logging" json:"logging"`
}

// SiteConfig describes the target platform's entry points.
type SiteConfig struct {
	BaseURL  string `yaml:"base_url" json:"base_url"`
	LoginURL string `yaml:"login_url" json:"login_url"`

	// LoggedInIndicators are selectors that only render for a signed-in user.
	LoggedInIndicators []string `yaml:"logged_in_indicators" json:"logged_in_indicators"`
}

// SessionConfig controls where the credential bundle lives and which cookies
// decide whether it is still valid.
type SessionConfig struct {
	Path            string   `yaml:"path" json:"path"`
	CriticalCookies []string `yaml:"critical_cookies" json:"critical_cookies"`
	CriticalDomains []string `yaml:"critical_domains" json:"critical_domains"`
}

// BrowserConfig controls the Playwright launch.
type BrowserConfig struct {
	// Headless forces a mode when set; nil lets the session state decide.
	Headless       *bool  `yaml:"headless" json:"headless"`
	UserAgent      string `yaml:"user_agent" json:"user_agent"`
	ViewportWidth  int    `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight int    `yaml:"viewport_height" json:"viewport_height"`
	SkipInstall    bool   `yaml:"skip_install" json:"skip_install"`
}

// TimeoutConfig bounds every wait the client performs.
type TimeoutConfig struct {
	Navigation time.Duration `yaml:"navigation" json:"navigation"`
	Indicator  time.Duration `yaml:"indicator" json:"indicator"`
	Login      time.Duration `yaml:"login" json:"login"`
	Settle     time.Duration `yaml:"settle" json:"settle"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls logging level: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`
	// Stderr sends logs to stderr instead of ~/.inkwell/logs
	Stderr bool `yaml:"stderr" json:"stderr"`
}

const (
	defaultBaseURL   = "https://medium.com"
	defaultLoginPath = "/m/signin"
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{
		Site: SiteConfig{
			BaseURL: defaultBaseURL,
			LoggedInIndicators: []string{
				`[data-testid="headerUserIcon"]`,
				`button[aria-label="user options menu"]`,
				`a[href="/me/stories"]`,
				`[data-testid="headerWriteButton"]`,
			},
		},
		Session: SessionConfig{
			Path:            defaultSessionPath(),
			CriticalCookies: []string{"sid", "uid", "*session*", "*auth*", "*token*"},
			CriticalDomains: []string{"medium.com", "*.medium.com"},
		},
		Browser: BrowserConfig{
			UserAgent:      defaultUserAgent,
			ViewportWidth:  1280,
			ViewportHeight: 800,
		},
		Timeouts: TimeoutConfig{
			Navigation: 30 * time.Second,
			Indicator:  2 * time.Second,
			Login:      5 * time.Minute,
			Settle:     1500 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Verbosity: "normal",
		},
	}
	cfg.fillDerived()
	return cfg
}

func defaultSessionPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".inkwell", "session.json")
	}
	return filepath.Join(homeDir, ".inkwell", "session.json")
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.Site.LoginURL = ""

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.fillDerived()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays environment values using lookup (os.LookupEnv in production).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvSessionPath); ok && v != "" {
		c.Session.Path = v
	}
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		c.Site.BaseURL = strings.TrimRight(v, "/")
		c.Site.LoginURL = ""
	}
	if v, ok := lookup(EnvHeadless); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvHeadless, v, err)
		}
		c.Browser.Headless = &b
	}
	return nil
}

func (c *Config) fillDerived() {
	c.Site.BaseURL = strings.TrimRight(c.Site.BaseURL, "/")
	if c.Site.LoginURL == "" {
		c.Site.LoginURL = c.Site.BaseURL + defaultLoginPath
	}
	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := url.ParseRequestURI(c.Site.BaseURL); err != nil {
		return fmt.Errorf("site.base_url is not a valid URL: %w", err)
	}
	if _, err := url.ParseRequestURI(c.Site.LoginURL); err != nil {
		return fmt.Errorf("site.login_url is not a valid URL: %w", err)
	}
	if len(c.Site.LoggedInIndicators) == 0 {
		return fmt.Errorf("site.logged_in_indicators must not be empty")
	}
	if c.Session.Path == "" {
		return fmt.Errorf("session.path is required")
	}
	if len(c.Session.CriticalCookies) == 0 {
		return fmt.Errorf("session.critical_cookies must not be empty")
	}

	if c.Timeouts.Navigation <= 0 {
		return fmt.Errorf("timeouts.navigation must be positive")
	}
	if c.Timeouts.Indicator <= 0 {
		return fmt.Errorf("timeouts.indicator must be positive")
	}
	if c.Timeouts.Login < c.Timeouts.Indicator {
		return fmt.Errorf("timeouts.login (%v) must not be shorter than timeouts.indicator (%v)", c.Timeouts.Login, c.Timeouts.Indicator)
	}
	if c.Timeouts.Settle < 0 {
		return fmt.Errorf("timeouts.settle cannot be negative")
	}

	if c.Browser.ViewportWidth < 0 || c.Browser.ViewportHeight < 0 {
		return fmt.Errorf("browser viewport cannot be negative")
	}
	return nil
}
