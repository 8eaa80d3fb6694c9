package session

import (
	"encoding/json"
	"fmt"
	"time"
)

// Bundle is the persisted credential set: cookies plus per-origin local
// storage. Its JSON layout matches a Playwright storage-state file so the
// browser can load it directly.
type Bundle struct {
	Cookies []Cookie `json:"cookies"`
	Origins []Origin `json:"origins"`
}

// Cookie is a single browser cookie.
// Expires is in epoch seconds; values <= 0 mean a browser-session cookie.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// Origin holds the local storage entries of one origin.
type Origin struct {
	Origin       string         `json:"origin"`
	LocalStorage []StorageEntry `json:"localStorage"`
}

// StorageEntry is one local storage key/value pair.
type StorageEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// HasExpiry reports whether the cookie carries a fixed expiry.
func (c Cookie) HasExpiry() bool {
	return c.Expires > 0
}

// ExpiresAt converts Expires to a time. Only meaningful when HasExpiry is true.
func (c Cookie) ExpiresAt() time.Time {
	sec := int64(c.Expires)
	nsec := int64((c.Expires - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}

// DecodeBundle parses a storage-state document.
func DecodeBundle(data []byte) (*Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to decode session bundle: %w", err)
	}
	return &b, nil
}

// EarliestExpiry returns the soonest fixed expiry among all cookies.
// It is a diagnostic helper; validity is decided by Validator.
func EarliestExpiry(b *Bundle) (time.Time, bool) {
	if b == nil {
		return time.Time{}, false
	}
	var (
		earliest time.Time
		found    bool
	)
	for _, c := range b.Cookies {
		if !c.HasExpiry() {
			continue
		}
		at := c.ExpiresAt()
		if !found || at.Before(earliest) {
			earliest = at
			found = true
		}
	}
	return earliest, found
}
