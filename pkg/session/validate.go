package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/gobwas/glob"
)

// Validator decides statically whether a Bundle can still authenticate.
//
// Only critical cookies count: their name matches one of the name patterns and
// their domain matches one of the domain patterns. Analytics and tracking
// cookies are ignored. The validator never checks that an auth cookie is
// present; that is left to the live login check.
type Validator struct {
	names   []glob.Glob
	domains []glob.Glob
	now     func() time.Time
}

// NewValidator compiles the name and domain glob patterns. Matching is
// case-insensitive. An empty domain list treats every domain as the target.
func NewValidator(namePatterns, domainPatterns []string) (*Validator, error) {
	names, err := compileAll(namePatterns)
	if err != nil {
		return nil, fmt.Errorf("invalid critical cookie pattern: %w", err)
	}
	domains, err := compileAll(domainPatterns)
	if err != nil {
		return nil, fmt.Errorf("invalid critical domain pattern: %w", err)
	}
	return &Validator{names: names, domains: domains, now: time.Now}, nil
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(strings.ToLower(p))
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// WithClock returns a copy of v that reads the current time from now.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	cp := *v
	cp.now = now
	return &cp
}

// IsCritical reports whether a cookie participates in the validity check.
func (v *Validator) IsCritical(c Cookie) bool {
	if !matchAny(v.names, strings.ToLower(c.Name)) {
		return false
	}
	if len(v.domains) == 0 {
		return true
	}
	domain := strings.TrimPrefix(strings.ToLower(c.Domain), ".")
	return matchAny(v.domains, domain)
}

func matchAny(globs []glob.Glob, s string) bool {
	for _, g := range globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}

// Validate returns true iff b is non-nil, has a cookie collection, and no
// critical cookie carries a positive expiry at or before now. An empty cookie
// collection is valid.
func (v *Validator) Validate(b *Bundle) bool {
	_, ok := v.FirstExpired(b)
	return ok
}

// FirstExpired returns the first expired critical cookie, if any, alongside
// the validity verdict. It lets callers log which cookie failed.
func (v *Validator) FirstExpired(b *Bundle) (*Cookie, bool) {
	if b == nil || b.Cookies == nil {
		return nil, false
	}
	now := v.now()
	for i := range b.Cookies {
		c := b.Cookies[i]
		if !c.HasExpiry() || !v.IsCritical(c) {
			continue
		}
		if !c.ExpiresAt().After(now) {
			return &c, false
		}
	}
	return nil, true
}
