package session

import "time"

// Source records where an authenticated status came from.
type Source string

const (
	SourceNone  Source = "none"
	SourceDisk  Source = "disk"
	SourceLogin Source = "login"
)

// Status is an immutable snapshot of what a client knows about its session.
// The zero value means unauthenticated. New values are produced by
// PreValidate and by the login flow; nothing mutates a Status in place.
type Status struct {
	// Authenticated is true when the browser was started with, or has since
	// established, a session believed valid.
	Authenticated bool

	// Verified is true once a live check against the site confirmed the session.
	Verified bool

	Source Source
	Load   LoadState

	// EarliestExpiry is the soonest cookie expiry seen on disk, for logging.
	EarliestExpiry time.Time
}

// PreValidate loads the stored bundle and validates it without a browser.
// It must run before DecideMode so that mode selection sees its result.
func PreValidate(store *FileStore, validator *Validator) (Status, *Bundle) {
	bundle, state := store.Load()
	st := Status{Source: SourceNone, Load: state}
	if state != LoadLoaded {
		return st, nil
	}

	if earliest, ok := EarliestExpiry(bundle); ok {
		st.EarliestExpiry = earliest
	}
	if validator.Validate(bundle) {
		st.Authenticated = true
		st.Source = SourceDisk
	}
	return st, bundle
}

// LoggedIn returns the status after a successful live login check.
func (s Status) LoggedIn(fromLogin bool) Status {
	next := s
	next.Authenticated = true
	next.Verified = true
	if fromLogin || next.Source == SourceNone {
		next.Source = SourceLogin
	}
	return next
}
