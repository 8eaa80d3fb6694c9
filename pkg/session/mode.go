package session

// Mode is how the browser should be launched.
type Mode string

const (
	ModeHeadless    Mode = "headless"
	ModeInteractive Mode = "interactive"
)

// Headless reports whether the mode runs without a visible window.
func (m Mode) Headless() bool {
	return m == ModeHeadless
}

// DecideMode picks the launch mode. An explicit override wins; otherwise the
// browser runs headless only when status says the stored session is valid,
// since an interactive login needs a visible window.
func DecideMode(forceHeadless *bool, status Status) Mode {
	if forceHeadless != nil {
		if *forceHeadless {
			return ModeHeadless
		}
		return ModeInteractive
	}
	if status.Authenticated {
		return ModeHeadless
	}
	return ModeInteractive
}
