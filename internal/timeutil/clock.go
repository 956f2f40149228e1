// Package timeutil provides the injectable time source used by every
// "now"-relative computation (recent-alert windows, next review dates).
package timeutil

import "github.com/jonboulle/clockwork"

// clock is a package-level time source so tests can freeze time via
// SetClock. Production code uses the real clock.
var clock = clockwork.NewRealClock()

// Clock returns the current time source.
func Clock() clockwork.Clock {
	return clock
}

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
