package store

import "time"

// Clock abstracts the current time so expiry behavior can be driven
// deterministically in tests.
type Clock interface {
	// Now returns the current local time.
	Now() time.Time
}

type systemClock struct{}

// NewSystemClock returns a Clock backed by the wall clock.
func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}
