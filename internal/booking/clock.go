package booking

import "time"

// Clock abstracts the current time so tests can pin it.  All engine
// comparisons happen in UTC.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

// Now returns the current UTC time.
func (RealClock) Now() time.Time { return time.Now().UTC() }
