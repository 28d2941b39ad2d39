package ports

import "time"

// Clock supplies the current time. Injected so that expiry and TTL
// arithmetic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock implementation used outside tests.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
