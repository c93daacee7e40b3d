package clock

import "time"

// Clock provides the current time. Token issuance and verification read time
// only through this interface so tests can move it.
type Clock interface {
	Now() time.Time
}

// Real implements Clock using the system clock.
type Real struct{}

// Now returns time.Now().
func (Real) Now() time.Time {
	return time.Now()
}

var _ Clock = Real{}
