// Package clock abstracts wall-clock reads so that "today" and
// "end of month" arithmetic in scheduled jobs is deterministic in tests.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// System reads the real wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }
