// Package clock provides the wall clock used for transition timestamps.
package clock

import "time"

// System reads the wall clock in UTC. It satisfies ports.Clock.
type System struct{}

func (System) Now() time.Time {
	return time.Now().UTC()
}
