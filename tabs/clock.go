package tabs

import "time"

// Clock schedules the delayed phases of tab transitions. The production
// implementation delegates to the runtime timer wheel; tests drive a manual
// clock to make phase ordering deterministic.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable scheduled task.
type Timer interface {
	Stop() bool
}

// NewSystemClock returns a Clock backed by the runtime's timers.
func NewSystemClock() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
