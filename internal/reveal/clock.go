package reveal

import "time"

// Timer is the part of *time.Timer the typewriter needs.
type Timer interface {
	Stop() bool
}

// Clock reads the current time and schedules callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock runs callbacks on time.AfterFunc goroutines.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
