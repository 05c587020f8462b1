package session

import "time"

// Timer is a cancellable scheduled callback. Stop reports whether the call
// was prevented from running; stopping a fired timer is a no-op.
type Timer interface {
	Stop() bool
}

// Clock abstracts time so the timer-driven lifecycle can be tested without
// real waiting.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

type realClock struct{}

// NewClock returns the wall clock.
func NewClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
