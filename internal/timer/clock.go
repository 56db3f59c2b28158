// Package timer provides the clock abstraction and the keyed debounce table
// behind every deferred task in the app: view tracking, re-sorting and
// location writes.
package timer

import "time"

// Clock supplies the current time and one-shot timers.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Stopper
}

// Stopper cancels a timer. Stop reports whether the call prevented the
// timer from firing.
type Stopper interface {
	Stop() bool
}

type realClock struct{}

// Real returns the wall clock.
func Real() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}
