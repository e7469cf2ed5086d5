package engine

import "time"

// CancelToken cancels a pending scheduled callback. Cancel reports whether
// the callback was stopped before it fired.
type CancelToken interface {
	Cancel() bool
}

// Clock abstracts the two time dependencies of the engine: reading the wall
// clock and arming one-shot timers. Every suspension point in the engine goes
// through Schedule, so tests can drive timers deterministically.
type Clock interface {
	Now() time.Time
	Schedule(after time.Duration, fn func()) CancelToken
}

type realClock struct{}

func NewClock() Clock {
	return &realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Schedule(after time.Duration, fn func()) CancelToken {
	return &timerToken{timer: time.AfterFunc(after, fn)}
}

type timerToken struct {
	timer *time.Timer
}

func (t *timerToken) Cancel() bool {
	return t.timer.Stop()
}
