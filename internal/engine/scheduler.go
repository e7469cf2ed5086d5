package engine

import (
	"math/rand/v2"
	"sync"
	"time"

	"ade/internal/providers"
	"ade/internal/structures"
)

const (
	OutcomeShown       = "shown"
	OutcomeBusy        = "busy"
	OutcomeCapped      = "capped"
	OutcomeTargeting   = "targeting"
	OutcomeNoCandidate = "no_candidate"
	OutcomeFetchError  = "fetch_error"
)

const (
	TriggerInterval = "interval"
	TriggerLogin    = "login"
)

// CycleRunner executes one display attempt and reports its outcome. The
// scheduler never inspects gating state itself; it only owns the cadence.
type CycleRunner interface {
	RunCycle(trigger string) string
}

// DisplayScheduler owns the repeating decision loop: draw a wait interval
// uniformly from [minInterval, maxInterval], arm a one-shot timer, attempt a
// cycle on expiry, and re-arm after every outcome except a shown ad. In that
// case the cadence suspends until the playback session closes.
type DisplayScheduler struct {
	mu     sync.Mutex
	cfg    structures.DisplayConfig
	clock  Clock
	logger providers.Logger
	runner CycleRunner

	token     CancelToken
	running   bool
	suspended bool

	// intn is swappable so tests can pin the drawn interval.
	intn func(n int64) int64
}

func NewDisplayScheduler(cfg structures.DisplayConfig, clock Clock, logger providers.Logger, runner CycleRunner) *DisplayScheduler {
	return &DisplayScheduler{
		cfg:    cfg,
		clock:  clock,
		logger: logger,
		runner: runner,
		intn:   rand.Int64N,
	}
}

func (ds *DisplayScheduler) Start() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.running {
		return
	}
	ds.running = true
	ds.suspended = false
	ds.rearmLocked()
}

func (ds *DisplayScheduler) Stop() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.running = false
	if ds.token != nil {
		ds.token.Cancel()
		ds.token = nil
	}
}

// Suspend parks the cadence while an out-of-band attempt (login) holds an
// open playback session. OnSessionClosed resumes it.
func (ds *DisplayScheduler) Suspend() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.suspended = true
	if ds.token != nil {
		ds.token.Cancel()
		ds.token = nil
	}
}

// OnSessionClosed resumes the cadence with a freshly drawn interval.
func (ds *DisplayScheduler) OnSessionClosed() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.suspended = false
	if ds.running {
		ds.rearmLocked()
	}
}

func (ds *DisplayScheduler) fire() {
	ds.mu.Lock()
	if !ds.running || ds.suspended {
		ds.mu.Unlock()
		return
	}
	// Park the cadence for the duration of the attempt. A shown ad keeps it
	// parked until OnSessionClosed; every other outcome resumes right away.
	ds.suspended = true
	ds.mu.Unlock()

	outcome := ds.runner.RunCycle(TriggerInterval)

	ds.mu.Lock()
	defer ds.mu.Unlock()
	if !ds.running {
		return
	}
	if outcome != OutcomeShown && ds.suspended {
		ds.suspended = false
		ds.rearmLocked()
	}
}

func (ds *DisplayScheduler) rearmLocked() {
	wait := ds.drawInterval()
	ds.token = ds.clock.Schedule(wait, ds.fire)
	ds.logger.Debugf(providers.TypeEngine, "next display attempt in %s", wait)
}

// drawInterval picks a wait uniformly from [minInterval, maxInterval].
func (ds *DisplayScheduler) drawInterval() time.Duration {
	span := int64(ds.cfg.MaxInterval - ds.cfg.MinInterval)
	if span <= 0 {
		return ds.cfg.MinInterval
	}
	return ds.cfg.MinInterval + time.Duration(ds.intn(span+1))
}
