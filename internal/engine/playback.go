package engine

import (
	"errors"
	"sync"
	"time"

	"ade/internal/models"
	"ade/internal/providers"
	"ade/internal/structures"
)

type PlaybackState uint8

const (
	StateIdle PlaybackState = iota
	StateFetching
	StateShowing
	StateSkipPending
	StateSkipEligible
	StateClosing
)

func (s PlaybackState) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateShowing:
		return "showing"
	case StateSkipPending:
		return "skip_pending"
	case StateSkipEligible:
		return "skip_eligible"
	case StateClosing:
		return "closing"
	default:
		return "idle"
	}
}

type CloseReason string

const (
	ReasonCompletion CloseReason = "completion"
	ReasonSkip       CloseReason = "skip"
)

var (
	ErrNoActiveAd      = errors.New("no advertisement is being displayed")
	ErrSkipNotEligible = errors.New("skip is not eligible yet")
	ErrNotVideo        = errors.New("active advertisement is not a video")
	ErrAlreadyActive   = errors.New("a playback session is already active")
)

const tickInterval = time.Second

// Playback is the state machine for one displayed ad, from show to close.
// The countdown runs on one-second ticks armed through the Clock; for video
// candidates the ticks are suspended while playback is paused, so the total
// display duration is elapsed-time-while-playing. Rendering is driven purely
// by the state this machine exposes; no DOM or transport concern leaks in.
type Playback struct {
	mu       sync.Mutex
	cfg      structures.PlaybackConfig
	clock    Clock
	emitter  Emitter
	logger   providers.Logger
	onClosed func(*models.AdCandidate, CloseReason)

	state     PlaybackState
	candidate *models.AdCandidate
	remaining int
	elapsed   int
	paused    bool
	progress  float64
	tick      CancelToken
}

func NewPlayback(cfg structures.PlaybackConfig, clock Clock, emitter Emitter, logger providers.Logger, onClosed func(*models.AdCandidate, CloseReason)) *Playback {
	return &Playback{
		cfg:      cfg,
		clock:    clock,
		emitter:  emitter,
		logger:   logger,
		onClosed: onClosed,
	}
}

// BeginFetch marks the machine as waiting for the candidate fetch that gates
// entry into showing. If the fetch fails the machine never leaves idle
// territory; the caller aborts it.
func (p *Playback) BeginFetch() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateIdle {
		return ErrAlreadyActive
	}
	p.state = StateFetching
	return nil
}

// AbortFetch returns the machine to idle after a failed or empty fetch.
func (p *Playback) AbortFetch() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateFetching {
		p.state = StateIdle
	}
}

// Begin takes ownership of a fetched candidate: the countdown starts, the
// impression event is emitted exactly once, and skip eligibility begins its
// media-specific clock.
func (p *Playback) Begin(c *models.AdCandidate) error {
	p.mu.Lock()

	if p.state != StateFetching {
		p.mu.Unlock()
		return ErrAlreadyActive
	}

	p.state = StateShowing
	p.candidate = c
	p.remaining = p.cfg.CountdownTicks
	p.elapsed = 0
	p.paused = false
	p.progress = 0

	if c.Media.Kind == models.MediaImage && p.cfg.SkipDelayTicks <= 0 {
		p.state = StateSkipEligible
	} else {
		p.state = StateSkipPending
	}
	p.armTickLocked()
	p.mu.Unlock()

	p.emitter.Emit(KindImpression, c, nil)
	p.logger.Debugf(providers.TypeEngine, "playback started: ad=%s media=%s ticks=%d", c.ID, c.Media.Kind, p.cfg.CountdownTicks)
	return nil
}

func (p *Playback) armTickLocked() {
	p.tick = p.clock.Schedule(tickInterval, p.handleTick)
}

func (p *Playback) handleTick() {
	p.mu.Lock()

	if (p.state != StateSkipPending && p.state != StateSkipEligible) || p.paused {
		p.mu.Unlock()
		return
	}

	p.elapsed++
	p.remaining--

	if p.state == StateSkipPending &&
		p.candidate.Media.Kind == models.MediaImage &&
		p.elapsed >= p.cfg.SkipDelayTicks {
		p.state = StateSkipEligible
	}

	if p.remaining <= 0 {
		p.closeAndUnlock(ReasonCompletion)
		return
	}

	p.armTickLocked()
	p.mu.Unlock()
}

// Skip is the explicit user action; it is only accepted while skip-eligible.
func (p *Playback) Skip() error {
	p.mu.Lock()

	switch p.state {
	case StateSkipEligible:
	case StateShowing, StateSkipPending:
		p.mu.Unlock()
		return ErrSkipNotEligible
	default:
		p.mu.Unlock()
		return ErrNoActiveAd
	}

	p.closeAndUnlock(ReasonSkip)
	return nil
}

// Click records a click-through. It does not transition the machine; the
// countdown keeps running.
func (p *Playback) Click() error {
	p.mu.Lock()
	c := p.candidate
	active := p.state == StateSkipPending || p.state == StateSkipEligible
	p.mu.Unlock()

	if !active {
		return ErrNoActiveAd
	}
	p.emitter.Emit(KindClick, c, nil)
	return nil
}

// Progress feeds a video playback-progress update. Skip eligibility for video
// flips when current/duration crosses the configured fraction; elapsed
// wall-clock time never makes a video skippable on its own.
func (p *Playback) Progress(current, duration float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.requireVideoLocked(); err != nil {
		return err
	}
	if duration <= 0 {
		return nil
	}

	p.progress = current / duration
	if p.state == StateSkipPending && p.progress >= p.cfg.SkipVideoPercent {
		p.state = StateSkipEligible
	}
	return nil
}

// Pause suspends the countdown and emits an engagement event carrying the
// accumulated watched time.
func (p *Playback) Pause() error {
	p.mu.Lock()

	if err := p.requireVideoLocked(); err != nil {
		p.mu.Unlock()
		return err
	}
	if p.paused {
		p.mu.Unlock()
		return nil
	}

	p.paused = true
	if p.tick != nil {
		p.tick.Cancel()
	}
	c := p.candidate
	watched := p.elapsed
	p.mu.Unlock()

	p.emitter.Emit(KindEngagement, c, map[string]interface{}{"watched_seconds": watched})
	return nil
}

// Resume restarts the countdown tick after a pause.
func (p *Playback) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.requireVideoLocked(); err != nil {
		return err
	}
	if !p.paused {
		return nil
	}

	p.paused = false
	p.armTickLocked()
	return nil
}

// Ended closes the session on the video's natural end.
func (p *Playback) Ended() error {
	p.mu.Lock()

	if err := p.requireVideoLocked(); err != nil {
		p.mu.Unlock()
		return err
	}

	p.closeAndUnlock(ReasonCompletion)
	return nil
}

// Abort tears the session down without events, for shutdown. Discarding
// in-flight timers is safe: durable state is already persisted elsewhere.
func (p *Playback) Abort() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tick != nil {
		p.tick.Cancel()
	}
	p.state = StateIdle
	p.candidate = nil
}

func (p *Playback) State() PlaybackState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// PlaybackInfo is the render-facing view of the machine.
type PlaybackInfo struct {
	State        string              `json:"state"`
	Ad           *models.AdCandidate `json:"ad,omitempty"`
	Remaining    int                 `json:"remaining_ticks"`
	SkipEligible bool                `json:"skip_eligible"`
	Paused       bool                `json:"paused"`
	Progress     float64             `json:"progress"`
}

func (p *Playback) Info() PlaybackInfo {
	p.mu.Lock()
	defer p.mu.Unlock()

	return PlaybackInfo{
		State:        p.state.String(),
		Ad:           p.candidate,
		Remaining:    p.remaining,
		SkipEligible: p.state == StateSkipEligible,
		Paused:       p.paused,
		Progress:     p.progress,
	}
}

func (p *Playback) requireVideoLocked() error {
	if p.state != StateSkipPending && p.state != StateSkipEligible {
		return ErrNoActiveAd
	}
	if p.candidate.Media.Kind != models.MediaVideo {
		return ErrNotVideo
	}
	return nil
}

// closeAndUnlock runs the synchronous terminal step: cancel the tick, emit
// the terminal event, hand the candidate to the close hook (impression record,
// personalization, scheduler resume), and fold back to idle. The emitter and
// hook run outside the lock.
func (p *Playback) closeAndUnlock(reason CloseReason) {
	p.state = StateClosing
	if p.tick != nil {
		p.tick.Cancel()
	}
	c := p.candidate
	p.candidate = nil
	p.state = StateIdle
	p.paused = false
	p.mu.Unlock()

	kind := KindCompletion
	if reason == ReasonSkip {
		kind = KindSkip
	}
	p.emitter.Emit(kind, c, nil)

	if p.onClosed != nil {
		p.onClosed(c, reason)
	}
}
