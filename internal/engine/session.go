package engine

import (
	"context"
	"sync"

	"ade/internal/models"
	"ade/internal/providers"
	"ade/internal/structures"
)

// Session is one visitor's decision engine: the frequency tracker, targeting
// input, A/B assigner, personalization tracker, display scheduler and the
// single playback state machine, wired together. At most one playback session
// is active at a time; the playback machine itself enforces that.
type Session struct {
	visitorID string
	userAgent string
	cfg       structures.EngineConfig
	clock     Clock
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface

	freq     *FrequencyTracker
	personal *PersonalizationTracker
	ab       *ABAssigner
	fetcher  CandidateFetcher
	emitter  Emitter
	playback *Playback
	sched    *DisplayScheduler

	mu             sync.Mutex
	lastShownAt    int64
	loginAttempted bool
}

// NewSession builds a session, seeding the durable trackers from the persisted
// visitor state. A nil seed starts clean.
func NewSession(visitorID, userAgent string, cfg structures.EngineConfig, clock Clock, logger providers.Logger, metrics providers.MetricsProviderInterface, fetcher CandidateFetcher, emitter Emitter, seed *models.VisitorState) *Session {
	if seed == nil {
		seed = &models.VisitorState{}
	}

	s := &Session{
		visitorID:   visitorID,
		userAgent:   userAgent,
		cfg:         cfg,
		clock:       clock,
		logger:      logger,
		metrics:     metrics,
		freq:        NewFrequencyTracker(cfg.FrequencyCap, seed.Impressions),
		personal:    NewPersonalizationTracker(seed.Personal),
		ab:          NewABAssigner(cfg.ABTest),
		fetcher:     fetcher,
		emitter:     emitter,
		lastShownAt: seed.LastShownAt,
	}
	s.playback = NewPlayback(cfg.Playback, clock, emitter, logger, s.handleClosed)
	s.sched = NewDisplayScheduler(cfg.Display, clock, logger, s)
	return s
}

func (s *Session) Start() {
	s.sched.Start()
}

// Stop discards in-flight timers. No cleanup handshake is needed: durable
// state is persisted through snapshots and the rest is session-scoped.
func (s *Session) Stop() {
	s.sched.Stop()
	s.playback.Abort()
}

// LoginAttempt runs the single out-of-band display attempt granted right
// after authentication. It passes through the same gates as a scheduled
// cycle and never fires twice for one session.
func (s *Session) LoginAttempt() {
	s.mu.Lock()
	if s.loginAttempted {
		s.mu.Unlock()
		return
	}
	s.loginAttempted = true
	s.mu.Unlock()

	// Park the normal cadence so the out-of-band attempt is not counted
	// twice; it resumes immediately unless an ad actually opened.
	s.sched.Suspend()
	if s.RunCycle(TriggerLogin) != OutcomeShown {
		s.sched.OnSessionClosed()
	}
}

// RunCycle implements CycleRunner: gate, fetch, hand off to playback.
func (s *Session) RunCycle(trigger string) string {
	outcome := s.runCycle()
	s.metrics.IncCycle(outcome)
	s.logger.Debugf(providers.TypeEngine, "cycle: visitor=%s trigger=%s outcome=%s", s.visitorID, trigger, outcome)
	return outcome
}

func (s *Session) runCycle() string {
	// Claiming the machine first keeps concurrent triggers from racing into
	// a double fetch.
	if err := s.playback.BeginFetch(); err != nil {
		return OutcomeBusy
	}

	now := s.clock.Now()
	if !s.freq.CanShow(now) {
		s.playback.AbortFetch()
		return OutcomeCapped
	}

	vctx := models.DeriveVisitorContext(s.userAgent, now)
	if !ShouldShow(vctx, s.cfg.Targeting) {
		s.playback.AbortFetch()
		return OutcomeTargeting
	}

	req := FetchRequest{Assignment: s.ab.Assignment()}
	if s.cfg.Personalization.Enabled && s.personal.IsPersonalized() {
		req.Profile = &UserProfile{Context: vctx, Personal: s.personal.Snapshot()}
	}

	cand, err := s.fetcher.Fetch(context.Background(), req)
	s.metrics.ObserveFetchDuration(s.clock.Now().Sub(now))
	if err != nil {
		s.playback.AbortFetch()
		s.logger.Warnf(providers.TypeEngine, "candidate fetch failed: visitor=%s err=%s", s.visitorID, err)
		return OutcomeFetchError
	}
	if cand == nil {
		s.playback.AbortFetch()
		return OutcomeNoCandidate
	}

	if err := s.playback.Begin(cand); err != nil {
		return OutcomeBusy
	}
	return OutcomeShown
}

// handleClosed is the playback close hook: record the impression, feed the
// personalization tracker, and resume the scheduler cadence.
func (s *Session) handleClosed(c *models.AdCandidate, reason CloseReason) {
	now := s.clock.Now()
	s.freq.Record(now)

	s.mu.Lock()
	s.lastShownAt = now.UnixMilli()
	s.mu.Unlock()

	if s.cfg.Personalization.Enabled {
		s.personal.RecordView(c, now)
	}
	s.metrics.IncImpressions()
	s.logger.Infof(providers.TypeEngine, "playback closed: visitor=%s ad=%s reason=%s", s.visitorID, c.ID, reason)

	s.sched.OnSessionClosed()
}

// Playback event entry points, delegated to the state machine.

func (s *Session) Skip() error                              { return s.playback.Skip() }
func (s *Session) Click() error                             { return s.playback.Click() }
func (s *Session) VideoProgress(current, dur float64) error { return s.playback.Progress(current, dur) }
func (s *Session) VideoPause() error                        { return s.playback.Pause() }
func (s *Session) VideoResume() error                       { return s.playback.Resume() }
func (s *Session) VideoEnded() error                        { return s.playback.Ended() }

// Snapshot exports the durable per-visitor state for persistence.
func (s *Session) Snapshot() *models.VisitorState {
	s.mu.Lock()
	lastShown := s.lastShownAt
	s.mu.Unlock()

	return &models.VisitorState{
		Impressions: s.freq.Snapshot(),
		LastShownAt: lastShown,
		Personal:    s.personal.Snapshot(),
	}
}

// SessionInfo is the API-facing view of a session.
type SessionInfo struct {
	VisitorID   string       `json:"visitor_id"`
	Assignment  ABAssignment `json:"ab_assignment"`
	Playback    PlaybackInfo `json:"playback"`
	Interests   []string     `json:"interests"`
	TotalViews  int          `json:"total_views"`
	Impressions int          `json:"impressions"`
	LastShownAt int64        `json:"last_shown_at"`
}

func (s *Session) Info() *SessionInfo {
	s.mu.Lock()
	lastShown := s.lastShownAt
	s.mu.Unlock()

	return &SessionInfo{
		VisitorID:   s.visitorID,
		Assignment:  s.ab.Assignment(),
		Playback:    s.playback.Info(),
		Interests:   s.personal.Interests(),
		TotalViews:  s.personal.TotalViews(),
		Impressions: s.freq.Len(),
		LastShownAt: lastShown,
	}
}

func (s *Session) Interests() []string {
	return s.personal.Interests()
}
