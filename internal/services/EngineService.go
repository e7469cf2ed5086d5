package services

import (
	"errors"
	"sort"
	"sync"

	"ade/internal/engine"
	"ade/internal/models"
	"ade/internal/providers"
	"ade/internal/structures"
)

var (
	ErrEmptyVisitorID = errors.New("visitor id must not be empty")
	ErrUnknownVisitor = errors.New("unknown visitor")
	ErrUnknownEvent   = errors.New("unknown event type")
)

const (
	EventSkip          = "skip"
	EventClick         = "click"
	EventVideoProgress = "video_progress"
	EventVideoPause    = "video_pause"
	EventVideoResume   = "video_resume"
	EventVideoEnded    = "video_ended"
)

// EventInput is one playback input fed into a visitor's state machine.
type EventInput struct {
	Type     string  `json:"type"`
	Current  float64 `json:"current"`
	Duration float64 `json:"duration"`
}

type EngineServiceInterface interface {
	StartSession(visitorID, userAgent string) (*engine.SessionInfo, error)
	HandleEvent(visitorID string, input EventInput) error
	GetSessionInfo(visitorID string) (*engine.SessionInfo, bool)
	GetInterests(visitorID string) []string
	GetVisitors() []string
	ActiveSessions() int
	GetSnapshot() *models.Storage
	PutVisitorData(visitorID string, state *models.VisitorState)
	StopAll()
}

// EngineService is the session registry: one live engine.Session per visitor,
// plus the durable state of visitors whose sessions are not (or no longer)
// live, restored from the state file at startup.
type EngineService struct {
	conf    *structures.Config
	clock   engine.Clock
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	fetcher engine.CandidateFetcher
	emitter engine.Emitter

	mu       sync.RWMutex
	sessions map[string]*engine.Session
	seeds    map[string]*models.VisitorState
}

func NewEngineService(conf *structures.Config, clock engine.Clock, logger providers.Logger, metrics providers.MetricsProviderInterface, fetcher engine.CandidateFetcher, emitter engine.Emitter) EngineServiceInterface {
	return &EngineService{
		conf:     conf,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
		fetcher:  fetcher,
		emitter:  emitter,
		sessions: make(map[string]*engine.Session),
		seeds:    make(map[string]*models.VisitorState),
	}
}

// StartSession creates the visitor's engine session, runs the once-per-login
// immediate attempt, and starts the display cadence. Calling it again for a
// live session is idempotent: the existing session is returned unchanged.
func (es *EngineService) StartSession(visitorID, userAgent string) (*engine.SessionInfo, error) {
	if visitorID == "" {
		return nil, ErrEmptyVisitorID
	}

	es.mu.Lock()
	if s, ok := es.sessions[visitorID]; ok {
		es.mu.Unlock()
		return s.Info(), nil
	}

	s := engine.NewSession(visitorID, userAgent, es.conf.Engine, es.clock, es.logger, es.metrics, es.fetcher, es.emitter, es.seeds[visitorID])
	es.sessions[visitorID] = s
	count := len(es.sessions)
	es.mu.Unlock()

	es.metrics.SetActiveSessions(count)
	es.logger.Infof(providers.TypeEngine, "session started: visitor=%s", visitorID)

	s.Start()
	s.LoginAttempt()
	return s.Info(), nil
}

func (es *EngineService) HandleEvent(visitorID string, input EventInput) error {
	es.mu.RLock()
	s, ok := es.sessions[visitorID]
	es.mu.RUnlock()
	if !ok {
		return ErrUnknownVisitor
	}

	switch input.Type {
	case EventSkip:
		return s.Skip()
	case EventClick:
		return s.Click()
	case EventVideoProgress:
		return s.VideoProgress(input.Current, input.Duration)
	case EventVideoPause:
		return s.VideoPause()
	case EventVideoResume:
		return s.VideoResume()
	case EventVideoEnded:
		return s.VideoEnded()
	default:
		return ErrUnknownEvent
	}
}

func (es *EngineService) GetSessionInfo(visitorID string) (*engine.SessionInfo, bool) {
	es.mu.RLock()
	s, ok := es.sessions[visitorID]
	es.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return s.Info(), true
}

func (es *EngineService) GetInterests(visitorID string) []string {
	es.mu.RLock()
	defer es.mu.RUnlock()

	if s, ok := es.sessions[visitorID]; ok {
		return s.Interests()
	}
	if seed, ok := es.seeds[visitorID]; ok {
		return seed.Personal.Interests
	}
	return nil
}

func (es *EngineService) GetVisitors() []string {
	es.mu.RLock()
	defer es.mu.RUnlock()

	set := make(map[string]struct{}, len(es.sessions)+len(es.seeds))
	for id := range es.sessions {
		set[id] = struct{}{}
	}
	for id := range es.seeds {
		set[id] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (es *EngineService) ActiveSessions() int {
	es.mu.RLock()
	defer es.mu.RUnlock()
	return len(es.sessions)
}

// GetSnapshot merges restored visitor state with the live sessions' current
// state; live sessions win.
func (es *EngineService) GetSnapshot() *models.Storage {
	es.mu.RLock()
	defer es.mu.RUnlock()

	storage := &models.Storage{
		Visitors: make(map[string]*models.VisitorState, len(es.sessions)+len(es.seeds)),
	}
	for id, seed := range es.seeds {
		storage.Visitors[id] = seed
	}
	for id, s := range es.sessions {
		storage.Visitors[id] = s.Snapshot()
	}
	return storage
}

func (es *EngineService) PutVisitorData(visitorID string, state *models.VisitorState) {
	if visitorID == "" || state == nil {
		return
	}
	es.mu.Lock()
	defer es.mu.Unlock()
	es.seeds[visitorID] = state
}

// StopAll discards all session timers and folds the sessions' durable state
// back into the seed map so a final persist still sees it.
func (es *EngineService) StopAll() {
	es.mu.Lock()
	defer es.mu.Unlock()

	for id, s := range es.sessions {
		s.Stop()
		es.seeds[id] = s.Snapshot()
		delete(es.sessions, id)
	}
	es.metrics.SetActiveSessions(0)
}
