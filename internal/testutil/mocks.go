package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"ade/internal/engine"
	"ade/internal/models"
	"ade/internal/providers"
	"ade/internal/services"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// LevelCount reports how many entries were recorded at the given level.
func (m *MockLogger) LevelCount(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu             sync.Mutex
	Requests       int
	CacheHitCount  int
	CacheMissCount int
	Persists       int
	Cycles         map[string]int
	Impressions    int
	Events         map[string]int
	FailedEvents   map[string]int
	Fetches        int
	Sessions       int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Cycles:       make(map[string]int),
		Events:       make(map[string]int),
		FailedEvents: make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHitCount++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMissCount++
}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persists++
}

func (m *MockMetrics) IncCycle(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cycles[outcome]++
}

func (m *MockMetrics) IncImpressions() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Impressions++
}

func (m *MockMetrics) IncAnalyticsEvent(kind string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if success {
		m.Events[kind]++
	} else {
		m.FailedEvents[kind]++
	}
}

func (m *MockMetrics) ObserveFetchDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fetches++
}

func (m *MockMetrics) SetActiveSessions(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sessions = count
}

func (m *MockMetrics) CycleCount(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Cycles[outcome]
}

func (m *MockMetrics) ImpressionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Impressions
}

// MockEmitter implements engine.Emitter and records every emission.
type MockEmitter struct {
	mu    sync.Mutex
	Emits []EmitCall
}

type EmitCall struct {
	Kind  engine.EventKind
	Ad    *models.AdCandidate
	Extra map[string]interface{}
}

func (m *MockEmitter) Emit(kind engine.EventKind, c *models.AdCandidate, extra map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Emits = append(m.Emits, EmitCall{Kind: kind, Ad: c, Extra: extra})
}

func (m *MockEmitter) Calls() []EmitCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmitCall, len(m.Emits))
	copy(out, m.Emits)
	return out
}

// Kinds returns the kinds of all recorded emissions in order.
func (m *MockEmitter) Kinds() []engine.EventKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]engine.EventKind, len(m.Emits))
	for i, c := range m.Emits {
		out[i] = c.Kind
	}
	return out
}

// CountOf returns how many emissions of the given kind were recorded.
func (m *MockEmitter) CountOf(kind engine.EventKind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Emits {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// MockFetcher implements engine.CandidateFetcher with injectable behavior.
type MockFetcher struct {
	mu       sync.Mutex
	FetchFn  func(ctx context.Context, req engine.FetchRequest) (*models.AdCandidate, error)
	Requests []engine.FetchRequest
}

func (m *MockFetcher) Fetch(ctx context.Context, req engine.FetchRequest) (*models.AdCandidate, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	fn := m.FetchFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return nil, nil
}

func (m *MockFetcher) FetchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// FakeClock is a deterministic engine.Clock. Time only moves when the test
// calls Advance or Set; scheduled callbacks fire synchronously, in deadline
// order, as the clock passes their deadlines.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	nextID  int
	pending []*fakeTimer
}

type fakeTimer struct {
	clock    *FakeClock
	id       int
	deadline time.Time
	fn       func()
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (f *FakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *FakeClock) Schedule(after time.Duration, fn func()) engine.CancelToken {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t := &fakeTimer{clock: f, id: f.nextID, deadline: f.now.Add(after), fn: fn}
	f.pending = append(f.pending, t)
	return t
}

func (t *fakeTimer) Cancel() bool {
	f := t.clock
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.pending {
		if p.id == t.id {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Advance moves the clock forward and fires every callback whose deadline
// falls within the advanced window. Callbacks may schedule new timers; those
// fire too if they land inside the window.
func (f *FakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		f.mu.Lock()
		next := f.earliestLocked(target)
		if next == nil {
			f.now = target
			f.mu.Unlock()
			return
		}
		if next.deadline.After(f.now) {
			f.now = next.deadline
		}
		f.removeLocked(next.id)
		f.mu.Unlock()

		next.fn()
	}
}

// PendingCount reports how many timers are armed.
func (f *FakeClock) PendingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// NextDeadline returns the earliest armed deadline. The second return is
// false when nothing is scheduled.
func (f *FakeClock) NextDeadline() (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) == 0 {
		return time.Time{}, false
	}
	sort.Slice(f.pending, func(i, j int) bool {
		return f.pending[i].deadline.Before(f.pending[j].deadline)
	})
	return f.pending[0].deadline, true
}

func (f *FakeClock) earliestLocked(limit time.Time) *fakeTimer {
	var best *fakeTimer
	for _, p := range f.pending {
		if p.deadline.After(limit) {
			continue
		}
		if best == nil || p.deadline.Before(best.deadline) || (p.deadline.Equal(best.deadline) && p.id < best.id) {
			best = p
		}
	}
	return best
}

func (f *FakeClock) removeLocked(id int) {
	for i, p := range f.pending {
		if p.id == id {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			return
		}
	}
}

// MockEngineService implements services.EngineServiceInterface with
// injectable data for controller and persistence tests.
type MockEngineService struct {
	mu             sync.Mutex
	StartCalls     []StartCall
	EventCalls     []EventCall
	PutCalls       []PutCall
	StopAllCalls   int
	StartErr       error
	EventErr       error
	SessionInfos   map[string]*engine.SessionInfo
	InterestsData  map[string][]string
	VisitorsList   []string
	ActiveCount    int
	SnapshotResult *models.Storage
}

type StartCall struct {
	VisitorID string
	UserAgent string
}

type EventCall struct {
	VisitorID string
	Input     services.EventInput
}

type PutCall struct {
	VisitorID string
	State     *models.VisitorState
}

func (m *MockEngineService) StartSession(visitorID, userAgent string) (*engine.SessionInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartCalls = append(m.StartCalls, StartCall{VisitorID: visitorID, UserAgent: userAgent})
	if m.StartErr != nil {
		return nil, m.StartErr
	}
	if info, ok := m.SessionInfos[visitorID]; ok {
		return info, nil
	}
	return &engine.SessionInfo{VisitorID: visitorID}, nil
}

func (m *MockEngineService) HandleEvent(visitorID string, input services.EventInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EventCalls = append(m.EventCalls, EventCall{VisitorID: visitorID, Input: input})
	return m.EventErr
}

func (m *MockEngineService) GetSessionInfo(visitorID string) (*engine.SessionInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.SessionInfos[visitorID]
	return info, ok
}

func (m *MockEngineService) GetInterests(visitorID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InterestsData != nil {
		return m.InterestsData[visitorID]
	}
	return nil
}

func (m *MockEngineService) GetVisitors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.VisitorsList
}

func (m *MockEngineService) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ActiveCount
}

func (m *MockEngineService) GetSnapshot() *models.Storage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SnapshotResult != nil {
		return m.SnapshotResult
	}
	return &models.Storage{Visitors: make(map[string]*models.VisitorState)}
}

func (m *MockEngineService) PutVisitorData(visitorID string, state *models.VisitorState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCalls = append(m.PutCalls, PutCall{VisitorID: visitorID, State: state})
}

func (m *MockEngineService) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StopAllCalls++
}
