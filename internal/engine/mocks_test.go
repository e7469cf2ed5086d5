package engine

import (
	"context"
	"sync"
	"time"

	"ade/internal/models"
	"ade/internal/providers"
)

// --- local mocks (scoped to engine tests) ---

type nopLogger struct{}

func (nopLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (nopLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (nopLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (nopLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (nopLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (nopLogger) Close()                                                  {}

type recMetrics struct {
	mu          sync.Mutex
	cycles      map[string]int
	impressions int
	events      map[string]int
	failed      map[string]int
	sessions    int
}

func newRecMetrics() *recMetrics {
	return &recMetrics{
		cycles: make(map[string]int),
		events: make(map[string]int),
		failed: make(map[string]int),
	}
}

func (m *recMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *recMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *recMetrics) IncCacheHits()                                    {}
func (m *recMetrics) IncCacheMisses()                                  {}
func (m *recMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (m *recMetrics) ObserveFetchDuration(_ time.Duration)             {}

func (m *recMetrics) IncCycle(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycles[outcome]++
}

func (m *recMetrics) IncImpressions() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.impressions++
}

func (m *recMetrics) IncAnalyticsEvent(kind string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if success {
		m.events[kind]++
	} else {
		m.failed[kind]++
	}
}

func (m *recMetrics) SetActiveSessions(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = count
}

type emitCall struct {
	kind  EventKind
	ad    *models.AdCandidate
	extra map[string]interface{}
}

type recEmitter struct {
	mu    sync.Mutex
	calls []emitCall
}

func (e *recEmitter) Emit(kind EventKind, c *models.AdCandidate, extra map[string]interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, emitCall{kind: kind, ad: c, extra: extra})
}

func (e *recEmitter) kinds() []EventKind {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]EventKind, len(e.calls))
	for i, c := range e.calls {
		out[i] = c.kind
	}
	return out
}

func (e *recEmitter) countOf(kind EventKind) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, c := range e.calls {
		if c.kind == kind {
			n++
		}
	}
	return n
}

func (e *recEmitter) last() (emitCall, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.calls) == 0 {
		return emitCall{}, false
	}
	return e.calls[len(e.calls)-1], true
}

type stubFetcher struct {
	mu       sync.Mutex
	fetchFn  func(ctx context.Context, req FetchRequest) (*models.AdCandidate, error)
	requests []FetchRequest
}

func (f *stubFetcher) Fetch(ctx context.Context, req FetchRequest) (*models.AdCandidate, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	fn := f.fetchFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return nil, nil
}

func (f *stubFetcher) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// testClock is a deterministic Clock: time only moves through advance, and
// due callbacks fire synchronously in deadline order.
type testClock struct {
	mu      sync.Mutex
	now     time.Time
	nextID  int
	pending []*testTimer
}

type testTimer struct {
	clock    *testClock
	id       int
	deadline time.Time
	fn       func()
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Schedule(after time.Duration, fn func()) CancelToken {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	t := &testTimer{clock: c, id: c.nextID, deadline: c.now.Add(after), fn: fn}
	c.pending = append(c.pending, t)
	return t
}

func (t *testTimer) Cancel() bool {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, p := range c.pending {
		if p.id == t.id {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return true
		}
	}
	return false
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.dueLocked(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		if next.deadline.After(c.now) {
			c.now = next.deadline
		}
		c.dropLocked(next.id)
		c.mu.Unlock()

		next.fn()
	}
}

func (c *testClock) pendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *testClock) nextDeadline() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var best *testTimer
	for _, p := range c.pending {
		if best == nil || p.deadline.Before(best.deadline) {
			best = p
		}
	}
	if best == nil {
		return time.Time{}, false
	}
	return best.deadline, true
}

func (c *testClock) dueLocked(limit time.Time) *testTimer {
	var best *testTimer
	for _, p := range c.pending {
		if p.deadline.After(limit) {
			continue
		}
		if best == nil || p.deadline.Before(best.deadline) || (p.deadline.Equal(best.deadline) && p.id < best.id) {
			best = p
		}
	}
	return best
}

func (c *testClock) dropLocked(id int) {
	for i, p := range c.pending {
		if p.id == id {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}

func imageAd(id string) *models.AdCandidate {
	return &models.AdCandidate{
		ID:       id,
		Title:    "Test banner",
		Media:    models.ImageMedia("https://cdn.example.com/" + id + ".png"),
		Category: "scholarships",
	}
}

func videoAd(id string) *models.AdCandidate {
	return &models.AdCandidate{
		ID:       id,
		Title:    "Test spot",
		Media:    models.VideoMedia("https://cdn.example.com/" + id + ".mp4"),
		Category: "loans",
	}
}
