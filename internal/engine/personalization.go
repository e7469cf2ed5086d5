package engine

import (
	"sort"
	"sync"
	"time"

	"ade/internal/models"
)

// PersonalizationTracker records which ad categories a visitor has completed
// views for. The derived interests set feeds the personalized candidate fetch.
type PersonalizationTracker struct {
	mu           sync.Mutex
	lastCategory string
	lastViewedAt int64
	totalViews   int
	interests    map[string]struct{}
}

// NewPersonalizationTracker seeds the tracker from persisted state. An empty
// or partially filled snapshot simply yields an empty starting point.
func NewPersonalizationTracker(seed models.PersonalizationState) *PersonalizationTracker {
	interests := make(map[string]struct{}, len(seed.Interests))
	for _, cat := range seed.Interests {
		if cat != "" {
			interests[cat] = struct{}{}
		}
	}

	return &PersonalizationTracker{
		lastCategory: seed.LastCategory,
		lastViewedAt: seed.LastViewedAt,
		totalViews:   seed.TotalViews,
		interests:    interests,
	}
}

// RecordView updates the signals right after a playback session closes.
func (pt *PersonalizationTracker) RecordView(c *models.AdCandidate, now time.Time) {
	if c == nil {
		return
	}

	pt.mu.Lock()
	defer pt.mu.Unlock()

	pt.lastCategory = c.Category
	pt.lastViewedAt = now.UnixMilli()
	pt.totalViews++
	if c.Category != "" {
		pt.interests[c.Category] = struct{}{}
	}
}

// IsPersonalized reports whether any interest has been collected yet.
func (pt *PersonalizationTracker) IsPersonalized() bool {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return len(pt.interests) > 0
}

func (pt *PersonalizationTracker) Interests() []string {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return pt.interestsLocked()
}

func (pt *PersonalizationTracker) TotalViews() int {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return pt.totalViews
}

// Snapshot returns the persistable state with a deterministically ordered
// interests set.
func (pt *PersonalizationTracker) Snapshot() models.PersonalizationState {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	return models.PersonalizationState{
		LastCategory: pt.lastCategory,
		LastViewedAt: pt.lastViewedAt,
		TotalViews:   pt.totalViews,
		Interests:    pt.interestsLocked(),
	}
}

func (pt *PersonalizationTracker) interestsLocked() []string {
	out := make([]string, 0, len(pt.interests))
	for cat := range pt.interests {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}
