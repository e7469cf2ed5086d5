package engine

import (
	"sort"
	"sync"
	"time"

	"ade/internal/structures"
)

const (
	dayWindow   = 24 * time.Hour
	weekWindow  = 7 * dayWindow
	monthWindow = 30 * dayWindow
)

// FrequencyTracker keeps a pruned, ordered list of impression timestamps
// (epoch milliseconds) and answers whether the configured daily, weekly and
// monthly caps still allow another impression. The record never holds entries
// older than the 30-day window; pruning happens on every write.
type FrequencyTracker struct {
	mu     sync.Mutex
	cfg    structures.FrequencyCapConfig
	stamps []int64
}

// NewFrequencyTracker seeds the tracker from a persisted impression list.
// Malformed entries (non-positive timestamps) are dropped rather than
// reported; persisted counters are advisory, not safety-critical.
func NewFrequencyTracker(cfg structures.FrequencyCapConfig, seed []int64) *FrequencyTracker {
	stamps := make([]int64, 0, len(seed))
	for _, ms := range seed {
		if ms > 0 {
			stamps = append(stamps, ms)
		}
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i] < stamps[j] })

	return &FrequencyTracker{cfg: cfg, stamps: stamps}
}

// Record appends an impression at now and prunes entries older than 30 days.
func (ft *FrequencyTracker) Record(now time.Time) {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	ft.stamps = append(ft.stamps, now.UnixMilli())
	ft.pruneLocked(now)
}

// CanShow reports whether all three window counts are below their caps.
// A disabled cap always allows.
func (ft *FrequencyTracker) CanShow(now time.Time) bool {
	if !ft.cfg.Enabled {
		return true
	}

	ft.mu.Lock()
	defer ft.mu.Unlock()

	if ft.countSinceLocked(now.Add(-dayWindow)) >= ft.cfg.Daily {
		return false
	}
	if ft.countSinceLocked(now.Add(-weekWindow)) >= ft.cfg.Weekly {
		return false
	}
	return ft.countSinceLocked(now.Add(-monthWindow)) < ft.cfg.Monthly
}

// Snapshot returns a copy of the pruned impression record for persistence.
func (ft *FrequencyTracker) Snapshot() []int64 {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	out := make([]int64, len(ft.stamps))
	copy(out, ft.stamps)
	return out
}

func (ft *FrequencyTracker) Len() int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return len(ft.stamps)
}

func (ft *FrequencyTracker) pruneLocked(now time.Time) {
	cutoff := now.Add(-monthWindow).UnixMilli()
	idx := sort.Search(len(ft.stamps), func(i int) bool {
		return ft.stamps[i] >= cutoff
	})
	if idx > 0 {
		ft.stamps = append(ft.stamps[:0], ft.stamps[idx:]...)
	}
}

// countSinceLocked counts entries in [cut, now] by linear scan. The record
// size is bounded by the monthly cap, so a scan per decision is acceptable.
func (ft *FrequencyTracker) countSinceLocked(cut time.Time) int {
	cutoff := cut.UnixMilli()
	count := 0
	for _, ms := range ft.stamps {
		if ms >= cutoff {
			count++
		}
	}
	return count
}
