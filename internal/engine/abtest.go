package engine

import (
	"math/rand/v2"
	"strconv"
	"sync"

	"ade/internal/structures"
)

// ABAssignment is a session-scoped (testId, variant) pair. It is chosen once
// and stays fixed for the life of the session; all other components read it
// as an opaque analytics tag.
type ABAssignment struct {
	TestID  string `json:"test_id"`
	Variant string `json:"variant"`
}

type ABAssigner struct {
	mu       sync.Mutex
	cfg      structures.ABTestConfig
	assigned bool
	current  ABAssignment
}

func NewABAssigner(cfg structures.ABTestConfig) *ABAssigner {
	return &ABAssigner{cfg: cfg}
}

func (ab *ABAssigner) Enabled() bool {
	return ab.cfg.Enabled && len(ab.cfg.Variants) > 0
}

// Assignment lazily draws a variant uniformly from the configured set and
// generates a test id on first call; repeated calls return the same pair.
func (ab *ABAssigner) Assignment() ABAssignment {
	ab.mu.Lock()
	defer ab.mu.Unlock()

	if !ab.Enabled() {
		return ABAssignment{}
	}
	if !ab.assigned {
		ab.current = ABAssignment{
			TestID:  newTestID(),
			Variant: ab.cfg.Variants[rand.IntN(len(ab.cfg.Variants))],
		}
		ab.assigned = true
	}
	return ab.current
}

// newTestID builds a random analytics tag. Collisions are tolerated: the id
// only segments analytics, it carries no identity guarantees.
func newTestID() string {
	return "ab-" + strconv.FormatUint(rand.Uint64(), 36)
}
