package models

// PersonalizationState holds the signals derived from closed ad views.
// Mutated only by the personalization tracker, right after a close event.
type PersonalizationState struct {
	LastCategory string   `json:"last_category"`
	LastViewedAt int64    `json:"last_viewed_at"`
	TotalViews   int      `json:"total_views"`
	Interests    []string `json:"interests"`
}

// VisitorState is the durable per-visitor envelope. Session-scoped state
// (A/B assignment, shown-this-login flag) deliberately lives outside it.
type VisitorState struct {
	Impressions []int64              `json:"impressions"`
	LastShownAt int64                `json:"last_shown_at"`
	Personal    PersonalizationState `json:"personalization"`
}

// Storage is the on-disk schema for the engine state file.
type Storage struct {
	Visitors map[string]*VisitorState `json:"visitors"`
}
