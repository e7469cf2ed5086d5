package engine

import (
	"sync"
	"testing"
	"time"

	"ade/internal/models"
	"ade/internal/structures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeRecorder struct {
	mu      sync.Mutex
	ads     []*models.AdCandidate
	reasons []CloseReason
}

func (cr *closeRecorder) onClosed(c *models.AdCandidate, reason CloseReason) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	cr.ads = append(cr.ads, c)
	cr.reasons = append(cr.reasons, reason)
}

func (cr *closeRecorder) count() int {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return len(cr.ads)
}

func defaultPlaybackConfig() structures.PlaybackConfig {
	return structures.PlaybackConfig{
		CountdownTicks:   60,
		SkipDelayTicks:   5,
		SkipVideoPercent: 0.5,
	}
}

func newTestPlayback(cfg structures.PlaybackConfig) (*Playback, *testClock, *recEmitter, *closeRecorder) {
	clock := newTestClock()
	emitter := &recEmitter{}
	closed := &closeRecorder{}
	p := NewPlayback(cfg, clock, emitter, nopLogger{}, closed.onClosed)
	return p, clock, emitter, closed
}

func show(t *testing.T, p *Playback, c *models.AdCandidate) {
	t.Helper()
	require.NoError(t, p.BeginFetch())
	require.NoError(t, p.Begin(c))
}

func TestPlayback_BeginRequiresFetchClaim(t *testing.T) {
	p, _, _, _ := newTestPlayback(defaultPlaybackConfig())
	assert.ErrorIs(t, p.Begin(imageAd("ad1")), ErrAlreadyActive)
}

func TestPlayback_BeginFetchRejectsConcurrentClaim(t *testing.T) {
	p, _, _, _ := newTestPlayback(defaultPlaybackConfig())

	require.NoError(t, p.BeginFetch())
	assert.ErrorIs(t, p.BeginFetch(), ErrAlreadyActive)
}

func TestPlayback_AbortFetchReleasesClaim(t *testing.T) {
	p, _, _, _ := newTestPlayback(defaultPlaybackConfig())

	require.NoError(t, p.BeginFetch())
	p.AbortFetch()
	assert.NoError(t, p.BeginFetch())
}

func TestPlayback_ImpressionEmittedExactlyOnce(t *testing.T) {
	p, clock, emitter, _ := newTestPlayback(defaultPlaybackConfig())
	show(t, p, imageAd("ad1"))

	clock.advance(10 * time.Second)
	assert.Equal(t, 1, emitter.countOf(KindImpression))
}

func TestPlayback_ImageSkipRejectedBeforeDelay(t *testing.T) {
	p, clock, _, _ := newTestPlayback(defaultPlaybackConfig())
	show(t, p, imageAd("ad1"))

	clock.advance(4 * time.Second)
	assert.ErrorIs(t, p.Skip(), ErrSkipNotEligible)
	assert.Equal(t, StateSkipPending, p.State())
}

func TestPlayback_ImageSkipAcceptedAfterDelay(t *testing.T) {
	p, clock, emitter, closed := newTestPlayback(defaultPlaybackConfig())
	show(t, p, imageAd("ad1"))

	clock.advance(5 * time.Second)
	require.Equal(t, StateSkipEligible, p.State())

	require.NoError(t, p.Skip())
	assert.Equal(t, StateIdle, p.State())
	assert.Equal(t, 1, emitter.countOf(KindSkip))
	require.Equal(t, 1, closed.count())
	assert.Equal(t, ReasonSkip, closed.reasons[0])
}

func TestPlayback_ImageZeroDelayImmediatelySkippable(t *testing.T) {
	cfg := defaultPlaybackConfig()
	cfg.SkipDelayTicks = 0
	p, _, _, _ := newTestPlayback(cfg)
	show(t, p, imageAd("ad1"))

	assert.Equal(t, StateSkipEligible, p.State())
	assert.NoError(t, p.Skip())
}

func TestPlayback_CountdownCompletes(t *testing.T) {
	p, clock, emitter, closed := newTestPlayback(defaultPlaybackConfig())
	show(t, p, imageAd("ad1"))

	clock.advance(60 * time.Second)

	assert.Equal(t, StateIdle, p.State())
	assert.Equal(t, 1, emitter.countOf(KindCompletion))
	require.Equal(t, 1, closed.count())
	assert.Equal(t, ReasonCompletion, closed.reasons[0])
	// No timer keeps ticking after close.
	assert.Zero(t, clock.pendingCount())
}

func TestPlayback_VideoElapsedTimeNeverUnlocksSkip(t *testing.T) {
	p, clock, _, _ := newTestPlayback(defaultPlaybackConfig())
	show(t, p, videoAd("ad1"))

	clock.advance(30 * time.Second)
	assert.Equal(t, StateSkipPending, p.State())
	assert.ErrorIs(t, p.Skip(), ErrSkipNotEligible)
}

func TestPlayback_VideoProgressUnlocksSkip(t *testing.T) {
	p, _, _, _ := newTestPlayback(defaultPlaybackConfig())
	show(t, p, videoAd("ad1"))

	require.NoError(t, p.Progress(3, 30))
	assert.Equal(t, StateSkipPending, p.State())
	assert.ErrorIs(t, p.Skip(), ErrSkipNotEligible)

	require.NoError(t, p.Progress(15.3, 30))
	assert.Equal(t, StateSkipEligible, p.State())
	assert.NoError(t, p.Skip())
}

func TestPlayback_VideoProgressIgnoresZeroDuration(t *testing.T) {
	p, _, _, _ := newTestPlayback(defaultPlaybackConfig())
	show(t, p, videoAd("ad1"))

	require.NoError(t, p.Progress(10, 0))
	assert.Equal(t, StateSkipPending, p.State())
}

func TestPlayback_PauseSuspendsCountdown(t *testing.T) {
	p, clock, _, _ := newTestPlayback(defaultPlaybackConfig())
	show(t, p, videoAd("ad1"))

	clock.advance(10 * time.Second)
	require.NoError(t, p.Pause())
	remaining := p.Info().Remaining

	clock.advance(30 * time.Second)
	assert.Equal(t, remaining, p.Info().Remaining)
	assert.Equal(t, StateSkipPending, p.State())

	require.NoError(t, p.Resume())
	clock.advance(5 * time.Second)
	assert.Equal(t, remaining-5, p.Info().Remaining)
}

func TestPlayback_PauseEmitsEngagementWithWatchedSeconds(t *testing.T) {
	p, clock, emitter, _ := newTestPlayback(defaultPlaybackConfig())
	show(t, p, videoAd("ad1"))

	clock.advance(10 * time.Second)
	require.NoError(t, p.Pause())

	last, ok := emitter.last()
	require.True(t, ok)
	assert.Equal(t, KindEngagement, last.kind)
	assert.Equal(t, 10, last.extra["watched_seconds"])
}

func TestPlayback_DoublePauseEmitsOnce(t *testing.T) {
	p, _, emitter, _ := newTestPlayback(defaultPlaybackConfig())
	show(t, p, videoAd("ad1"))

	require.NoError(t, p.Pause())
	require.NoError(t, p.Pause())
	assert.Equal(t, 1, emitter.countOf(KindEngagement))
}

func TestPlayback_EndedClosesWithCompletion(t *testing.T) {
	p, _, emitter, closed := newTestPlayback(defaultPlaybackConfig())
	show(t, p, videoAd("ad1"))

	require.NoError(t, p.Ended())
	assert.Equal(t, StateIdle, p.State())
	assert.Equal(t, 1, emitter.countOf(KindCompletion))
	assert.Equal(t, 1, closed.count())
}

func TestPlayback_VideoEventsRejectedForImage(t *testing.T) {
	p, _, _, _ := newTestPlayback(defaultPlaybackConfig())
	show(t, p, imageAd("ad1"))

	assert.ErrorIs(t, p.Progress(1, 10), ErrNotVideo)
	assert.ErrorIs(t, p.Pause(), ErrNotVideo)
	assert.ErrorIs(t, p.Resume(), ErrNotVideo)
	assert.ErrorIs(t, p.Ended(), ErrNotVideo)
}

func TestPlayback_EventsRejectedWhenIdle(t *testing.T) {
	p, _, _, _ := newTestPlayback(defaultPlaybackConfig())

	assert.ErrorIs(t, p.Skip(), ErrNoActiveAd)
	assert.ErrorIs(t, p.Click(), ErrNoActiveAd)
	assert.ErrorIs(t, p.Progress(1, 10), ErrNoActiveAd)
	assert.ErrorIs(t, p.Ended(), ErrNoActiveAd)
}

func TestPlayback_ClickEmitsWithoutTransition(t *testing.T) {
	p, _, emitter, _ := newTestPlayback(defaultPlaybackConfig())
	show(t, p, imageAd("ad1"))

	require.NoError(t, p.Click())
	assert.Equal(t, 1, emitter.countOf(KindClick))
	assert.Equal(t, StateSkipPending, p.State())
}

func TestPlayback_AbortDiscardsTimerSilently(t *testing.T) {
	p, clock, emitter, closed := newTestPlayback(defaultPlaybackConfig())
	show(t, p, imageAd("ad1"))

	p.Abort()
	clock.advance(2 * time.Minute)

	assert.Equal(t, StateIdle, p.State())
	assert.Zero(t, closed.count())
	// Only the impression from Begin; abort emits nothing.
	assert.Equal(t, []EventKind{KindImpression}, emitter.kinds())
}

func TestPlayback_InfoReflectsState(t *testing.T) {
	p, clock, _, _ := newTestPlayback(defaultPlaybackConfig())
	show(t, p, videoAd("ad1"))
	require.NoError(t, p.Progress(20, 30))
	clock.advance(3 * time.Second)

	info := p.Info()
	assert.Equal(t, "skip_eligible", info.State)
	assert.Equal(t, "ad1", info.Ad.ID)
	assert.Equal(t, 57, info.Remaining)
	assert.True(t, info.SkipEligible)
	assert.False(t, info.Paused)
	assert.InDelta(t, 0.6667, info.Progress, 0.001)
}
