package engine

import (
	"bytes"
	"net/http"
	"strings"

	"ade/internal/models"
	"ade/internal/providers"
	"ade/internal/structures"

	json "github.com/goccy/go-json"
)

type EventKind string

const (
	KindImpression EventKind = "impression"
	KindClick      EventKind = "click"
	KindSkip       EventKind = "skip"
	KindCompletion EventKind = "completion"
	KindEngagement EventKind = "engagement"
)

// Emitter converts playback lifecycle transitions into analytics dispatches.
// Emission is fire-and-forget: a single attempt, never retried, never blocking
// the caller.
type Emitter interface {
	Emit(kind EventKind, c *models.AdCandidate, extra map[string]interface{})
}

const (
	trackViewPath = "/api/advertisements/track-view"
	analyticsPath = "/api/advertisements/analytics"
)

type HTTPEmitter struct {
	baseURL string
	client  *http.Client
	clock   Clock
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewHTTPEmitter(conf *structures.Config, clock Clock, logger providers.Logger, metrics providers.MetricsProviderInterface) Emitter {
	return &HTTPEmitter{
		baseURL: strings.TrimRight(conf.Engine.AdService.BaseURL, "/"),
		client:  &http.Client{Timeout: conf.Engine.AdService.Timeout},
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// Emit posts the event on a background goroutine. Failures are logged and
// swallowed; the playback state machine never observes them.
func (e *HTTPEmitter) Emit(kind EventKind, c *models.AdCandidate, extra map[string]interface{}) {
	if c == nil {
		return
	}

	payload := map[string]interface{}{
		"advertisement_id": c.ID,
		"action":           string(kind),
		"timestamp":        e.clock.Now().UnixMilli(),
	}
	for k, v := range extra {
		payload[k] = v
	}

	path := analyticsPath
	if kind == KindImpression {
		path = trackViewPath
	}

	go e.send(kind, path, payload)
}

func (e *HTTPEmitter) send(kind EventKind, path string, payload map[string]interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		e.logger.Warnf(providers.TypeEngine, "analytics %s: encode failed: %s", kind, err)
		e.metrics.IncAnalyticsEvent(string(kind), false)
		return
	}

	resp, err := e.client.Post(e.baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		e.logger.Warnf(providers.TypeEngine, "analytics %s: dispatch failed: %s", kind, err)
		e.metrics.IncAnalyticsEvent(string(kind), false)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		e.logger.Warnf(providers.TypeEngine, "analytics %s: collector returned %d", kind, resp.StatusCode)
		e.metrics.IncAnalyticsEvent(string(kind), false)
		return
	}
	e.metrics.IncAnalyticsEvent(string(kind), true)
}
