package controllers

import (
	"errors"
	"net/http"

	"ade/internal/engine"
	"ade/internal/providers"
	"ade/internal/services"

	json "github.com/goccy/go-json"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger  providers.Logger
	service services.EngineServiceInterface
	cache   providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, service services.EngineServiceInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		cache:   cache,
	}
}

func getVisitor(r *http.Request) string {
	return r.URL.Query().Get("v")
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	gson, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

type startSessionRequest struct {
	VisitorID string `json:"visitor_id"`
	UserAgent string `json:"user_agent"`
}

func (ac *ApiController) StartSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	info, err := ac.service.StartSession(payload.VisitorID, payload.UserAgent)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

type eventRequest struct {
	VisitorID string  `json:"visitor_id"`
	Type      string  `json:"type"`
	Current   float64 `json:"current"`
	Duration  float64 `json:"duration"`
}

func (ac *ApiController) ReceiveEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload eventRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	err := ac.service.HandleEvent(payload.VisitorID, services.EventInput{
		Type:     payload.Type,
		Current:  payload.Current,
		Duration: payload.Duration,
	})
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, services.ErrUnknownVisitor):
		http.Error(w, "Not Found", http.StatusNotFound)
	case errors.Is(err, services.ErrUnknownEvent):
		http.Error(w, "Bad Request", http.StatusBadRequest)
	case errors.Is(err, engine.ErrSkipNotEligible),
		errors.Is(err, engine.ErrNoActiveAd),
		errors.Is(err, engine.ErrNotVideo):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (ac *ApiController) GetSession(w http.ResponseWriter, r *http.Request) {
	info, ok := ac.service.GetSessionInfo(getVisitor(r))
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (ac *ApiController) GetInterests(w http.ResponseWriter, r *http.Request) {
	v := getVisitor(r)
	ac.serveFromCacheOrCompute(w, "interests:"+v, func() (any, error) {
		return ac.service.GetInterests(v), nil
	})
}

func (ac *ApiController) GetVisitors(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "visitors", func() (any, error) {
		return ac.service.GetVisitors(), nil
	})
}
