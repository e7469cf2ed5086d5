package engine

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"ade/internal/models"
	"ade/internal/providers"
	"ade/internal/structures"

	json "github.com/goccy/go-json"
)

const (
	randomAdPath = "/api/advertisements/random"
	activeAdPath = "/api/advertisements/active"

	userProfileHeader = "X-User-Profile"
	abVariantHeader   = "X-AB-Test-Variant"
)

// UserProfile is the serialized targeting context sent with personalized
// candidate fetches.
type UserProfile struct {
	Context  models.VisitorContext       `json:"context"`
	Personal models.PersonalizationState `json:"personalization"`
}

// FetchRequest describes one candidate fetch. A nil Profile selects the plain
// random endpoint; a set Profile selects the targeted endpoint with profile
// and A/B headers attached.
type FetchRequest struct {
	Profile    *UserProfile
	Assignment ABAssignment
}

// CandidateFetcher is the external ad-candidate collaborator. A (nil, nil)
// return means the service had no candidate; that is not an error.
type CandidateFetcher interface {
	Fetch(ctx context.Context, req FetchRequest) (*models.AdCandidate, error)
}

type candidateEnvelope struct {
	Success       bool                `json:"success"`
	Advertisement *models.AdCandidate `json:"advertisement"`
}

type AdClient struct {
	baseURL string
	client  *http.Client
	logger  providers.Logger
}

func NewAdClient(conf *structures.Config, logger providers.Logger) CandidateFetcher {
	return &AdClient{
		baseURL: strings.TrimRight(conf.Engine.AdService.BaseURL, "/"),
		client:  &http.Client{Timeout: conf.Engine.AdService.Timeout},
		logger:  logger,
	}
}

func (ac *AdClient) Fetch(ctx context.Context, req FetchRequest) (*models.AdCandidate, error) {
	path := randomAdPath
	if req.Profile != nil {
		path = activeAdPath
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, ac.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	if req.Profile != nil {
		profile, err := json.Marshal(req.Profile)
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set(userProfileHeader, string(profile))
		if req.Assignment.Variant != "" {
			httpReq.Header.Set(abVariantHeader, req.Assignment.Variant)
		}
	}

	resp, err := ac.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ad service returned %d", resp.StatusCode)
	}

	var envelope candidateEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}
	if !envelope.Success || envelope.Advertisement == nil {
		return nil, nil
	}
	return envelope.Advertisement, nil
}
