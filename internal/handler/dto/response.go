package dto

import (
	"github.com/mtlprog/floatingagent/internal/domain"
)

// AgentsResponse represents the response for GET /api/agents.
type AgentsResponse struct {
	Data []domain.Agent `json:"data"`
}

// DeleteAgentResponse represents the response for DELETE /api/agents/{uid}.
type DeleteAgentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// TokenResponse represents the response for POST /api/weavy-token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Feature is an entry of the extension feature list.
type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// FeaturesResponse represents the response for GET /api/features.
type FeaturesResponse struct {
	Features []Feature `json:"features"`
}

// DOMResponse acknowledges POST /api/dom.
type DOMResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	DOMLength int    `json:"domLength"`
}

// SaveSelectionResponse represents the response for POST /api/save-selection.
type SaveSelectionResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	File    *domain.KnowledgeFile `json:"file"`
}

// StatusResponse represents the response for GET /api/status.
type StatusResponse struct {
	Status string `json:"status"`
}

// RunsResponse represents the response for GET /api/workflows.
type RunsResponse struct {
	Data []*domain.WorkflowRun `json:"data"`
}
