package dto

import "github.com/mtlprog/floatingagent/internal/domain"

// CreateAgentRequest represents the request body for POST /api/agents.
type CreateAgentRequest struct {
	Name         string `json:"name"`
	Instructions string `json:"instructions"`
	Avatar       string `json:"avatar,omitempty"` // base64 data URL
}

// UpdateAgentRequest represents the request body for PUT /api/agents/{uid}.
type UpdateAgentRequest struct {
	Name         string `json:"name"`
	Instructions string `json:"instructions"`
}

// UpdateAvatarRequest represents the request body for POST /api/agents/{uid}/avatar.
type UpdateAvatarRequest struct {
	Image string `json:"image"` // base64 data URL
}

// TokenRequest represents the request body for POST /api/weavy-token.
type TokenRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DOMRequest represents the request body for POST /api/dom.
type DOMRequest struct {
	DOM   string `json:"dom"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// SaveSelectionRequest represents the request body for POST /api/save-selection.
type SaveSelectionRequest struct {
	HTML            string    `json:"html"`
	Text            string    `json:"text"`
	Timestamp       string    `json:"timestamp"`
	KnowledgeBaseID domain.ID `json:"knowledgeBaseId" swaggertype:"string"`
}

// Selection returns the captured selection part of the request.
func (r SaveSelectionRequest) Selection() domain.SelectionRecord {
	return domain.SelectionRecord{
		HTML:      r.HTML,
		Text:      r.Text,
		Timestamp: r.Timestamp,
	}
}

// PageData is the payload of a setDOMData relay message.
type PageData struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
