package weavy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mtlprog/floatingagent/internal/domain"
)

// CreateAgentInput is the body of POST /api/agents.
type CreateAgentInput struct {
	UID             string    `json:"uid"`
	Name            string    `json:"name"`
	Instructions    string    `json:"instructions"`
	Type            string    `json:"type"`
	Model           string    `json:"model"`
	Provider        string    `json:"provider"`
	KnowledgeBaseID domain.ID `json:"knowledge_base_id"`
	Picture         domain.ID `json:"picture,omitempty"`
}

// AgentPatch is the body of PATCH /api/agents/{uid}. Empty fields are left
// untouched by the platform.
type AgentPatch struct {
	Name         string    `json:"name,omitempty"`
	Instructions string    `json:"instructions,omitempty"`
	Picture      domain.ID `json:"picture,omitempty"`
}

func agentPath(uid string) string {
	return "/api/agents/" + url.PathEscape(uid)
}

// ListAgents returns all agents. The platform answers either with a bare
// array or with a {"data": [...]} envelope.
func (c *Client) ListAgents(ctx context.Context) ([]domain.Agent, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/api/agents", nil, &raw); err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var agents []domain.Agent
		if err := json.Unmarshal(raw, &agents); err != nil {
			return nil, fmt.Errorf("decode agent list: %w", err)
		}
		return agents, nil
	}

	var envelope struct {
		Data []domain.Agent `json:"data"`
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("decode agent list: %w", err)
		}
	}
	if envelope.Data == nil {
		return []domain.Agent{}, nil
	}
	return envelope.Data, nil
}

// GetAgent fetches a single agent by uid.
func (c *Client) GetAgent(ctx context.Context, uid string) (*domain.Agent, error) {
	var agent domain.Agent
	if err := c.doJSON(ctx, http.MethodGet, agentPath(uid), nil, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// ListAgentKnowledge returns the file collections attached to an agent.
func (c *Client) ListAgentKnowledge(ctx context.Context, uid string) ([]domain.FileCollection, error) {
	var resp struct {
		Data []domain.FileCollection `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, agentPath(uid)+"/knowledge", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// CreateAgent creates an agent.
func (c *Client) CreateAgent(ctx context.Context, in CreateAgentInput) (*domain.Agent, error) {
	var agent domain.Agent
	if err := c.doJSON(ctx, http.MethodPost, "/api/agents", in, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// UpdateAgent applies a partial update to an agent.
func (c *Client) UpdateAgent(ctx context.Context, uid string, patch AgentPatch) (*domain.Agent, error) {
	var agent domain.Agent
	if err := c.doJSON(ctx, http.MethodPatch, agentPath(uid), patch, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// DeleteAgent deletes an agent.
func (c *Client) DeleteAgent(ctx context.Context, uid string) error {
	return c.doJSON(ctx, http.MethodDelete, agentPath(uid), nil, nil)
}
