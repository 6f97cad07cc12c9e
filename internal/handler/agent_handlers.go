package handler

import (
	"net/http"

	"github.com/mtlprog/floatingagent/internal/handler/dto"
	"github.com/mtlprog/floatingagent/internal/service"
)

// handleListAgents lists agents decorated with instructions and knowledge base.
// @Summary List agents
// @Description Lists platform agents, each decorated with its instructions and knowledge_base_id. Agents whose details cannot be fetched are returned undecorated.
// @Tags agents
// @Produce json
// @Success 200 {object} dto.AgentsResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /agents [get]
func (h *Handler) handleListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.agentService.ListAgents(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.AgentsResponse{Data: agents})
}

// handleCreateAgent provisions a new agent with its own file collection.
// @Summary Create an agent
// @Description Uploads the optional avatar, creates the "<name>'s Files" collection, then the agent. Earlier steps are not rolled back if a later one fails.
// @Tags agents
// @Accept json
// @Produce json
// @Param request body dto.CreateAgentRequest true "Agent creation request"
// @Success 200 {object} domain.Agent
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /agents [post]
func (h *Handler) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAgentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	agent, err := h.agentService.CreateAgent(r.Context(), service.CreateAgentParams{
		Name:         req.Name,
		Instructions: req.Instructions,
		Avatar:       req.Avatar,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, agent)
}

// handleUpdateAgent updates an agent's name and instructions.
// @Summary Update an agent
// @Tags agents
// @Accept json
// @Produce json
// @Param uid path string true "Agent UID"
// @Param request body dto.UpdateAgentRequest true "Agent update request"
// @Success 200 {object} domain.Agent
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /agents/{uid} [put]
func (h *Handler) handleUpdateAgent(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateAgentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	agent, err := h.agentService.UpdateAgent(r.Context(), service.UpdateAgentParams{
		UID:          r.PathValue("uid"),
		Name:         req.Name,
		Instructions: req.Instructions,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, agent)
}

// handleUpdateAvatar replaces an agent's avatar.
// @Summary Replace an agent avatar
// @Tags agents
// @Accept json
// @Produce json
// @Param uid path string true "Agent UID"
// @Param request body dto.UpdateAvatarRequest true "Base64 image"
// @Success 200 {object} domain.Agent
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /agents/{uid}/avatar [post]
func (h *Handler) handleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateAvatarRequest
	if !decodeBody(w, r, &req) {
		return
	}

	agent, err := h.agentService.UpdateAvatar(r.Context(), r.PathValue("uid"), req.Image)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, agent)
}

// handleDeleteAgent deletes an agent and, best effort, its file collection.
// @Summary Delete an agent
// @Tags agents
// @Produce json
// @Param uid path string true "Agent UID"
// @Success 200 {object} dto.DeleteAgentResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /agents/{uid} [delete]
func (h *Handler) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	if err := h.agentService.DeleteAgent(r.Context(), r.PathValue("uid")); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.DeleteAgentResponse{
		Success: true,
		Message: "Agent deleted successfully",
	})
}
