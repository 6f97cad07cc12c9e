package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/mtlprog/floatingagent/internal/domain"
	"github.com/mtlprog/floatingagent/internal/handler/dto"
	"github.com/mtlprog/floatingagent/internal/repository"
)

// handleListRuns lists recent workflow runs from the journal.
// @Summary List workflow runs
// @Tags workflows
// @Produce json
// @Param kind query string false "create_agent, update_agent, update_avatar, delete_agent, save_selection"
// @Param status query string false "running, succeeded, degraded, failed"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {object} dto.RunsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /workflows [get]
func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if h.runRepo == nil {
		respondDomainError(w, domain.ErrJournalDisabled)
		return
	}

	filters, err := parseRunFilters(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	runs, err := h.runRepo.List(r.Context(), filters)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.RunsResponse{Data: runs})
}

// handleGetRun returns one workflow run with its steps.
// @Summary Get a workflow run
// @Tags workflows
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} domain.WorkflowRun
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /workflows/{id} [get]
func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if h.runRepo == nil {
		respondDomainError(w, domain.ErrJournalDisabled)
		return
	}

	runID, ok := extractRunID(w, r)
	if !ok {
		return
	}

	run, err := h.runRepo.GetByID(r.Context(), runID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, run)
}

// extractRunID extracts and validates the run ID from the path parameter.
// Returns (runID, true) if valid, ("", false) if invalid (error already sent to client).
func extractRunID(w http.ResponseWriter, r *http.Request) (string, bool) {
	runID := r.PathValue("id")
	if _, err := uuid.Parse(runID); err != nil {
		respondError(w, http.StatusBadRequest, "run id must be a valid UUID")
		return "", false
	}
	return runID, true
}

func parseRunFilters(r *http.Request) (repository.RunListFilters, error) {
	query := r.URL.Query()
	var filters repository.RunListFilters

	if v := query.Get("kind"); v != "" {
		kind := domain.WorkflowKind(v)
		if !kind.IsValid() {
			return filters, domain.ErrInvalidRunFilter
		}
		filters.Kind = &kind
	}

	if v := query.Get("status"); v != "" {
		status := domain.RunStatus(v)
		if !status.IsValid() {
			return filters, domain.ErrInvalidRunFilter
		}
		filters.Status = &status
	}

	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return filters, domain.ErrInvalidRunFilter
		}
		filters.Limit = limit
	}

	return filters, nil
}
