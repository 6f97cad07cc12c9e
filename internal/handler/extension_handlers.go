package handler

import (
	"context"
	"log/slog"
	"net/http"
	"unicode/utf16"

	"github.com/mtlprog/floatingagent/internal/handler/dto"
	"github.com/mtlprog/floatingagent/internal/service"
)

const (
	domReceivedMessage    = "DOM received successfully"
	selectionSavedMessage = "Selection uploaded to Weavy successfully"
	proxyStatusActive     = "active"
)

// handleStatus reports that the proxy is up.
// @Summary Proxy status
// @Tags extension
// @Produce json
// @Success 200 {object} dto.StatusResponse
// @Router /status [get]
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.StatusResponse{Status: proxyStatusActive})
}

// handleFeatures returns the static feature list shown in the popup.
// @Summary Extension features
// @Tags extension
// @Produce json
// @Success 200 {object} dto.FeaturesResponse
// @Router /features [get]
func (h *Handler) handleFeatures(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.features)
}

// handleDOM acknowledges page DOM captured by the extension. The DOM is not
// processed.
// @Summary Submit page DOM
// @Tags extension
// @Accept json
// @Produce json
// @Param request body dto.DOMRequest true "Captured page"
// @Success 200 {object} dto.DOMResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /dom [post]
func (h *Handler) handleDOM(w http.ResponseWriter, r *http.Request) {
	var req dto.DOMRequest
	if !decodeBody(w, r, &req) {
		return
	}

	respondJSON(w, http.StatusOK, h.acknowledgeDOM(req.URL, req.Title, req.DOM))
}

func (h *Handler) acknowledgeDOM(url, title, dom string) dto.DOMResponse {
	length := len(utf16.Encode([]rune(dom)))

	slog.Info("dom received", "url", url, "title", title, "dom_length", length)

	return dto.DOMResponse{
		Success:   true,
		Message:   domReceivedMessage,
		URL:       url,
		Title:     title,
		DOMLength: length,
	}
}

// handleIssueToken issues a platform session token for the extension user.
// @Summary Issue a chat token
// @Tags extension
// @Accept json
// @Produce json
// @Param request body dto.TokenRequest true "User identity"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /weavy-token [post]
func (h *Handler) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, err := h.tokenService.IssueToken(r.Context(), req.Name, req.Email)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.TokenResponse{AccessToken: token})
}

// handleSaveSelection stores a browser selection as a knowledge base file.
// @Summary Save a selection
// @Description Uploads the selected text as a blob, then attaches it to the knowledge base as selection_<timestamp>.txt.
// @Tags extension
// @Accept json
// @Produce json
// @Param request body dto.SaveSelectionRequest true "Captured selection"
// @Success 200 {object} dto.SaveSelectionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /save-selection [post]
func (h *Handler) handleSaveSelection(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveSelectionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.saveSelection(r.Context(), req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) saveSelection(ctx context.Context, req dto.SaveSelectionRequest) (*dto.SaveSelectionResponse, error) {
	file, err := h.selectionService.SaveSelection(ctx, service.SaveSelectionParams{
		Selection:       req.Selection(),
		KnowledgeBaseID: req.KnowledgeBaseID,
	})
	if err != nil {
		return nil, err
	}

	return &dto.SaveSelectionResponse{
		Success: true,
		Message: selectionSavedMessage,
		File:    file,
	}, nil
}
