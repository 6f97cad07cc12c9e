package handler

import (
	"context"
	"net/http"

	"github.com/mtlprog/floatingagent/internal/handler/dto"
	"github.com/mtlprog/floatingagent/internal/relay"
)

// Identity the background worker falls back to when the page sends none.
const (
	defaultTokenName  = "Demo User"
	defaultTokenEmail = "demo@example.com"
)

// TokenReply is the data of a GET_WEAVY_TOKEN reply.
type TokenReply struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"access_token"`
}

func (h *Handler) newRelayRouter() *relay.Router {
	r := relay.NewRouter()
	r.Handle(relay.TypeSaveSelection, h.relaySaveSelection)
	r.Handle(relay.TypeSetDOMData, h.relaySetDOMData)
	r.Handle(relay.TypeGetWeavyToken, h.relayGetToken)
	r.Handle(relay.TypeUpdateFeatures, h.relayFeatures)
	r.Handle(relay.TypeUpdateStatus, h.relayStatus)
	return r
}

// handleRelay dispatches a message from the extension to its server-side handler.
// @Summary Relay an extension message
// @Description Accepts a {type, data} message. saveSelection, setDOMData, GET_WEAVY_TOKEN, updateFeatures and updateStatus are handled; panel-only types are rejected with 422.
// @Tags extension
// @Accept json
// @Produce json
// @Param request body relay.Message true "Tagged message"
// @Success 200 {object} relay.Message
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /relay [post]
func (h *Handler) handleRelay(w http.ResponseWriter, r *http.Request) {
	var msg relay.Message
	if !decodeBody(w, r, &msg) {
		return
	}

	reply, err := h.router.Dispatch(r.Context(), msg)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, reply)
}

func (h *Handler) relaySaveSelection(ctx context.Context, msg relay.Message) (relay.Message, error) {
	var req dto.SaveSelectionRequest
	if err := msg.Decode(&req); err != nil {
		return relay.Message{}, err
	}

	resp, err := h.saveSelection(ctx, req)
	if err != nil {
		return relay.Message{}, err
	}

	return relay.NewMessage(relay.TypeSaveSelection, resp)
}

func (h *Handler) relaySetDOMData(ctx context.Context, msg relay.Message) (relay.Message, error) {
	var page dto.PageData
	if err := msg.Decode(&page); err != nil {
		return relay.Message{}, err
	}

	return relay.NewMessage(relay.TypeSetDOMData, h.acknowledgeDOM(page.URL, page.Title, page.Content))
}

func (h *Handler) relayGetToken(ctx context.Context, msg relay.Message) (relay.Message, error) {
	req := dto.TokenRequest{Name: defaultTokenName, Email: defaultTokenEmail}
	if len(msg.Data) > 0 {
		if err := msg.Decode(&req); err != nil {
			return relay.Message{}, err
		}
		if req.Name == "" {
			req.Name = defaultTokenName
		}
		if req.Email == "" {
			req.Email = defaultTokenEmail
		}
	}

	token, err := h.tokenService.IssueToken(ctx, req.Name, req.Email)
	if err != nil {
		return relay.Message{}, err
	}

	return relay.NewMessage(relay.TypeGetWeavyToken, TokenReply{Success: true, AccessToken: token})
}

func (h *Handler) relayFeatures(ctx context.Context, msg relay.Message) (relay.Message, error) {
	return relay.NewMessage(relay.TypeUpdateFeatures, h.features)
}

func (h *Handler) relayStatus(ctx context.Context, msg relay.Message) (relay.Message, error) {
	return relay.NewMessage(relay.TypeUpdateStatus, dto.StatusResponse{Status: proxyStatusActive})
}
