// Package relay models the messages exchanged between the extension's
// contexts (page, panel iframe, popup, background worker) as a tagged union
// and dispatches them through an explicit router.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mtlprog/floatingagent/internal/domain"
)

// Type tags a message.
type Type string

const (
	TypeUpdateStatus   Type = "updateStatus"
	TypeUpdateFeatures Type = "updateFeatures"
	TypeShowError      Type = "showError"
	TypeHideLoading    Type = "hideLoading"
	TypeSetDOMData     Type = "setDOMData"
	TypeSaveSelection  Type = "saveSelection"
	TypeClosePanel     Type = "closePanel"
	TypeTogglePanel    Type = "togglePanel"
	TypeGetWeavyToken  Type = "GET_WEAVY_TOKEN"
)

// IsKnown reports whether t is one of the message types the extension uses.
func (t Type) IsKnown() bool {
	switch t {
	case TypeUpdateStatus, TypeUpdateFeatures, TypeShowError, TypeHideLoading,
		TypeSetDOMData, TypeSaveSelection, TypeClosePanel, TypeTogglePanel,
		TypeGetWeavyToken:
		return true
	default:
		return false
	}
}

// PanelOnly reports whether the message only makes sense inside the browser
// (DOM and panel state) and so never reaches the server.
func (t Type) PanelOnly() bool {
	switch t {
	case TypeShowError, TypeHideLoading, TypeClosePanel, TypeTogglePanel:
		return true
	default:
		return false
	}
}

// Message is a tagged envelope. Data holds the type-specific payload.
type Message struct {
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewMessage builds a message with payload encoded as JSON.
func NewMessage(t Type, payload any) (Message, error) {
	msg := Message{Type: t}
	if payload == nil {
		return msg, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("encode %s payload: %w", t, err)
	}
	msg.Data = data
	return msg, nil
}

// Decode unmarshals the payload into v.
func (m Message) Decode(v any) error {
	if len(m.Data) == 0 {
		return fmt.Errorf("%w: %s message has no data", domain.ErrInvalidEnvelope, m.Type)
	}
	if err := json.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("%w: %s payload: %v", domain.ErrInvalidEnvelope, m.Type, err)
	}
	return nil
}

// HandlerFunc handles one message type and returns the reply.
type HandlerFunc func(ctx context.Context, msg Message) (Message, error)

// Router dispatches messages on their type tag.
type Router struct {
	mu       sync.RWMutex
	handlers map[Type]HandlerFunc
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{handlers: make(map[Type]HandlerFunc)}
}

// Handle registers h for t, replacing any previous handler.
func (r *Router) Handle(t Type, h HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[t] = h
}

// Dispatch routes msg to its handler.
func (r *Router) Dispatch(ctx context.Context, msg Message) (Message, error) {
	if msg.Type == "" {
		return Message{}, fmt.Errorf("%w: missing type", domain.ErrInvalidEnvelope)
	}
	if !msg.Type.IsKnown() {
		return Message{}, fmt.Errorf("%w: %q", domain.ErrUnknownMessage, msg.Type)
	}
	if msg.Type.PanelOnly() {
		return Message{}, fmt.Errorf("%w: %s", domain.ErrNotRelayable, msg.Type)
	}

	r.mu.RLock()
	h, ok := r.handlers[msg.Type]
	r.mu.RUnlock()
	if !ok {
		return Message{}, fmt.Errorf("%w: no handler for %s", domain.ErrUnknownMessage, msg.Type)
	}

	return h(ctx, msg)
}
