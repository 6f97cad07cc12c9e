package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// MaxSlugLength bounds the uid derived from an agent name.
	MaxSlugLength = 20

	// Platform descriptors applied to every agent created through the proxy.
	AgentType     = "copilot"
	AgentModel    = "weavy"
	AgentProvider = "weavy"
)

// Agent represents a chat assistant hosted by the platform. Fields the
// proxy does not model are kept in Extra and written back unchanged, so
// platform payloads pass through with the known fields overlaid.
type Agent struct {
	ID              ID     `json:"id,omitempty"`
	UID             string `json:"uid"`
	Name            string `json:"name"`
	Instructions    string `json:"instructions,omitempty"`
	Type            string `json:"type,omitempty"`
	Model           string `json:"model,omitempty"`
	Provider        string `json:"provider,omitempty"`
	AvatarURL       string `json:"avatar_url,omitempty"`
	Picture         ID     `json:"picture,omitempty"`
	KnowledgeBaseID ID     `json:"knowledge_base_id,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// plainAgent has the fields of Agent without its JSON methods.
type plainAgent Agent

func (a *Agent) knownFields() map[string]any {
	return map[string]any{
		"id":                &a.ID,
		"uid":               &a.UID,
		"name":              &a.Name,
		"instructions":      &a.Instructions,
		"type":              &a.Type,
		"model":             &a.Model,
		"provider":          &a.Provider,
		"avatar_url":        &a.AvatarURL,
		"picture":           &a.Picture,
		"knowledge_base_id": &a.KnowledgeBaseID,
	}
}

// UnmarshalJSON implements json.Unmarshaler. A known field whose value has
// another shape, such as a picture object, stays in Extra untouched.
func (a *Agent) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode agent: %w", err)
	}

	*a = Agent{}
	for key, dst := range a.knownFields() {
		value, ok := raw[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, dst); err == nil {
			delete(raw, key)
		}
	}
	if len(raw) > 0 {
		a.Extra = raw
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (a Agent) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(plainAgent(a))
	if err != nil {
		return nil, err
	}
	if len(a.Extra) == 0 {
		return known, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(a.Extra)+len(fields))
	for key, value := range a.Extra {
		out[key] = value
	}
	for key, value := range fields {
		// An undecoded platform value beats an unset field.
		if _, kept := a.Extra[key]; kept && string(value) == `""` {
			continue
		}
		out[key] = value
	}
	return json.Marshal(out)
}

// Slugify derives an agent uid from its display name: lowercase, only
// [a-z0-9] kept, truncated to MaxSlugLength characters.
func Slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == MaxSlugLength {
				break
			}
		}
	}
	return b.String()
}

// FilesAppUID returns the uid of the file collection owned by the agent.
func FilesAppUID(agentUID string) string {
	return agentUID + "-files"
}

// FilesAppName returns the display name of the agent's file collection.
func FilesAppName(agentName string) string {
	return agentName + "'s Files"
}

// AvatarFilename returns the blob filename used for an agent avatar.
func AvatarFilename(agentUID, contentType string) string {
	ext := "png"
	switch contentType {
	case "image/jpeg":
		ext = "jpg"
	case "image/gif":
		ext = "gif"
	case "image/webp":
		ext = "webp"
	case "image/svg+xml":
		ext = "svg"
	}
	return agentUID + "-avatar." + ext
}
