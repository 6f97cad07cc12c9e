package service

import (
	"encoding/base64"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/mtlprog/floatingagent/internal/domain"
)

const defaultImageType = "image/png"

// CreateAgentParams holds the input of the provisioning workflow.
type CreateAgentParams struct {
	Name         string
	Instructions string
	// Avatar is an optional base64 image, either a data URL or bare base64.
	Avatar string
}

// Validate checks required fields. It never touches the network.
func (p CreateAgentParams) Validate() error {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Instructions) == "" {
		return domain.ErrMissingFields
	}
	if domain.Slugify(p.Name) == "" {
		return domain.ErrUnusableName
	}
	return nil
}

// UpdateAgentParams holds the input of a name/instructions update.
type UpdateAgentParams struct {
	UID          string
	Name         string
	Instructions string
}

// Validate checks required fields.
func (p UpdateAgentParams) Validate() error {
	if p.UID == "" || strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Instructions) == "" {
		return domain.ErrMissingFields
	}
	return nil
}

// SaveSelectionParams holds the input of the selection-capture workflow.
type SaveSelectionParams struct {
	Selection       domain.SelectionRecord
	KnowledgeBaseID domain.ID
}

// Validate checks that there is text to save and a target collection.
func (p SaveSelectionParams) Validate() error {
	if p.Selection.Text == "" {
		return domain.ErrEmptySelection
	}
	if p.KnowledgeBaseID.IsZero() {
		return domain.ErrNoKnowledgeBase
	}
	return nil
}

// image is a decoded avatar upload.
type image struct {
	data        []byte
	contentType string
}

// decodeImage accepts "data:image/png;base64,...." or bare base64. Without a
// declared media type the type is sniffed from the bytes, falling back to
// image/png.
func decodeImage(s string) (*image, error) {
	s = strings.TrimSpace(s)
	contentType := ""

	if header, payload, ok := strings.Cut(s, ","); ok {
		if mediaType, isDataURL := strings.CutPrefix(header, "data:"); isDataURL {
			mediaType, _, _ = strings.Cut(mediaType, ";")
			if mediaType != "" {
				if !strings.HasPrefix(mediaType, "image/") {
					return nil, domain.ErrInvalidAvatar
				}
				contentType = mediaType
			}
		}
		s = payload
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(data) == 0 {
		return nil, domain.ErrInvalidAvatar
	}

	if contentType == "" {
		contentType = defaultImageType
		if detected := mimetype.Detect(data).String(); strings.HasPrefix(detected, "image/") {
			contentType = detected
		}
	}

	return &image{data: data, contentType: contentType}, nil
}
