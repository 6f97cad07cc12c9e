package domain

import (
	"strings"
	"time"
)

const (
	// FilesAppType is the platform app type backing a knowledge base.
	FilesAppType = "files"

	// FilesAppAccess grants agents write access to their knowledge base.
	FilesAppAccess = "write"

	// SelectionContentType is the media type of uploaded selections.
	SelectionContentType = "text/plain"
)

// FileCollection is a platform files app used as an agent knowledge base.
type FileCollection struct {
	ID     ID     `json:"id,omitempty"`
	UID    string `json:"uid,omitempty"`
	Name   string `json:"name,omitempty"`
	Type   string `json:"type,omitempty"`
	Access string `json:"access,omitempty"`
}

// Blob is an uploaded binary referenced by id.
type Blob struct {
	ID        ID     `json:"id"`
	Name      string `json:"name,omitempty"`
	MediaType string `json:"media_type,omitempty"`
	Size      int64  `json:"size,omitempty"`
}

// KnowledgeFile is a file attached to a file collection.
type KnowledgeFile struct {
	ID        ID     `json:"id,omitempty"`
	Name      string `json:"name"`
	MediaType string `json:"media_type,omitempty"`
	Size      int64  `json:"size,omitempty"`
	Kind      string `json:"kind,omitempty"`
}

// SelectionRecord is text and HTML captured from a browser selection.
type SelectionRecord struct {
	HTML      string `json:"html"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// selectionTimeLayout matches Date.prototype.toISOString output.
const selectionTimeLayout = "2006-01-02T15:04:05.000Z"

// SelectionFilename derives the knowledge file name for a selection.
// An empty timestamp falls back to now.
func SelectionFilename(timestamp string, now time.Time) string {
	if timestamp == "" {
		timestamp = now.UTC().Format(selectionTimeLayout)
	}
	r := strings.NewReplacer(":", "-", ".", "-")
	return "selection_" + r.Replace(timestamp) + ".txt"
}
