package weavy

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mtlprog/floatingagent/internal/domain"
)

// CreateApp creates an app such as a files collection.
func (c *Client) CreateApp(ctx context.Context, app domain.FileCollection) (*domain.FileCollection, error) {
	var created domain.FileCollection
	if err := c.doJSON(ctx, http.MethodPost, "/api/apps", app, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteApp deletes an app by id or uid.
func (c *Client) DeleteApp(ctx context.Context, app string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/apps/"+url.PathEscape(app), nil, nil)
}

// CreateFile attaches an uploaded blob to a files app.
func (c *Client) CreateFile(ctx context.Context, app domain.ID, name string, blob domain.ID) (*domain.KnowledgeFile, error) {
	body := struct {
		Name   string    `json:"name"`
		BlobID domain.ID `json:"blob_id"`
	}{Name: name, BlobID: blob}

	var file domain.KnowledgeFile
	path := "/api/apps/" + url.PathEscape(app.String()) + "/files"
	if err := c.doJSON(ctx, http.MethodPost, path, body, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// UploadBlob uploads data as a new blob.
func (c *Client) UploadBlob(ctx context.Context, filename, contentType string, data []byte) (*domain.Blob, error) {
	var blob domain.Blob
	if err := c.upload(ctx, "/api/blobs", filename, contentType, data, &blob); err != nil {
		return nil, err
	}
	return &blob, nil
}
