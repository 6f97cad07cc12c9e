// Package weavy is a client for the subset of the Weavy platform API the
// proxy relays: agents, apps (file collections), blobs, files and user tokens.
package weavy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client issues authenticated requests against the platform API.
type Client struct {
	http *resty.Client
}

// Option configures a Client.
type Option func(*resty.Client)

// WithTimeout bounds every outbound request. Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) {
		c.SetTimeout(d)
	}
}

// New creates a Client for the platform at baseURL using apiKey as bearer token.
func New(baseURL, apiKey string, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(apiKey).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "floatingagent/1.0")

	for _, opt := range opts {
		opt(rc)
	}

	return &Client{http: rc}
}

// APIError is a non-2xx response from the platform.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, status)
}

// HTTPStatus returns the downstream status code.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// doJSON sends body as JSON (when non-nil) and decodes the response into out
// (when non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	return c.send(req, method, path, out)
}

// upload posts data as the "file" part of a multipart form.
func (c *Client) upload(ctx context.Context, path, filename, contentType string, data []byte, out any) error {
	req := c.http.R().
		SetContext(ctx).
		SetMultipartField("file", filename, contentType, bytes.NewReader(data))
	return c.send(req, http.MethodPost, path, out)
}

func (c *Client) send(req *resty.Request, method, path string, out any) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if !resp.IsSuccess() {
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       string(resp.Body()),
		}
	}

	if out == nil || len(bytes.TrimSpace(resp.Body())) == 0 {
		return nil
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}

	return nil
}
