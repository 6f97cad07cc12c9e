package weavy

import (
	"context"
	"net/http"
	"net/url"
)

// IssueToken returns an access token for the user identified by email,
// creating the user on the fly.
func (c *Client) IssueToken(ctx context.Context, name, email string) (string, error) {
	body := struct {
		UID   string `json:"uid"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}{UID: email, Email: email, Name: name}

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	path := "/api/users/" + url.PathEscape(email) + "/tokens"
	if err := c.doJSON(ctx, http.MethodPost, path, body, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}
