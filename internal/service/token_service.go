package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mtlprog/floatingagent/internal/domain"
)

const stepIssueToken = "get weavy token"

// TokenService issues platform session tokens for extension users.
type TokenService struct {
	platform Platform
}

// NewTokenService creates a new TokenService.
func NewTokenService(platform Platform) *TokenService {
	return &TokenService{platform: platform}
}

// IssueToken returns an access token for {name, email}.
func (s *TokenService) IssueToken(ctx context.Context, name, email string) (string, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return "", domain.ErrMissingIdentity
	}

	token, err := s.platform.IssueToken(ctx, name, email)
	if err != nil {
		return "", &domain.StepError{Step: stepIssueToken, Err: err}
	}

	slog.Info("weavy token issued", "email", email, "token_length", len(token))

	return token, nil
}
