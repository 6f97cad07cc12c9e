package service

import (
	"context"

	"github.com/mtlprog/floatingagent/internal/domain"
	"github.com/mtlprog/floatingagent/internal/weavy"
)

// Platform is the subset of the platform API the workflows depend on.
// *weavy.Client implements it.
type Platform interface {
	ListAgents(ctx context.Context) ([]domain.Agent, error)
	GetAgent(ctx context.Context, uid string) (*domain.Agent, error)
	ListAgentKnowledge(ctx context.Context, uid string) ([]domain.FileCollection, error)
	CreateAgent(ctx context.Context, in weavy.CreateAgentInput) (*domain.Agent, error)
	UpdateAgent(ctx context.Context, uid string, patch weavy.AgentPatch) (*domain.Agent, error)
	DeleteAgent(ctx context.Context, uid string) error
	CreateApp(ctx context.Context, app domain.FileCollection) (*domain.FileCollection, error)
	DeleteApp(ctx context.Context, app string) error
	CreateFile(ctx context.Context, app domain.ID, name string, blob domain.ID) (*domain.KnowledgeFile, error)
	UploadBlob(ctx context.Context, filename, contentType string, data []byte) (*domain.Blob, error)
	IssueToken(ctx context.Context, name, email string) (string, error)
}

var _ Platform = (*weavy.Client)(nil)
