package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mtlprog/floatingagent/internal/domain"
	"github.com/mtlprog/floatingagent/internal/weavy"
)

// Step names, as they appear in errors and in the journal.
const (
	stepFetchAgents       = "fetch agents"
	stepCreateAvatarBlob  = "create avatar blob"
	stepCreateFilesApp    = "create files app"
	stepCreateAgent       = "create agent"
	stepGetAgent          = "get agent"
	stepUpdateAgent       = "update agent"
	stepCreateBlob        = "create blob"
	stepUpdateAgentAvatar = "update agent avatar"
	stepDeleteAgent       = "delete agent"
	stepDeleteFilesApp    = "delete files app"
)

// AgentService orchestrates agent workflows against the platform.
type AgentService struct {
	platform Platform
	runner   *Runner
}

// NewAgentService creates a new AgentService.
func NewAgentService(platform Platform, runner *Runner) *AgentService {
	return &AgentService{
		platform: platform,
		runner:   runner,
	}
}

// ListAgents returns all agents decorated with their instructions and
// knowledge base id. Decoration runs concurrently, one goroutine per agent;
// a failure leaves that agent undecorated instead of failing the listing.
func (s *AgentService) ListAgents(ctx context.Context) ([]domain.Agent, error) {
	agents, err := s.platform.ListAgents(ctx)
	if err != nil {
		return nil, &domain.StepError{Step: stepFetchAgents, Err: err}
	}

	var wg sync.WaitGroup
	for i := range agents {
		wg.Add(1)
		go func(agent *domain.Agent) {
			defer wg.Done()
			s.decorate(ctx, agent)
		}(&agents[i])
	}
	wg.Wait()

	slog.Info("agents listed", "count", len(agents))

	return agents, nil
}

func (s *AgentService) decorate(ctx context.Context, agent *domain.Agent) {
	details, err := s.platform.GetAgent(ctx, agent.UID)
	if err != nil {
		slog.Warn("failed to fetch agent details", "uid", agent.UID, "error", err)
		return
	}
	agent.Instructions = details.Instructions

	knowledge, err := s.platform.ListAgentKnowledge(ctx, agent.UID)
	if err != nil {
		slog.Warn("failed to fetch agent knowledge", "uid", agent.UID, "error", err)
		return
	}
	if len(knowledge) > 0 {
		agent.KnowledgeBaseID = knowledge[0].ID
	}
}

// CreateAgent provisions an agent: optional avatar blob, then a dedicated
// files app, then the agent linked to both. Earlier steps are not undone
// when a later one fails.
func (s *AgentService) CreateAgent(ctx context.Context, p CreateAgentParams) (*domain.Agent, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var avatar *image
	if p.Avatar != "" {
		img, err := decodeImage(p.Avatar)
		if err != nil {
			return nil, err
		}
		avatar = img
	}

	uid := domain.Slugify(p.Name)

	var (
		pictureID domain.ID
		filesApp  *domain.FileCollection
		created   *domain.Agent
	)

	steps := make([]Step, 0, 3)
	if avatar != nil {
		steps = append(steps, Step{
			Name: stepCreateAvatarBlob,
			Run: func(ctx context.Context) error {
				blob, err := s.platform.UploadBlob(ctx, domain.AvatarFilename(uid, avatar.contentType), avatar.contentType, avatar.data)
				if err != nil {
					return err
				}
				pictureID = blob.ID
				return nil
			},
		})
	}

	steps = append(steps,
		Step{
			Name: stepCreateFilesApp,
			Run: func(ctx context.Context) error {
				app, err := s.platform.CreateApp(ctx, domain.FileCollection{
					UID:    domain.FilesAppUID(uid),
					Name:   domain.FilesAppName(p.Name),
					Type:   domain.FilesAppType,
					Access: domain.FilesAppAccess,
				})
				if err != nil {
					return err
				}
				filesApp = app
				return nil
			},
		},
		Step{
			Name: stepCreateAgent,
			Run: func(ctx context.Context) error {
				agent, err := s.platform.CreateAgent(ctx, weavy.CreateAgentInput{
					UID:             uid,
					Name:            p.Name,
					Instructions:    p.Instructions,
					Type:            domain.AgentType,
					Model:           domain.AgentModel,
					Provider:        domain.AgentProvider,
					KnowledgeBaseID: filesApp.ID,
					Picture:         pictureID,
				})
				if err != nil {
					return err
				}
				created = agent
				return nil
			},
		},
	)

	if err := s.runner.Execute(ctx, domain.WorkflowCreateAgent, uid, steps...); err != nil {
		return nil, err
	}

	created.KnowledgeBaseID = filesApp.ID

	slog.Info("agent created",
		"uid", uid,
		"knowledge_base_id", filesApp.ID,
		"has_avatar", avatar != nil,
	)

	return created, nil
}

// UpdateAgent confirms the agent exists, then patches only its name and
// instructions.
func (s *AgentService) UpdateAgent(ctx context.Context, p UpdateAgentParams) (*domain.Agent, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.Agent
	err := s.runner.Execute(ctx, domain.WorkflowUpdateAgent, p.UID,
		Step{
			Name: stepGetAgent,
			Run: func(ctx context.Context) error {
				_, err := s.platform.GetAgent(ctx, p.UID)
				return err
			},
		},
		Step{
			Name: stepUpdateAgent,
			Run: func(ctx context.Context) error {
				agent, err := s.platform.UpdateAgent(ctx, p.UID, weavy.AgentPatch{
					Name:         p.Name,
					Instructions: p.Instructions,
				})
				if err != nil {
					return err
				}
				updated = agent
				return nil
			},
		},
	)
	if err != nil {
		return nil, err
	}

	slog.Info("agent updated", "uid", p.UID)

	return updated, nil
}

// UpdateAvatar uploads a new blob and points the agent's picture at it.
func (s *AgentService) UpdateAvatar(ctx context.Context, uid, encoded string) (*domain.Agent, error) {
	if uid == "" || encoded == "" {
		return nil, domain.ErrMissingFields
	}

	avatar, err := decodeImage(encoded)
	if err != nil {
		return nil, err
	}

	var (
		blob    *domain.Blob
		updated *domain.Agent
	)
	err = s.runner.Execute(ctx, domain.WorkflowUpdateAvatar, uid,
		Step{
			Name: stepCreateBlob,
			Run: func(ctx context.Context) error {
				b, err := s.platform.UploadBlob(ctx, domain.AvatarFilename(uid, avatar.contentType), avatar.contentType, avatar.data)
				if err != nil {
					return err
				}
				blob = b
				return nil
			},
		},
		Step{
			Name: stepUpdateAgentAvatar,
			Run: func(ctx context.Context) error {
				agent, err := s.platform.UpdateAgent(ctx, uid, weavy.AgentPatch{Picture: blob.ID})
				if err != nil {
					return err
				}
				updated = agent
				return nil
			},
		},
	)
	if err != nil {
		return nil, err
	}

	slog.Info("agent avatar updated", "uid", uid, "blob_id", blob.ID)

	return updated, nil
}

// DeleteAgent removes the agent, then tries to remove its files app. The
// second removal is best effort: once the agent is gone the deletion counts
// as successful.
func (s *AgentService) DeleteAgent(ctx context.Context, uid string) error {
	if uid == "" {
		return domain.ErrMissingFields
	}

	err := s.runner.Execute(ctx, domain.WorkflowDeleteAgent, uid,
		Step{
			Name: stepGetAgent,
			Run: func(ctx context.Context) error {
				_, err := s.platform.GetAgent(ctx, uid)
				return err
			},
		},
		Step{
			Name: stepDeleteAgent,
			Run: func(ctx context.Context) error {
				return s.platform.DeleteAgent(ctx, uid)
			},
		},
		Step{
			Name:       stepDeleteFilesApp,
			BestEffort: true,
			Run: func(ctx context.Context) error {
				return s.platform.DeleteApp(ctx, domain.FilesAppUID(uid))
			},
		},
	)
	if err != nil {
		return err
	}

	slog.Info("agent deleted", "uid", uid)

	return nil
}
