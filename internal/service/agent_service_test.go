package service_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mtlprog/floatingagent/internal/domain"
	"github.com/mtlprog/floatingagent/internal/service"
	"github.com/mtlprog/floatingagent/internal/weavy"
)

// AgentServiceTestSuite runs agent workflows against a fake platform.
type AgentServiceTestSuite struct {
	suite.Suite
	weavy        *fakeWeavy
	journal      *memoryJournal
	agentService *service.AgentService
}

func (s *AgentServiceTestSuite) SetupSuite() {
	s.weavy = newFakeWeavy()
}

func (s *AgentServiceTestSuite) SetupTest() {
	s.weavy.reset()
	s.journal = newMemoryJournal()
	client := weavy.New(s.weavy.URL, "test-key")
	s.agentService = service.NewAgentService(client, service.NewRunner(s.journal))
}

func (s *AgentServiceTestSuite) TearDownSuite() {
	s.weavy.Close()
}

func TestAgentServiceSuite(t *testing.T) {
	suite.Run(t, new(AgentServiceTestSuite))
}

func pngDataURL() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("\x89PNG fake"))
}

// Test 1: Create with avatar calls blob, files app, agent in that order
func (s *AgentServiceTestSuite) TestCreateAgent_WithAvatar() {
	agent, err := s.agentService.CreateAgent(context.Background(), service.CreateAgentParams{
		Name:         "My Cool Agent!!",
		Instructions: "Answer questions",
		Avatar:       pngDataURL(),
	})
	s.Require().NoError(err)

	s.Equal([]string{
		"POST /api/blobs",
		"POST /api/apps",
		"POST /api/agents",
	}, s.weavy.Calls())

	s.Equal("mycoolagent", agent.UID)
	s.Equal(domain.ID("202"), agent.KnowledgeBaseID)

	blobs := s.weavy.Blobs()
	s.Require().Len(blobs, 1)
	s.Equal("mycoolagent-avatar.png", blobs[0].Filename)
	s.Equal("image/png", blobs[0].ContentType)

	app := s.weavy.Body("POST /api/apps")
	s.Equal("mycoolagent-files", app["uid"])
	s.Equal("My Cool Agent!!'s Files", app["name"])
	s.Equal("files", app["type"])
	s.Equal("write", app["access"])

	created := s.weavy.Body("POST /api/agents")
	s.Equal("copilot", created["type"])
	s.Equal("weavy", created["model"])
	s.Equal("weavy", created["provider"])
	s.Equal(float64(202), created["knowledge_base_id"])
	s.Equal(float64(101), created["picture"])

	run := s.journal.lastRun()
	s.Require().NotNil(run)
	s.Equal(domain.WorkflowCreateAgent, run.Kind)
	s.Equal(domain.RunSucceeded, run.Status)
	s.Len(run.Steps, 3)
}

// Test 2: Without avatar no blob is uploaded
func (s *AgentServiceTestSuite) TestCreateAgent_WithoutAvatar() {
	_, err := s.agentService.CreateAgent(context.Background(), service.CreateAgentParams{
		Name:         "Helper",
		Instructions: "Help",
	})
	s.Require().NoError(err)

	s.Equal([]string{"POST /api/apps", "POST /api/agents"}, s.weavy.Calls())
	s.NotContains(s.weavy.Body("POST /api/agents"), "picture")
}

// Test 3: Files app failure stops before the agent is created
func (s *AgentServiceTestSuite) TestCreateAgent_FilesAppFails() {
	s.weavy.fail("POST /api/apps", http.StatusConflict)

	_, err := s.agentService.CreateAgent(context.Background(), service.CreateAgentParams{
		Name:         "Helper",
		Instructions: "Help",
	})
	s.Require().Error(err)

	var stepErr *domain.StepError
	s.Require().True(errors.As(err, &stepErr))
	s.Equal("create files app", stepErr.Step)
	s.Equal(http.StatusConflict, domain.DownstreamStatus(err))
	s.NotContains(s.weavy.Calls(), "POST /api/agents")

	run := s.journal.lastRun()
	s.Require().NotNil(run)
	s.Equal(domain.RunFailed, run.Status)
	s.Require().Len(run.Steps, 2)
	s.Equal(domain.StepFailed, run.Steps[0].Status)
	s.Require().NotNil(run.Steps[0].HTTPStatus)
	s.Equal(http.StatusConflict, *run.Steps[0].HTTPStatus)
	s.Equal("create agent", run.Steps[1].Name)
	s.Equal(domain.StepSkipped, run.Steps[1].Status)
}

// Test 4: Missing instructions is rejected without any platform call
func (s *AgentServiceTestSuite) TestCreateAgent_MissingInstructions() {
	_, err := s.agentService.CreateAgent(context.Background(), service.CreateAgentParams{
		Name: "Helper",
	})

	s.ErrorIs(err, domain.ErrValidation)
	s.ErrorIs(err, domain.ErrMissingFields)
	s.Empty(s.weavy.Calls())
	s.Zero(s.journal.count())
}

// Test 5: Names without letters or digits are rejected
func (s *AgentServiceTestSuite) TestCreateAgent_UnusableName() {
	_, err := s.agentService.CreateAgent(context.Background(), service.CreateAgentParams{
		Name:         "???",
		Instructions: "Help",
	})

	s.ErrorIs(err, domain.ErrUnusableName)
	s.Empty(s.weavy.Calls())
}

// Test 6: Invalid avatar is rejected without any platform call
func (s *AgentServiceTestSuite) TestCreateAgent_InvalidAvatar() {
	_, err := s.agentService.CreateAgent(context.Background(), service.CreateAgentParams{
		Name:         "Helper",
		Instructions: "Help",
		Avatar:       "data:text/plain;base64,aGVsbG8=",
	})

	s.ErrorIs(err, domain.ErrInvalidAvatar)
	s.Empty(s.weavy.Calls())
}

// Test 7: Update checks existence, then patches only name and instructions
func (s *AgentServiceTestSuite) TestUpdateAgent() {
	agent, err := s.agentService.UpdateAgent(context.Background(), service.UpdateAgentParams{
		UID:          "helper",
		Name:         "Helper 2",
		Instructions: "Help more",
	})
	s.Require().NoError(err)

	s.Equal([]string{"GET /api/agents/helper", "PATCH /api/agents/helper"}, s.weavy.Calls())
	s.Equal(map[string]any{"name": "Helper 2", "instructions": "Help more"}, s.weavy.Body("PATCH /api/agents/helper"))
	s.Equal("Helper 2", agent.Name)
}

// Test 8: Update of a missing agent never patches
func (s *AgentServiceTestSuite) TestUpdateAgent_NotFound() {
	s.weavy.fail("GET /api/agents/ghost", http.StatusNotFound)

	_, err := s.agentService.UpdateAgent(context.Background(), service.UpdateAgentParams{
		UID:          "ghost",
		Name:         "Ghost",
		Instructions: "Boo",
	})

	var stepErr *domain.StepError
	s.Require().True(errors.As(err, &stepErr))
	s.Equal("get agent", stepErr.Step)
	s.Equal([]string{"GET /api/agents/ghost"}, s.weavy.Calls())
}

// Test 9: Avatar replacement uploads a blob and patches the picture
func (s *AgentServiceTestSuite) TestUpdateAvatar() {
	jpeg := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("jpeg bytes"))

	_, err := s.agentService.UpdateAvatar(context.Background(), "helper", jpeg)
	s.Require().NoError(err)

	s.Equal([]string{"POST /api/blobs", "PATCH /api/agents/helper"}, s.weavy.Calls())
	s.Equal(map[string]any{"picture": float64(101)}, s.weavy.Body("PATCH /api/agents/helper"))

	blobs := s.weavy.Blobs()
	s.Require().Len(blobs, 1)
	s.Equal("helper-avatar.jpg", blobs[0].Filename)
	s.Equal("image/jpeg", blobs[0].ContentType)
	s.Equal("jpeg bytes", blobs[0].Content)
}

// Test 10: Delete succeeds even when the files app cannot be removed
func (s *AgentServiceTestSuite) TestDeleteAgent_FilesAppCleanupFails() {
	s.weavy.fail("DELETE /api/apps/helper-files", http.StatusInternalServerError)

	err := s.agentService.DeleteAgent(context.Background(), "helper")
	s.Require().NoError(err)

	s.Equal([]string{
		"GET /api/agents/helper",
		"DELETE /api/agents/helper",
		"DELETE /api/apps/helper-files",
	}, s.weavy.Calls())

	run := s.journal.lastRun()
	s.Require().NotNil(run)
	s.Equal(domain.RunDegraded, run.Status)
	s.Require().Len(run.Steps, 3)
	s.Equal(domain.StepFailed, run.Steps[2].Status)
}

// Test 11: Delete of a missing agent stops before any deletion
func (s *AgentServiceTestSuite) TestDeleteAgent_NotFound() {
	s.weavy.fail("GET /api/agents/ghost", http.StatusNotFound)

	err := s.agentService.DeleteAgent(context.Background(), "ghost")
	s.Require().Error(err)

	s.Equal(http.StatusNotFound, domain.DownstreamStatus(err))
	s.Equal([]string{"GET /api/agents/ghost"}, s.weavy.Calls())

	run := s.journal.lastRun()
	s.Require().NotNil(run)
	s.Equal(domain.RunFailed, run.Status)
	s.Equal(domain.StepSkipped, run.Steps[1].Status)
	s.Equal(domain.StepSkipped, run.Steps[2].Status)
}

// Test 12: Listing keeps agents whose details cannot be fetched
func (s *AgentServiceTestSuite) TestListAgents_PartialFailure() {
	s.weavy.fail("GET /api/agents/beta", http.StatusInternalServerError)

	agents, err := s.agentService.ListAgents(context.Background())
	s.Require().NoError(err)
	s.Require().Len(agents, 2)

	s.Equal("alpha", agents[0].UID)
	s.Equal("Instructions for alpha", agents[0].Instructions)
	s.Equal(domain.ID("500"), agents[0].KnowledgeBaseID)

	s.Equal("beta", agents[1].UID)
	s.Empty(agents[1].Instructions)
	s.True(agents[1].KnowledgeBaseID.IsZero())
	s.NotContains(s.weavy.Calls(), "GET /api/agents/beta/knowledge")
}

// Test 13: A knowledge failure keeps the instructions already fetched
func (s *AgentServiceTestSuite) TestListAgents_KnowledgeFails() {
	s.weavy.fail("GET /api/agents/alpha/knowledge", http.StatusBadGateway)

	agents, err := s.agentService.ListAgents(context.Background())
	s.Require().NoError(err)
	s.Require().Len(agents, 2)

	s.Equal("alpha", agents[0].UID)
	s.Equal("Instructions for alpha", agents[0].Instructions)
	s.True(agents[0].KnowledgeBaseID.IsZero())
	s.Contains(s.weavy.Calls(), "GET /api/agents/alpha/knowledge")

	s.Equal("beta", agents[1].UID)
	s.Equal("Instructions for beta", agents[1].Instructions)
	s.Equal(domain.ID("500"), agents[1].KnowledgeBaseID)
}

// Test 14: Listing failure surfaces as a step error
func (s *AgentServiceTestSuite) TestListAgents_Fails() {
	s.weavy.fail("GET /api/agents", http.StatusUnauthorized)

	_, err := s.agentService.ListAgents(context.Background())

	var stepErr *domain.StepError
	s.Require().True(errors.As(err, &stepErr))
	s.Equal("fetch agents", stepErr.Step)
	s.Equal(http.StatusUnauthorized, domain.DownstreamStatus(err))
}
