package repository_test

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/mtlprog/floatingagent/internal/database"
	"github.com/mtlprog/floatingagent/internal/domain"
	"github.com/mtlprog/floatingagent/internal/repository"
)

// WorkflowRunRepositoryTestSuite needs a PostgreSQL database in DATABASE_URL.
type WorkflowRunRepositoryTestSuite struct {
	suite.Suite
	db   *database.DB
	pool *pgxpool.Pool
	repo *repository.WorkflowRunRepository
}

func (s *WorkflowRunRepositoryTestSuite) SetupSuite() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		s.T().Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.Open(ctx, databaseURL)
	s.Require().NoError(err, "failed to open journal database")

	s.db = db
	s.pool = db.Pool()
	s.repo = repository.NewWorkflowRunRepository(s.pool)
}

func (s *WorkflowRunRepositoryTestSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), "TRUNCATE workflow_runs, workflow_steps CASCADE")
	s.Require().NoError(err, "failed to truncate tables")
}

func (s *WorkflowRunRepositoryTestSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
}

func TestWorkflowRunRepositorySuite(t *testing.T) {
	suite.Run(t, new(WorkflowRunRepositoryTestSuite))
}

func (s *WorkflowRunRepositoryTestSuite) startRun(kind domain.WorkflowKind, subject string, startedAt time.Time) *domain.WorkflowRun {
	run := domain.NewWorkflowRun(kind, subject)
	run.StartedAt = startedAt
	s.Require().NoError(s.repo.StartRun(context.Background(), run))
	return run
}

func (s *WorkflowRunRepositoryTestSuite) TestRunLifecycle() {
	ctx := context.Background()
	run := s.startRun(domain.WorkflowCreateAgent, "mycoolagent", time.Now().UTC())

	status := http.StatusConflict
	steps := []domain.WorkflowStep{
		{RunID: run.ID, Position: 0, Name: "create files app", Status: domain.StepFailed, HTTPStatus: &status, Error: "POST /api/apps: 409 Conflict"},
		{RunID: run.ID, Position: 1, Name: "create agent", Status: domain.StepSkipped},
	}
	for i := range steps {
		steps[i].CreatedAt = time.Now().UTC()
		s.Require().NoError(s.repo.RecordStep(ctx, &steps[i]))
	}

	finished := time.Now().UTC()
	run.Status = domain.RunFailed
	run.Error = "failed to create files app: POST /api/apps: 409 Conflict"
	run.FinishedAt = &finished
	s.Require().NoError(s.repo.FinishRun(ctx, run))

	got, err := s.repo.GetByID(ctx, run.ID)
	s.Require().NoError(err)

	s.Equal(run.ID, got.ID)
	s.Equal(domain.RunFailed, got.Status)
	s.Equal(run.Error, got.Error)
	s.Require().NotNil(got.FinishedAt)
	s.Require().Len(got.Steps, 2)
	s.Equal("create files app", got.Steps[0].Name)
	s.Require().NotNil(got.Steps[0].HTTPStatus)
	s.Equal(http.StatusConflict, *got.Steps[0].HTTPStatus)
	s.Equal(domain.StepSkipped, got.Steps[1].Status)
	s.Nil(got.Steps[1].HTTPStatus)
}

func (s *WorkflowRunRepositoryTestSuite) TestGetByID_NotFound() {
	_, err := s.repo.GetByID(context.Background(), "0f8fad5b-d9cb-469f-a165-70867728950e")
	s.ErrorIs(err, domain.ErrRunNotFound)
}

func (s *WorkflowRunRepositoryTestSuite) TestFinishRun_NotFound() {
	run := domain.NewWorkflowRun(domain.WorkflowDeleteAgent, "ghost")
	run.Status = domain.RunSucceeded

	s.ErrorIs(s.repo.FinishRun(context.Background(), run), domain.ErrRunNotFound)
}

func (s *WorkflowRunRepositoryTestSuite) TestList_FiltersAndOrder() {
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	older := s.startRun(domain.WorkflowDeleteAgent, "alpha", base)
	newer := s.startRun(domain.WorkflowDeleteAgent, "beta", base.Add(time.Minute))
	s.startRun(domain.WorkflowSaveSelection, "12", base.Add(2*time.Minute))

	newer.Status = domain.RunDegraded
	s.Require().NoError(s.repo.FinishRun(ctx, newer))

	all, err := s.repo.List(ctx, repository.RunListFilters{})
	s.Require().NoError(err)
	s.Len(all, 3)
	s.Equal("12", all[0].Subject)

	kind := domain.WorkflowDeleteAgent
	deletes, err := s.repo.List(ctx, repository.RunListFilters{Kind: &kind})
	s.Require().NoError(err)
	s.Require().Len(deletes, 2)
	s.Equal(newer.ID, deletes[0].ID)
	s.Equal(older.ID, deletes[1].ID)

	status := domain.RunDegraded
	degraded, err := s.repo.List(ctx, repository.RunListFilters{Status: &status})
	s.Require().NoError(err)
	s.Require().Len(degraded, 1)
	s.Equal("beta", degraded[0].Subject)

	limited, err := s.repo.List(ctx, repository.RunListFilters{Limit: 1})
	s.Require().NoError(err)
	s.Len(limited, 1)
}
