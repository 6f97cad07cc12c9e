package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/floatingagent/internal/domain"
)

const (
	// DefaultRunLimit is the page size when none is requested.
	DefaultRunLimit = 20
	// MaxRunLimit caps the page size.
	MaxRunLimit = 100
)

// psql builds statements with PostgreSQL $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var runColumns = []string{"id", "kind", "subject", "status", "error", "started_at", "finished_at"}

// RunListFilters holds the supported filters for run listing.
type RunListFilters struct {
	Kind   *domain.WorkflowKind // Optional: filter by workflow kind
	Status *domain.RunStatus    // Optional: filter by run status
	Limit  int                  // Clamped to [1, MaxRunLimit]
}

// WorkflowRunRepository journals workflow runs and their steps.
type WorkflowRunRepository struct {
	pool *pgxpool.Pool
}

// NewWorkflowRunRepository creates a new WorkflowRunRepository.
func NewWorkflowRunRepository(pool *pgxpool.Pool) *WorkflowRunRepository {
	return &WorkflowRunRepository{pool: pool}
}

// StartRun inserts a run in its initial state.
func (r *WorkflowRunRepository) StartRun(ctx context.Context, run *domain.WorkflowRun) error {
	query, args, err := psql.
		Insert("workflow_runs").
		Columns("id", "kind", "subject", "status", "started_at").
		Values(run.ID, run.Kind, run.Subject, run.Status, run.StartedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert workflow run %s: %w", run.ID, err)
	}

	return nil
}

// RecordStep inserts the outcome of one step.
func (r *WorkflowRunRepository) RecordStep(ctx context.Context, step *domain.WorkflowStep) error {
	query, args, err := psql.
		Insert("workflow_steps").
		Columns("run_id", "position", "name", "status", "http_status", "error", "created_at").
		Values(step.RunID, step.Position, step.Name, step.Status, step.HTTPStatus, step.Error, step.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert step %q of run %s: %w", step.Name, step.RunID, err)
	}

	return nil
}

// FinishRun stores the final status of a run.
func (r *WorkflowRunRepository) FinishRun(ctx context.Context, run *domain.WorkflowRun) error {
	query, args, err := psql.
		Update("workflow_runs").
		Set("status", run.Status).
		Set("error", run.Error).
		Set("finished_at", run.FinishedAt).
		Where(sq.Eq{"id": run.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update workflow run %s: %w", run.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRunNotFound
	}

	return nil
}

// List returns the most recent runs, newest first, without steps.
func (r *WorkflowRunRepository) List(ctx context.Context, filters RunListFilters) ([]*domain.WorkflowRun, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultRunLimit
	}
	if limit > MaxRunLimit {
		limit = MaxRunLimit
	}

	qb := psql.Select(runColumns...).From("workflow_runs")
	if filters.Kind != nil {
		qb = qb.Where(sq.Eq{"kind": *filters.Kind})
	}
	if filters.Status != nil {
		qb = qb.Where(sq.Eq{"status": *filters.Status})
	}

	query, args, err := qb.OrderBy("started_at DESC").Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query workflow runs: %w", err)
	}
	defer rows.Close()

	runs := []*domain.WorkflowRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return runs, nil
}

// GetByID returns a run with its steps in execution order.
func (r *WorkflowRunRepository) GetByID(ctx context.Context, id string) (*domain.WorkflowRun, error) {
	query, args, err := psql.
		Select(runColumns...).
		From("workflow_runs").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	run, err := scanRun(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRunNotFound
		}
		return nil, err
	}

	steps, err := r.getSteps(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Steps = steps

	return run, nil
}

func (r *WorkflowRunRepository) getSteps(ctx context.Context, runID string) ([]domain.WorkflowStep, error) {
	query, args, err := psql.
		Select("run_id", "position", "name", "status", "http_status", "error", "created_at").
		From("workflow_steps").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query workflow steps: %w", err)
	}
	defer rows.Close()

	var steps []domain.WorkflowStep
	for rows.Next() {
		var step domain.WorkflowStep
		err := rows.Scan(
			&step.RunID,
			&step.Position,
			&step.Name,
			&step.Status,
			&step.HTTPStatus,
			&step.Error,
			&step.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan workflow step: %w", err)
		}
		steps = append(steps, step)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return steps, nil
}

func scanRun(row pgx.Row) (*domain.WorkflowRun, error) {
	var run domain.WorkflowRun
	err := row.Scan(
		&run.ID,
		&run.Kind,
		&run.Subject,
		&run.Status,
		&run.Error,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan workflow run: %w", err)
	}
	return &run, nil
}
