package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mtlprog/floatingagent/internal/domain"
)

// Journal persists workflow runs and their step outcomes.
type Journal interface {
	StartRun(ctx context.Context, run *domain.WorkflowRun) error
	RecordStep(ctx context.Context, step *domain.WorkflowStep) error
	FinishRun(ctx context.Context, run *domain.WorkflowRun) error
}

// NopJournal discards everything.
type NopJournal struct{}

func (NopJournal) StartRun(context.Context, *domain.WorkflowRun) error   { return nil }
func (NopJournal) RecordStep(context.Context, *domain.WorkflowStep) error { return nil }
func (NopJournal) FinishRun(context.Context, *domain.WorkflowRun) error  { return nil }

// Journals fans every entry out to each journal in order. All journals are
// written even if one fails.
type Journals []Journal

func (js Journals) StartRun(ctx context.Context, run *domain.WorkflowRun) error {
	var errs []error
	for _, j := range js {
		errs = append(errs, j.StartRun(ctx, run))
	}
	return errors.Join(errs...)
}

func (js Journals) RecordStep(ctx context.Context, step *domain.WorkflowStep) error {
	var errs []error
	for _, j := range js {
		errs = append(errs, j.RecordStep(ctx, step))
	}
	return errors.Join(errs...)
}

func (js Journals) FinishRun(ctx context.Context, run *domain.WorkflowRun) error {
	var errs []error
	for _, j := range js {
		errs = append(errs, j.FinishRun(ctx, run))
	}
	return errors.Join(errs...)
}

// Step is one named platform call within a workflow.
type Step struct {
	Name string
	// BestEffort steps are logged and journaled on failure, and the
	// workflow carries on.
	BestEffort bool
	Run        func(ctx context.Context) error
}

// Runner executes workflows as strictly sequential steps. A failing step
// aborts the rest; nothing already done is rolled back.
type Runner struct {
	journal Journal
}

// NewRunner creates a Runner. A nil journal is replaced by NopJournal.
func NewRunner(journal Journal) *Runner {
	if journal == nil {
		journal = NopJournal{}
	}
	return &Runner{journal: journal}
}

// Execute runs steps in order and returns the first non-best-effort failure
// wrapped in a *domain.StepError.
func (r *Runner) Execute(ctx context.Context, kind domain.WorkflowKind, subject string, steps ...Step) error {
	// Journal writes must land even if the caller goes away mid-run.
	jctx := context.WithoutCancel(ctx)

	run := domain.NewWorkflowRun(kind, subject)
	if err := r.journal.StartRun(jctx, run); err != nil {
		slog.Error("failed to journal workflow start", "run_id", run.ID, "kind", kind, "error", err)
	}

	var failure error
	degraded := false
	for i, step := range steps {
		rec := &domain.WorkflowStep{
			RunID:     run.ID,
			Position:  i,
			Name:      step.Name,
			CreatedAt: time.Now().UTC(),
		}

		if failure != nil {
			rec.Status = domain.StepSkipped
			r.record(jctx, rec)
			continue
		}

		err := step.Run(ctx)
		rec.CreatedAt = time.Now().UTC()
		if err == nil {
			rec.Status = domain.StepSucceeded
			r.record(jctx, rec)
			continue
		}

		rec.Status = domain.StepFailed
		rec.Error = err.Error()
		if status := domain.DownstreamStatus(err); status != 0 {
			rec.HTTPStatus = &status
		}
		r.record(jctx, rec)

		if step.BestEffort {
			degraded = true
			slog.Warn("best-effort workflow step failed",
				"run_id", run.ID,
				"kind", kind,
				"step", step.Name,
				"subject", subject,
				"error", err,
			)
			continue
		}

		failure = &domain.StepError{Step: step.Name, Err: err}
		slog.Error("workflow step failed",
			"run_id", run.ID,
			"kind", kind,
			"step", step.Name,
			"subject", subject,
			"http_status", domain.DownstreamStatus(err),
			"error", err,
		)
	}

	finished := time.Now().UTC()
	run.FinishedAt = &finished
	switch {
	case failure != nil:
		run.Status = domain.RunFailed
		run.Error = failure.Error()
	case degraded:
		run.Status = domain.RunDegraded
	default:
		run.Status = domain.RunSucceeded
	}

	if err := r.journal.FinishRun(jctx, run); err != nil {
		slog.Error("failed to journal workflow finish", "run_id", run.ID, "kind", kind, "error", err)
	}

	slog.Info("workflow finished",
		"run_id", run.ID,
		"kind", kind,
		"subject", subject,
		"status", run.Status,
	)

	return failure
}

func (r *Runner) record(ctx context.Context, step *domain.WorkflowStep) {
	if err := r.journal.RecordStep(ctx, step); err != nil {
		slog.Error("failed to journal workflow step",
			"run_id", step.RunID,
			"step", step.Name,
			"error", err,
		)
	}
}
