package domain

import (
	"time"

	"github.com/google/uuid"
)

// WorkflowKind names a multi-step operation against the platform.
type WorkflowKind string

const (
	WorkflowCreateAgent   WorkflowKind = "create_agent"
	WorkflowUpdateAgent   WorkflowKind = "update_agent"
	WorkflowUpdateAvatar  WorkflowKind = "update_avatar"
	WorkflowDeleteAgent   WorkflowKind = "delete_agent"
	WorkflowSaveSelection WorkflowKind = "save_selection"
)

// IsValid checks if the kind is one of the known workflows.
func (k WorkflowKind) IsValid() bool {
	switch k {
	case WorkflowCreateAgent, WorkflowUpdateAgent, WorkflowUpdateAvatar,
		WorkflowDeleteAgent, WorkflowSaveSelection:
		return true
	default:
		return false
	}
}

// RunStatus is the outcome of a workflow run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	// RunDegraded means a best-effort step failed but the run completed.
	RunDegraded RunStatus = "degraded"
	RunFailed   RunStatus = "failed"
)

// IsValid checks if the status is one of the allowed values.
func (s RunStatus) IsValid() bool {
	switch s {
	case RunRunning, RunSucceeded, RunDegraded, RunFailed:
		return true
	default:
		return false
	}
}

// StepStatus is the outcome of a single workflow step.
type StepStatus string

const (
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

// WorkflowRun is a journal entry for one execution of a workflow.
type WorkflowRun struct {
	ID         string         `json:"id"`
	Kind       WorkflowKind   `json:"kind"`
	Subject    string         `json:"subject"`
	Status     RunStatus      `json:"status"`
	Error      string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Steps      []WorkflowStep `json:"steps,omitempty"`
}

// NewWorkflowRun starts a run with a fresh id.
func NewWorkflowRun(kind WorkflowKind, subject string) *WorkflowRun {
	return &WorkflowRun{
		ID:        uuid.NewString(),
		Kind:      kind,
		Subject:   subject,
		Status:    RunRunning,
		StartedAt: time.Now().UTC(),
	}
}

// WorkflowStep records the outcome of one step within a run.
type WorkflowStep struct {
	RunID      string     `json:"run_id"`
	Position   int        `json:"position"`
	Name       string     `json:"name"`
	Status     StepStatus `json:"status"`
	HTTPStatus *int       `json:"http_status,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
