package models

import "time"

// ExecutionStatus is the lifecycle state shared by runs and steps.
//
// Runs move Pending -> Running -> {Completed, Failed, Cancelled}.
// Steps move Pending -> Running -> {Completed, Failed}; a step only becomes
// Cancelled through an external cancellation request.
type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed.
func (s ExecutionStatus) IsTerminal() bool {
	return s == ExecutionStatusCompleted || s == ExecutionStatusFailed || s == ExecutionStatusCancelled
}

// ExecutionStep records one node's progress within a run. Steps are created
// before any execution begins and are mutated only by the run's coordinator.
type ExecutionStep struct {
	NodeID     string          `json:"node_id"`
	NodeType   string          `json:"node_type"`
	Status     ExecutionStatus `json:"status"`
	StartedAt  *time.Time      `json:"started_at,omitempty"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	Inputs     map[string]any  `json:"inputs,omitempty"`
	Output     any             `json:"output,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// WorkflowExecution is the record of one run of a workflow graph. It is owned
// exclusively by the scheduler for the run's duration and returned to the
// caller as the permanent result once terminal.
type WorkflowExecution struct {
	ID         string           `json:"id"`
	WorkflowID string           `json:"workflow_id"`
	Status     ExecutionStatus  `json:"status"`
	StartedAt  *time.Time       `json:"started_at,omitempty"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
	Steps      []*ExecutionStep `json:"steps"`
	Results    map[string]any   `json:"results"`
	Error      string           `json:"error,omitempty"`
	Metadata   map[string]any   `json:"metadata,omitempty"`
}

// StepByNodeID returns the step record for the given node, or nil when absent.
func (e *WorkflowExecution) StepByNodeID(nodeID string) *ExecutionStep {
	for _, step := range e.Steps {
		if step.NodeID == nodeID {
			return step
		}
	}

	return nil
}
