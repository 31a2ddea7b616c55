package models

import "time"

// ExecutionContext is the per-invocation value handed to a node executor.
// A fresh context is built for every node execution; PreviousOutputs is a
// read-only view of the run's accumulated output namespace and must not be
// mutated by executors.
type ExecutionContext struct {
	WorkflowID      string         `json:"workflow_id"`
	ExecutionID     string         `json:"execution_id"`
	NodeID          string         `json:"node_id"`
	Inputs          map[string]any `json:"inputs"`
	Config          map[string]any `json:"config"`
	PreviousOutputs map[string]any `json:"previous_outputs,omitempty"`
}

// ExecutionResult is returned by a node executor. Ordinary failures are
// reported with Success=false and Error set; the result is immutable once
// returned.
type ExecutionResult struct {
	Success       bool           `json:"success"`
	Output        any            `json:"output"`
	Error         string         `json:"error,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	ExecutionTime time.Duration  `json:"execution_time,omitempty"`
}
