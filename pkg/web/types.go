package web

import "github.com/sutraflow/sutra/pkg/models"

// ExecuteWorkflowRequest represents the request body for executing a workflow
// graph. Either an inline workflow or the id of a stored definition must be
// provided.
type ExecuteWorkflowRequest struct {
	Workflow   *models.WorkflowGraph `json:"workflow,omitempty"`
	WorkflowID string                `json:"workflow_id,omitempty"`
	Input      map[string]any        `json:"input,omitempty"`
	Sync       bool                  `json:"sync,omitempty"`
}

// ExecutionAcceptedResponse is returned when a workflow run is started in the
// background.
type ExecutionAcceptedResponse struct {
	ExecutionID string `json:"execution_id"`
	Status      string `json:"status"`
}

// GenerateWorkflowRequest represents the request body for generating a
// workflow from a natural language prompt.
type GenerateWorkflowRequest struct {
	Prompt string `json:"prompt" validate:"required,min=3"`
	Save   bool   `json:"save,omitempty"`
}

// CreateWorkflowRequest represents the request body for storing a workflow
// definition.
type CreateWorkflowRequest struct {
	ID          string         `json:"id"          validate:"required,min=1"`
	Name        string         `json:"name"        validate:"required,min=3"`
	Description string         `json:"description"`
	Nodes       []*models.Node `json:"nodes"       validate:"required,min=1,dive,required"`
	Edges       []*models.Edge `json:"edges"       validate:"dive,required"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}
