// Package persistence provides the storage abstraction for workflow
// definitions and execution records.
package persistence

import (
	"context"

	"github.com/sutraflow/sutra/pkg/models"
)

type Persistence interface {
	Workflows(ctx context.Context) ([]*models.WorkflowGraph, error)
	SaveWorkflow(ctx context.Context, workflow *models.WorkflowGraph) error
	WorkflowByID(ctx context.Context, id string) (*models.WorkflowGraph, error)
	DeleteWorkflow(ctx context.Context, id string) error

	Executions(ctx context.Context) ([]*models.WorkflowExecution, error)
	SaveExecution(ctx context.Context, execution *models.WorkflowExecution) error
	ExecutionByID(ctx context.Context, id string) (*models.WorkflowExecution, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
