// Package web provides HTTP handlers and REST API endpoints for workflow
// execution and management.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/sutraflow/sutra/pkg/generation"
	"github.com/sutraflow/sutra/pkg/models"
	"github.com/sutraflow/sutra/pkg/persistence"
	"github.com/sutraflow/sutra/pkg/registry"
	"github.com/sutraflow/sutra/pkg/workflow"
)

type APIHandlers struct {
	logger      *slog.Logger
	engine      *workflow.Engine
	registry    *registry.Registry
	persistence persistence.Persistence
	generator   generation.Generator
	validator   *validator.Validate
}

func NewAPIHandlers(
	logger *slog.Logger,
	engine *workflow.Engine,
	reg *registry.Registry,
	store persistence.Persistence,
	generator generation.Generator,
	validate *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		logger:      logger.With("module", "api"),
		engine:      engine,
		registry:    reg,
		persistence: store,
		generator:   generator,
		validator:   validate,
	}
}

// ExecuteWorkflow starts a run of an inline graph or a stored definition.
// Runs are asynchronous by default; sync=true blocks until the run finishes
// and returns the full record.
func (h *APIHandlers) ExecuteWorkflow(c fiber.Ctx) error {
	var req ExecuteWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	graph := req.Workflow

	if graph == nil {
		if req.WorkflowID == "" {
			return badRequest(c, "Either workflow or workflow_id is required")
		}

		stored, err := h.persistence.WorkflowByID(c.Context(), req.WorkflowID)
		if err != nil {
			return handleError(c, err)
		}

		graph = stored
	}

	if req.Sync {
		execution, err := h.engine.Execute(c.Context(), graph, req.Input)
		if err != nil {
			return badRequest(c, err.Error())
		}

		h.saveExecution(execution)

		return c.JSON(execution)
	}

	executionID, err := h.engine.ExecuteAsync(c.Context(), graph, req.Input, h.saveExecution)
	if err != nil {
		return badRequest(c, err.Error())
	}

	return c.Status(fiber.StatusAccepted).JSON(ExecutionAcceptedResponse{
		ExecutionID: executionID,
		Status:      string(models.ExecutionStatusRunning),
	})
}

// GetExecution reports an execution's current state: the live snapshot while
// the run is in flight, the persisted record afterwards.
func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	if execution, err := h.engine.Status(id); err == nil {
		return c.JSON(execution)
	}

	execution, err := h.persistence.ExecutionByID(c.Context(), id)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(execution)
}

// CancelExecution requests cancellation of an in-flight run.
func (h *APIHandlers) CancelExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	if !h.engine.Cancel(id) {
		return notFound(c, "no active execution with that id")
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"execution_id": id,
		"cancelled":    true,
	})
}

// ListExecutions returns persisted execution records.
func (h *APIHandlers) ListExecutions(c fiber.Ctx) error {
	executions, err := h.persistence.Executions(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"executions": executions,
		"active":     h.engine.ActiveExecutions(),
	})
}

// ListNodeTypes returns the catalog of registered node types.
func (h *APIHandlers) ListNodeTypes(c fiber.Ctx) error {
	catalog, err := h.registry.Catalog()
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"node_types": catalog})
}

// GetNodeType returns the introspection record for one node type.
func (h *APIHandlers) GetNodeType(c fiber.Ctx) error {
	nodeType := c.Params("type")
	if nodeType == "" {
		return badRequest(c, "Node type is required")
	}

	info, err := h.registry.Info(nodeType)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(info)
}

// GenerateWorkflow builds a workflow graph from a natural language prompt.
func (h *APIHandlers) GenerateWorkflow(c fiber.Ctx) error {
	var req GenerateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.generator.Generate(c.Context(), req.Prompt)
	if err != nil {
		return internalError(c, err)
	}

	if req.Save {
		if err := h.persistence.SaveWorkflow(c.Context(), &result.Workflow); err != nil {
			return internalError(c, err)
		}
	}

	return c.JSON(result)
}

// GetWorkflows lists stored workflow definitions.
func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.persistence.Workflows(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"workflows": workflows})
}

// GetWorkflow returns one stored workflow definition.
func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	stored, err := h.persistence.WorkflowByID(c.Context(), id)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(stored)
}

// CreateWorkflow stores a workflow definition.
func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	graph := &models.WorkflowGraph{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Nodes:       req.Nodes,
		Edges:       req.Edges,
		Metadata:    req.Metadata,
	}

	// Node configs are checked against the declared schema of their type at
	// save time. Unregistered types are left for execution-time validation.
	for _, node := range graph.Nodes {
		info, err := h.registry.Info(node.Type)
		if err != nil {
			continue
		}

		if violations := registry.ValidateConfigSchema(info.ConfigSchema, node.Config); len(violations) > 0 {
			return badRequest(c, fmt.Sprintf("node '%s' config is invalid: %s", node.ID, strings.Join(violations, "; ")))
		}
	}

	if err := h.persistence.SaveWorkflow(c.Context(), graph); err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(graph)
}

// DeleteWorkflow removes a stored workflow definition.
func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if err := h.persistence.DeleteWorkflow(c.Context(), id); err != nil {
		return handleError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	err := h.persistence.HealthCheck(c.Context())

	status := "healthy"
	httpStatus := http.StatusOK

	if err != nil {
		status = "unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"timestamp": time.Now().UTC(),
	})
}

// saveExecution persists a finished run. Persistence failures are logged, not
// surfaced; the record was already returned or is queryable while active.
func (h *APIHandlers) saveExecution(execution *models.WorkflowExecution) {
	if execution == nil {
		return
	}

	if err := h.persistence.SaveExecution(context.Background(), execution); err != nil &&
		!errors.Is(err, context.Canceled) {
		h.logger.Error("Failed to persist execution record", "execution_id", execution.ID, "error", err)
	}
}
