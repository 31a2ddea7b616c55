package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/sutraflow/sutra/pkg/generation"
	"github.com/sutraflow/sutra/pkg/mocks"
	"github.com/sutraflow/sutra/pkg/models"
	"github.com/sutraflow/sutra/pkg/persistence"
	fileper "github.com/sutraflow/sutra/pkg/persistence/file"
	"github.com/sutraflow/sutra/pkg/registry"
	"github.com/sutraflow/sutra/pkg/web"
	"github.com/sutraflow/sutra/pkg/workflow"
)

type stubGenerator struct {
	result *generation.Result
	err    error
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (*generation.Result, error) {
	if g.err != nil {
		return nil, g.err
	}

	if g.result != nil {
		return g.result, nil
	}

	return generation.FallbackWorkflow(prompt), nil
}

type testEnv struct {
	app         *fiber.App
	persistence persistence.Persistence
}

func setupTestApp(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.Default()

	reg := registry.NewRegistry(logger)
	require.NoError(t, reg.RegisterDefaultExecutors())

	store, err := fileper.NewPersistence(t.TempDir())
	require.NoError(t, err)

	engine := workflow.NewEngine(logger, reg)
	handlers := web.NewAPIHandlers(logger, engine, reg, store, &stubGenerator{}, validator.New())

	app := fiber.New()

	workflows := app.Group("/workflows")
	workflows.Get("/", handlers.GetWorkflows)
	workflows.Post("/", handlers.CreateWorkflow)
	workflows.Post("/execute", handlers.ExecuteWorkflow)
	workflows.Post("/generate", handlers.GenerateWorkflow)
	workflows.Get("/:id", handlers.GetWorkflow)
	workflows.Delete("/:id", handlers.DeleteWorkflow)

	executions := app.Group("/executions")
	executions.Get("/", handlers.ListExecutions)
	executions.Get("/:id", handlers.GetExecution)
	executions.Delete("/:id", handlers.CancelExecution)

	nodeTypes := app.Group("/node-types")
	nodeTypes.Get("/", handlers.ListNodeTypes)
	nodeTypes.Get("/:type", handlers.GetNodeType)

	app.Get("/health", handlers.HealthCheck)

	return &testEnv{app: app, persistence: store}
}

func doJSON(t *testing.T, app *fiber.App, method, target string, payload any) *http.Response {
	t.Helper()

	var body io.Reader

	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func decode(t *testing.T, resp *http.Response, target any) {
	t.Helper()

	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func logWorkflowPayload(id string) map[string]any {
	return map[string]any{
		"id":   id,
		"name": "Log Workflow",
		"nodes": []map[string]any{
			{"id": "n1", "type": "log", "config": map[string]any{"message": "hello"}},
		},
		"edges": []map[string]any{},
	}
}

func TestCreateAndGetWorkflow(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	resp := doJSON(t, env.app, http.MethodPost, "/workflows/", logWorkflowPayload("wf-1"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.WorkflowGraph
	decode(t, resp, &created)
	assert.Equal(t, "wf-1", created.ID)

	resp = doJSON(t, env.app, http.MethodGet, "/workflows/wf-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var loaded models.WorkflowGraph
	decode(t, resp, &loaded)
	assert.Equal(t, "Log Workflow", loaded.Name)
	require.Len(t, loaded.Nodes, 1)
}

func TestCreateWorkflow_ValidationFailure(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	resp := doJSON(t, env.app, http.MethodPost, "/workflows/", map[string]any{
		"id":    "wf-1",
		"name":  "No Nodes",
		"nodes": []map[string]any{},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestCreateWorkflow_ConfigSchemaViolation(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	resp := doJSON(t, env.app, http.MethodPost, "/workflows/", map[string]any{
		"id":   "wf-bad",
		"name": "Bad Config",
		"nodes": []map[string]any{
			{"id": "n1", "type": "apiCall", "config": map[string]any{"method": "GET"}},
		},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var problem struct {
		Detail string `json:"detail"`
	}
	decode(t, resp, &problem)
	assert.Contains(t, problem.Detail, "n1")
	assert.Contains(t, problem.Detail, "url")
}

func TestGetWorkflow_NotFound(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	resp := doJSON(t, env.app, http.MethodGet, "/workflows/missing", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var problem struct {
		Title  string `json:"title"`
		Status int    `json:"status"`
		Detail string `json:"detail"`
	}
	decode(t, resp, &problem)
	assert.Equal(t, http.StatusNotFound, problem.Status)
	assert.NotEmpty(t, problem.Detail)
}

func TestListWorkflows(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	resp := doJSON(t, env.app, http.MethodPost, "/workflows/", logWorkflowPayload("wf-1"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, env.app, http.MethodGet, "/workflows/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		Workflows []*models.WorkflowGraph `json:"workflows"`
	}
	decode(t, resp, &listing)
	assert.Len(t, listing.Workflows, 1)
}

func TestDeleteWorkflow(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	resp := doJSON(t, env.app, http.MethodPost, "/workflows/", logWorkflowPayload("wf-1"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, env.app, http.MethodDelete, "/workflows/wf-1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, env.app, http.MethodDelete, "/workflows/wf-1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestExecuteWorkflow_SyncInlineGraph(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	resp := doJSON(t, env.app, http.MethodPost, "/workflows/execute", map[string]any{
		"workflow": logWorkflowPayload("wf-inline"),
		"input":    map[string]any{"topic": "golang"},
		"sync":     true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var execution models.WorkflowExecution
	decode(t, resp, &execution)
	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.Equal(t, "wf-inline", execution.WorkflowID)
	require.Len(t, execution.Steps, 1)
	assert.Equal(t, models.ExecutionStatusCompleted, execution.Steps[0].Status)

	// Sync runs are persisted before the response is written.
	stored, err := env.persistence.ExecutionByID(context.Background(), execution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, stored.Status)
}

func TestExecuteWorkflow_SyncStoredWorkflow(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	resp := doJSON(t, env.app, http.MethodPost, "/workflows/", logWorkflowPayload("wf-stored"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, env.app, http.MethodPost, "/workflows/execute", map[string]any{
		"workflow_id": "wf-stored",
		"sync":        true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var execution models.WorkflowExecution
	decode(t, resp, &execution)
	assert.Equal(t, "wf-stored", execution.WorkflowID)
	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
}

func TestExecuteWorkflow_RequiresGraphOrID(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	resp := doJSON(t, env.app, http.MethodPost, "/workflows/execute", map[string]any{"sync": true})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestExecuteWorkflow_UnknownStoredWorkflow(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	resp := doJSON(t, env.app, http.MethodPost, "/workflows/execute", map[string]any{
		"workflow_id": "missing",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestExecuteWorkflow_AsyncAccepted(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	resp := doJSON(t, env.app, http.MethodPost, "/workflows/execute", map[string]any{
		"workflow": logWorkflowPayload("wf-async"),
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var accepted web.ExecutionAcceptedResponse
	decode(t, resp, &accepted)
	assert.NotEmpty(t, accepted.ExecutionID)
	assert.Equal(t, string(models.ExecutionStatusRunning), accepted.Status)

	// The run either still shows up live or has already been persisted.
	resp = doJSON(t, env.app, http.MethodGet, "/executions/"+accepted.ExecutionID, nil)
	if resp.StatusCode == http.StatusOK {
		var execution models.WorkflowExecution
		decode(t, resp, &execution)
		assert.Equal(t, accepted.ExecutionID, execution.ID)
	} else {
		_ = resp.Body.Close()
	}
}

func TestGetExecution_NotFound(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	resp := doJSON(t, env.app, http.MethodGet, "/executions/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestCancelExecution_NotActive(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	resp := doJSON(t, env.app, http.MethodDelete, "/executions/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestListExecutions(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	resp := doJSON(t, env.app, http.MethodPost, "/workflows/execute", map[string]any{
		"workflow": logWorkflowPayload("wf-1"),
		"sync":     true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, env.app, http.MethodGet, "/executions/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		Executions []*models.WorkflowExecution `json:"executions"`
		Active     []string                    `json:"active"`
	}
	decode(t, resp, &listing)
	assert.Len(t, listing.Executions, 1)
	assert.Empty(t, listing.Active)
}

func TestListNodeTypes(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	resp := doJSON(t, env.app, http.MethodGet, "/node-types/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		NodeTypes []map[string]any `json:"node_types"`
	}
	decode(t, resp, &listing)

	var names []string
	for _, info := range listing.NodeTypes {
		names = append(names, info["type"].(string))
	}

	assert.Contains(t, names, "aiAgent")
	assert.Contains(t, names, "log")
}

func TestGetNodeType(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	resp := doJSON(t, env.app, http.MethodGet, "/node-types/condition", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var info map[string]any
	decode(t, resp, &info)
	assert.Equal(t, "condition", info["type"])

	resp = doJSON(t, env.app, http.MethodGet, "/node-types/teleport", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestGenerateWorkflow(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	resp := doJSON(t, env.app, http.MethodPost, "/workflows/generate", map[string]any{
		"prompt": "send a daily digest to the team",
		"save":   true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result generation.Result
	decode(t, resp, &result)
	assert.Equal(t, "Send Workflow", result.Workflow.Name)
	require.NotEmpty(t, result.Workflow.Nodes)

	stored, err := env.persistence.WorkflowByID(context.Background(), result.Workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Workflow.Name, stored.Name)
}

func TestGenerateWorkflow_PromptTooShort(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	resp := doJSON(t, env.app, http.MethodPost, "/workflows/generate", map[string]any{"prompt": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	env := setupTestApp(t)

	resp := doJSON(t, env.app, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]any
	decode(t, resp, &health)
	assert.Equal(t, "healthy", health["status"])
}

func setupMockedApp(t *testing.T, store *mocks.MockPersistence) *fiber.App {
	t.Helper()

	logger := slog.Default()

	reg := registry.NewRegistry(logger)
	require.NoError(t, reg.RegisterDefaultExecutors())

	engine := workflow.NewEngine(logger, reg)
	handlers := web.NewAPIHandlers(logger, engine, reg, store, &stubGenerator{}, validator.New())

	app := fiber.New()
	app.Get("/executions", handlers.ListExecutions)
	app.Get("/health", handlers.HealthCheck)

	return app
}

func TestListExecutions_StorageFailure(t *testing.T) {
	t.Parallel()

	store := &mocks.MockPersistence{}
	store.On("Executions", mock.Anything).Return(nil, errors.New("disk gone"))

	app := setupMockedApp(t, store)

	resp := doJSON(t, app, http.MethodGet, "/executions", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	_ = resp.Body.Close()

	store.AssertExpectations(t)
}

func TestHealthCheck_Unhealthy(t *testing.T) {
	t.Parallel()

	store := &mocks.MockPersistence{}
	store.On("HealthCheck", mock.Anything).Return(errors.New("storage root unavailable"))

	app := setupMockedApp(t, store)

	resp := doJSON(t, app, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var health map[string]any
	decode(t, resp, &health)
	assert.Equal(t, "unhealthy", health["status"])

	store.AssertExpectations(t)
}
