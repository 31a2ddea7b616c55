package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sutraflow/sutra/pkg/eventbus"
	"github.com/sutraflow/sutra/pkg/events"
	"github.com/sutraflow/sutra/pkg/models"
	"github.com/sutraflow/sutra/pkg/otelhelper"
	"github.com/sutraflow/sutra/pkg/protocol"
	"github.com/sutraflow/sutra/pkg/registry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ErrExecutionNotFound is returned when a run id is not in the active table.
// Terminal runs are not retained.
var ErrExecutionNotFound = errors.New("execution not found")

// Engine executes workflow graphs with wavefront scheduling: each pass
// collects every node whose dependencies have completed successfully, runs
// that wave concurrently, folds the outputs into the namespace at the wave
// barrier, and repeats. The first node failure aborts the run.
type Engine struct {
	logger   *slog.Logger
	registry *registry.Registry
	resolver *Resolver
	eventBus eventbus.EventBus
	tracer   trace.Tracer

	mu     sync.RWMutex
	active map[string]*run
}

// run pairs one execution record with its cancellation flag. The record is
// mutated only under mu so that Status snapshots never observe a torn write.
type run struct {
	mu        sync.Mutex
	execution *models.WorkflowExecution
	cancelled atomic.Bool
}

type Option func(*Engine)

// WithEventBus makes the engine publish run and node lifecycle events.
func WithEventBus(bus eventbus.EventBus) Option {
	return func(e *Engine) {
		e.eventBus = bus
	}
}

// WithTracer enables tracing of runs and node executions.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

func NewEngine(logger *slog.Logger, reg *registry.Registry, opts ...Option) *Engine {
	engine := &Engine{
		logger:   logger.With("module", "workflow_engine"),
		registry: reg,
		resolver: NewResolver(logger),
		tracer:   noop.NewTracerProvider().Tracer("sutra"),
		active:   make(map[string]*run),
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine
}

// Execute runs a graph to a terminal state and returns the finished record.
// Structural and configuration problems surface as a Failed run, not as an
// error return; the error is reserved for unusable arguments.
func (e *Engine) Execute(ctx context.Context, graph *models.WorkflowGraph, input map[string]any) (*models.WorkflowExecution, error) {
	current, err := e.begin(graph)
	if err != nil {
		return nil, err
	}

	return e.runToCompletion(ctx, current, graph, input), nil
}

// ExecuteAsync starts the run in the background and returns its id right
// away, so callers can poll Status and request cancellation. The finished
// record is handed to onFinish; the run outlives the caller's context.
func (e *Engine) ExecuteAsync(ctx context.Context, graph *models.WorkflowGraph, input map[string]any, onFinish func(*models.WorkflowExecution)) (string, error) {
	current, err := e.begin(graph)
	if err != nil {
		return "", err
	}

	go func() {
		execution := e.runToCompletion(context.WithoutCancel(ctx), current, graph, input)

		if onFinish != nil {
			onFinish(execution)
		}
	}()

	return current.execution.ID, nil
}

// begin creates the execution record and registers the run in the active
// table, so Status and Cancel can see it before the first wave starts.
func (e *Engine) begin(graph *models.WorkflowGraph) (*run, error) {
	if graph == nil {
		return nil, errors.New("workflow graph is nil")
	}

	workflowID := graph.ID
	if workflowID == "" {
		workflowID = "adhoc"
	}

	startedAt := time.Now().UTC()
	execution := &models.WorkflowExecution{
		ID:         generateExecutionID(),
		WorkflowID: workflowID,
		Status:     models.ExecutionStatusPending,
		StartedAt:  &startedAt,
		Results:    make(map[string]any),
	}

	current := &run{execution: execution}

	e.mu.Lock()
	e.active[execution.ID] = current
	e.mu.Unlock()

	return current, nil
}

func (e *Engine) runToCompletion(ctx context.Context, current *run, graph *models.WorkflowGraph, input map[string]any) *models.WorkflowExecution {
	execution := current.execution
	executionID := execution.ID
	workflowID := execution.WorkflowID

	logger := e.logger.With("workflow_id", workflowID, "execution_id", executionID)

	// The finished record is handed to the caller; the active table only
	// tracks in-flight runs.
	defer func() {
		e.mu.Lock()
		delete(e.active, executionID)
		e.mu.Unlock()
	}()

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.execute",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.ExecutionIDKey, executionID),
	)
	defer span.End()

	logger.Info("Starting workflow execution", "nodes", len(graph.Nodes), "edges", len(graph.Edges))

	if err := validateGraph(graph); err != nil {
		logger.Error("Workflow graph is structurally invalid", "error", err)
		otelhelper.SetError(span, err)
		e.finish(ctx, current, models.ExecutionStatusFailed, err.Error())

		return execution
	}

	current.mu.Lock()
	execution.Steps = make([]*models.ExecutionStep, 0, len(graph.Nodes))
	for _, node := range graph.Nodes {
		execution.Steps = append(execution.Steps, &models.ExecutionStep{
			NodeID:   node.ID,
			NodeType: node.Type,
			Status:   models.ExecutionStatusPending,
		})
	}
	execution.Status = models.ExecutionStatusRunning
	current.mu.Unlock()

	e.publish(ctx, executionID, events.ExecutionStarted{
		BaseEvent: e.baseEvent(events.ExecutionStartedEvent, workflowID, executionID),
		Input:     input,
	})

	e.runWaves(ctx, logger, span, current, graph, input)

	logger.Info("Workflow execution finished", "status", execution.Status, "error", execution.Error)

	return execution
}

// Status returns a snapshot of an active run. Terminal runs are not retained;
// their record is returned by Execute itself.
func (e *Engine) Status(executionID string) (*models.WorkflowExecution, error) {
	e.mu.RLock()
	current, ok := e.active[executionID]
	e.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrExecutionNotFound, executionID)
	}

	current.mu.Lock()
	defer current.mu.Unlock()

	return snapshotExecution(current.execution), nil
}

// Cancel asks an active run to stop. The coordinator observes the request at
// the next wave boundary; in-flight node executions finish first.
func (e *Engine) Cancel(executionID string) bool {
	e.mu.RLock()
	current, ok := e.active[executionID]
	e.mu.RUnlock()

	if !ok {
		return false
	}

	current.cancelled.Store(true)

	return true
}

// ActiveExecutions lists the ids of runs still in flight.
func (e *Engine) ActiveExecutions() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids := make([]string, 0, len(e.active))
	for id := range e.active {
		ids = append(ids, id)
	}

	return ids
}

// nodeOutcome is one node's delayed merge slot: written only by that node's
// goroutine during a wave and read only by the coordinator after the barrier.
type nodeOutcome struct {
	node    *models.Node
	output  any
	failed  bool
	errText string
}

func (e *Engine) runWaves(ctx context.Context, logger *slog.Logger, span trace.Span, current *run, graph *models.WorkflowGraph, input map[string]any) {
	execution := current.execution
	dependencies := BuildDependencies(graph, logger)

	// The namespace starts as the run's initial input, as if produced by a
	// virtual start node, and accumulates every node's output under its id.
	namespace := make(map[string]any, len(input)+len(graph.Nodes))
	maps.Copy(namespace, input)

	succeeded := make(map[string]struct{}, len(graph.Nodes))
	lastCompleted := ""
	wave := 0

	for len(succeeded) < len(graph.Nodes) {
		if current.cancelled.Load() || ctx.Err() != nil {
			logger.Info("Execution cancelled", "wave", wave)
			e.cancelRemaining(current)
			e.finish(ctx, current, models.ExecutionStatusCancelled, "")

			return
		}

		ready := make([]*models.Node, 0, len(graph.Nodes))

		for _, node := range graph.Nodes {
			if _, done := succeeded[node.ID]; done {
				continue
			}

			satisfied := true

			for dep := range dependencies[node.ID] {
				if _, done := succeeded[dep]; !done {
					satisfied = false

					break
				}
			}

			if satisfied {
				ready = append(ready, node)
			}
		}

		if len(ready) == 0 {
			stuck := make([]string, 0, len(graph.Nodes))

			for _, node := range graph.Nodes {
				if _, done := succeeded[node.ID]; !done {
					stuck = append(stuck, node.ID)
				}
			}

			errText := fmt.Sprintf("dependency cycle detected; stuck nodes: %s", strings.Join(stuck, ", "))
			logger.Error("No executable nodes remain", "stuck_nodes", stuck)
			otelhelper.SetError(span, errors.New(errText))
			e.finish(ctx, current, models.ExecutionStatusFailed, errText)

			return
		}

		wave++
		logger.Debug("Executing wave", "wave", wave, "ready", len(ready))

		outcomes := make([]nodeOutcome, len(ready))

		var waveGroup sync.WaitGroup

		for i, node := range ready {
			waveGroup.Add(1)

			go func(slot int, node *models.Node) {
				defer waveGroup.Done()

				outcomes[slot] = e.executeNode(ctx, logger, current, node, namespace, lastCompleted)
			}(i, node)
		}

		waveGroup.Wait()

		// Fold the wave into the namespace. Only the coordinator writes
		// here, after the barrier; a failure aborts the run and leaves
		// every still-pending step pending in the final record.
		var runError string

		current.mu.Lock()
		for _, outcome := range outcomes {
			step := execution.StepByNodeID(outcome.node.ID)
			finishedAt := time.Now().UTC()
			step.FinishedAt = &finishedAt

			if outcome.failed {
				step.Status = models.ExecutionStatusFailed
				step.Error = outcome.errText

				if runError == "" {
					runError = fmt.Sprintf("node '%s' failed: %s", outcome.node.ID, outcome.errText)
				}

				continue
			}

			step.Status = models.ExecutionStatusCompleted
			step.Output = outcome.output
			namespace[outcome.node.ID] = outcome.output
			succeeded[outcome.node.ID] = struct{}{}
			lastCompleted = outcome.node.ID
		}
		execution.Results = namespace
		current.mu.Unlock()

		if runError != "" {
			otelhelper.SetError(span, errors.New(runError))
			e.finish(ctx, current, models.ExecutionStatusFailed, runError)

			return
		}
	}

	e.finish(ctx, current, models.ExecutionStatusCompleted, "")
}

func (e *Engine) executeNode(ctx context.Context, logger *slog.Logger, current *run, node *models.Node, namespace map[string]any, lastCompleted string) nodeOutcome {
	execution := current.execution
	logger = logger.With("node_id", node.ID, "node_type", node.Type)

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "node.execute",
		attribute.String(otelhelper.ExecutionIDKey, execution.ID),
		attribute.String(otelhelper.NodeIDKey, node.ID),
		attribute.String(otelhelper.NodeTypeKey, node.Type),
	)
	defer span.End()

	startedAt := time.Now().UTC()

	current.mu.Lock()
	step := execution.StepByNodeID(node.ID)
	step.Status = models.ExecutionStatusRunning
	step.StartedAt = &startedAt
	current.mu.Unlock()

	logger.Info("Executing node")
	e.publish(ctx, execution.ID, events.NodeStarted{
		BaseEvent: e.baseEvent(events.NodeStartedEvent, execution.WorkflowID, execution.ID),
		NodeID:    node.ID,
		NodeType:  node.Type,
	})

	fail := func(errText string) nodeOutcome {
		logger.Error("Node failed", "error", errText)
		otelhelper.SetError(span, errors.New(errText))
		e.publish(ctx, execution.ID, events.NodeFailed{
			BaseEvent: e.baseEvent(events.NodeFailedEvent, execution.WorkflowID, execution.ID),
			NodeID:    node.ID,
			NodeType:  node.Type,
			Error:     errText,
			Duration:  time.Since(startedAt),
		})

		return nodeOutcome{node: node, failed: true, errText: errText}
	}

	executor, err := e.registry.GetExecutor(node.Type)
	if err != nil {
		return fail(err.Error())
	}

	// Pre-execution contract: config validation and required-input presence
	// are checked before Execute; either failure skips Execute entirely and
	// names the offending keys or messages verbatim.
	if configErrors := executor.ValidateConfig(node.Config); len(configErrors) > 0 {
		return fail("config validation failed: " + strings.Join(configErrors, "; "))
	}

	inputs := e.resolver.Resolve(node, namespace, lastCompleted, executor.RequiredInputs())

	current.mu.Lock()
	step.Inputs = inputs
	current.mu.Unlock()

	if missing := missingInputs(executor.RequiredInputs(), inputs); len(missing) > 0 {
		return fail("missing required inputs: " + strings.Join(missing, ", "))
	}

	executionCtx := models.ExecutionContext{
		WorkflowID:      execution.WorkflowID,
		ExecutionID:     execution.ID,
		NodeID:          node.ID,
		Inputs:          inputs,
		Config:          node.Config,
		PreviousOutputs: maps.Clone(namespace),
	}

	result, err := safeExecute(ctx, executor, executionCtx)
	if err != nil {
		// A fault rather than a reported failure: the executor violated
		// its contract, so keep the full detail in the log.
		logger.Error("Executor fault", "error", err, "node_config", node.Config)

		return fail(err.Error())
	}

	if !result.Success {
		errText := result.Error
		if errText == "" {
			errText = "executor reported failure without an error message"
		}

		return fail(errText)
	}

	logger.Info("Node completed", "duration", time.Since(startedAt))
	e.publish(ctx, execution.ID, events.NodeFinished{
		BaseEvent: e.baseEvent(events.NodeFinishedEvent, execution.WorkflowID, execution.ID),
		NodeID:    node.ID,
		NodeType:  node.Type,
		Output:    result.Output,
		Duration:  time.Since(startedAt),
	})

	return nodeOutcome{node: node, output: result.Output}
}

// safeExecute shields the scheduler from panicking executors; a panic is a
// contract violation reported as a fault.
func safeExecute(ctx context.Context, executor protocol.NodeExecutor, executionCtx models.ExecutionContext) (result models.ExecutionResult, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("executor panic: %v", recovered)
		}
	}()

	return executor.Execute(ctx, executionCtx)
}

// cancelRemaining marks every still-pending step cancelled. Steps already in
// flight were allowed to finish at the wave barrier.
func (e *Engine) cancelRemaining(current *run) {
	current.mu.Lock()
	defer current.mu.Unlock()

	for _, step := range current.execution.Steps {
		if step.Status == models.ExecutionStatusPending {
			step.Status = models.ExecutionStatusCancelled
		}
	}
}

func (e *Engine) finish(ctx context.Context, current *run, status models.ExecutionStatus, errText string) {
	finishedAt := time.Now().UTC()

	current.mu.Lock()
	execution := current.execution
	execution.Status = status
	execution.Error = errText
	execution.FinishedAt = &finishedAt

	var duration time.Duration
	if execution.StartedAt != nil {
		duration = finishedAt.Sub(*execution.StartedAt)
	}
	current.mu.Unlock()

	base := func(eventType events.EventType) events.BaseEvent {
		return e.baseEvent(eventType, execution.WorkflowID, execution.ID)
	}

	switch status {
	case models.ExecutionStatusCompleted:
		e.publish(ctx, execution.ID, events.ExecutionCompleted{
			BaseEvent: base(events.ExecutionCompletedEvent),
			Results:   execution.Results,
			Duration:  duration,
		})
	case models.ExecutionStatusFailed:
		e.publish(ctx, execution.ID, events.ExecutionFailed{
			BaseEvent: base(events.ExecutionFailedEvent),
			Error:     errText,
			Duration:  duration,
		})
	case models.ExecutionStatusCancelled:
		e.publish(ctx, execution.ID, events.ExecutionCancelled{
			BaseEvent: base(events.ExecutionCancelledEvent),
			Duration:  duration,
		})
	default:
	}
}

func (e *Engine) baseEvent(eventType events.EventType, workflowID, executionID string) events.BaseEvent {
	id := ""
	if e.eventBus != nil {
		id = e.eventBus.GenerateID()
	}

	return events.BaseEvent{
		ID:          id,
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		WorkflowID:  workflowID,
		ExecutionID: executionID,
	}
}

func (e *Engine) publish(ctx context.Context, key string, event eventbus.Event) {
	if e.eventBus == nil {
		return
	}

	if err := e.eventBus.Publish(ctx, key, event); err != nil {
		e.logger.Warn("Failed to publish lifecycle event", "event_type", event.GetType(), "error", err)
	}
}

func missingInputs(required []string, inputs map[string]any) []string {
	missing := make([]string, 0, len(required))

	for _, key := range required {
		if _, ok := inputs[key]; !ok {
			missing = append(missing, key)
		}
	}

	return missing
}

func snapshotExecution(execution *models.WorkflowExecution) *models.WorkflowExecution {
	clone := *execution
	clone.Steps = make([]*models.ExecutionStep, len(execution.Steps))

	for i, step := range execution.Steps {
		stepCopy := *step
		clone.Steps[i] = &stepCopy
	}

	clone.Results = maps.Clone(execution.Results)

	return &clone
}

func generateExecutionID() string {
	return "exec-" + uuid.New().String()[:8]
}
