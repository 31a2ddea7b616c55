// Package logmsg implements the log node executor, useful for tracing values
// through a workflow without side effects.
package logmsg

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/sutraflow/sutra/pkg/models"
	"github.com/sutraflow/sutra/pkg/template"
)

var levels = []string{"debug", "info", "warn", "error"}

type Executor struct {
	logger *slog.Logger
}

func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{logger: logger.With("module", "log_executor")}
}

func (e *Executor) ValidateConfig(config map[string]any) []string {
	var errs []string

	message, ok := config["message"].(string)
	if !ok || message == "" {
		errs = append(errs, "message is required")
	}

	if level, ok := config["level"].(string); ok && level != "" {
		if !slices.Contains(levels, strings.ToLower(level)) {
			errs = append(errs, fmt.Sprintf("unknown level '%s', must be one of: %s", level, strings.Join(levels, ", ")))
		}
	}

	return errs
}

func (e *Executor) RequiredInputs() []string {
	return nil
}

func (e *Executor) OptionalInputs() []string {
	return []string{"data"}
}

func (e *Executor) OutputSchema() map[string]any {
	return map[string]any{
		"type":        "object",
		"description": "Logged message",
		"properties": map[string]any{
			"message": map[string]any{"type": "string"},
			"level":   map[string]any{"type": "string"},
			"logged":  map[string]any{"type": "boolean"},
		},
	}
}

func (e *Executor) Execute(_ context.Context, executionCtx models.ExecutionContext) (models.ExecutionResult, error) {
	started := time.Now()

	message, _ := executionCtx.Config["message"].(string)

	rendered, err := template.RenderString(message, &executionCtx)
	if err != nil {
		return models.ExecutionResult{
			Success:       false,
			Error:         fmt.Sprintf("failed to render message template: %v", err),
			ExecutionTime: time.Since(started),
		}, nil
	}

	level := "info"
	if value, ok := executionCtx.Config["level"].(string); ok && value != "" {
		level = strings.ToLower(value)
	}

	logger := e.logger.With(
		"workflow_id", executionCtx.WorkflowID,
		"execution_id", executionCtx.ExecutionID,
		"node_id", executionCtx.NodeID,
	)

	switch level {
	case "debug":
		logger.Debug(rendered)
	case "warn":
		logger.Warn(rendered)
	case "error":
		logger.Error(rendered)
	default:
		logger.Info(rendered)
	}

	return models.ExecutionResult{
		Success: true,
		Output: map[string]any{
			"message": rendered,
			"level":   level,
			"logged":  true,
		},
		ExecutionTime: time.Since(started),
	}, nil
}
