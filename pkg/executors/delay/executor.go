// Package delay implements the pause node executor. The wait is
// context-aware; cancelling the execution interrupts the sleep.
package delay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sutraflow/sutra/pkg/models"
)

const maxDelay = 24 * time.Hour

type Executor struct {
	logger *slog.Logger
}

func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{logger: logger.With("module", "delay_executor")}
}

func (e *Executor) ValidateConfig(config map[string]any) []string {
	var errs []string

	if _, err := durationFromConfig(config); err != nil {
		errs = append(errs, err.Error())
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
		"description": "Delay completion marker",
		"properties": map[string]any{
			"waited":      map[string]any{"type": "string"},
			"resumed_at":  map[string]any{"type": "string", "format": "date-time"},
			"data":        map[string]any{"description": "Pass-through payload, when one was provided"},
		},
	}
}

func (e *Executor) Execute(ctx context.Context, executionCtx models.ExecutionContext) (models.ExecutionResult, error) {
	started := time.Now()

	wait, err := durationFromConfig(executionCtx.Config)
	if err != nil {
		return models.ExecutionResult{
			Success:       false,
			Error:         err.Error(),
			ExecutionTime: time.Since(started),
		}, nil
	}

	e.logger.Info("Delaying execution", "node_id", executionCtx.NodeID, "duration", wait)

	select {
	case <-ctx.Done():
		return models.ExecutionResult{
			Success:       false,
			Error:         fmt.Sprintf("delay interrupted: %v", ctx.Err()),
			ExecutionTime: time.Since(started),
		}, nil
	case <-time.After(wait):
	}

	output := map[string]any{
		"waited":     wait.String(),
		"resumed_at": time.Now().UTC().Format(time.RFC3339),
	}
	if data, ok := executionCtx.Inputs["data"]; ok {
		output["data"] = data
	}

	return models.ExecutionResult{
		Success:       true,
		Output:        output,
		ExecutionTime: time.Since(started),
	}, nil
}

func durationFromConfig(config map[string]any) (time.Duration, error) {
	amount, ok := toFloat(config["duration"])
	if !ok {
		return 0, fmt.Errorf("duration must be a number, got %T", config["duration"])
	}

	if amount < 0 {
		return 0, fmt.Errorf("duration must not be negative, got %v", amount)
	}

	unit := "seconds"
	if value, ok := config["unit"].(string); ok && value != "" {
		unit = value
	}

	var wait time.Duration

	switch unit {
	case "milliseconds", "ms":
		wait = time.Duration(amount * float64(time.Millisecond))
	case "seconds", "s":
		wait = time.Duration(amount * float64(time.Second))
	case "minutes", "m":
		wait = time.Duration(amount * float64(time.Minute))
	case "hours", "h":
		wait = time.Duration(amount * float64(time.Hour))
	default:
		return 0, fmt.Errorf("unknown unit '%s', must be one of: milliseconds, seconds, minutes, hours", unit)
	}

	if wait > maxDelay {
		return 0, fmt.Errorf("delay %s exceeds the maximum of %s", wait, maxDelay)
	}

	return wait, nil
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
