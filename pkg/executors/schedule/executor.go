// Package schedule implements the cron schedule node executor. Inside a run
// it does not block until the next tick; it validates the expression and
// reports the upcoming fire times so downstream nodes and callers can plan
// around them.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sutraflow/sutra/pkg/models"
)

const defaultUpcoming = 3

type Executor struct {
	logger *slog.Logger
	parser cron.Parser
}

func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{
		logger: logger.With("module", "schedule_executor"),
		parser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

func (e *Executor) ValidateConfig(config map[string]any) []string {
	var errs []string

	expression, ok := config["cron"].(string)
	if !ok || expression == "" {
		errs = append(errs, "cron expression is required")

		return errs
	}

	if _, err := e.parser.Parse(expression); err != nil {
		errs = append(errs, fmt.Sprintf("invalid cron expression '%s': %v", expression, err))
	}

	if timezone, ok := config["timezone"].(string); ok && timezone != "" {
		if _, err := time.LoadLocation(timezone); err != nil {
			errs = append(errs, fmt.Sprintf("invalid timezone '%s': %v", timezone, err))
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
		"description": "Resolved schedule",
		"properties": map[string]any{
			"cron":     map[string]any{"type": "string"},
			"timezone": map[string]any{"type": "string"},
			"next_run": map[string]any{"type": "string", "format": "date-time"},
			"upcoming": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "format": "date-time"},
			},
		},
	}
}

func (e *Executor) Execute(_ context.Context, executionCtx models.ExecutionContext) (models.ExecutionResult, error) {
	started := time.Now()

	expression, _ := executionCtx.Config["cron"].(string)

	schedule, err := e.parser.Parse(expression)
	if err != nil {
		return models.ExecutionResult{
			Success:       false,
			Error:         fmt.Sprintf("invalid cron expression '%s': %v", expression, err),
			ExecutionTime: time.Since(started),
		}, nil
	}

	location := time.UTC

	timezone, _ := executionCtx.Config["timezone"].(string)
	if timezone != "" {
		location, err = time.LoadLocation(timezone)
		if err != nil {
			return models.ExecutionResult{
				Success:       false,
				Error:         fmt.Sprintf("invalid timezone '%s': %v", timezone, err),
				ExecutionTime: time.Since(started),
			}, nil
		}
	}

	now := time.Now().In(location)
	upcoming := make([]string, 0, defaultUpcoming)

	next := now
	for range defaultUpcoming {
		next = schedule.Next(next)
		upcoming = append(upcoming, next.Format(time.RFC3339))
	}

	e.logger.Info("Schedule resolved", "cron", expression, "next_run", upcoming[0])

	output := map[string]any{
		"cron":     expression,
		"timezone": location.String(),
		"next_run": upcoming[0],
		"upcoming": upcoming,
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
