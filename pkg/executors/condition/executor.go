// Package condition implements the branching predicate node executor. It
// compares the incoming value against a configured expectation and reports
// the boolean outcome.
package condition

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/sutraflow/sutra/pkg/models"
)

var operators = []string{"eq", "ne", "gt", "lt", "gte", "lte", "contains", "exists"}

type Executor struct {
	logger *slog.Logger
}

func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{logger: logger.With("module", "condition_executor")}
}

func (e *Executor) ValidateConfig(config map[string]any) []string {
	var errs []string

	operator, ok := config["operator"].(string)
	if !ok || operator == "" {
		errs = append(errs, "operator is required")
	} else if !slices.Contains(operators, operator) {
		errs = append(errs, fmt.Sprintf("unknown operator '%s', must be one of: %s", operator, strings.Join(operators, ", ")))
	}

	if operator != "exists" {
		if _, ok := config["value"]; !ok {
			errs = append(errs, "value is required unless operator is 'exists'")
		}
	}

	return errs
}

func (e *Executor) RequiredInputs() []string {
	return []string{"value"}
}

func (e *Executor) OptionalInputs() []string {
	return nil
}

func (e *Executor) OutputSchema() map[string]any {
	return map[string]any{
		"type":        "object",
		"description": "Condition evaluation outcome",
		"properties": map[string]any{
			"result":   map[string]any{"type": "boolean"},
			"operator": map[string]any{"type": "string"},
			"value":    map[string]any{"description": "The evaluated input value"},
		},
	}
}

func (e *Executor) Execute(_ context.Context, executionCtx models.ExecutionContext) (models.ExecutionResult, error) {
	started := time.Now()

	operator, _ := executionCtx.Config["operator"].(string)
	actual := executionCtx.Inputs["value"]
	expected := executionCtx.Config["value"]

	result, err := evaluate(operator, actual, expected)
	if err != nil {
		return models.ExecutionResult{
			Success:       false,
			Error:         err.Error(),
			ExecutionTime: time.Since(started),
		}, nil
	}

	e.logger.Debug("Condition evaluated", "operator", operator, "result", result)

	return models.ExecutionResult{
		Success: true,
		Output: map[string]any{
			"result":   result,
			"operator": operator,
			"value":    actual,
		},
		ExecutionTime: time.Since(started),
	}, nil
}

func evaluate(operator string, actual, expected any) (bool, error) {
	switch operator {
	case "exists":
		return actual != nil, nil
	case "eq":
		return equal(actual, expected), nil
	case "ne":
		return !equal(actual, expected), nil
	case "contains":
		return strings.Contains(fmt.Sprintf("%v", actual), fmt.Sprintf("%v", expected)), nil
	case "gt", "lt", "gte", "lte":
		left, right, err := numericPair(actual, expected)
		if err != nil {
			return false, err
		}

		switch operator {
		case "gt":
			return left > right, nil
		case "lt":
			return left < right, nil
		case "gte":
			return left >= right, nil
		default:
			return left <= right, nil
		}
	default:
		return false, fmt.Errorf("unknown operator '%s'", operator)
	}
}

// equal compares numbers numerically so that JSON-decoded float64 values
// match integer literals, and everything else by string form.
func equal(actual, expected any) bool {
	if left, right, err := numericPair(actual, expected); err == nil {
		return left == right
	}

	return fmt.Sprintf("%v", actual) == fmt.Sprintf("%v", expected)
}

func numericPair(actual, expected any) (float64, float64, error) {
	left, ok := toFloat(actual)
	if !ok {
		return 0, 0, fmt.Errorf("input value %v is not numeric", actual)
	}

	right, ok := toFloat(expected)
	if !ok {
		return 0, 0, fmt.Errorf("comparison value %v is not numeric", expected)
	}

	return left, right, nil
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
