package condition

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sutraflow/sutra/pkg/models"
)

func TestExecutor_ValidateConfig(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(slog.Default())

	assert.Empty(t, executor.ValidateConfig(map[string]any{"operator": "eq", "value": 1.0}))
	assert.Empty(t, executor.ValidateConfig(map[string]any{"operator": "exists"}))

	errs := executor.ValidateConfig(map[string]any{})
	require.Len(t, errs, 2, "missing operator and missing value")

	errs = executor.ValidateConfig(map[string]any{"operator": "between", "value": 1.0})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "unknown operator 'between'")
}

func TestExecutor_Execute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		operator string
		actual   any
		expected any
		want     bool
	}{
		{"eq numbers", "eq", 5.0, 5, true},
		{"eq strings", "eq", "active", "active", true},
		{"ne", "ne", "a", "b", true},
		{"gt", "gt", 10.0, 5.0, true},
		{"lt false", "lt", 10.0, 5.0, false},
		{"gte equal", "gte", 5.0, 5.0, true},
		{"lte", "lte", 4.0, 5.0, true},
		{"contains", "contains", "hello world", "world", true},
		{"exists", "exists", "anything", nil, true},
	}

	executor := NewExecutor(slog.Default())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := executor.Execute(context.Background(), models.ExecutionContext{
				Inputs: map[string]any{"value": tt.actual},
				Config: map[string]any{"operator": tt.operator, "value": tt.expected},
			})
			require.NoError(t, err)
			require.True(t, result.Success)

			output, ok := result.Output.(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tt.want, output["result"])
		})
	}
}

func TestExecutor_Execute_ExistsWithNilValue(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(slog.Default())

	result, err := executor.Execute(context.Background(), models.ExecutionContext{
		Inputs: map[string]any{"value": nil},
		Config: map[string]any{"operator": "exists"},
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	output := result.Output.(map[string]any)
	assert.Equal(t, false, output["result"])
}

func TestExecutor_Execute_NonNumericComparisonFails(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(slog.Default())

	result, err := executor.Execute(context.Background(), models.ExecutionContext{
		Inputs: map[string]any{"value": "not a number"},
		Config: map[string]any{"operator": "gt", "value": 5.0},
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "not numeric")
}
