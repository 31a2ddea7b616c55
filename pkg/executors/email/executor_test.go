package email

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

	assert.Empty(t, executor.ValidateConfig(map[string]any{}))
	assert.Empty(t, executor.ValidateConfig(map[string]any{"template": "Hello {{.inputs.name}}"}))

	errs := executor.ValidateConfig(map[string]any{"template": "{{.broken"})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "invalid body template")
}

func TestExecutor_Execute_ComposesMessage(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(slog.Default())

	result, err := executor.Execute(context.Background(), models.ExecutionContext{
		Inputs: map[string]any{
			"to":      "ada@example.com",
			"subject": "Weekly report",
			"body":    "plain body",
		},
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	output := result.Output.(map[string]any)
	assert.Equal(t, "ada@example.com", output["to"])
	assert.Equal(t, "Weekly report", output["subject"])
	assert.Equal(t, "plain body", output["body"])
	assert.NotEmpty(t, output["message_id"])
	assert.NotEmpty(t, output["sent_at"])
}

func TestExecutor_Execute_TemplateOverridesBody(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(slog.Default())

	result, err := executor.Execute(context.Background(), models.ExecutionContext{
		Inputs: map[string]any{
			"to":      "ada@example.com",
			"subject": "Digest",
			"body":    "ignored",
			"topic":   "golang",
		},
		Config: map[string]any{"template": "Today's digest covers {{.inputs.topic}}"},
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	output := result.Output.(map[string]any)
	assert.Equal(t, "Today's digest covers golang", output["body"])
}

func TestExecutor_Execute_RejectsInvalidRecipient(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(slog.Default())

	result, err := executor.Execute(context.Background(), models.ExecutionContext{
		Inputs: map[string]any{"to": "not-an-address", "subject": "x"},
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "invalid recipient address")
}

func TestExecutor_Execute_BadTemplateFails(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(slog.Default())

	result, err := executor.Execute(context.Background(), models.ExecutionContext{
		Inputs: map[string]any{"to": "ada@example.com", "subject": "x"},
		Config: map[string]any{"template": "{{.broken"},
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "failed to render body template")
}
