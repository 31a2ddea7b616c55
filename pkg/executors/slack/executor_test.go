package slack

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sutraflow/sutra/pkg/models"
)

func TestExecutor_ValidateConfig(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(slog.Default())

	assert.Empty(t, executor.ValidateConfig(map[string]any{}))
	assert.Empty(t, executor.ValidateConfig(map[string]any{"webhook_url": "https://hooks.example.com/T/B"}))

	errs := executor.ValidateConfig(map[string]any{"webhook_url": "http://hooks.example.com/T/B"})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "must be an https URL")
}

func TestExecutor_Execute_SimulatesWithoutWebhook(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(slog.Default())

	result, err := executor.Execute(context.Background(), models.ExecutionContext{
		Inputs: map[string]any{"channel": "#alerts", "message": "deploy done"},
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	output := result.Output.(map[string]any)
	assert.Equal(t, "#alerts", output["channel"])
	assert.Equal(t, "deploy done", output["message"])
	assert.Equal(t, false, output["delivered"])
	assert.NotEmpty(t, output["ts"])
}

func TestExecutor_Execute_PostsToWebhook(t *testing.T) {
	t.Parallel()

	var received atomic.Value

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		received.Store(payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	executor := NewExecutor(slog.Default())

	result, err := executor.Execute(context.Background(), models.ExecutionContext{
		Inputs: map[string]any{"channel": "#releases", "message": "v{{.inputs.version}} shipped", "version": "1.2.0"},
		Config: map[string]any{"webhook_url": server.URL},
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	output := result.Output.(map[string]any)
	assert.Equal(t, true, output["delivered"])
	assert.Equal(t, "v1.2.0 shipped", output["message"])

	payload := received.Load().(map[string]string)
	assert.Equal(t, "#releases", payload["channel"])
	assert.Equal(t, "v1.2.0 shipped", payload["text"])
}

func TestExecutor_Execute_WebhookFailureReported(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("invalid_token"))
	}))
	defer server.Close()

	executor := NewExecutor(slog.Default())

	result, err := executor.Execute(context.Background(), models.ExecutionContext{
		Inputs: map[string]any{"channel": "#alerts", "message": "x"},
		Config: map[string]any{"webhook_url": server.URL},
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "webhook delivery failed")
	assert.Contains(t, result.Error, "invalid_token")
}

func TestExecutor_Execute_BadTemplateFails(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(slog.Default())

	result, err := executor.Execute(context.Background(), models.ExecutionContext{
		Inputs: map[string]any{"channel": "#alerts", "message": "{{.broken"},
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "failed to render message template")
}
