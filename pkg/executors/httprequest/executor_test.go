package httprequest

import (
	"context"
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

	assert.Empty(t, executor.ValidateConfig(map[string]any{"url": "https://example.com"}))

	errs := executor.ValidateConfig(map[string]any{})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "missing required field 'url'")

	errs = executor.ValidateConfig(map[string]any{"url": "https://example.com", "method": "TRACE"})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "unsupported method")

	errs = executor.ValidateConfig(map[string]any{
		"url":   "https://example.com",
		"retry": map[string]any{"attempts": 0.0},
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "retry.attempts must be at least 1")
}

func TestExecutor_Execute_DecodesJSONResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "token", r.Header.Get("X-Auth"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ok", "items": [1, 2]}`))
	}))
	defer server.Close()

	executor := NewExecutor(slog.Default())

	result, err := executor.Execute(context.Background(), models.ExecutionContext{
		Config: map[string]any{
			"url":     server.URL,
			"headers": map[string]any{"X-Auth": "token"},
		},
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	output := result.Output.(map[string]any)
	assert.Equal(t, http.StatusOK, output["status_code"])

	body := output["body"].(map[string]any)
	assert.Equal(t, "ok", body["status"])
}

func TestExecutor_Execute_PlainTextBodyStaysString(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("plain text"))
	}))
	defer server.Close()

	executor := NewExecutor(slog.Default())

	result, err := executor.Execute(context.Background(), models.ExecutionContext{
		Config: map[string]any{"url": server.URL},
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	output := result.Output.(map[string]any)
	assert.Equal(t, "plain text", output["body"])
}

func TestExecutor_Execute_RendersURLTemplate(t *testing.T) {
	t.Parallel()

	var path atomic.Value

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path.Store(r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	executor := NewExecutor(slog.Default())

	result, err := executor.Execute(context.Background(), models.ExecutionContext{
		Inputs: map[string]any{"user": "ada"},
		Config: map[string]any{"url": server.URL + "/users/{{.inputs.user}}"},
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "/users/ada", path.Load())
}

func TestExecutor_Execute_RetriesOnServerError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)

			return
		}

		_, _ = w.Write([]byte(`{"recovered": true}`))
	}))
	defer server.Close()

	executor := NewExecutor(slog.Default())

	result, err := executor.Execute(context.Background(), models.ExecutionContext{
		Config: map[string]any{
			"url":   server.URL,
			"retry": map[string]any{"attempts": 3.0, "delay": 0.0},
		},
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, map[string]any{"attempts": 3}, result.Metadata)
}

func TestExecutor_Execute_ExhaustedRetriesFail(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	executor := NewExecutor(slog.Default())

	result, err := executor.Execute(context.Background(), models.ExecutionContext{
		Config: map[string]any{
			"url":   server.URL,
			"retry": map[string]any{"attempts": 2.0, "delay": 0.0},
		},
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "http request failed after 2 attempts")
}

func TestExecutor_Execute_ClientErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	executor := NewExecutor(slog.Default())

	result, err := executor.Execute(context.Background(), models.ExecutionContext{
		Config: map[string]any{
			"url":   server.URL,
			"retry": map[string]any{"attempts": 3.0, "delay": 0.0},
		},
	})
	require.NoError(t, err)
	require.True(t, result.Success, "4xx responses are returned, not retried")

	output := result.Output.(map[string]any)
	assert.Equal(t, http.StatusNotFound, output["status_code"])
	assert.Equal(t, int32(1), calls.Load())
}
