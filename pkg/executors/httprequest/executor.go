// Package httprequest implements the external API call node executor.
package httprequest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sutraflow/sutra/pkg/models"
	"github.com/sutraflow/sutra/pkg/template"
)

const defaultTimeout = 30 * time.Second

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
	http.MethodHead:   true,
}

// Executor handles nodes of type "apiCall". The shared http.Client is safe
// for concurrent use across waves and runs.
type Executor struct {
	logger *slog.Logger
	client *http.Client
}

func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{
		logger: logger.With("module", "httprequest_executor"),
		client: &http.Client{},
	}
}

func (e *Executor) ValidateConfig(config map[string]any) []string {
	var errs []string

	url, _ := config["url"].(string)
	if url == "" {
		errs = append(errs, "missing required field 'url'")
	}

	if method, ok := config["method"].(string); ok && method != "" {
		if !allowedMethods[strings.ToUpper(method)] {
			errs = append(errs, fmt.Sprintf("unsupported method: %s", method))
		}
	}

	if retry, ok := config["retry"].(map[string]any); ok {
		if attempts, ok := retry["attempts"].(float64); ok && attempts < 1 {
			errs = append(errs, "retry.attempts must be at least 1")
		}
	}

	return errs
}

func (e *Executor) RequiredInputs() []string {
	return nil
}

func (e *Executor) OptionalInputs() []string {
	return []string{"body", "query"}
}

func (e *Executor) OutputSchema() map[string]any {
	return map[string]any{
		"type":        "object",
		"description": "HTTP response",
		"properties": map[string]any{
			"status_code": map[string]any{"type": "integer"},
			"headers":     map[string]any{"type": "object"},
			"body":        map[string]any{"description": "Decoded JSON body, or raw text"},
		},
	}
}

func (e *Executor) Execute(ctx context.Context, executionCtx models.ExecutionContext) (models.ExecutionResult, error) {
	started := time.Now()

	url, err := template.RenderString(stringConfig(executionCtx.Config, "url", ""), &executionCtx)
	if err != nil {
		return fail(fmt.Sprintf("failed to render url template: %v", err), started), nil
	}

	method := strings.ToUpper(stringConfig(executionCtx.Config, "method", http.MethodGet))

	body := stringConfig(executionCtx.Config, "body", "")
	if body == "" {
		if inputBody, ok := executionCtx.Inputs["body"].(string); ok {
			body = inputBody
		}
	}

	if body != "" {
		body, err = template.RenderString(body, &executionCtx)
		if err != nil {
			return fail(fmt.Sprintf("failed to render body template: %v", err), started), nil
		}
	}

	timeout := defaultTimeout
	if seconds, ok := executionCtx.Config["timeout"].(float64); ok && seconds > 0 {
		timeout = time.Duration(seconds) * time.Second
	}

	attempts, delay := retrySettings(executionCtx.Config)

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			e.logger.Info("Retrying http request", "attempt", attempt, "max_attempts", attempts, "url", url)

			select {
			case <-ctx.Done():
				return fail(fmt.Sprintf("request cancelled: %v", ctx.Err()), started), nil
			case <-time.After(delay):
			}
		}

		response, err := e.doRequest(ctx, method, url, body, executionCtx.Config, timeout)
		if err != nil {
			lastErr = err

			continue
		}

		return models.ExecutionResult{
			Success:       true,
			Output:        response,
			ExecutionTime: time.Since(started),
			Metadata:      map[string]any{"attempts": attempt},
		}, nil
	}

	return fail(fmt.Sprintf("http request failed after %d attempts: %v", attempts, lastErr), started), nil
}

func (e *Executor) doRequest(ctx context.Context, method, url, body string, config map[string]any, timeout time.Duration) (map[string]any, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}

	if headers, ok := config["headers"].(map[string]any); ok {
		for key, value := range headers {
			if text, ok := value.(string); ok {
				req.Header.Set(key, text)
			}
		}
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("server error: %s", resp.Status)
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		decoded = string(raw)
	}

	headers := make(map[string]any, len(resp.Header))
	for key := range resp.Header {
		headers[key] = resp.Header.Get(key)
	}

	return map[string]any{
		"status_code": resp.StatusCode,
		"headers":     headers,
		"body":        decoded,
	}, nil
}

func retrySettings(config map[string]any) (int, time.Duration) {
	attempts := 1
	delay := time.Second

	if retry, ok := config["retry"].(map[string]any); ok {
		if value, ok := retry["attempts"].(float64); ok && value >= 1 {
			attempts = int(value)
		}

		if value, ok := retry["delay"].(float64); ok && value >= 0 {
			delay = time.Duration(value) * time.Second
		}
	}

	return attempts, delay
}

func stringConfig(config map[string]any, key, fallback string) string {
	if value, ok := config[key].(string); ok && value != "" {
		return value
	}

	return fallback
}

func fail(errText string, started time.Time) models.ExecutionResult {
	return models.ExecutionResult{
		Success:       false,
		Error:         errText,
		ExecutionTime: time.Since(started),
	}
}
