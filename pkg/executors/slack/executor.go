// Package slack implements the Slack message node executor. Messages go to an
// incoming webhook when one is configured; otherwise the composed payload is
// returned without delivery.
package slack

import (
	"bytes"
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

const webhookTimeout = 15 * time.Second

type Executor struct {
	logger *slog.Logger
	client *http.Client
}

func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{
		logger: logger.With("module", "slack_executor"),
		client: &http.Client{Timeout: webhookTimeout},
	}
}

func (e *Executor) ValidateConfig(config map[string]any) []string {
	var errs []string

	if webhookURL, ok := config["webhook_url"].(string); ok && webhookURL != "" {
		if !strings.HasPrefix(webhookURL, "https://") {
			errs = append(errs, "webhook_url must be an https URL")
		}
	}

	return errs
}

func (e *Executor) RequiredInputs() []string {
	return []string{"channel", "message"}
}

func (e *Executor) OptionalInputs() []string {
	return []string{"thread_ts"}
}

func (e *Executor) OutputSchema() map[string]any {
	return map[string]any{
		"type":        "object",
		"description": "Posted Slack message",
		"properties": map[string]any{
			"ts":        map[string]any{"type": "string"},
			"channel":   map[string]any{"type": "string"},
			"message":   map[string]any{"type": "string"},
			"delivered": map[string]any{"type": "boolean"},
		},
	}
}

func (e *Executor) Execute(ctx context.Context, executionCtx models.ExecutionContext) (models.ExecutionResult, error) {
	started := time.Now()

	channel := fmt.Sprintf("%v", executionCtx.Inputs["channel"])
	message := fmt.Sprintf("%v", executionCtx.Inputs["message"])

	rendered, err := template.RenderString(message, &executionCtx)
	if err != nil {
		return models.ExecutionResult{
			Success:       false,
			Error:         fmt.Sprintf("failed to render message template: %v", err),
			ExecutionTime: time.Since(started),
		}, nil
	}

	delivered := false

	if webhookURL, ok := executionCtx.Config["webhook_url"].(string); ok && webhookURL != "" {
		if err := e.post(ctx, webhookURL, channel, rendered); err != nil {
			return models.ExecutionResult{
				Success:       false,
				Error:         fmt.Sprintf("webhook delivery failed: %v", err),
				ExecutionTime: time.Since(started),
			}, nil
		}

		delivered = true
	}

	e.logger.Info("Slack message composed", "channel", channel, "delivered", delivered)

	return models.ExecutionResult{
		Success: true,
		Output: map[string]any{
			"ts":        fmt.Sprintf("%d.%06d", time.Now().Unix(), time.Now().Nanosecond()/1000),
			"channel":   channel,
			"message":   rendered,
			"delivered": delivered,
		},
		ExecutionTime: time.Since(started),
	}, nil
}

func (e *Executor) post(ctx context.Context, webhookURL, channel, text string) error {
	payload, err := json.Marshal(map[string]string{"channel": channel, "text": text})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return fmt.Errorf("webhook returned %s: %s", resp.Status, string(body))
	}

	return nil
}
