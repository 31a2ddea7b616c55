// Package email implements the email composition node executor. Delivery is
// delegated to an external provider; this executor renders and shapes the
// message payload.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sutraflow/sutra/pkg/models"
	"github.com/sutraflow/sutra/pkg/template"
)

type Executor struct {
	logger *slog.Logger
}

func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{logger: logger.With("module", "email_executor")}
}

func (e *Executor) ValidateConfig(config map[string]any) []string {
	var errs []string

	if templateText, ok := config["template"].(string); ok && templateText != "" {
		if _, err := template.Render(templateText, map[string]any{}); err != nil {
			errs = append(errs, fmt.Sprintf("invalid body template: %v", err))
		}
	}

	return errs
}

func (e *Executor) RequiredInputs() []string {
	return []string{"to", "subject"}
}

func (e *Executor) OptionalInputs() []string {
	return []string{"body", "variables", "attachments"}
}

func (e *Executor) OutputSchema() map[string]any {
	return map[string]any{
		"type":        "object",
		"description": "Composed email message",
		"properties": map[string]any{
			"message_id": map[string]any{"type": "string"},
			"to":         map[string]any{"type": "string"},
			"subject":    map[string]any{"type": "string"},
			"body":       map[string]any{"type": "string"},
			"sent_at":    map[string]any{"type": "string", "format": "date-time"},
		},
	}
}

func (e *Executor) Execute(_ context.Context, executionCtx models.ExecutionContext) (models.ExecutionResult, error) {
	started := time.Now()

	to := fmt.Sprintf("%v", executionCtx.Inputs["to"])
	if !strings.Contains(to, "@") {
		return models.ExecutionResult{
			Success:       false,
			Error:         fmt.Sprintf("invalid recipient address: %s", to),
			ExecutionTime: time.Since(started),
		}, nil
	}

	subject := fmt.Sprintf("%v", executionCtx.Inputs["subject"])

	body := ""
	if value, ok := executionCtx.Inputs["body"].(string); ok {
		body = value
	}

	if templateText, ok := executionCtx.Config["template"].(string); ok && templateText != "" {
		rendered, err := template.RenderString(templateText, &executionCtx)
		if err != nil {
			return models.ExecutionResult{
				Success:       false,
				Error:         fmt.Sprintf("failed to render body template: %v", err),
				ExecutionTime: time.Since(started),
			}, nil
		}

		body = rendered
	}

	messageID := uuid.New().String()
	e.logger.Info("Composed email", "message_id", messageID, "to", to, "subject", subject)

	return models.ExecutionResult{
		Success: true,
		Output: map[string]any{
			"message_id": messageID,
			"to":         to,
			"subject":    subject,
			"body":       body,
			"sent_at":    time.Now().UTC().Format(time.RFC3339),
		},
		ExecutionTime: time.Since(started),
	}, nil
}
