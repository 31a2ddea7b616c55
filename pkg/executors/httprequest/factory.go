package httprequest

import (
	"log/slog"

	"github.com/sutraflow/sutra/pkg/protocol"
)

type Factory struct{}

func NewFactory() protocol.ExecutorFactory {
	return &Factory{}
}

func (f *Factory) Create() (protocol.NodeExecutor, error) {
	return NewExecutor(slog.Default()), nil
}

func (f *Factory) ID() string {
	return "apiCall"
}

func (f *Factory) Name() string {
	return "API Call"
}

func (f *Factory) Description() string {
	return "External API integrations over HTTP with configurable method, headers, body and retries"
}

func (f *Factory) Category() string {
	return "Integration"
}

func (f *Factory) ConfigSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "Request URL. Supports templating with execution context data.",
				"examples": []string{
					"https://api.example.com/items/{{.inputs.item_id}}",
				},
			},
			"method": map[string]any{
				"type":    "string",
				"enum":    []any{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD"},
				"default": "GET",
			},
			"headers": map[string]any{
				"type":        "object",
				"description": "Request headers",
			},
			"body": map[string]any{
				"type":        "string",
				"description": "Request body. Supports templating.",
			},
			"timeout": map[string]any{
				"type":        "number",
				"description": "Per-request timeout in seconds",
				"default":     30,
			},
			"retry": map[string]any{
				"type":        "object",
				"description": "Retry settings: attempts (>=1) and delay in seconds",
			},
		},
		"required": []string{"url"},
	}
}
