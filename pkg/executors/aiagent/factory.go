package aiagent

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
	return "aiAgent"
}

func (f *Factory) Name() string {
	return "AI Agent"
}

func (f *Factory) Description() string {
	return "AI-powered tasks (research, analysis, content generation)"
}

func (f *Factory) Category() string {
	return "AI & ML"
}

func (f *Factory) ConfigSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"endpoint": map[string]any{
				"type":        "string",
				"description": "OpenAI-compatible chat completion endpoint; falls back to " + endpointEnvVar,
			},
			"model": map[string]any{
				"type":    "string",
				"default": defaultModel,
			},
			"temperature": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 2,
				"default": 0.1,
			},
			"max_tokens": map[string]any{
				"type":    "number",
				"minimum": 1,
			},
			"api_key": map[string]any{
				"type":        "string",
				"description": "Bearer token; falls back to " + apiKeyEnvVar,
			},
		},
	}
}
