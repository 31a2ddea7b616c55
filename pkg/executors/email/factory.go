package email

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
	return "email"
}

func (f *Factory) Name() string {
	return "Email"
}

func (f *Factory) Description() string {
	return "Compose automated emails from templates"
}

func (f *Factory) Category() string {
	return "Communication"
}

func (f *Factory) ConfigSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"template": map[string]any{
				"type":        "string",
				"description": "Body template rendered against the execution context",
				"examples": []string{
					"Hello,\n\n{{.inputs.content}}\n\nSent by workflow {{.execution.workflow_id}}",
				},
			},
		},
	}
}
