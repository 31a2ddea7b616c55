package logmsg

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
	return "log"
}

func (f *Factory) Name() string {
	return "Log"
}

func (f *Factory) Description() string {
	return "Write a templated message to the execution log"
}

func (f *Factory) Category() string {
	return "Utilities"
}

func (f *Factory) ConfigSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"message"},
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "Message template rendered against the execution context",
				"examples":    []string{"Processing {{.inputs.topic}} for {{.execution.workflow_id}}"},
			},
			"level": map[string]any{
				"type":    "string",
				"enum":    levels,
				"default": "info",
			},
		},
	}
}
