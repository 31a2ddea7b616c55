package delay

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
	return "delay"
}

func (f *Factory) Name() string {
	return "Delay"
}

func (f *Factory) Description() string {
	return "Pause the workflow for a configured duration"
}

func (f *Factory) Category() string {
	return "Control"
}

func (f *Factory) ConfigSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"duration"},
		"properties": map[string]any{
			"duration": map[string]any{
				"type":    "number",
				"minimum": 0,
			},
			"unit": map[string]any{
				"type":    "string",
				"enum":    []string{"milliseconds", "seconds", "minutes", "hours"},
				"default": "seconds",
			},
		},
	}
}
