package condition

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
	return "condition"
}

func (f *Factory) Name() string {
	return "Condition"
}

func (f *Factory) Description() string {
	return "Evaluate a comparison against the incoming value"
}

func (f *Factory) Category() string {
	return "Logic"
}

func (f *Factory) ConfigSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"operator"},
		"properties": map[string]any{
			"operator": map[string]any{
				"type": "string",
				"enum": operators,
			},
			"value": map[string]any{
				"description": "Expected value; required for every operator except 'exists'",
			},
		},
	}
}
