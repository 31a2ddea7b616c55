package data

import (
	"log/slog"

	"github.com/sutraflow/sutra/pkg/protocol"
)

// Factory creates the shared data executor instance.
type Factory struct{}

func NewFactory() protocol.ExecutorFactory {
	return &Factory{}
}

func (f *Factory) Create() (protocol.NodeExecutor, error) {
	return NewExecutor(slog.Default()), nil
}

func (f *Factory) ID() string {
	return "data"
}

func (f *Factory) Name() string {
	return "Data"
}

func (f *Factory) Description() string {
	return "Data processing, storage, and manipulation (extract, map, validate, transform, store)"
}

func (f *Factory) Category() string {
	return "Data"
}

func (f *Factory) ConfigSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"operation": map[string]any{
				"type":        "string",
				"description": "Data operation to perform",
				"enum":        []any{"pass_through", "extract", "map", "validate", "transform", "store"},
				"default":     "pass_through",
			},
			"fields": map[string]any{
				"type":        "array",
				"description": "Field names to extract (extract operation)",
				"items":       map[string]any{"type": "string"},
			},
			"mapping": map[string]any{
				"type":        "object",
				"description": "Old key to new key mapping (map operation)",
			},
			"rules": map[string]any{
				"type":        "array",
				"description": "Validation rules (validate operation)",
			},
			"transformation": map[string]any{
				"type":        "object",
				"description": "Transformation settings (transform operation)",
			},
			"storage_type": map[string]any{
				"type":        "string",
				"description": "Storage backend for the store operation",
				"enum":        []any{"memory", "redis"},
			},
			"key": map[string]any{
				"type":        "string",
				"description": "Storage key; defaults to '<execution_id>:<node_id>'",
			},
			"connection": map[string]any{
				"type":        "object",
				"description": "Connection settings for redis storage (addr, password)",
			},
		},
	}
}
