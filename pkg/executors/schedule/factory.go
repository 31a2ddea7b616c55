package schedule

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
	return "schedule"
}

func (f *Factory) Name() string {
	return "Schedule"
}

func (f *Factory) Description() string {
	return "Validate a cron schedule and compute upcoming run times"
}

func (f *Factory) Category() string {
	return "Triggers"
}

func (f *Factory) ConfigSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"cron"},
		"properties": map[string]any{
			"cron": map[string]any{
				"type":        "string",
				"description": "Standard five-field cron expression or a descriptor such as @daily",
				"examples":    []string{"0 9 * * MON-FRI", "@hourly"},
			},
			"timezone": map[string]any{
				"type":    "string",
				"default": "UTC",
			},
		},
	}
}
