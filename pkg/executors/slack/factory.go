package slack

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
	return "slack"
}

func (f *Factory) Name() string {
	return "Slack"
}

func (f *Factory) Description() string {
	return "Send messages to Slack channels through an incoming webhook"
}

func (f *Factory) Category() string {
	return "Communication"
}

func (f *Factory) ConfigSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"webhook_url": map[string]any{
				"type":        "string",
				"description": "Slack incoming webhook URL; when omitted the message is composed but not delivered",
			},
		},
	}
}
