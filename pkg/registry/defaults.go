package registry

import (
	"github.com/sutraflow/sutra/pkg/executors/aiagent"
	"github.com/sutraflow/sutra/pkg/executors/condition"
	"github.com/sutraflow/sutra/pkg/executors/data"
	"github.com/sutraflow/sutra/pkg/executors/delay"
	"github.com/sutraflow/sutra/pkg/executors/email"
	"github.com/sutraflow/sutra/pkg/executors/httprequest"
	"github.com/sutraflow/sutra/pkg/executors/logmsg"
	"github.com/sutraflow/sutra/pkg/executors/schedule"
	"github.com/sutraflow/sutra/pkg/executors/slack"
	"github.com/sutraflow/sutra/pkg/protocol"
)

// RegisterDefaultExecutors registers all built-in executor factories with the
// registry.
func (r *Registry) RegisterDefaultExecutors() error {
	factories := []protocol.ExecutorFactory{
		aiagent.NewFactory(),
		httprequest.NewFactory(),
		data.NewFactory(),
		email.NewFactory(),
		slack.NewFactory(),
		condition.NewFactory(),
		delay.NewFactory(),
		schedule.NewFactory(),
		logmsg.NewFactory(),
	}

	for _, factory := range factories {
		if err := r.Register(factory); err != nil {
			return err
		}
	}

	return nil
}
