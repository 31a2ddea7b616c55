// Package protocol defines the interfaces and contracts for pluggable node executors.
package protocol

import (
	"context"

	"github.com/sutraflow/sutra/pkg/models"
)

// NodeExecutor is the capability contract every node type implements.
//
// Executor instances are cached by the registry and reused across runs and
// across nodes of the same type, so implementations must be safe for
// concurrent reentrant use with different ExecutionContexts.
type NodeExecutor interface {
	// ValidateConfig checks a node's configuration without side effects and
	// returns one message per problem; an empty slice means the config is valid.
	ValidateConfig(config map[string]any) []string

	// RequiredInputs returns the input keys that must be present in the
	// resolved inputs before Execute may be invoked.
	RequiredInputs() []string

	// OptionalInputs returns input keys the executor understands but does
	// not require.
	OptionalInputs() []string

	// OutputSchema describes the executor's output structure as a JSON
	// schema fragment, used for API introspection.
	OutputSchema() map[string]any

	// Execute runs the node. Ordinary failures are reported through the
	// result (Success=false); a non-nil error signals a contract violation
	// or an unusable executor, never a routine step failure.
	Execute(ctx context.Context, executionCtx models.ExecutionContext) (models.ExecutionResult, error)
}

// ExecutorFactory creates executor instances and provides metadata about the
// node type for catalog introspection.
type ExecutorFactory interface {
	// Create builds the executor instance. Called once per registry
	// lifetime; the instance is cached and shared.
	Create() (NodeExecutor, error)

	// ID returns the node type identifier this factory serves.
	ID() string

	// Name returns the human-readable name for this node type.
	Name() string

	// Description returns a description of what nodes of this type do.
	Description() string

	// Category groups the node type for catalog presentation
	// (e.g. "AI & ML", "Communication", "Data", "Control Flow").
	Category() string

	// ConfigSchema returns the JSON schema for this node type's config.
	ConfigSchema() map[string]any
}
