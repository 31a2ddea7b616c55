// Package registry maps node type identifiers to executor factories and
// caches the instances they create.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/sutraflow/sutra/pkg/protocol"
)

// ErrNotRegistered is returned when a node type has no registered factory.
// Unknown node types are a configuration error and are never substituted
// with a fallback executor.
var ErrNotRegistered = errors.New("no executor registered")

// ExecutorInfo is the introspection record exposed for one node type.
type ExecutorInfo struct {
	Type           string         `json:"type"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Category       string         `json:"category"`
	RequiredInputs []string       `json:"required_inputs"`
	OptionalInputs []string       `json:"optional_inputs"`
	ConfigSchema   map[string]any `json:"config_schema,omitempty"`
	OutputSchema   map[string]any `json:"output_schema,omitempty"`
}

// Registry holds executor factories keyed by node type. Instances are created
// lazily on first request and reused for the registry's lifetime, so they are
// shared across runs and across nodes of the same type.
type Registry struct {
	logger *slog.Logger

	mu        sync.RWMutex
	factories map[string]protocol.ExecutorFactory
	instances map[string]protocol.NodeExecutor
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger.With("module", "registry"),
		factories: make(map[string]protocol.ExecutorFactory),
		instances: make(map[string]protocol.NodeExecutor),
	}
}

// Register adds a factory for its node type. Re-registering a type overwrites
// the previous factory (last registration wins) and discards any cached
// instance built from it.
func (r *Registry) Register(factory protocol.ExecutorFactory) error {
	nodeType := factory.ID()
	if nodeType == "" {
		return errors.New("executor factory has an empty type identifier")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[nodeType]; exists {
		r.logger.Warn("Overwriting executor registration", "node_type", nodeType)
		delete(r.instances, nodeType)
	}

	r.factories[nodeType] = factory

	return nil
}

// GetExecutor returns the cached executor for a node type, creating it on
// first use. Unknown types fail with ErrNotRegistered.
func (r *Registry) GetExecutor(nodeType string) (protocol.NodeExecutor, error) {
	r.mu.RLock()
	instance, cached := r.instances[nodeType]
	r.mu.RUnlock()

	if cached {
		return instance, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under the write lock: another caller may have built it.
	if instance, cached = r.instances[nodeType]; cached {
		return instance, nil
	}

	factory, ok := r.factories[nodeType]
	if !ok {
		return nil, fmt.Errorf("%w for type '%s'", ErrNotRegistered, nodeType)
	}

	instance, err := factory.Create()
	if err != nil {
		return nil, fmt.Errorf("failed to create executor for type '%s': %w", nodeType, err)
	}

	r.instances[nodeType] = instance

	return instance, nil
}

// ListTypes returns the registered node types in sorted order.
func (r *Registry) ListTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for nodeType := range r.factories {
		types = append(types, nodeType)
	}

	sort.Strings(types)

	return types
}

// Info returns the introspection record for one node type.
func (r *Registry) Info(nodeType string) (*ExecutorInfo, error) {
	r.mu.RLock()
	factory, ok := r.factories[nodeType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w for type '%s'", ErrNotRegistered, nodeType)
	}

	executor, err := r.GetExecutor(nodeType)
	if err != nil {
		return nil, err
	}

	return &ExecutorInfo{
		Type:           nodeType,
		Name:           factory.Name(),
		Description:    factory.Description(),
		Category:       factory.Category(),
		RequiredInputs: executor.RequiredInputs(),
		OptionalInputs: executor.OptionalInputs(),
		ConfigSchema:   factory.ConfigSchema(),
		OutputSchema:   executor.OutputSchema(),
	}, nil
}

// Catalog returns introspection records for every registered type, sorted by
// type identifier.
func (r *Registry) Catalog() ([]*ExecutorInfo, error) {
	infos := make([]*ExecutorInfo, 0, len(r.ListTypes()))

	for _, nodeType := range r.ListTypes() {
		info, err := r.Info(nodeType)
		if err != nil {
			return nil, err
		}

		infos = append(infos, info)
	}

	return infos, nil
}
