// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"log/slog"

	"github.com/sutraflow/sutra/pkg/registry"
)

// NewRegistry builds an executor registry with all built-in node types
// registered.
func NewRegistry(logger *slog.Logger) *registry.Registry {
	reg := registry.NewRegistry(logger)

	if err := reg.RegisterDefaultExecutors(); err != nil {
		panic(err)
	}

	return reg
}
