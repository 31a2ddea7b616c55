package cmd

import (
	"fmt"

	"github.com/sutraflow/sutra/pkg/persistence"
	"github.com/sutraflow/sutra/pkg/persistence/file"
)

// NewPersistence builds the storage layer from a URL. Only file URLs are
// supported; a bare path is treated as a file root.
func NewPersistence(databaseURL string) persistence.Persistence {
	store, err := file.NewPersistence(databaseURL)
	if err != nil {
		panic(fmt.Errorf("failed to initialize persistence at %s: %w", databaseURL, err))
	}

	return store
}
