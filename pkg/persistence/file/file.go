// Package file provides file-based persistence for workflow definitions and
// execution records. Documents are stored as JSON, one file per entity.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sutraflow/sutra/pkg/models"
	"github.com/sutraflow/sutra/pkg/persistence"
)

const (
	workflowsDir  = "workflows"
	executionsDir = "executions"

	dirPerm  = 0o750
	filePerm = 0o600
)

// Persistence implements persistence.Persistence on the file system.
type Persistence struct {
	root string
	mu   sync.Mutex
}

// NewPersistence creates a file persistence layer rooted at the given
// directory. A "file://" prefix is accepted and stripped.
func NewPersistence(root string) (*Persistence, error) {
	cleanRoot := strings.TrimPrefix(root, "file://")

	for _, dir := range []string{workflowsDir, executionsDir} {
		if err := os.MkdirAll(filepath.Join(cleanRoot, dir), dirPerm); err != nil {
			return nil, fmt.Errorf("failed to prepare storage directory: %w", err)
		}
	}

	return &Persistence{root: cleanRoot}, nil
}

func (p *Persistence) Workflows(_ context.Context) ([]*models.WorkflowGraph, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var workflows []*models.WorkflowGraph

	err := p.readAll(workflowsDir, func(data []byte) error {
		var workflow models.WorkflowGraph
		if err := json.Unmarshal(data, &workflow); err != nil {
			return err
		}

		workflows = append(workflows, &workflow)

		return nil
	})
	if err != nil {
		return nil, persistence.NewStorageError("Workflows", "all", err)
	}

	return workflows, nil
}

func (p *Persistence) SaveWorkflow(_ context.Context, workflow *models.WorkflowGraph) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if workflow.ID == "" {
		return persistence.NewStorageError("SaveWorkflow", "", errors.New("workflow id is required"))
	}

	if err := p.write(workflowsDir, workflow.ID, workflow); err != nil {
		return persistence.NewStorageError("SaveWorkflow", workflow.ID, err)
	}

	return nil
}

func (p *Persistence) WorkflowByID(_ context.Context, id string) (*models.WorkflowGraph, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var workflow models.WorkflowGraph

	if err := p.read(workflowsDir, id, &workflow); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, persistence.NewStorageError("WorkflowByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, persistence.NewStorageError("WorkflowByID", id, err)
	}

	return &workflow, nil
}

func (p *Persistence) DeleteWorkflow(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := os.Remove(p.path(workflowsDir, id))
	if errors.Is(err, fs.ErrNotExist) {
		return persistence.NewStorageError("DeleteWorkflow", id, persistence.ErrWorkflowNotFound)
	}

	if err != nil {
		return persistence.NewStorageError("DeleteWorkflow", id, err)
	}

	return nil
}

func (p *Persistence) Executions(_ context.Context) ([]*models.WorkflowExecution, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var executions []*models.WorkflowExecution

	err := p.readAll(executionsDir, func(data []byte) error {
		var execution models.WorkflowExecution
		if err := json.Unmarshal(data, &execution); err != nil {
			return err
		}

		executions = append(executions, &execution)

		return nil
	})
	if err != nil {
		return nil, persistence.NewStorageError("Executions", "all", err)
	}

	return executions, nil
}

func (p *Persistence) SaveExecution(_ context.Context, execution *models.WorkflowExecution) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if execution.ID == "" {
		return persistence.NewStorageError("SaveExecution", "", errors.New("execution id is required"))
	}

	if err := p.write(executionsDir, execution.ID, execution); err != nil {
		return persistence.NewStorageError("SaveExecution", execution.ID, err)
	}

	return nil
}

func (p *Persistence) ExecutionByID(_ context.Context, id string) (*models.WorkflowExecution, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var execution models.WorkflowExecution

	if err := p.read(executionsDir, id, &execution); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, persistence.NewStorageError("ExecutionByID", id, persistence.ErrExecutionNotFound)
		}

		return nil, persistence.NewStorageError("ExecutionByID", id, err)
	}

	return &execution, nil
}

func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); err != nil {
		return fmt.Errorf("storage root unavailable: %w", err)
	}

	return nil
}

// Close performs any necessary cleanup. File persistence has nothing to
// release.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

func (p *Persistence) path(dir, id string) string {
	// filepath.Base guards against path traversal through entity ids.
	return filepath.Join(p.root, dir, filepath.Base(id)+".json")
}

func (p *Persistence) write(dir, id string, entity any) error {
	data, err := json.MarshalIndent(entity, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(p.path(dir, id), data, filePerm)
}

func (p *Persistence) read(dir, id string, entity any) error {
	data, err := os.ReadFile(p.path(dir, id))
	if err != nil {
		return err
	}

	return json.Unmarshal(data, entity)
}

func (p *Persistence) readAll(dir string, visit func(data []byte) error) error {
	root := os.DirFS(filepath.Join(p.root, dir))

	files, err := fs.Glob(root, "*.json")
	if err != nil {
		return err
	}

	for _, file := range files {
		data, err := fs.ReadFile(root, file)
		if err != nil {
			return err
		}

		if err := visit(data); err != nil {
			return fmt.Errorf("failed to decode %s: %w", file, err)
		}
	}

	return nil
}
