// Package file provides file-based persistence for workflows, executions
// and waiting executions. It is intended for development and tests; the
// atomicity primitives are backed by a process-wide mutex rather than
// database transactions.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chainreact/chainreact/pkg/models"
	"github.com/chainreact/chainreact/pkg/persistence"
)

// Persistence implements persistence.Persistence on the local file system.
type Persistence struct {
	root          string
	mu            sync.Mutex
	workflowRepo  *WorkflowRepository
	executionRepo *ExecutionRepository
	waitingRepo   *WaitingExecutionRepository
}

// NewPersistence creates a file persistence rooted at the given directory.
// A "file://" prefix on the root is accepted and stripped.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	p := &Persistence{root: cleanRoot}
	p.workflowRepo = &WorkflowRepository{persistence: p}
	p.executionRepo = &ExecutionRepository{persistence: p}
	p.waitingRepo = &WaitingExecutionRepository{persistence: p}

	return p
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflowRepo
}

func (p *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return p.executionRepo
}

func (p *Persistence) WaitingExecutionRepository() persistence.WaitingExecutionRepository {
	return p.waitingRepo
}

// PauseExecution writes the waiting execution record and the paused
// execution together under the persistence mutex.
func (p *Persistence) PauseExecution(ctx context.Context, execution *models.Execution, waiting *models.WaitingExecution) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.writeJSON("waiting", waiting.ID, waiting)
	if err != nil {
		return persistence.NewExecutionError("PauseExecution", execution.ID, err)
	}

	err = p.writeJSON("executions", execution.ID, execution)
	if err != nil {
		// Roll the waiting record back so a failed pause leaves no partial state.
		removeErr := os.Remove(p.entityPath("waiting", waiting.ID))
		if removeErr != nil {
			return fmt.Errorf("failed to roll back waiting execution %s: %w", waiting.ID, removeErr)
		}

		return persistence.NewExecutionError("PauseExecution", execution.ID, err)
	}

	return nil
}

// HealthCheck verifies the root directory is usable.
func (p *Persistence) HealthCheck(_ context.Context) error {
	err := os.MkdirAll(p.root, 0o755)
	if err != nil {
		return fmt.Errorf("persistence root %s is not writable: %w", p.root, err)
	}

	return nil
}

// Close is a no-op for file persistence.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

func (p *Persistence) entityPath(kind, id string) string {
	return filepath.Join(p.root, kind, id+".json")
}

func (p *Persistence) writeJSON(kind, id string, entity any) error {
	dir := filepath.Join(p.root, kind)

	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return fmt.Errorf("failed to create %s directory: %w", kind, err)
	}

	raw, err := json.MarshalIndent(entity, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s %s: %w", kind, id, err)
	}

	err = os.WriteFile(p.entityPath(kind, id), raw, 0o644)
	if err != nil {
		return fmt.Errorf("failed to write %s %s: %w", kind, id, err)
	}

	return nil
}

func readJSON[T any](p *Persistence, kind, id string) (*T, error) {
	raw, err := os.ReadFile(p.entityPath(kind, id))
	if err != nil {
		return nil, err
	}

	entity := new(T)

	err = json.Unmarshal(raw, entity)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s %s: %w", kind, id, err)
	}

	return entity, nil
}

func listJSON[T any](p *Persistence, kind string) ([]*T, error) {
	dir := filepath.Join(p.root, kind)

	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read %s directory: %w", kind, err)
	}

	entities := make([]*T, 0, len(files))

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(file.Name(), ".json")

		entity, err := readJSON[T](p, kind, id)
		if err != nil {
			return nil, err
		}

		entities = append(entities, entity)
	}

	return entities, nil
}

func now() time.Time {
	return time.Now().UTC()
}
