package file

import (
	"context"
	"os"
	"sort"

	"github.com/chainreact/chainreact/pkg/models"
	"github.com/chainreact/chainreact/pkg/persistence"
)

// ExecutionRepository stores executions under executions/ and their
// progress snapshots under progress/.
type ExecutionRepository struct {
	persistence *Persistence
}

func (r *ExecutionRepository) Create(_ context.Context, execution *models.Execution) error {
	err := r.persistence.writeJSON("executions", execution.ID, execution)
	if err != nil {
		return persistence.NewExecutionError("Create", execution.ID, err)
	}

	return nil
}

func (r *ExecutionRepository) GetByID(_ context.Context, id string) (*models.Execution, error) {
	execution, err := readJSON[models.Execution](r.persistence, "executions", id)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewExecutionError("GetByID", id, persistence.ErrExecutionNotFound)
		}

		return nil, persistence.NewExecutionError("GetByID", id, err)
	}

	return execution, nil
}

func (r *ExecutionRepository) Update(_ context.Context, execution *models.Execution) error {
	_, err := os.Stat(r.persistence.entityPath("executions", execution.ID))
	if err != nil {
		return persistence.NewExecutionError("Update", execution.ID, persistence.ErrExecutionNotFound)
	}

	err = r.persistence.writeJSON("executions", execution.ID, execution)
	if err != nil {
		return persistence.NewExecutionError("Update", execution.ID, err)
	}

	return nil
}

func (r *ExecutionRepository) ListByWorkflow(_ context.Context, workflowID string) ([]*models.Execution, error) {
	all, err := listJSON[models.Execution](r.persistence, "executions")
	if err != nil {
		return nil, persistence.NewExecutionError("ListByWorkflow", "", err)
	}

	executions := make([]*models.Execution, 0, len(all))

	for _, execution := range all {
		if execution.WorkflowID == workflowID {
			executions = append(executions, execution)
		}
	}

	sort.Slice(executions, func(i, j int) bool {
		return executions[i].StartedAt.After(executions[j].StartedAt)
	})

	return executions, nil
}

func (r *ExecutionRepository) SaveProgress(_ context.Context, progress *models.ExecutionProgress) error {
	err := r.persistence.writeJSON("progress", progress.ExecutionID, progress)
	if err != nil {
		return persistence.NewExecutionError("SaveProgress", progress.ExecutionID, err)
	}

	return nil
}

func (r *ExecutionRepository) GetProgress(_ context.Context, executionID string) (*models.ExecutionProgress, error) {
	progress, err := readJSON[models.ExecutionProgress](r.persistence, "progress", executionID)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewExecutionError("GetProgress", executionID, persistence.ErrProgressNotFound)
		}

		return nil, persistence.NewExecutionError("GetProgress", executionID, err)
	}

	return progress, nil
}
