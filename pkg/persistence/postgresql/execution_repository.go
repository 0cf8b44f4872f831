package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chainreact/chainreact/pkg/models"
	"github.com/chainreact/chainreact/pkg/persistence"
)

// ExecutionRepository handles execution records and progress snapshots.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

const executionColumns = `
	id
  , workflow_id
  , user_id
  , status
  , paused_node_id
  , failed_node_id
  , error_message
  , started_at
  , completed_at
`

func (r *ExecutionRepository) Create(ctx context.Context, execution *models.Execution) error {
	query := `
		INSERT INTO executions (id, workflow_id, user_id, status, paused_node_id, failed_node_id, error_message, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		execution.ID,
		execution.WorkflowID,
		execution.UserID,
		string(execution.Status),
		execution.PausedNodeID,
		execution.FailedNodeID,
		execution.ErrorMessage,
		execution.StartedAt,
		execution.CompletedAt,
	)
	if err != nil {
		return persistence.NewExecutionError("Create", execution.ID, err)
	}

	return nil
}

func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.Execution, error) {
	query := `SELECT ` + executionColumns + ` FROM executions WHERE id = $1`

	var (
		execution models.Execution
		status    string
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&execution.ID,
		&execution.WorkflowID,
		&execution.UserID,
		&status,
		&execution.PausedNodeID,
		&execution.FailedNodeID,
		&execution.ErrorMessage,
		&execution.StartedAt,
		&execution.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewExecutionError("GetByID", id, persistence.ErrExecutionNotFound)
		}

		return nil, persistence.NewExecutionError("GetByID", id, err)
	}

	execution.Status = models.ExecutionStatus(status)

	return &execution, nil
}

func (r *ExecutionRepository) Update(ctx context.Context, execution *models.Execution) error {
	err := r.update(ctx, r.db, execution)
	if err != nil {
		return persistence.NewExecutionError("Update", execution.ID, err)
	}

	return nil
}

func (r *ExecutionRepository) update(ctx context.Context, db execer, execution *models.Execution) error {
	query := `
		UPDATE executions SET
			status = $1,
			paused_node_id = $2,
			failed_node_id = $3,
			error_message = $4,
			completed_at = $5
		WHERE id = $6
	`

	result, err := db.ExecContext(ctx, query,
		string(execution.Status),
		execution.PausedNodeID,
		execution.FailedNodeID,
		execution.ErrorMessage,
		execution.CompletedAt,
		execution.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return persistence.ErrExecutionNotFound
	}

	return nil
}

func (r *ExecutionRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	query := `SELECT ` + executionColumns + ` FROM executions WHERE workflow_id = $1 ORDER BY started_at DESC`

	rows, err := r.db.QueryContext(ctx, query, workflowID)
	if err != nil {
		return nil, persistence.NewExecutionError("ListByWorkflow", "", err)
	}

	defer func() {
		closeErr := rows.Close()
		if closeErr != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", closeErr)
		}
	}()

	executions := make([]*models.Execution, 0)

	for rows.Next() {
		var (
			execution models.Execution
			status    string
		)

		err = rows.Scan(
			&execution.ID,
			&execution.WorkflowID,
			&execution.UserID,
			&status,
			&execution.PausedNodeID,
			&execution.FailedNodeID,
			&execution.ErrorMessage,
			&execution.StartedAt,
			&execution.CompletedAt,
		)
		if err != nil {
			return nil, persistence.NewExecutionError("ListByWorkflow", "", err)
		}

		execution.Status = models.ExecutionStatus(status)
		executions = append(executions, &execution)
	}

	err = rows.Err()
	if err != nil {
		return nil, persistence.NewExecutionError("ListByWorkflow", "", err)
	}

	return executions, nil
}

func (r *ExecutionRepository) SaveProgress(ctx context.Context, progress *models.ExecutionProgress) error {
	nodeStatuses, err := marshalJSON(progress.NodeStatuses)
	if err != nil {
		return persistence.NewExecutionError("SaveProgress", progress.ExecutionID, err)
	}

	nodeResults, err := marshalJSON(progress.NodeResults)
	if err != nil {
		return persistence.NewExecutionError("SaveProgress", progress.ExecutionID, err)
	}

	completedNodes, err := json.Marshal(progress.CompletedNodes)
	if err != nil {
		return persistence.NewExecutionError("SaveProgress", progress.ExecutionID, err)
	}

	query := `
		INSERT INTO execution_progress (execution_id, node_statuses, node_results, completed_nodes, current_node_id, percent, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (execution_id) DO UPDATE SET
			node_statuses = EXCLUDED.node_statuses,
			node_results = EXCLUDED.node_results,
			completed_nodes = EXCLUDED.completed_nodes,
			current_node_id = EXCLUDED.current_node_id,
			percent = EXCLUDED.percent,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		progress.ExecutionID,
		nodeStatuses,
		nodeResults,
		completedNodes,
		progress.CurrentNodeID,
		progress.Percent,
		progress.UpdatedAt,
	)
	if err != nil {
		return persistence.NewExecutionError("SaveProgress", progress.ExecutionID, err)
	}

	return nil
}

func (r *ExecutionRepository) GetProgress(ctx context.Context, executionID string) (*models.ExecutionProgress, error) {
	query := `
		SELECT execution_id, node_statuses, node_results, completed_nodes, current_node_id, percent, updated_at
		FROM execution_progress
		WHERE execution_id = $1
	`

	var (
		progress       models.ExecutionProgress
		nodeStatuses   []byte
		nodeResults    []byte
		completedNodes []byte
	)

	err := r.db.QueryRowContext(ctx, query, executionID).Scan(
		&progress.ExecutionID,
		&nodeStatuses,
		&nodeResults,
		&completedNodes,
		&progress.CurrentNodeID,
		&progress.Percent,
		&progress.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewExecutionError("GetProgress", executionID, persistence.ErrProgressNotFound)
		}

		return nil, persistence.NewExecutionError("GetProgress", executionID, err)
	}

	err = json.Unmarshal(nodeStatuses, &progress.NodeStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal node statuses: %w", err)
	}

	err = json.Unmarshal(nodeResults, &progress.NodeResults)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal node results: %w", err)
	}

	err = json.Unmarshal(completedNodes, &progress.CompletedNodes)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal completed nodes: %w", err)
	}

	return &progress, nil
}
