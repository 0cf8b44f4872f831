package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chainreact/chainreact/pkg/models"
	"github.com/chainreact/chainreact/pkg/persistence"
)

// WaitingExecutionRepository stores suspended executions. MarkResumed uses
// a conditional UPDATE and checks the affected-row count: two concurrent
// claims on the same record race on the WHERE clause, not in application
// code, so exactly one wins.
type WaitingExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

const waitingColumns = `
	id
  , execution_id
  , workflow_id
  , user_id
  , node_id
  , event_type
  , provider
  , webhook_path
  , event_name
  , match_condition
  , execution_data
  , status
  , resume_reason
  , timeout_at
  , timeout_action
  , created_at
  , resumed_at
`

func (r *WaitingExecutionRepository) Create(ctx context.Context, waiting *models.WaitingExecution) error {
	return r.insert(ctx, r.db, waiting)
}

func (r *WaitingExecutionRepository) insert(ctx context.Context, db execer, waiting *models.WaitingExecution) error {
	matchCondition, err := marshalJSON(waiting.MatchCondition)
	if err != nil {
		return err
	}

	executionData, err := marshalJSON(waiting.ExecutionData)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO waiting_executions (id, execution_id, workflow_id, user_id, node_id, event_type, provider, webhook_path, event_name, match_condition, execution_data, status, resume_reason, timeout_at, timeout_action, created_at, resumed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err = db.ExecContext(ctx, query,
		waiting.ID,
		waiting.ExecutionID,
		waiting.WorkflowID,
		waiting.UserID,
		waiting.NodeID,
		string(waiting.EventType),
		waiting.EventConfig.Provider,
		waiting.EventConfig.WebhookPath,
		waiting.EventConfig.EventName,
		matchCondition,
		executionData,
		string(waiting.Status),
		waiting.ResumeReason,
		waiting.TimeoutAt,
		string(waiting.TimeoutAction),
		waiting.CreatedAt,
		waiting.ResumedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert waiting execution %s: %w", waiting.ID, err)
	}

	return nil
}

func (r *WaitingExecutionRepository) GetByID(ctx context.Context, id string) (*models.WaitingExecution, error) {
	query := `SELECT ` + waitingColumns + ` FROM waiting_executions WHERE id = $1`

	waiting, err := scanWaiting(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrWaitingExecutionNotFound
		}

		return nil, err
	}

	return waiting, nil
}

func (r *WaitingExecutionRepository) GetOpenByExecution(ctx context.Context, executionID string) (*models.WaitingExecution, error) {
	query := `SELECT ` + waitingColumns + ` FROM waiting_executions WHERE execution_id = $1 AND status = 'waiting'`

	waiting, err := scanWaiting(r.db.QueryRowContext(ctx, query, executionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrWaitingExecutionNotFound
		}

		return nil, err
	}

	return waiting, nil
}

func (r *WaitingExecutionRepository) FindWaiting(ctx context.Context, filter persistence.WaitingFilter) ([]*models.WaitingExecution, error) {
	query := `
		SELECT ` + waitingColumns + `
		FROM waiting_executions
		WHERE status = 'waiting'
		  AND event_type = $1
		  AND provider = $2
		  AND webhook_path = $3
		  AND event_name = $4
		ORDER BY created_at ASC
	`

	return r.queryWaiting(ctx, query,
		string(filter.EventType), filter.Provider, filter.WebhookPath, filter.EventName)
}

func (r *WaitingExecutionRepository) FindExpired(ctx context.Context, now time.Time) ([]*models.WaitingExecution, error) {
	query := `
		SELECT ` + waitingColumns + `
		FROM waiting_executions
		WHERE status = 'waiting' AND timeout_at IS NOT NULL AND timeout_at < $1
		ORDER BY timeout_at ASC
	`

	return r.queryWaiting(ctx, query, now)
}

// MarkResumed transitions a record from waiting to resumed iff it is still
// waiting, and reports whether this call won the transition.
func (r *WaitingExecutionRepository) MarkResumed(ctx context.Context, id, reason string) (bool, error) {
	query := `
		UPDATE waiting_executions
		SET status = 'resumed', resume_reason = $1, resumed_at = $2
		WHERE id = $3 AND status = 'waiting'
	`

	result, err := r.db.ExecContext(ctx, query, reason, time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("failed to mark waiting execution %s resumed: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows for waiting execution %s: %w", id, err)
	}

	return affected == 1, nil
}

func (r *WaitingExecutionRepository) queryWaiting(ctx context.Context, query string, args ...any) ([]*models.WaitingExecution, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query waiting executions: %w", err)
	}

	defer func() {
		closeErr := rows.Close()
		if closeErr != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", closeErr)
		}
	}()

	waitingExecutions := make([]*models.WaitingExecution, 0)

	for rows.Next() {
		waiting, err := scanWaiting(rows)
		if err != nil {
			return nil, err
		}

		waitingExecutions = append(waitingExecutions, waiting)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating waiting executions: %w", err)
	}

	return waitingExecutions, nil
}

func scanWaiting(row rowScanner) (*models.WaitingExecution, error) {
	var (
		waiting        models.WaitingExecution
		eventType      string
		matchCondition []byte
		executionData  []byte
		status         string
		timeoutAction  sql.NullString
	)

	err := row.Scan(
		&waiting.ID,
		&waiting.ExecutionID,
		&waiting.WorkflowID,
		&waiting.UserID,
		&waiting.NodeID,
		&eventType,
		&waiting.EventConfig.Provider,
		&waiting.EventConfig.WebhookPath,
		&waiting.EventConfig.EventName,
		&matchCondition,
		&executionData,
		&status,
		&waiting.ResumeReason,
		&waiting.TimeoutAt,
		&timeoutAction,
		&waiting.CreatedAt,
		&waiting.ResumedAt,
	)
	if err != nil {
		return nil, err
	}

	waiting.EventType = models.WaitEventType(eventType)
	waiting.Status = models.WaitStatus(status)

	if timeoutAction.Valid {
		waiting.TimeoutAction = models.TimeoutAction(timeoutAction.String)
	}

	if len(matchCondition) > 0 {
		err = json.Unmarshal(matchCondition, &waiting.MatchCondition)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal match condition: %w", err)
		}
	}

	if len(executionData) > 0 {
		err = json.Unmarshal(executionData, &waiting.ExecutionData)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal execution data: %w", err)
		}
	}

	return &waiting, nil
}
