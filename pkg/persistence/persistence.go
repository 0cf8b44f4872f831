// Package persistence provides the data storage abstraction for workflows,
// executions and waiting executions. The engine and the event intake are
// the only writers of execution and waiting-execution status.
package persistence

import (
	"context"
	"time"

	"github.com/chainreact/chainreact/pkg/models"
)

// ListWorkflowsOptions filters and pages workflow listings.
type ListWorkflowsOptions struct {
	UserID string
	Status *models.WorkflowStatus
	Limit  int
	Offset int
}

// WaitingFilter is the coarse index lookup for open waiting executions:
// event type plus the discriminators embedded in each record's event
// config. Empty discriminators match records that did not set them.
type WaitingFilter struct {
	EventType   models.WaitEventType
	Provider    string
	WebhookPath string
	EventName   string
}

// WorkflowRepository stores workflow definitions.
type WorkflowRepository interface {
	List(ctx context.Context, opts ListWorkflowsOptions) ([]*models.Workflow, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
}

// ExecutionRepository stores execution records and their progress state.
type ExecutionRepository interface {
	Create(ctx context.Context, execution *models.Execution) error
	GetByID(ctx context.Context, id string) (*models.Execution, error)
	Update(ctx context.Context, execution *models.Execution) error
	ListByWorkflow(ctx context.Context, workflowID string) ([]*models.Execution, error)

	SaveProgress(ctx context.Context, progress *models.ExecutionProgress) error
	GetProgress(ctx context.Context, executionID string) (*models.ExecutionProgress, error)
}

// WaitingExecutionRepository stores suspended executions. MarkResumed is
// the one required atomic primitive in the system: it transitions a record
// from waiting to resumed iff it is currently waiting and reports whether
// this call won the transition. Implementations must use a conditional
// update, not a read-then-write pair.
type WaitingExecutionRepository interface {
	Create(ctx context.Context, waiting *models.WaitingExecution) error
	GetByID(ctx context.Context, id string) (*models.WaitingExecution, error)
	GetOpenByExecution(ctx context.Context, executionID string) (*models.WaitingExecution, error)
	FindWaiting(ctx context.Context, filter WaitingFilter) ([]*models.WaitingExecution, error)
	FindExpired(ctx context.Context, now time.Time) ([]*models.WaitingExecution, error)
	MarkResumed(ctx context.Context, id, reason string) (bool, error)
}

// Persistence aggregates the repositories behind one backend.
//
// PauseExecution writes the waiting execution record and the paused
// execution status together: either both are committed or neither is. This
// is a correctness requirement, not a nicety.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ExecutionRepository() ExecutionRepository
	WaitingExecutionRepository() WaitingExecutionRepository

	PauseExecution(ctx context.Context, execution *models.Execution, waiting *models.WaitingExecution) error

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
