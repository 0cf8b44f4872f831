package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chainreact/chainreact/pkg/engine"
	"github.com/chainreact/chainreact/pkg/eventbus"
	"github.com/chainreact/chainreact/pkg/events"
	"github.com/chainreact/chainreact/pkg/models"
	"github.com/chainreact/chainreact/pkg/persistence"
	"github.com/google/uuid"
)

// ErrExecutionNotFound is returned when an execution is not found.
var ErrExecutionNotFound = persistence.ErrExecutionNotFound

// Execution starts, runs, inspects and cancels workflow executions.
// Starting is split from running: Start creates the record and publishes a
// trigger event, a worker picks the event up and calls Run.
type Execution struct {
	persistence persistence.Persistence
	engine      *engine.Engine
	eventBus    eventbus.EventPublisher
	logger      *slog.Logger
}

func NewExecution(
	persistence persistence.Persistence,
	eng *engine.Engine,
	eventBus eventbus.EventPublisher,
	logger *slog.Logger,
) *Execution {
	return &Execution{
		persistence: persistence,
		engine:      eng,
		eventBus:    eventBus,
		logger:      logger.With("module", "execution_service"),
	}
}

// Start creates a running execution for an active workflow and publishes a
// WorkflowTriggered event for a worker to pick up. TriggerData becomes the
// execution's trigger bucket.
func (s *Execution) Start(
	ctx context.Context,
	workflowID, userID string,
	triggerNodeID string,
	triggerData map[string]any,
) (*models.Execution, error) {
	workflow, err := s.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if !workflow.IsExecutable() {
		return nil, ErrWorkflowNotActive
	}

	triggers := workflow.TriggerNodes()

	if triggerNodeID == "" {
		triggerNodeID = triggers[0].ID
	} else {
		found := false

		for _, trigger := range triggers {
			if trigger.ID == triggerNodeID {
				found = true

				break
			}
		}

		if !found {
			return nil, NewValidationError("StartExecution", "INVALID_TRIGGER",
				fmt.Sprintf("node %q is not a trigger of workflow %s", triggerNodeID, workflowID),
				ErrInvalidRequest)
		}
	}

	execution := &models.Execution{
		ID:         uuid.New().String(),
		WorkflowID: workflowID,
		UserID:     userID,
		Status:     models.ExecutionStatusRunning,
		StartedAt:  time.Now().UTC(),
	}

	err = s.persistence.ExecutionRepository().Create(ctx, execution)
	if err != nil {
		return nil, fmt.Errorf("failed to create execution: %w", err)
	}

	if s.eventBus != nil {
		err = s.eventBus.Publish(ctx, execution.ID, events.WorkflowTriggered{
			BaseEvent: events.BaseEvent{
				ID:         uuid.New().String(),
				Type:       events.WorkflowTriggeredEvent,
				Timestamp:  time.Now().UTC(),
				WorkflowID: workflowID,
				Metadata:   map[string]any{"execution_id": execution.ID},
			},
			UserID:        userID,
			TriggerNodeID: triggerNodeID,
			TriggerData:   triggerData,
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to publish workflow triggered event", "error", err)
		}
	}

	return execution, nil
}

// Run executes a fresh execution from its trigger node. Workers call this
// when they consume a WorkflowTriggered event; single-binary deployments
// call it inline.
func (s *Execution) Run(
	ctx context.Context,
	executionID, triggerNodeID string,
	triggerData map[string]any,
) (*engine.RunOutcome, error) {
	execution, err := s.persistence.ExecutionRepository().GetByID(ctx, executionID)
	if err != nil {
		return nil, err
	}

	if execution.Status.IsTerminal() {
		return nil, ErrExecutionTerminal
	}

	workflow, err := s.persistence.WorkflowRepository().GetByID(ctx, execution.WorkflowID)
	if err != nil {
		return nil, err
	}

	if triggerNodeID == "" {
		triggers := workflow.TriggerNodes()
		if len(triggers) == 0 {
			return nil, ErrTriggerNodeRequired
		}

		triggerNodeID = triggers[0].ID
	}

	state := models.NewExecutionState(triggerData, workflow.Variables)

	if s.eventBus != nil {
		err = s.eventBus.Publish(ctx, execution.ID, events.ExecutionStarted{
			BaseEvent: events.BaseEvent{
				ID:         uuid.New().String(),
				Type:       events.ExecutionStartedEvent,
				Timestamp:  time.Now().UTC(),
				WorkflowID: execution.WorkflowID,
			},
			ExecutionID: execution.ID,
			TriggerData: triggerData,
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to publish execution started event", "error", err)
		}
	}

	return s.engine.Run(ctx, workflow, execution, []string{triggerNodeID}, state)
}

// Get retrieves an execution by its ID.
func (s *Execution) Get(ctx context.Context, executionID string) (*models.Execution, error) {
	return s.persistence.ExecutionRepository().GetByID(ctx, executionID)
}

// ListByWorkflow retrieves all executions of one workflow.
func (s *Execution) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	return s.persistence.ExecutionRepository().ListByWorkflow(ctx, workflowID)
}

// GetProgress retrieves per-node progress for an execution.
func (s *Execution) GetProgress(ctx context.Context, executionID string) (*models.ExecutionProgress, error) {
	return s.persistence.ExecutionRepository().GetProgress(ctx, executionID)
}

// Cancel stops an execution. For a paused execution the open waiting
// record is claimed first, so a concurrently arriving event cannot resume
// what the user just cancelled; whoever wins the claim decides the
// outcome.
func (s *Execution) Cancel(ctx context.Context, executionID, reason string) (*models.Execution, error) {
	execution, err := s.persistence.ExecutionRepository().GetByID(ctx, executionID)
	if err != nil {
		return nil, err
	}

	if execution.Status.IsTerminal() {
		return nil, ErrExecutionTerminal
	}

	if execution.Status == models.ExecutionStatusPaused {
		waiting, err := s.persistence.WaitingExecutionRepository().GetOpenByExecution(ctx, executionID)
		if err != nil {
			if persistence.IsWaitingExecutionNotFound(err) {
				// An event or the timeout sweep claimed the wait first;
				// the winner's resume now owns this execution.
				return nil, ErrExecutionNotResumable
			}

			return nil, err
		}

		won, err := s.persistence.WaitingExecutionRepository().MarkResumed(ctx, waiting.ID, models.ResumeReasonCancelled)
		if err != nil {
			return nil, err
		}

		if !won {
			return nil, ErrExecutionNotResumable
		}
	}

	completedAt := time.Now().UTC()
	execution.Status = models.ExecutionStatusCancelled
	execution.CompletedAt = &completedAt

	if reason != "" {
		execution.ErrorMessage = reason
	}

	err = s.persistence.ExecutionRepository().Update(ctx, execution)
	if err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		err = s.eventBus.Publish(ctx, execution.ID, events.ExecutionCancelled{
			BaseEvent: events.BaseEvent{
				ID:         uuid.New().String(),
				Type:       events.ExecutionCancelledEvent,
				Timestamp:  completedAt,
				WorkflowID: execution.WorkflowID,
			},
			ExecutionID: execution.ID,
			Reason:      reason,
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to publish execution cancelled event", "error", err)
		}
	}

	return execution, nil
}
