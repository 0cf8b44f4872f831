package intake

import (
	"context"
	"fmt"
	"time"

	"github.com/chainreact/chainreact/pkg/events"
	"github.com/chainreact/chainreact/pkg/models"
	"github.com/google/uuid"
)

// Sweep expires overdue waits. Each expired record is claimed with the
// same conditional transition events use, so a sweep racing an event
// delivery settles on exactly one winner per wait. Returns how many waits
// this sweep settled.
func (s *Service) Sweep(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.persistence.WaitingExecutionRepository().FindExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to look up expired waits: %w", err)
	}

	settled := 0

	for _, waiting := range expired {
		won, err := s.persistence.WaitingExecutionRepository().MarkResumed(ctx, waiting.ID, models.ResumeReasonTimeout)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to claim expired wait",
				"waiting_execution_id", waiting.ID, "error", err)

			continue
		}

		if !won {
			continue
		}

		err = s.expire(ctx, waiting, now)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to expire wait",
				"waiting_execution_id", waiting.ID,
				"execution_id", waiting.ExecutionID,
				"error", err)

			continue
		}

		settled++
	}

	if settled > 0 {
		s.logger.InfoContext(ctx, "Timeout sweep settled waits", "count", settled)
	}

	return settled, nil
}

func (s *Service) expire(ctx context.Context, waiting *models.WaitingExecution, now time.Time) error {
	switch waiting.TimeoutAction {
	case models.TimeoutActionProceed:
		// Resume as if an empty event arrived, flagged so downstream nodes
		// can tell a timeout from a real response.
		return s.resume(ctx, waiting, map[string]any{"timed_out": true}, models.ResumeReasonTimeout)
	default:
		return s.failTimedOut(ctx, waiting, now)
	}
}

// failTimedOut fails the execution with a timeout reason. The failed
// terminal state keeps timeouts distinct from user cancellation.
func (s *Service) failTimedOut(ctx context.Context, waiting *models.WaitingExecution, now time.Time) error {
	execution, err := s.persistence.ExecutionRepository().GetByID(ctx, waiting.ExecutionID)
	if err != nil {
		return err
	}

	if execution.Status.IsTerminal() {
		return nil
	}

	completedAt := now.UTC()
	failedNodeID := waiting.NodeID
	execution.Status = models.ExecutionStatusFailed
	execution.FailedNodeID = &failedNodeID
	execution.ErrorMessage = fmt.Sprintf("wait for %s timed out at node %s", waiting.EventType, waiting.NodeID)
	execution.CompletedAt = &completedAt

	err = s.persistence.ExecutionRepository().Update(ctx, execution)
	if err != nil {
		return err
	}

	if s.eventBus != nil {
		err = s.eventBus.Publish(ctx, execution.ID, events.ExecutionFailed{
			BaseEvent: events.BaseEvent{
				ID:         uuid.New().String(),
				Type:       events.ExecutionFailedEvent,
				Timestamp:  completedAt,
				WorkflowID: execution.WorkflowID,
			},
			ExecutionID: execution.ID,
			NodeID:      waiting.NodeID,
			Error:       execution.ErrorMessage,
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to publish execution failed event", "error", err)
		}
	}

	return nil
}
