// Package intake receives external events and resumes the paused
// executions waiting for them. Matching is two-phase: a coarse repository
// lookup on event type and discriminators, then the per-record match
// condition evaluated against the payload. A waiting execution is claimed
// with a conditional status transition before any resume work happens, so
// an event delivered twice resumes each execution at most once.
package intake

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chainreact/chainreact/pkg/engine"
	"github.com/chainreact/chainreact/pkg/eventbus"
	"github.com/chainreact/chainreact/pkg/events"
	"github.com/chainreact/chainreact/pkg/models"
	"github.com/chainreact/chainreact/pkg/otelhelper"
	"github.com/chainreact/chainreact/pkg/persistence"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// IncomingEvent is one external event submitted to the intake.
type IncomingEvent struct {
	EventType   models.WaitEventType `json:"event_type"   validate:"required,oneof=webhook custom_event integration_event human_response"`
	Provider    string               `json:"provider,omitempty"`
	WebhookPath string               `json:"webhook_path,omitempty"`
	EventName   string               `json:"event_name,omitempty"`
	Payload     map[string]any       `json:"payload"`
}

// Result reports what one submitted event did.
type Result struct {
	Candidates int `json:"candidates"`
	Matched    int `json:"matched"`
	Resumed    int `json:"resumed"`
	Failed     int `json:"failed"`
}

// Service matches incoming events against waiting executions and resumes
// the ones that match.
type Service struct {
	persistence persistence.Persistence
	engine      *engine.Engine
	eventBus    eventbus.EventPublisher
	tracer      trace.Tracer
	logger      *slog.Logger
}

func NewService(
	persistence persistence.Persistence,
	eng *engine.Engine,
	eventBus eventbus.EventPublisher,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Service {
	return &Service{
		persistence: persistence,
		engine:      eng,
		eventBus:    eventBus,
		tracer:      tracer,
		logger:      logger.With("module", "intake"),
	}
}

// SubmitEvent processes one external event. Every matching waiting
// execution is resumed independently: a failure while resuming one does
// not stop the others, it only shows up in the failed count.
func (s *Service) SubmitEvent(ctx context.Context, event IncomingEvent) (*Result, error) {
	if s.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, s.tracer, "intake.submit_event",
			attribute.String(otelhelper.WaitEventTypeKey, string(event.EventType)),
		)
		defer span.End()
	}

	candidates, err := s.persistence.WaitingExecutionRepository().FindWaiting(ctx, persistence.WaitingFilter{
		EventType:   event.EventType,
		Provider:    event.Provider,
		WebhookPath: event.WebhookPath,
		EventName:   event.EventName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up waiting executions: %w", err)
	}

	result := &Result{Candidates: len(candidates)}

	for _, waiting := range candidates {
		if !waiting.MatchCondition.Matches(event.Payload) {
			continue
		}

		result.Matched++

		won, err := s.persistence.WaitingExecutionRepository().MarkResumed(ctx, waiting.ID, models.ResumeReasonEvent)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to claim waiting execution",
				"waiting_execution_id", waiting.ID, "error", err)

			result.Failed++

			continue
		}

		if !won {
			// Someone else resumed, timed out or cancelled it first.
			continue
		}

		err = s.resume(ctx, waiting, event.Payload, models.ResumeReasonEvent)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to resume execution",
				"execution_id", waiting.ExecutionID,
				"waiting_execution_id", waiting.ID,
				"error", err)

			result.Failed++

			continue
		}

		result.Resumed++
	}

	s.logger.InfoContext(ctx, "Processed incoming event",
		"wait_event_type", event.EventType,
		"candidates", result.Candidates,
		"matched", result.Matched,
		"resumed", result.Resumed,
		"failed", result.Failed,
	)

	return result, nil
}

// resume continues a claimed waiting execution: the paused node's
// successors run against the persisted snapshot with the event payload
// exposed as the event bucket. A wait that paused a terminal node simply
// completes the execution.
func (s *Service) resume(
	ctx context.Context,
	waiting *models.WaitingExecution,
	payload map[string]any,
	reason string,
) error {
	execution, err := s.persistence.ExecutionRepository().GetByID(ctx, waiting.ExecutionID)
	if err != nil {
		return err
	}

	if execution.Status != models.ExecutionStatusPaused {
		return fmt.Errorf("execution %s is %s, not paused", execution.ID, execution.Status)
	}

	// Resume walks the workflow as it is defined now, not as it was when
	// the pause happened. Edits made while an execution waits apply to its
	// remaining nodes.
	workflow, err := s.persistence.WorkflowRepository().GetByID(ctx, waiting.WorkflowID)
	if err != nil {
		return err
	}

	state := waiting.ExecutionData
	if state == nil {
		state = models.NewExecutionState(nil, workflow.Variables)
	}

	state.Event = payload

	// The paused node's own output is the event payload.
	state.SetOutput(waiting.NodeID, payload)

	s.publishResumed(ctx, workflow.ID, execution.ID, waiting, reason)

	successors := workflow.SuccessorIDs(waiting.NodeID)
	if len(successors) == 0 {
		return s.completeDirectly(ctx, execution)
	}

	_, err = s.engine.Run(ctx, workflow, execution, successors, state)

	return err
}

// completeDirectly finishes an execution whose paused node had no
// successors; there is nothing left to walk.
func (s *Service) completeDirectly(ctx context.Context, execution *models.Execution) error {
	completedAt := time.Now().UTC()
	execution.Status = models.ExecutionStatusCompleted
	execution.PausedNodeID = nil
	execution.CompletedAt = &completedAt

	return s.persistence.ExecutionRepository().Update(ctx, execution)
}

func (s *Service) publishResumed(
	ctx context.Context,
	workflowID, executionID string,
	waiting *models.WaitingExecution,
	reason string,
) {
	if s.eventBus == nil {
		return
	}

	err := s.eventBus.Publish(ctx, executionID, events.ExecutionResumed{
		BaseEvent: events.BaseEvent{
			ID:         uuid.New().String(),
			Type:       events.ExecutionResumedEvent,
			Timestamp:  time.Now().UTC(),
			WorkflowID: workflowID,
		},
		ExecutionID:        executionID,
		NodeID:             waiting.NodeID,
		WaitingExecutionID: waiting.ID,
		ResumeReason:       reason,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to publish execution resumed event", "error", err)
	}
}
