package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/chainreact/chainreact/pkg/engine"
	"github.com/chainreact/chainreact/pkg/eventbus"
	"github.com/chainreact/chainreact/pkg/events"
	"github.com/chainreact/chainreact/pkg/persistence"
	"github.com/chainreact/chainreact/pkg/registry"
	"github.com/chainreact/chainreact/pkg/services"
	"go.opentelemetry.io/otel/trace"
)

// WorkerManager consumes WorkflowTriggered events and runs the triggered
// executions to completion, pause or failure.
type WorkerManager struct {
	id          string
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	tracer      trace.Tracer
}

func NewWorkerManager(
	id string,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	registry *registry.Registry,
) *WorkerManager {
	return &WorkerManager{
		id:          id,
		logger:      logger.With("module", "chainreact-worker", "worker_id", id),
		persistence: persistence,
		registry:    registry,
		eventBus:    eventBus,
	}
}

func (w *WorkerManager) Start(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting worker manager")

	w.eventBus.Handle(events.WorkflowTriggeredEvent, w.handleWorkflowTriggered)

	err := w.eventBus.Subscribe(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	w.logger.InfoContext(ctx, "Worker started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	w.logger.InfoContext(ctx, "Shutting down worker...")

	return nil
}

func (w *WorkerManager) handleWorkflowTriggered(ctx context.Context, event any) error {
	triggeredEvent, ok := event.(*events.WorkflowTriggered)
	if !ok {
		w.logger.ErrorContext(ctx, "Invalid event type for WorkflowTriggered")

		return nil
	}

	executionID, _ := triggeredEvent.Metadata["execution_id"].(string)
	if executionID == "" {
		w.logger.ErrorContext(ctx, "Workflow triggered event without execution id",
			"workflow_id", triggeredEvent.WorkflowID)

		return nil
	}

	logger := w.logger.With(
		"workflow_id", triggeredEvent.WorkflowID,
		"execution_id", executionID,
		"event_id", triggeredEvent.ID,
	)
	logger.InfoContext(ctx, "Processing workflow triggered event")

	eng := engine.New(engine.Config{
		Registry:    w.registry,
		Persistence: w.persistence,
		EventBus:    w.eventBus,
		Tracer:      w.tracer,
		Logger:      logger,
		WorkerID:    w.id,
	})

	executionService := services.NewExecution(w.persistence, eng, w.eventBus, logger)

	outcome, err := executionService.Run(ctx, executionID, triggeredEvent.TriggerNodeID, triggeredEvent.TriggerData)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to run execution", "error", err)

		return err
	}

	logger.InfoContext(ctx, "Execution run finished", "status", outcome.Status)

	return nil
}
