package main

import (
	"context"
	"log/slog"
	"os"
	"testing"

	logaction "github.com/chainreact/chainreact/pkg/actions/log"
	"github.com/chainreact/chainreact/pkg/actions/trigger"
	"github.com/chainreact/chainreact/pkg/eventbus"
	"github.com/chainreact/chainreact/pkg/events"
	"github.com/chainreact/chainreact/pkg/models"
	"github.com/chainreact/chainreact/pkg/persistence/file"
	"github.com/chainreact/chainreact/pkg/registry"
	"github.com/chainreact/chainreact/pkg/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingEventBus records publishes and drops everything else.
type capturingEventBus struct {
	published []eventbus.Event
}

func (b *capturingEventBus) Publish(_ context.Context, _ string, event eventbus.Event) error {
	b.published = append(b.published, event)

	return nil
}

func (b *capturingEventBus) Handle(_ events.EventType, _ eventbus.EventHandler) {}

func (b *capturingEventBus) Subscribe(_ context.Context) error { return nil }

func (b *capturingEventBus) Close() error { return nil }

func (b *capturingEventBus) GenerateID() string { return "test-event-id" }

func setupWorkerManager(t *testing.T) (*WorkerManager, *file.Persistence, *capturingEventBus) {
	t.Helper()

	persistence := file.NewPersistence(t.TempDir())
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	reg := registry.NewRegistry(logger)
	reg.RegisterAction(trigger.NewManualFactory())
	reg.RegisterAction(logaction.NewActionFactory())

	bus := &capturingEventBus{}

	return NewWorkerManager("test-worker-1", persistence, bus, logger, reg), persistence, bus
}

func TestNewWorkerManager(t *testing.T) {
	manager, persistence, bus := setupWorkerManager(t)

	assert.NotNil(t, manager)
	assert.Equal(t, "test-worker-1", manager.id)
	assert.Equal(t, persistence, manager.persistence)
	assert.Equal(t, eventbus.EventBus(bus), manager.eventBus)
	assert.NotNil(t, manager.logger)
}

func TestWorkerManager_HandleWorkflowTriggered_InvalidEvent(t *testing.T) {
	manager, _, _ := setupWorkerManager(t)

	// Undecodable events are dropped, not retried.
	err := manager.handleWorkflowTriggered(context.Background(), "invalid-event")
	assert.NoError(t, err)
}

func TestWorkerManager_HandleWorkflowTriggered_MissingExecutionID(t *testing.T) {
	manager, _, _ := setupWorkerManager(t)

	err := manager.handleWorkflowTriggered(context.Background(), &events.WorkflowTriggered{
		BaseEvent: events.BaseEvent{
			ID:         "evt-1",
			Type:       events.WorkflowTriggeredEvent,
			WorkflowID: "wf-1",
		},
	})
	assert.NoError(t, err)
}

func TestWorkerManager_HandleWorkflowTriggered_RunsExecution(t *testing.T) {
	manager, persistence, bus := setupWorkerManager(t)
	ctx := context.Background()

	workflow := testutil.LinearWorkflow("start", "step")
	require.NoError(t, persistence.WorkflowRepository().Save(ctx, workflow))

	execution := &models.Execution{
		ID:         uuid.New().String(),
		WorkflowID: workflow.ID,
		UserID:     "user-1",
		Status:     models.ExecutionStatusRunning,
	}
	require.NoError(t, persistence.ExecutionRepository().Create(ctx, execution))

	err := manager.handleWorkflowTriggered(ctx, &events.WorkflowTriggered{
		BaseEvent: events.BaseEvent{
			ID:         "evt-1",
			Type:       events.WorkflowTriggeredEvent,
			WorkflowID: workflow.ID,
			Metadata:   map[string]any{"execution_id": execution.ID},
		},
		UserID:        "user-1",
		TriggerNodeID: "start",
		TriggerData:   map[string]any{"k": "v"},
	})
	require.NoError(t, err)

	loaded, err := persistence.ExecutionRepository().GetByID(ctx, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, loaded.Status)

	// The run publishes lifecycle events along the way.
	var types []events.EventType
	for _, event := range bus.published {
		types = append(types, event.GetType())
	}

	assert.Contains(t, types, events.NodeCompletedEvent)
	assert.Contains(t, types, events.ExecutionCompletedEvent)
}
