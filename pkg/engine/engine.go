// Package engine implements the graph walker: it executes a workflow graph
// from a set of start nodes to completion, pause or failure, threading node
// outputs through the data-flow state. Resuming a paused execution is the
// same walk invoked with the paused node's successors as start nodes and
// the persisted snapshot as initial state; resume logic is not a special
// case.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chainreact/chainreact/pkg/eventbus"
	"github.com/chainreact/chainreact/pkg/events"
	"github.com/chainreact/chainreact/pkg/models"
	"github.com/chainreact/chainreact/pkg/otelhelper"
	"github.com/chainreact/chainreact/pkg/persistence"
	"github.com/chainreact/chainreact/pkg/protocol"
	"github.com/chainreact/chainreact/pkg/registry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Config wires an Engine. EventBus and Tracer are optional.
type Config struct {
	Registry    *registry.Registry
	Persistence persistence.Persistence
	EventBus    eventbus.EventPublisher
	Tracer      trace.Tracer
	Logger      *slog.Logger
	WorkerID    string
}

// Engine walks workflow graphs. One Run call executes one sequential,
// non-preemptive pass; concurrent executions share nothing in memory, only
// the persisted records.
type Engine struct {
	registry    *registry.Registry
	persistence persistence.Persistence
	eventBus    eventbus.EventPublisher
	tracer      trace.Tracer
	logger      *slog.Logger
	workerID    string
}

// RunOutcome reports how a walk ended. Status is one of completed, paused
// or failed.
type RunOutcome struct {
	Status             models.ExecutionStatus
	State              *models.ExecutionState
	PausedNodeID       string
	WaitingExecutionID string
	FailedNodeID       string
	ErrorMessage       string
}

func New(config Config) *Engine {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		registry:    config.Registry,
		persistence: config.Persistence,
		eventBus:    config.EventBus,
		tracer:      config.Tracer,
		logger:      logger.With("module", "engine"),
		workerID:    config.WorkerID,
	}
}

// Run executes the workflow subgraph reachable from startNodeIDs against
// the given state. Node-level failures end the execution as failed and are
// not returned as errors; the error return is reserved for infrastructure
// failures (persistence unavailable, invalid graph), in which case no
// outcome is committed.
func (e *Engine) Run(
	ctx context.Context,
	workflow *models.Workflow,
	execution *models.Execution,
	startNodeIDs []string,
	state *models.ExecutionState,
) (*RunOutcome, error) {
	logger := e.logger.With(
		"workflow_id", workflow.ID,
		"execution_id", execution.ID,
	)

	if e.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, e.tracer, "engine.run",
			attribute.String(otelhelper.WorkflowIDKey, workflow.ID),
			attribute.String(otelhelper.ExecutionIDKey, execution.ID),
		)
		defer span.End()
	}

	order, err := traversalOrder(workflow, startNodeIDs)
	if err != nil {
		return nil, fmt.Errorf("cannot execute workflow %s: %w", workflow.ID, err)
	}

	logger.InfoContext(ctx, "Starting graph walk", "start_nodes", startNodeIDs, "order_size", len(order))

	execution.Status = models.ExecutionStatusRunning
	execution.PausedNodeID = nil

	err = e.persistence.ExecutionRepository().Update(ctx, execution)
	if err != nil {
		return nil, err
	}

	tracker := NewProgressTracker(ctx, e.persistence.ExecutionRepository(), execution.ID, order)

	activated := make(map[string]bool, len(startNodeIDs))
	for _, id := range startNodeIDs {
		activated[id] = true
	}

	// Field mappings carried on activated edges, applied when the target's
	// config is resolved.
	pendingMappings := make(map[string]map[string]string)

	for _, nodeID := range order {
		if !activated[nodeID] {
			continue
		}

		node, found := workflow.NodeByID(nodeID)
		if !found {
			return nil, fmt.Errorf("node %s not found in workflow %s", nodeID, workflow.ID)
		}

		if node.IsStructural() {
			// Editor-only nodes pass activation through unchanged.
			for _, edge := range workflow.EdgesFrom(node.ID) {
				e.activate(edge, activated, pendingMappings)
			}

			tracker.Skip(node.ID)

			continue
		}

		tracker.Start(ctx, node.ID)

		started := time.Now()
		result, nodeErr := e.executeNode(ctx, execution, node, state, pendingMappings[node.ID])
		duration := time.Since(started)

		if nodeErr != nil {
			logger.ErrorContext(ctx, "Node execution failed", "node_id", node.ID, "error", nodeErr)

			return e.fail(ctx, workflow, execution, tracker, node.ID, nodeErr, duration)
		}

		if result.Pause != nil {
			logger.InfoContext(ctx, "Node requested pause",
				"node_id", node.ID,
				"wait_event_type", result.Pause.EventType,
			)

			return e.pause(ctx, workflow, execution, tracker, node, state, result.Pause)
		}

		state.SetOutput(node.ID, result.Output)
		tracker.Complete(ctx, node.ID, result)
		e.publishNodeCompleted(ctx, workflow, execution, node.ID, result, duration)

		port := result.OutputPort
		if port == "" {
			port = models.DefaultOutputPort
		}

		for _, edge := range matchingEdges(workflow.EdgesFrom(node.ID), port) {
			e.activate(edge, activated, pendingMappings)
		}
	}

	return e.complete(ctx, workflow, execution, tracker, state)
}

// matchingEdges selects the edges activated by an emitted output port. An
// explicit branch outcome activates exactly one edge: when it matches more
// than one condition, the first declared edge wins. The default port
// activates every unconditioned edge.
func matchingEdges(edges []*models.Edge, port string) []*models.Edge {
	matching := make([]*models.Edge, 0, len(edges))

	for _, edge := range edges {
		if edge.MatchesPort(port) {
			matching = append(matching, edge)
		}
	}

	if port != models.DefaultOutputPort && len(matching) > 1 {
		return matching[:1]
	}

	return matching
}

func (e *Engine) activate(edge *models.Edge, activated map[string]bool, pendingMappings map[string]map[string]string) {
	activated[edge.Target] = true

	if len(edge.Mappings) == 0 {
		return
	}

	mappings := pendingMappings[edge.Target]
	if mappings == nil {
		mappings = make(map[string]string, len(edge.Mappings))
		pendingMappings[edge.Target] = mappings
	}

	for field, reference := range edge.Mappings {
		mappings[field] = reference
	}
}

func (e *Engine) complete(
	ctx context.Context,
	workflow *models.Workflow,
	execution *models.Execution,
	tracker *ProgressTracker,
	state *models.ExecutionState,
) (*RunOutcome, error) {
	completedAt := time.Now().UTC()
	execution.Status = models.ExecutionStatusCompleted
	execution.CompletedAt = &completedAt

	err := e.persistence.ExecutionRepository().Update(ctx, execution)
	if err != nil {
		return nil, err
	}

	tracker.Finish(ctx)

	e.publish(ctx, execution.ID, events.ExecutionCompleted{
		BaseEvent:   e.baseEvent(events.ExecutionCompletedEvent, workflow.ID),
		ExecutionID: execution.ID,
		Duration:    completedAt.Sub(execution.StartedAt),
	})

	e.logger.InfoContext(ctx, "Execution completed", "execution_id", execution.ID)

	return &RunOutcome{
		Status: models.ExecutionStatusCompleted,
		State:  state,
	}, nil
}

func (e *Engine) fail(
	ctx context.Context,
	workflow *models.Workflow,
	execution *models.Execution,
	tracker *ProgressTracker,
	nodeID string,
	nodeErr error,
	duration time.Duration,
) (*RunOutcome, error) {
	completedAt := time.Now().UTC()
	failedNodeID := nodeID

	execution.Status = models.ExecutionStatusFailed
	execution.FailedNodeID = &failedNodeID
	execution.ErrorMessage = nodeErr.Error()
	execution.CompletedAt = &completedAt

	err := e.persistence.ExecutionRepository().Update(ctx, execution)
	if err != nil {
		return nil, err
	}

	tracker.Fail(ctx, nodeID, nodeErr)

	e.publish(ctx, execution.ID, events.NodeFailed{
		BaseEvent:   e.baseEvent(events.NodeFailedEvent, workflow.ID),
		ExecutionID: execution.ID,
		NodeID:      nodeID,
		Error:       nodeErr.Error(),
		DurationMs:  duration.Milliseconds(),
	})
	e.publish(ctx, execution.ID, events.ExecutionFailed{
		BaseEvent:   e.baseEvent(events.ExecutionFailedEvent, workflow.ID),
		ExecutionID: execution.ID,
		NodeID:      nodeID,
		Error:       nodeErr.Error(),
	})

	return &RunOutcome{
		Status:       models.ExecutionStatusFailed,
		FailedNodeID: nodeID,
		ErrorMessage: nodeErr.Error(),
	}, nil
}

func (e *Engine) pause(
	ctx context.Context,
	workflow *models.Workflow,
	execution *models.Execution,
	tracker *ProgressTracker,
	node *models.Node,
	state *models.ExecutionState,
	request *protocol.PauseRequest,
) (*RunOutcome, error) {
	snapshot, err := state.Clone()
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot execution state: %w", err)
	}

	timeoutAction := request.TimeoutAction
	if timeoutAction == "" {
		timeoutAction = models.TimeoutActionCancel
	}

	waiting := &models.WaitingExecution{
		ID:             uuid.New().String(),
		ExecutionID:    execution.ID,
		WorkflowID:     workflow.ID,
		UserID:         execution.UserID,
		NodeID:         node.ID,
		EventType:      request.EventType,
		EventConfig:    request.EventConfig,
		MatchCondition: request.MatchCondition,
		ExecutionData:  snapshot,
		Status:         models.WaitStatusWaiting,
		TimeoutAction:  timeoutAction,
		CreatedAt:      time.Now().UTC(),
	}

	if request.Timeout > 0 {
		timeoutAt := waiting.CreatedAt.Add(request.Timeout)
		waiting.TimeoutAt = &timeoutAt
	}

	pausedNodeID := node.ID
	execution.Status = models.ExecutionStatusPaused
	execution.PausedNodeID = &pausedNodeID

	// Both writes or neither: the persistence layer commits these together.
	err = e.persistence.PauseExecution(ctx, execution, waiting)
	if err != nil {
		return nil, err
	}

	tracker.Pause(ctx, node.ID)

	e.publish(ctx, execution.ID, events.ExecutionPaused{
		BaseEvent:          e.baseEvent(events.ExecutionPausedEvent, workflow.ID),
		ExecutionID:        execution.ID,
		NodeID:             node.ID,
		WaitingExecutionID: waiting.ID,
		EventType:          waiting.EventType,
	})

	return &RunOutcome{
		Status:             models.ExecutionStatusPaused,
		State:              state,
		PausedNodeID:       node.ID,
		WaitingExecutionID: waiting.ID,
	}, nil
}

func (e *Engine) publishNodeCompleted(
	ctx context.Context,
	workflow *models.Workflow,
	execution *models.Execution,
	nodeID string,
	result *protocol.ActionResult,
	duration time.Duration,
) {
	e.publish(ctx, execution.ID, events.NodeCompleted{
		BaseEvent:   e.baseEvent(events.NodeCompletedEvent, workflow.ID),
		ExecutionID: execution.ID,
		NodeID:      nodeID,
		OutputPort:  result.OutputPort,
		OutputData:  result.Output,
		DurationMs:  duration.Milliseconds(),
	})
}

func (e *Engine) publish(ctx context.Context, key string, event eventbus.Event) {
	if e.eventBus == nil {
		return
	}

	err := e.eventBus.Publish(ctx, key, event)
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

func (e *Engine) baseEvent(eventType events.EventType, workflowID string) events.BaseEvent {
	return events.BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
		WorkerID:   e.workerID,
	}
}
