package intake_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/chainreact/chainreact/pkg/actions/trigger"
	"github.com/chainreact/chainreact/pkg/actions/wait"
	"github.com/chainreact/chainreact/pkg/engine"
	"github.com/chainreact/chainreact/pkg/intake"
	"github.com/chainreact/chainreact/pkg/models"
	"github.com/chainreact/chainreact/pkg/persistence/file"
	"github.com/chainreact/chainreact/pkg/protocol"
	"github.com/chainreact/chainreact/pkg/registry"
	"github.com/chainreact/chainreact/pkg/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	executed []string
}

type recordingFactory struct {
	rec *recorder
}

func (*recordingFactory) ID() string             { return "record" }
func (*recordingFactory) Name() string           { return "Record" }
func (*recordingFactory) Description() string    { return "test action" }
func (*recordingFactory) IsTrigger() bool        { return false }
func (*recordingFactory) Schema() map[string]any { return nil }

func (f *recordingFactory) Create(_ map[string]any) (protocol.Action, error) {
	return &recordingAction{rec: f.rec}, nil
}

type recordingAction struct {
	rec *recorder
}

func (a *recordingAction) Execute(_ context.Context, actionCtx protocol.ActionContext) (*protocol.ActionResult, error) {
	a.rec.executed = append(a.rec.executed, actionCtx.NodeID)

	event := actionCtx.State.Event

	return &protocol.ActionResult{Output: map[string]any{"event": event}}, nil
}

type fixture struct {
	service     *intake.Service
	persistence *file.Persistence
	eng         *engine.Engine
	rec         *recorder
	workflowID  string
	executionID string
}

// setupPausedExecution runs a trigger -> wait -> record workflow up to its
// pause and returns everything an intake test needs.
func setupPausedExecution(t *testing.T, waitConfig map[string]any) (*fixture, *engine.RunOutcome) {
	t.Helper()

	persistence := file.NewPersistence(t.TempDir())
	rec := &recorder{}

	reg := registry.NewRegistry(slog.Default())
	reg.RegisterAction(trigger.NewManualFactory())
	reg.RegisterAction(wait.NewActionFactory())
	reg.RegisterAction(&recordingFactory{rec: rec})

	eng := engine.New(engine.Config{
		Registry:    reg,
		Persistence: persistence,
		Logger:      slog.Default(),
		WorkerID:    "test-worker",
	})

	workflow := testutil.CreateTestWorkflow(
		[]*models.Node{
			testutil.CreateTestNode(testutil.WithID("start"), testutil.WithTriggerNode()),
			testutil.CreateTestNode(testutil.WithID("hold"), testutil.WithType("wait"), testutil.WithConfig(waitConfig)),
			testutil.CreateTestNode(testutil.WithID("after"), testutil.WithType("record")),
		},
		[]*models.Edge{
			testutil.Edge("start", "hold"),
			testutil.Edge("hold", "after"),
		},
	)
	require.NoError(t, persistence.WorkflowRepository().Save(context.Background(), workflow))

	execution := &models.Execution{
		ID:         uuid.New().String(),
		WorkflowID: workflow.ID,
		UserID:     "test-user",
		Status:     models.ExecutionStatusRunning,
	}
	require.NoError(t, persistence.ExecutionRepository().Create(context.Background(), execution))

	state := models.NewExecutionState(map[string]any{"order_id": "o-1"}, nil)

	outcome, err := eng.Run(context.Background(), workflow, execution, []string{"start"}, state)
	require.NoError(t, err)
	require.Equal(t, models.ExecutionStatusPaused, outcome.Status)

	service := intake.NewService(persistence, eng, nil, nil, slog.Default())

	return &fixture{
		service:     service,
		persistence: persistence,
		eng:         eng,
		rec:         rec,
		workflowID:  workflow.ID,
		executionID: execution.ID,
	}, outcome
}

// pauseSecondExecution pauses one more trigger -> wait -> record workflow
// on the fixture's backing store, so intake tests can have several open
// waits in the same coarse bucket.
func pauseSecondExecution(t *testing.T, fx *fixture, waitConfig map[string]any) *engine.RunOutcome {
	t.Helper()

	workflow := testutil.CreateTestWorkflow(
		[]*models.Node{
			testutil.CreateTestNode(testutil.WithID("start"), testutil.WithTriggerNode()),
			testutil.CreateTestNode(testutil.WithID("hold"), testutil.WithType("wait"), testutil.WithConfig(waitConfig)),
			testutil.CreateTestNode(testutil.WithID("after"), testutil.WithType("record")),
		},
		[]*models.Edge{
			testutil.Edge("start", "hold"),
			testutil.Edge("hold", "after"),
		},
	)
	require.NoError(t, fx.persistence.WorkflowRepository().Save(context.Background(), workflow))

	execution := &models.Execution{
		ID:         uuid.New().String(),
		WorkflowID: workflow.ID,
		UserID:     "test-user",
		Status:     models.ExecutionStatusRunning,
	}
	require.NoError(t, fx.persistence.ExecutionRepository().Create(context.Background(), execution))

	state := models.NewExecutionState(map[string]any{"order_id": "o-2"}, nil)

	outcome, err := fx.eng.Run(context.Background(), workflow, execution, []string{"start"}, state)
	require.NoError(t, err)
	require.Equal(t, models.ExecutionStatusPaused, outcome.Status)

	return outcome
}

func TestSubmitEvent_ResumesMatchingWait(t *testing.T) {
	fx, outcome := setupPausedExecution(t, map[string]any{
		"event_type":   "webhook",
		"webhook_path": "/hooks/payments",
		"match":        map[string]any{"order_id": "o-1"},
	})

	result, err := fx.service.SubmitEvent(context.Background(), intake.IncomingEvent{
		EventType:   models.WaitEventWebhook,
		WebhookPath: "/hooks/payments",
		Payload:     map[string]any{"order_id": "o-1", "status": "paid"},
	})
	require.NoError(t, err)
	assert.Equal(t, &intake.Result{Candidates: 1, Matched: 1, Resumed: 1}, result)

	assert.Equal(t, []string{"after"}, fx.rec.executed)

	waiting, err := fx.persistence.WaitingExecutionRepository().GetByID(context.Background(), outcome.WaitingExecutionID)
	require.NoError(t, err)
	assert.Equal(t, models.WaitStatusResumed, waiting.Status)
	assert.Equal(t, models.ResumeReasonEvent, waiting.ResumeReason)
	assert.NotNil(t, waiting.ResumedAt)

	executions, err := fx.persistence.ExecutionRepository().ListByWorkflow(context.Background(), waiting.WorkflowID)
	require.NoError(t, err)
	require.Len(t, executions, 1)
	assert.Equal(t, models.ExecutionStatusCompleted, executions[0].Status)
	assert.Nil(t, executions[0].PausedNodeID)
}

func TestSubmitEvent_DuplicateDeliveryResumesOnce(t *testing.T) {
	fx, _ := setupPausedExecution(t, map[string]any{
		"event_type":   "webhook",
		"webhook_path": "/hooks/payments",
	})

	event := intake.IncomingEvent{
		EventType:   models.WaitEventWebhook,
		WebhookPath: "/hooks/payments",
		Payload:     map[string]any{"order_id": "o-1"},
	}

	first, err := fx.service.SubmitEvent(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Resumed)

	// The claimed record is no longer a candidate for the redelivery.
	second, err := fx.service.SubmitEvent(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, &intake.Result{}, second)

	assert.Equal(t, []string{"after"}, fx.rec.executed)
}

func TestSubmitEvent_NonMatchingPayloadLeavesWaitOpen(t *testing.T) {
	fx, outcome := setupPausedExecution(t, map[string]any{
		"event_type":   "webhook",
		"webhook_path": "/hooks/payments",
		"match":        map[string]any{"order_id": "o-1"},
	})

	result, err := fx.service.SubmitEvent(context.Background(), intake.IncomingEvent{
		EventType:   models.WaitEventWebhook,
		WebhookPath: "/hooks/payments",
		Payload:     map[string]any{"order_id": "someone-else"},
	})
	require.NoError(t, err)
	assert.Equal(t, &intake.Result{Candidates: 1}, result)

	waiting, err := fx.persistence.WaitingExecutionRepository().GetByID(context.Background(), outcome.WaitingExecutionID)
	require.NoError(t, err)
	assert.Equal(t, models.WaitStatusWaiting, waiting.Status)
	assert.Empty(t, fx.rec.executed)
}

func TestSubmitEvent_MatchConditionSelectsAmongCandidates(t *testing.T) {
	fx, outcomeA := setupPausedExecution(t, map[string]any{
		"event_type": "custom_event",
		"event_name": "approval.decided",
		"match":      map[string]any{"user_id": "A"},
	})
	outcomeB := pauseSecondExecution(t, fx, map[string]any{
		"event_type": "custom_event",
		"event_name": "approval.decided",
		"match":      map[string]any{"user_id": "B"},
	})

	// Both waits share the coarse bucket; the fine match condition picks
	// exactly one.
	result, err := fx.service.SubmitEvent(context.Background(), intake.IncomingEvent{
		EventType: models.WaitEventCustom,
		EventName: "approval.decided",
		Payload:   map[string]any{"user_id": "A", "decision": "approved"},
	})
	require.NoError(t, err)
	assert.Equal(t, &intake.Result{Candidates: 2, Matched: 1, Resumed: 1}, result)
	assert.Equal(t, []string{"after"}, fx.rec.executed)

	resumed, err := fx.persistence.WaitingExecutionRepository().GetByID(context.Background(), outcomeA.WaitingExecutionID)
	require.NoError(t, err)
	assert.Equal(t, models.WaitStatusResumed, resumed.Status)

	open, err := fx.persistence.WaitingExecutionRepository().GetByID(context.Background(), outcomeB.WaitingExecutionID)
	require.NoError(t, err)
	assert.Equal(t, models.WaitStatusWaiting, open.Status)
}

func TestSubmitEvent_CoarseFilterExcludesOtherPaths(t *testing.T) {
	fx, _ := setupPausedExecution(t, map[string]any{
		"event_type":   "webhook",
		"webhook_path": "/hooks/payments",
	})

	result, err := fx.service.SubmitEvent(context.Background(), intake.IncomingEvent{
		EventType:   models.WaitEventWebhook,
		WebhookPath: "/hooks/other",
		Payload:     map[string]any{"order_id": "o-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, &intake.Result{}, result)
}

func TestSweep_FailsExpiredWait(t *testing.T) {
	fx, outcome := setupPausedExecution(t, map[string]any{
		"event_type": "custom_event",
		"event_name": "approval.decided",
		"timeout":    float64(60),
	})

	// Nothing expires before the deadline.
	settled, err := fx.service.Sweep(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, settled)

	settled, err = fx.service.Sweep(context.Background(), time.Now().Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, settled)

	waiting, err := fx.persistence.WaitingExecutionRepository().GetByID(context.Background(), outcome.WaitingExecutionID)
	require.NoError(t, err)
	assert.Equal(t, models.WaitStatusResumed, waiting.Status)
	assert.Equal(t, models.ResumeReasonTimeout, waiting.ResumeReason)

	executions, err := fx.persistence.ExecutionRepository().ListByWorkflow(context.Background(), waiting.WorkflowID)
	require.NoError(t, err)
	require.Len(t, executions, 1)
	assert.Equal(t, models.ExecutionStatusFailed, executions[0].Status)
	require.NotNil(t, executions[0].FailedNodeID)
	assert.Equal(t, "hold", *executions[0].FailedNodeID)
	assert.Contains(t, executions[0].ErrorMessage, "timed out")
	assert.Empty(t, fx.rec.executed)
}

func TestSweep_ProceedResumesWithTimeoutFlag(t *testing.T) {
	fx, _ := setupPausedExecution(t, map[string]any{
		"event_type":     "custom_event",
		"event_name":     "approval.decided",
		"timeout":        "30s",
		"timeout_action": "proceed",
	})

	settled, err := fx.service.Sweep(context.Background(), time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, settled)

	require.Equal(t, []string{"after"}, fx.rec.executed)

	execution, err := fx.persistence.ExecutionRepository().GetByID(context.Background(), fx.executionID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)

	progress, err := fx.persistence.ExecutionRepository().GetProgress(context.Background(), fx.executionID)
	require.NoError(t, err)
	assert.Equal(t, models.NodeRunCompleted, progress.NodeStatuses["after"])
}

func TestSweep_EventWinsOverConcurrentTimeout(t *testing.T) {
	fx, _ := setupPausedExecution(t, map[string]any{
		"event_type":   "webhook",
		"webhook_path": "/hooks/payments",
		"timeout":      float64(30),
	})

	result, err := fx.service.SubmitEvent(context.Background(), intake.IncomingEvent{
		EventType:   models.WaitEventWebhook,
		WebhookPath: "/hooks/payments",
		Payload:     map[string]any{"order_id": "o-1"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Resumed)

	settled, err := fx.service.Sweep(context.Background(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, settled)
}
