package services_test

import (
	"context"
	"log/slog"
	"testing"

	logaction "github.com/chainreact/chainreact/pkg/actions/log"
	"github.com/chainreact/chainreact/pkg/actions/trigger"
	"github.com/chainreact/chainreact/pkg/models"
	"github.com/chainreact/chainreact/pkg/persistence/file"
	"github.com/chainreact/chainreact/pkg/registry"
	"github.com/chainreact/chainreact/pkg/services"
	"github.com/chainreact/chainreact/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWorkflowService(t *testing.T) (*services.Workflow, *file.Persistence) {
	t.Helper()

	persistence := file.NewPersistence(t.TempDir())

	reg := registry.NewRegistry(slog.Default())
	reg.RegisterAction(trigger.NewManualFactory())
	reg.RegisterAction(logaction.NewActionFactory())

	return services.NewWorkflow(persistence, reg), persistence
}

func validWorkflow() *models.Workflow {
	workflow := testutil.LinearWorkflow("start", "step")
	workflow.Nodes[1].Config = map[string]any{"message": "hello"}

	return workflow
}

func TestWorkflow_CreateStartsAsDraft(t *testing.T) {
	service, _ := setupWorkflowService(t)

	created, err := service.Create(context.Background(), validWorkflow())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.WorkflowStatusDraft, created.Status)
	assert.False(t, created.CreatedAt.IsZero())

	loaded, err := service.FetchByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, loaded.ID)
}

func TestWorkflow_CreateRequiresName(t *testing.T) {
	service, _ := setupWorkflowService(t)

	workflow := validWorkflow()
	workflow.Name = ""

	_, err := service.Create(context.Background(), workflow)
	assert.ErrorIs(t, err, services.ErrWorkflowNameRequired)

	_, err = service.Create(context.Background(), nil)
	assert.ErrorIs(t, err, services.ErrWorkflowNil)
}

func TestWorkflow_ActivateValidatesGraph(t *testing.T) {
	service, _ := setupWorkflowService(t)

	// A draft with no trigger saves fine but cannot be activated.
	draft := testutil.CreateTestWorkflow(
		[]*models.Node{testutil.CreateTestNode(testutil.WithID("only"),
			testutil.WithConfig(map[string]any{"message": "hi"}))},
		nil,
	)

	created, err := service.Create(context.Background(), draft)
	require.NoError(t, err)

	_, err = service.Activate(context.Background(), created.ID)
	assert.ErrorIs(t, err, services.ErrTriggerNodeRequired)

	loaded, err := service.FetchByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusDraft, loaded.Status)
}

func TestWorkflow_ActivateRejectsUnknownNodeType(t *testing.T) {
	service, _ := setupWorkflowService(t)

	workflow := validWorkflow()
	workflow.Nodes[1].Type = "slack_message"
	workflow.Nodes[1].Config = nil

	created, err := service.Create(context.Background(), workflow)
	require.NoError(t, err)

	_, err = service.Activate(context.Background(), created.ID)
	assert.ErrorIs(t, err, services.ErrUnknownNodeType)
}

func TestWorkflow_ActivateRejectsInvalidConfig(t *testing.T) {
	service, _ := setupWorkflowService(t)

	workflow := validWorkflow()
	// Static config missing the required message fails schema validation.
	workflow.Nodes[1].Config = map[string]any{"level": "info"}

	created, err := service.Create(context.Background(), workflow)
	require.NoError(t, err)

	_, err = service.Activate(context.Background(), created.ID)
	assert.ErrorIs(t, err, services.ErrInvalidGraph)
}

func TestWorkflow_ActivateAllowsReferenceConfigs(t *testing.T) {
	service, _ := setupWorkflowService(t)

	workflow := validWorkflow()
	// References resolve at run time; schema validation is skipped for them.
	workflow.Nodes[1].Config = map[string]any{"message": "{{trigger.text}}"}

	created, err := service.Create(context.Background(), workflow)
	require.NoError(t, err)

	activated, err := service.Activate(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusActive, activated.Status)
}

func TestWorkflow_ArchivedIsFrozen(t *testing.T) {
	service, _ := setupWorkflowService(t)

	created, err := service.Create(context.Background(), validWorkflow())
	require.NoError(t, err)

	archived, err := service.Archive(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusArchived, archived.Status)

	_, err = service.Update(context.Background(), created.ID, validWorkflow())
	assert.ErrorIs(t, err, services.ErrWorkflowArchived)

	_, err = service.Activate(context.Background(), created.ID)
	assert.ErrorIs(t, err, services.ErrWorkflowArchived)
}

func TestWorkflow_UpdateKeepsActiveExecutable(t *testing.T) {
	service, _ := setupWorkflowService(t)

	created, err := service.Create(context.Background(), validWorkflow())
	require.NoError(t, err)

	_, err = service.Activate(context.Background(), created.ID)
	require.NoError(t, err)

	// Editing an active workflow into an invalid graph is rejected.
	broken := validWorkflow()
	broken.Nodes = broken.Nodes[1:]
	broken.Edges = nil

	_, err = service.Update(context.Background(), created.ID, broken)
	assert.ErrorIs(t, err, services.ErrTriggerNodeRequired)

	// A valid edit keeps the active status.
	updated, err := service.Update(context.Background(), created.ID, validWorkflow())
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusActive, updated.Status)
}

func TestWorkflow_DeleteIsSoft(t *testing.T) {
	service, _ := setupWorkflowService(t)

	created, err := service.Create(context.Background(), validWorkflow())
	require.NoError(t, err)

	require.NoError(t, service.Delete(context.Background(), created.ID))

	_, err = service.FetchByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, services.ErrWorkflowNotFound)

	err = service.Delete(context.Background(), created.ID)
	assert.ErrorIs(t, err, services.ErrWorkflowNotFound)
}

func TestWorkflow_ListValidatesStatus(t *testing.T) {
	service, _ := setupWorkflowService(t)

	bogus := models.WorkflowStatus("bogus")

	_, err := service.List(context.Background(), services.ListWorkflowsRequest{Status: &bogus})
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))
}
