package approval_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/chainreact/chainreact/pkg/actions/approval"
	"github.com/chainreact/chainreact/pkg/models"
	"github.com/chainreact/chainreact/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAction_Defaults(t *testing.T) {
	t.Parallel()

	action, err := approval.NewAction(map[string]any{})
	require.NoError(t, err)

	assert.Empty(t, action.Prompt)
	assert.Zero(t, action.Timeout)
	assert.Equal(t, models.TimeoutActionCancel, action.TimeoutAction)
}

func TestNewAction_Config(t *testing.T) {
	t.Parallel()

	action, err := approval.NewAction(map[string]any{
		"prompt":         "Release the payment?",
		"timeout":        float64(3600),
		"timeout_action": "proceed",
	})
	require.NoError(t, err)

	assert.Equal(t, "Release the payment?", action.Prompt)
	assert.Equal(t, time.Hour, action.Timeout)
	assert.Equal(t, models.TimeoutActionProceed, action.TimeoutAction)
}

func TestExecute_PausesKeyedByExecution(t *testing.T) {
	t.Parallel()

	action, err := approval.NewAction(map[string]any{
		"prompt":  "Approve refund for o-42?",
		"timeout": float64(600),
	})
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), protocol.ActionContext{
		ExecutionID: "ex-1",
		State:       models.NewExecutionState(nil, nil),
		Logger:      slog.Default(),
	})
	require.NoError(t, err)
	require.NotNil(t, result.Pause)

	assert.Equal(t, models.WaitEventHumanResponse, result.Pause.EventType)
	assert.Equal(t, models.MatchCondition{"execution_id": "ex-1"}, result.Pause.MatchCondition)
	assert.Equal(t, 10*time.Minute, result.Pause.Timeout)
	assert.Equal(t, models.TimeoutActionCancel, result.Pause.TimeoutAction)
}
