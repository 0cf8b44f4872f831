package condition_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/chainreact/chainreact/pkg/actions/condition"
	"github.com/chainreact/chainreact/pkg/models"
	"github.com/chainreact/chainreact/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func actionContext(state *models.ExecutionState) protocol.ActionContext {
	return protocol.ActionContext{
		ExecutionID: "ex-1",
		NodeID:      "check",
		State:       state,
		Logger:      slog.Default(),
	}
}

func TestNewAction_RequiresExpression(t *testing.T) {
	t.Parallel()

	_, err := condition.NewAction(map[string]any{})
	assert.ErrorIs(t, err, condition.ErrExpressionRequired)

	_, err = condition.NewAction(map[string]any{"expression": ""})
	assert.ErrorIs(t, err, condition.ErrExpressionRequired)
}

func TestExecute_SelectsPortFromExpression(t *testing.T) {
	t.Parallel()

	state := models.NewExecutionState(map[string]any{"amount": float64(150)}, nil)
	state.SetOutput("fetch", map[string]any{"tier": "gold"})

	tests := []struct {
		name       string
		expression string
		wantPort   string
		wantResult bool
	}{
		{"trigger comparison true", "trigger.amount > 100", "true", true},
		{"trigger comparison false", "trigger.amount > 1000", "false", false},
		{"node output equality", `fetch.output.tier == "gold"`, "true", true},
		{"boolean combination", `trigger.amount > 100 && fetch.output.tier == "gold"`, "true", true},
		{"undefined variable is nil", "missing == nil", "true", true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			action, err := condition.NewAction(map[string]any{"expression": testCase.expression})
			require.NoError(t, err)

			result, err := action.Execute(context.Background(), actionContext(state))
			require.NoError(t, err)
			assert.Equal(t, testCase.wantPort, result.OutputPort)
			assert.Equal(t, testCase.wantResult, result.Output["result"])
		})
	}
}

func TestExecute_NonBooleanExpressionFails(t *testing.T) {
	t.Parallel()

	state := models.NewExecutionState(map[string]any{"amount": float64(5)}, nil)

	action, err := condition.NewAction(map[string]any{"expression": "trigger.amount + 1"})
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), actionContext(state))
	require.Error(t, err)
	assert.ErrorIs(t, err, condition.ErrNotBoolean)
}
