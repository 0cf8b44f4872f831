package switchnode_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/chainreact/chainreact/pkg/actions/switchnode"
	"github.com/chainreact/chainreact/pkg/models"
	"github.com/chainreact/chainreact/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tierCases() map[string]any {
	return map[string]any{
		"cases": []any{
			map[string]any{"port": "vip", "expression": "trigger.amount >= 1000"},
			map[string]any{"port": "regular", "expression": "trigger.amount >= 100"},
		},
		"default_port": "low",
	}
}

func TestNewAction_Validation(t *testing.T) {
	t.Parallel()

	_, err := switchnode.NewAction(map[string]any{})
	assert.ErrorIs(t, err, switchnode.ErrCasesRequired)

	_, err = switchnode.NewAction(map[string]any{"cases": []any{}})
	assert.ErrorIs(t, err, switchnode.ErrCasesRequired)

	_, err = switchnode.NewAction(map[string]any{"cases": []any{
		map[string]any{"port": "a"},
	}})
	assert.ErrorIs(t, err, switchnode.ErrCasesRequired)
}

func TestExecute_FirstMatchingCaseWins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		amount   float64
		wantPort string
	}{
		{"first case", 5000, "vip"},
		{"second case", 250, "regular"},
		{"no case matches", 10, "low"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			action, err := switchnode.NewAction(tierCases())
			require.NoError(t, err)

			state := models.NewExecutionState(map[string]any{"amount": testCase.amount}, nil)

			result, err := action.Execute(context.Background(), protocol.ActionContext{
				State:  state,
				Logger: slog.Default(),
			})
			require.NoError(t, err)
			assert.Equal(t, testCase.wantPort, result.OutputPort)
			assert.Equal(t, testCase.wantPort, result.Output["port"])
		})
	}
}

func TestExecute_DefaultPortFallsBackToDefault(t *testing.T) {
	t.Parallel()

	action, err := switchnode.NewAction(map[string]any{
		"cases": []any{
			map[string]any{"port": "hit", "expression": "false"},
		},
	})
	require.NoError(t, err)

	result, err := action.Execute(context.Background(), protocol.ActionContext{
		State:  models.NewExecutionState(nil, nil),
		Logger: slog.Default(),
	})
	require.NoError(t, err)
	assert.Equal(t, "default", result.OutputPort)
}
