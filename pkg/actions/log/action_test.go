package log_test

import (
	"context"
	"log/slog"
	"testing"

	logaction "github.com/chainreact/chainreact/pkg/actions/log"
	"github.com/chainreact/chainreact/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAction_Defaults(t *testing.T) {
	t.Parallel()

	action := logaction.NewAction(map[string]any{"message": "hello"})
	assert.Equal(t, "hello", action.Message)
	assert.Equal(t, "info", action.Level)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	for _, level := range []string{"debug", "info", "warn", "warning", "error"} {
		action := logaction.NewAction(map[string]any{"message": "m", "level": level})
		assert.NoError(t, action.Validate(context.Background()))
	}

	action := logaction.NewAction(map[string]any{"message": "m", "level": "loud"})
	assert.ErrorIs(t, action.Validate(context.Background()), logaction.ErrInvalidLevel)
}

func TestExecute_EchoesMessageAndLevel(t *testing.T) {
	t.Parallel()

	action := logaction.NewAction(map[string]any{"message": "order processed", "level": "warn"})

	result, err := action.Execute(context.Background(), protocol.ActionContext{Logger: slog.Default()})
	require.NoError(t, err)
	assert.Equal(t, "order processed", result.Output["message"])
	assert.Equal(t, "warn", result.Output["level"])
}
