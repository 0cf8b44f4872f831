package registry_test

import (
	"log/slog"
	"testing"

	logaction "github.com/chainreact/chainreact/pkg/actions/log"
	"github.com/chainreact/chainreact/pkg/actions/trigger"
	"github.com/chainreact/chainreact/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	reg := registry.NewRegistry(slog.Default())
	reg.RegisterAction(logaction.NewActionFactory())
	reg.RegisterAction(trigger.NewManualFactory())

	return reg
}

func TestRegistry_IsRegistered(t *testing.T) {
	t.Parallel()

	reg := setupRegistry(t)

	assert.True(t, reg.IsRegistered("log"))
	assert.False(t, reg.IsRegistered("nope"))
}

func TestRegistry_IsTriggerType(t *testing.T) {
	t.Parallel()

	reg := setupRegistry(t)

	assert.True(t, reg.IsTriggerType("manual_trigger"))
	assert.False(t, reg.IsTriggerType("log"))
	assert.False(t, reg.IsTriggerType("nope"))
}

func TestRegistry_Create_ValidatesSchema(t *testing.T) {
	t.Parallel()

	reg := setupRegistry(t)

	action, err := reg.Create("log", map[string]any{"message": "hello"})
	require.NoError(t, err)
	assert.NotNil(t, action)

	// The log schema requires a message.
	_, err = reg.Create("log", map[string]any{"level": "info"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")

	// Enum violations are schema failures too.
	_, err = reg.Create("log", map[string]any{"message": "hello", "level": "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestRegistry_Create_UnknownType(t *testing.T) {
	t.Parallel()

	reg := setupRegistry(t)

	_, err := reg.Create("nope", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestRegistry_ValidateConfig(t *testing.T) {
	t.Parallel()

	reg := setupRegistry(t)

	assert.NoError(t, reg.ValidateConfig("log", map[string]any{"message": "hi"}))
	assert.Error(t, reg.ValidateConfig("log", map[string]any{}))
	assert.Error(t, reg.ValidateConfig("nope", nil))
}

func TestRegistry_Entries_SortedByType(t *testing.T) {
	t.Parallel()

	reg := setupRegistry(t)

	entries := reg.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "log", entries[0].Type)
	assert.Equal(t, "manual_trigger", entries[1].Type)
	assert.True(t, entries[1].IsTrigger)
	assert.NotEmpty(t, entries[0].Schema)
}
