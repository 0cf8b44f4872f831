package dataflow_test

import (
	"testing"

	"github.com/chainreact/chainreact/pkg/dataflow"
	"github.com/chainreact/chainreact/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testState() *models.ExecutionState {
	state := models.NewExecutionState(
		map[string]any{
			"order_id": "o-42",
			"body":     map[string]any{"email": "jo@example.com"},
		},
		map[string]any{"region": "eu-west-1"},
	)
	state.SetOutput("fetch_user", map[string]any{
		"name":  "Jo",
		"score": float64(87),
		"tags":  []any{"vip", "beta"},
	})

	return state
}

func TestResolve_WholeReferencePreservesType(t *testing.T) {
	t.Parallel()

	state := testState()

	tests := []struct {
		name  string
		input string
		want  any
	}{
		{"string from node output", "{{fetch_user.output.name}}", "Jo"},
		{"number from node output", "{{fetch_user.output.score}}", float64(87)},
		{"slice from node output", "{{fetch_user.output.tags}}", []any{"vip", "beta"}},
		{"trigger payload field", "{{trigger.order_id}}", "o-42"},
		{"nested trigger field", "{{trigger.body.email}}", "jo@example.com"},
		{"workflow variable", "{{vars.region}}", "eu-west-1"},
		{"variables alias", "{{variables.region}}", "eu-west-1"},
		{"whitespace inside braces", "{{ fetch_user.output.name }}", "Jo"},
		{"missing path resolves to nil", "{{fetch_user.output.missing}}", nil},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, dataflow.Resolve(testCase.input, state))
		})
	}
}

func TestResolve_Interpolation(t *testing.T) {
	t.Parallel()

	state := testState()

	resolved := dataflow.Resolve("Hello {{fetch_user.output.name}}, order {{trigger.order_id}}", state)
	assert.Equal(t, "Hello Jo, order o-42", resolved)

	// Missing references interpolate as the empty string.
	resolved = dataflow.Resolve("value=[{{fetch_user.output.missing}}]", state)
	assert.Equal(t, "value=[]", resolved)

	// Non-string referenced values stringify.
	resolved = dataflow.Resolve("score: {{fetch_user.output.score}}", state)
	assert.Equal(t, "score: 87", resolved)
}

func TestResolve_NonReferenceValuesPassThrough(t *testing.T) {
	t.Parallel()

	state := testState()

	assert.Equal(t, "plain text", dataflow.Resolve("plain text", state))
	assert.Equal(t, float64(3), dataflow.Resolve(float64(3), state))
	assert.Equal(t, true, dataflow.Resolve(true, state))
	assert.Nil(t, dataflow.Resolve(nil, state))
}

func TestResolveConfig_Recursive(t *testing.T) {
	t.Parallel()

	state := testState()

	config := map[string]any{
		"url": "https://api.example.com/users/{{fetch_user.output.name}}",
		"headers": map[string]any{
			"X-Region": "{{vars.region}}",
		},
		"recipients": []any{"{{trigger.body.email}}", "ops@example.com"},
		"retries":    float64(3),
	}

	resolved := dataflow.ResolveConfig(config, state)

	assert.Equal(t, "https://api.example.com/users/Jo", resolved["url"])

	headers, ok := resolved["headers"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "eu-west-1", headers["X-Region"])

	recipients, ok := resolved["recipients"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"jo@example.com", "ops@example.com"}, recipients)

	assert.Equal(t, float64(3), resolved["retries"])
}

func TestLookup(t *testing.T) {
	t.Parallel()

	state := testState()

	value, ok := dataflow.Lookup("fetch_user.output.name", state)
	require.True(t, ok)
	assert.Equal(t, "Jo", value)

	_, ok = dataflow.Lookup("no_such_node.output.x", state)
	assert.False(t, ok)
}

func TestResolve_IsPureOverSnapshot(t *testing.T) {
	t.Parallel()

	state := testState()

	cloned, err := state.Clone()
	require.NoError(t, err)

	// The same reference resolves identically against the live state and a
	// snapshot of it, which is what resumption relies on.
	assert.Equal(t,
		dataflow.Resolve("{{fetch_user.output.score}}", state),
		dataflow.Resolve("{{fetch_user.output.score}}", cloned),
	)
}
