package models

import "encoding/json"

// Reserved data buckets in an execution state. Node outputs live alongside
// them keyed by node id, so node ids must not collide with these names.
const (
	StateBucketTrigger   = "trigger"
	StateBucketVariables = "vars"
	StateBucketEvent     = "event"
)

// ExecutionState is the accumulated data-flow state of one execution: node
// outputs keyed by node id, the original trigger input and workflow
// variables. It is owned by the single in-flight engine run and serialized
// into a waiting execution's execution_data before any suspension, which is
// everything needed to resume days later without re-running earlier nodes.
type ExecutionState struct {
	NodeOutputs map[string]map[string]any `json:"node_outputs"`
	Trigger     map[string]any            `json:"trigger"`
	Variables   map[string]any            `json:"variables"`
	Event       map[string]any            `json:"event,omitempty"`
}

// NewExecutionState builds the initial state for a fresh run.
func NewExecutionState(trigger, variables map[string]any) *ExecutionState {
	if trigger == nil {
		trigger = make(map[string]any)
	}

	if variables == nil {
		variables = make(map[string]any)
	}

	return &ExecutionState{
		NodeOutputs: make(map[string]map[string]any),
		Trigger:     trigger,
		Variables:   variables,
	}
}

// SetOutput records a node's output, keyed by node id.
func (s *ExecutionState) SetOutput(nodeID string, output map[string]any) {
	if s.NodeOutputs == nil {
		s.NodeOutputs = make(map[string]map[string]any)
	}

	if output == nil {
		output = make(map[string]any)
	}

	s.NodeOutputs[nodeID] = output
}

// Output returns a node's recorded output.
func (s *ExecutionState) Output(nodeID string) (map[string]any, bool) {
	output, ok := s.NodeOutputs[nodeID]

	return output, ok
}

// Clone returns a deep copy of the state via a JSON round trip, matching
// exactly what a persisted snapshot would contain.
func (s *ExecutionState) Clone() (*ExecutionState, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}

	clone := &ExecutionState{}

	err = json.Unmarshal(raw, clone)
	if err != nil {
		return nil, err
	}

	if clone.NodeOutputs == nil {
		clone.NodeOutputs = make(map[string]map[string]any)
	}

	return clone, nil
}
