package models

import "time"

// Node types with special handling in the graph walker. Placeholder nodes
// are editor-only artifacts ("add action here") and pass activation through
// to their successors without executing anything.
const (
	NodeTypePlaceholder = "placeholder"
)

// Default output port emitted by non-branching nodes. Branch nodes emit
// their own ports ("true"/"false", switch cases) instead.
const DefaultOutputPort = "main"

// Node represents a single node instance inside a workflow graph. Config is
// an opaque key/value map validated against the catalog entry's JSON schema
// at the boundary; the engine only resolves references inside it.
type Node struct {
	ID        string         `json:"id"         validate:"required"`
	Type      string         `json:"type"       validate:"required"`
	Name      string         `json:"name"`
	Config    map[string]any `json:"config"`
	IsTrigger bool           `json:"is_trigger"`
	Enabled   bool           `json:"enabled"`
	PositionX int            `json:"position_x"`
	PositionY int            `json:"position_y"`
}

// IsStructural reports whether the node is an editor-only artifact the
// walker should skip.
func (n *Node) IsStructural() bool {
	return n.Type == NodeTypePlaceholder || !n.Enabled
}

// NodeRunStatus defines the possible states of one node within an execution.
type NodeRunStatus string

const (
	NodeRunPending   NodeRunStatus = "pending"
	NodeRunRunning   NodeRunStatus = "running"
	NodeRunCompleted NodeRunStatus = "completed"
	NodeRunFailed    NodeRunStatus = "failed"
	NodeRunSkipped   NodeRunStatus = "skipped"
)

// NodeResult records the terminal outcome of one node execution. It is
// embedded in execution progress for UI polling, never persisted on its own.
type NodeResult struct {
	NodeID     string         `json:"node_id"`
	Status     NodeRunStatus  `json:"status"`
	Output     map[string]any `json:"output,omitempty"`
	OutputPort string         `json:"output_port,omitempty"`
	Error      string         `json:"error,omitempty"`
	FinishedAt time.Time      `json:"finished_at"`
}
