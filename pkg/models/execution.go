package models

import "time"

// ExecutionStatus represents the lifecycle state of one workflow run.
// Completed, failed and cancelled are terminal. Paused is not terminal and
// is always accompanied by exactly one open waiting execution record.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusPaused    ExecutionStatus = "paused"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

// IsTerminal reports whether the status admits no further transitions.
func (s ExecutionStatus) IsTerminal() bool {
	return s == ExecutionStatusCompleted || s == ExecutionStatusFailed || s == ExecutionStatusCancelled
}

// Execution is one run of a workflow, created at trigger time. Its status
// is mutated exclusively by the graph walker and the event intake.
type Execution struct {
	ID           string          `json:"id"`
	WorkflowID   string          `json:"workflow_id" validate:"required"`
	UserID       string          `json:"user_id"     validate:"required"`
	Status       ExecutionStatus `json:"status"`
	PausedNodeID *string         `json:"paused_node_id,omitempty"` // set iff status=paused
	FailedNodeID *string         `json:"failed_node_id,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	StartedAt    time.Time       `json:"started_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

// ExecutionProgress is the write-side observer state for UI polling:
// per-node status, percentage complete and the node currently running.
type ExecutionProgress struct {
	ExecutionID    string                   `json:"execution_id"`
	NodeStatuses   map[string]NodeRunStatus `json:"node_statuses"`
	NodeResults    map[string]NodeResult    `json:"node_results,omitempty"`
	CompletedNodes []string                 `json:"completed_nodes"`
	CurrentNodeID  string                   `json:"current_node_id,omitempty"`
	Percent        int                      `json:"percent"`
	UpdatedAt      time.Time                `json:"updated_at"`
}
