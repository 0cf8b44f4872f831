// Package models defines the core domain models for node-based workflow automation.
package models

import "time"

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusDraft    WorkflowStatus = "draft"    // Editable, not executable
	WorkflowStatusActive   WorkflowStatus = "active"   // Executable by live events
	WorkflowStatusArchived WorkflowStatus = "archived" // Historical, not executable
)

// Workflow represents a node/edge graph owned by a user, optionally shared
// within a team. Only active workflows may be triggered by live events.
type Workflow struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"        validate:"required,min=3"`
	Description string         `json:"description"`
	Status      WorkflowStatus `json:"status"      validate:"required"`
	Nodes       []*Node        `json:"nodes"`
	Edges       []*Edge        `json:"edges"`
	Variables   map[string]any `json:"variables"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	UserID      string         `json:"user_id"     validate:"required"`
	TeamID      *string        `json:"team_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   *time.Time     `json:"deleted_at,omitempty"`
}

// IsExecutable reports whether the workflow may be triggered.
func (w *Workflow) IsExecutable() bool {
	return w.Status == WorkflowStatusActive && w.DeletedAt == nil
}

// NodeByID returns the node with the given id, if present.
func (w *Workflow) NodeByID(id string) (*Node, bool) {
	for _, node := range w.Nodes {
		if node.ID == id {
			return node, true
		}
	}

	return nil, false
}

// TriggerNodes returns all trigger nodes in declaration order.
func (w *Workflow) TriggerNodes() []*Node {
	triggers := make([]*Node, 0, 1)

	for _, node := range w.Nodes {
		if node.IsTrigger {
			triggers = append(triggers, node)
		}
	}

	return triggers
}

// EdgesFrom returns the outgoing edges of a node in declaration order.
// Declaration order is load-bearing: when a branch outcome matches more
// than one edge condition, the first declared edge wins.
func (w *Workflow) EdgesFrom(nodeID string) []*Edge {
	edges := make([]*Edge, 0, 2)

	for _, edge := range w.Edges {
		if edge.Source == nodeID {
			edges = append(edges, edge)
		}
	}

	return edges
}

// EdgesTo returns the incoming edges of a node in declaration order.
func (w *Workflow) EdgesTo(nodeID string) []*Edge {
	edges := make([]*Edge, 0, 2)

	for _, edge := range w.Edges {
		if edge.Target == nodeID {
			edges = append(edges, edge)
		}
	}

	return edges
}

// SuccessorIDs returns the ids of the direct successors of a node in edge
// declaration order, without duplicates.
func (w *Workflow) SuccessorIDs(nodeID string) []string {
	seen := make(map[string]bool)
	successors := make([]string, 0, 2)

	for _, edge := range w.EdgesFrom(nodeID) {
		if !seen[edge.Target] {
			seen[edge.Target] = true

			successors = append(successors, edge.Target)
		}
	}

	return successors
}
