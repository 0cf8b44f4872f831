// Package web provides the HTTP API: workflow management, execution
// control and the external event intake.
package web

import "github.com/chainreact/chainreact/pkg/models"

// NodeRequest is the wire representation of one graph node.
type NodeRequest struct {
	ID        string         `json:"id"         validate:"required"`
	Type      string         `json:"type"       validate:"required"`
	Name      string         `json:"name"`
	Config    map[string]any `json:"config"`
	IsTrigger bool           `json:"is_trigger"`
	Enabled   *bool          `json:"enabled,omitempty"`
	PositionX int            `json:"position_x"`
	PositionY int            `json:"position_y"`
}

// EdgeRequest is the wire representation of one graph edge.
type EdgeRequest struct {
	ID        string            `json:"id"`
	Source    string            `json:"source"    validate:"required"`
	Target    string            `json:"target"    validate:"required"`
	Condition string            `json:"condition,omitempty"`
	Mappings  map[string]string `json:"mappings,omitempty"`
}

// CreateWorkflowRequest represents the request body for creating a workflow.
type CreateWorkflowRequest struct {
	Name        string         `json:"name"        validate:"required,min=3"`
	Description string         `json:"description"`
	Nodes       []NodeRequest  `json:"nodes"       validate:"dive"`
	Edges       []EdgeRequest  `json:"edges"       validate:"dive"`
	Variables   map[string]any `json:"variables"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	UserID      string         `json:"user_id"     validate:"required"`
	TeamID      *string        `json:"team_id,omitempty"`
}

// UpdateWorkflowRequest represents the request body for updating a
// workflow. Omitted fields keep their current value; nodes and edges
// replace the whole graph when present.
type UpdateWorkflowRequest struct {
	Name        *string        `json:"name,omitempty"        validate:"omitempty,min=3"`
	Description *string        `json:"description,omitempty"`
	Nodes       []NodeRequest  `json:"nodes,omitempty"       validate:"omitempty,dive"`
	Edges       []EdgeRequest  `json:"edges,omitempty"       validate:"omitempty,dive"`
	Variables   map[string]any `json:"variables,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// StartExecutionRequest represents the request body for starting an
// execution of an active workflow.
type StartExecutionRequest struct {
	TriggerNodeID string         `json:"trigger_node_id,omitempty"`
	TriggerData   map[string]any `json:"trigger_data,omitempty"`
	UserID        string         `json:"user_id"                   validate:"required"`
}

// CancelExecutionRequest represents the request body for cancelling an
// execution.
type CancelExecutionRequest struct {
	Reason string `json:"reason,omitempty"`
}

// SubmitEventRequest represents one external event delivered to the
// intake endpoint.
type SubmitEventRequest struct {
	EventType   string         `json:"event_type"   validate:"required,oneof=webhook custom_event integration_event human_response"`
	Provider    string         `json:"provider,omitempty"`
	WebhookPath string         `json:"webhook_path,omitempty"`
	EventName   string         `json:"event_name,omitempty"`
	Payload     map[string]any `json:"payload"`
}

func toNodes(requests []NodeRequest) []*models.Node {
	nodes := make([]*models.Node, 0, len(requests))

	for _, req := range requests {
		enabled := true
		if req.Enabled != nil {
			enabled = *req.Enabled
		}

		nodes = append(nodes, &models.Node{
			ID:        req.ID,
			Type:      req.Type,
			Name:      req.Name,
			Config:    req.Config,
			IsTrigger: req.IsTrigger,
			Enabled:   enabled,
			PositionX: req.PositionX,
			PositionY: req.PositionY,
		})
	}

	return nodes
}

func toEdges(requests []EdgeRequest) []*models.Edge {
	edges := make([]*models.Edge, 0, len(requests))

	for _, req := range requests {
		edges = append(edges, &models.Edge{
			ID:        req.ID,
			Source:    req.Source,
			Target:    req.Target,
			Condition: req.Condition,
			Mappings:  req.Mappings,
		})
	}

	return edges
}
