// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"github.com/chainreact/chainreact/pkg/models"
	"github.com/google/uuid"
)

// CreateTestNode creates a test Node with default values that can be
// overridden.
func CreateTestNode(overrides ...func(*models.Node)) *models.Node {
	node := &models.Node{
		ID:        uuid.New().String(),
		Type:      "log",
		Name:      "Test Node",
		Config:    map[string]any{"message": "test", "level": "info"},
		Enabled:   true,
		PositionX: 100,
		PositionY: 200,
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithTriggerNode configures the node as a manual trigger.
func WithTriggerNode() func(*models.Node) {
	return func(n *models.Node) {
		n.Type = "manual_trigger"
		n.IsTrigger = true
		n.Config = map[string]any{}
	}
}

// WithConfig sets the node configuration.
func WithConfig(config map[string]any) func(*models.Node) {
	return func(n *models.Node) {
		n.Config = config
	}
}

// WithName sets the node name.
func WithName(name string) func(*models.Node) {
	return func(n *models.Node) {
		n.Name = name
	}
}

// WithEnabled sets the node enabled status.
func WithEnabled(enabled bool) func(*models.Node) {
	return func(n *models.Node) {
		n.Enabled = enabled
	}
}

// WithType sets the node type.
func WithType(nodeType string) func(*models.Node) {
	return func(n *models.Node) {
		n.Type = nodeType
	}
}

// WithID sets the node ID.
func WithID(id string) func(*models.Node) {
	return func(n *models.Node) {
		n.ID = id
	}
}

// Edge creates an edge between two nodes on the default port.
func Edge(source, target string) *models.Edge {
	return &models.Edge{
		ID:     uuid.New().String(),
		Source: source,
		Target: target,
	}
}

// ConditionalEdge creates an edge activated by a specific output port.
func ConditionalEdge(source, target, condition string) *models.Edge {
	edge := Edge(source, target)
	edge.Condition = condition

	return edge
}

// CreateTestWorkflow creates an active workflow with the given nodes and
// edges, ready to execute.
func CreateTestWorkflow(nodes []*models.Node, edges []*models.Edge) *models.Workflow {
	return &models.Workflow{
		ID:        uuid.New().String(),
		Name:      "Test Workflow",
		Status:    models.WorkflowStatusActive,
		Nodes:     nodes,
		Edges:     edges,
		Variables: map[string]any{"env": "test"},
		UserID:    "test-user",
	}
}

// LinearWorkflow builds trigger -> log -> log with the given node ids.
func LinearWorkflow(ids ...string) *models.Workflow {
	nodes := make([]*models.Node, 0, len(ids))
	edges := make([]*models.Edge, 0, len(ids))

	for i, id := range ids {
		if i == 0 {
			nodes = append(nodes, CreateTestNode(WithID(id), WithTriggerNode()))

			continue
		}

		nodes = append(nodes, CreateTestNode(WithID(id)))
		edges = append(edges, Edge(ids[i-1], id))
	}

	return CreateTestWorkflow(nodes, edges)
}
