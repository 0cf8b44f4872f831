package engine

import (
	"errors"
	"fmt"

	"github.com/chainreact/chainreact/pkg/models"
)

var (
	ErrNoTriggerNodes  = errors.New("workflow has no trigger nodes")
	ErrCycle           = errors.New("workflow graph contains a cycle")
	ErrUnknownNode     = errors.New("edge references unknown node")
	ErrTriggerIncoming = errors.New("trigger node has incoming edges")
	ErrSelfLoop        = errors.New("edge connects a node to itself")
)

// ValidateGraph checks a workflow graph for structural problems: edges must
// reference declared nodes, at least one trigger must exist, triggers must
// have no incoming edges, and no cycle may be reachable from any trigger.
// Disconnected nodes are allowed; they never execute.
func ValidateGraph(workflow *models.Workflow) error {
	for _, edge := range workflow.Edges {
		if _, ok := workflow.NodeByID(edge.Source); !ok {
			return fmt.Errorf("%w: edge %s source %s", ErrUnknownNode, edge.ID, edge.Source)
		}

		if _, ok := workflow.NodeByID(edge.Target); !ok {
			return fmt.Errorf("%w: edge %s target %s", ErrUnknownNode, edge.ID, edge.Target)
		}

		if edge.Source == edge.Target {
			return fmt.Errorf("%w: edge %s on node %s", ErrSelfLoop, edge.ID, edge.Source)
		}
	}

	triggers := workflow.TriggerNodes()
	if len(triggers) == 0 {
		return ErrNoTriggerNodes
	}

	for _, trigger := range triggers {
		if len(workflow.EdgesTo(trigger.ID)) > 0 {
			return fmt.Errorf("%w: node %s", ErrTriggerIncoming, trigger.ID)
		}
	}

	startIDs := make([]string, 0, len(triggers))
	for _, trigger := range triggers {
		startIDs = append(startIDs, trigger.ID)
	}

	_, err := traversalOrder(workflow, startIDs)

	return err
}

// traversalOrder returns the nodes reachable from startNodeIDs in a
// deterministic topological order. Ties are broken by node declaration
// order, so repeated walks over the same graph visit nodes identically.
func traversalOrder(workflow *models.Workflow, startNodeIDs []string) ([]string, error) {
	reachable := make(map[string]bool)

	queue := make([]string, 0, len(startNodeIDs))

	for _, id := range startNodeIDs {
		if _, ok := workflow.NodeByID(id); !ok {
			return nil, fmt.Errorf("%w: start node %s", ErrUnknownNode, id)
		}

		if !reachable[id] {
			reachable[id] = true
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, edge := range workflow.EdgesFrom(current) {
			if !reachable[edge.Target] {
				reachable[edge.Target] = true
				queue = append(queue, edge.Target)
			}
		}
	}

	// Kahn's algorithm over the reachable subgraph. The candidate scan runs
	// in declaration order, which makes the result deterministic.
	indegree := make(map[string]int, len(reachable))
	for id := range reachable {
		indegree[id] = 0
	}

	for _, edge := range workflow.Edges {
		if reachable[edge.Source] && reachable[edge.Target] {
			indegree[edge.Target]++
		}
	}

	order := make([]string, 0, len(reachable))
	placed := make(map[string]bool, len(reachable))

	for len(order) < len(reachable) {
		advanced := false

		for _, node := range workflow.Nodes {
			if !reachable[node.ID] || placed[node.ID] || indegree[node.ID] != 0 {
				continue
			}

			placed[node.ID] = true
			order = append(order, node.ID)
			advanced = true

			for _, edge := range workflow.EdgesFrom(node.ID) {
				if reachable[edge.Target] {
					indegree[edge.Target]--
				}
			}
		}

		if !advanced {
			return nil, ErrCycle
		}
	}

	return order, nil
}
