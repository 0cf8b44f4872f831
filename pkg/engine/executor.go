package engine

import (
	"context"
	"fmt"

	"github.com/chainreact/chainreact/pkg/dataflow"
	"github.com/chainreact/chainreact/pkg/models"
	"github.com/chainreact/chainreact/pkg/otelhelper"
	"github.com/chainreact/chainreact/pkg/protocol"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// executeNode resolves the node's configuration against the current state,
// applies edge field mappings on top, and invokes the registered action. A
// panicking action is converted into a node-level error so one broken
// integration cannot take the worker down.
func (e *Engine) executeNode(
	ctx context.Context,
	execution *models.Execution,
	node *models.Node,
	state *models.ExecutionState,
	mappings map[string]string,
) (result *protocol.ActionResult, err error) {
	if e.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, e.tracer, "engine.execute_node",
			attribute.String(otelhelper.ExecutionIDKey, execution.ID),
			attribute.String(otelhelper.NodeIDKey, node.ID),
			attribute.String(otelhelper.NodeTypeKey, node.Type),
		)

		defer func() {
			if err != nil {
				otelhelper.SetError(span, err)
			}

			span.End()
		}()
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("node %s panicked: %v", node.ID, r)
		}
	}()

	config := e.resolveConfig(node, state, mappings)

	action, err := e.registry.Create(node.Type, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create action for node %s: %w", node.ID, err)
	}

	result, err = action.Execute(ctx, protocol.ActionContext{
		UserID:      execution.UserID,
		WorkflowID:  execution.WorkflowID,
		ExecutionID: execution.ID,
		NodeID:      node.ID,
		State:       state,
		Logger:      e.logger.With("node_id", node.ID, "node_type", node.Type),
	})
	if err != nil {
		return nil, err
	}

	if result == nil {
		result = &protocol.ActionResult{}
	}

	if result.Output == nil {
		result.Output = map[string]any{}
	}

	return result, nil
}

// resolveConfig materializes every data-flow reference in the node config.
// Edge mappings take precedence over statically configured fields.
func (e *Engine) resolveConfig(
	node *models.Node,
	state *models.ExecutionState,
	mappings map[string]string,
) map[string]any {
	config := make(map[string]any, len(node.Config)+len(mappings))
	for key, value := range node.Config {
		config[key] = value
	}

	for field, reference := range mappings {
		config[field] = reference
	}

	return dataflow.ResolveConfig(config, state)
}
