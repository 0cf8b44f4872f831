// Package trigger provides the workflow entry nodes. A trigger node does
// not produce data of its own: it surfaces the payload that started the
// execution as its output, so downstream nodes can reference it either as
// {{trigger.*}} or through the node id.
package trigger

import (
	"context"

	"github.com/chainreact/chainreact/pkg/protocol"
)

type Action struct{}

func NewAction() *Action {
	return &Action{}
}

func (a *Action) Execute(ctx context.Context, actionCtx protocol.ActionContext) (*protocol.ActionResult, error) {
	actionCtx.Logger.DebugContext(ctx, "Trigger node fired")

	output := actionCtx.State.Trigger
	if output == nil {
		output = map[string]any{}
	}

	return &protocol.ActionResult{Output: output}, nil
}
