// Package transform provides a node that reshapes data between nodes. The
// configured fields arrive with all upstream references already resolved,
// so the node's job is only to emit them as its own output.
package transform

import (
	"context"
	"errors"

	"github.com/chainreact/chainreact/pkg/protocol"
)

// ErrFieldsRequired is returned when the fields mapping is missing.
var ErrFieldsRequired = errors.New("missing or invalid 'fields' in configuration")

type Action struct {
	Fields map[string]any
}

func NewAction(config map[string]any) (*Action, error) {
	fields, ok := config["fields"].(map[string]any)
	if !ok {
		return nil, ErrFieldsRequired
	}

	return &Action{Fields: fields}, nil
}

func (a *Action) Execute(ctx context.Context, actionCtx protocol.ActionContext) (*protocol.ActionResult, error) {
	actionCtx.Logger.DebugContext(ctx, "Executing transform", "field_count", len(a.Fields))

	output := make(map[string]any, len(a.Fields))
	for key, value := range a.Fields {
		output[key] = value
	}

	return &protocol.ActionResult{Output: output}, nil
}
