// Package setvariable provides a node that writes a value into the
// execution's variable bucket, visible to every downstream node as
// {{vars.<name>}}.
package setvariable

import (
	"context"
	"errors"

	"github.com/chainreact/chainreact/pkg/protocol"
)

// ErrNameRequired is returned when the variable name is missing.
var ErrNameRequired = errors.New("missing or invalid 'name' in configuration")

type Action struct {
	VariableName string
	Value        any
}

func NewAction(config map[string]any) (*Action, error) {
	name, ok := config["name"].(string)
	if !ok || name == "" {
		return nil, ErrNameRequired
	}

	return &Action{VariableName: name, Value: config["value"]}, nil
}

func (a *Action) Execute(ctx context.Context, actionCtx protocol.ActionContext) (*protocol.ActionResult, error) {
	actionCtx.Logger.DebugContext(ctx, "Setting variable", "name", a.VariableName)

	if actionCtx.State.Variables == nil {
		actionCtx.State.Variables = make(map[string]any)
	}

	actionCtx.State.Variables[a.VariableName] = a.Value

	return &protocol.ActionResult{
		Output: map[string]any{
			"name":  a.VariableName,
			"value": a.Value,
		},
	}, nil
}
