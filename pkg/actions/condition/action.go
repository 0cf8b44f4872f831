// Package condition provides the two-way branch node. The expression is
// evaluated against the data-flow state and the node emits either the
// "true" or the "false" output port; edges conditioned on the other port
// are not followed.
package condition

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainreact/chainreact/pkg/dataflow"
	"github.com/chainreact/chainreact/pkg/protocol"
	"github.com/expr-lang/expr"
)

var (
	// ErrExpressionRequired is returned when the expression is missing.
	ErrExpressionRequired = errors.New("missing or invalid 'expression' in configuration")
	// ErrNotBoolean is returned when the expression result is not a boolean.
	ErrNotBoolean = errors.New("condition expression did not evaluate to a boolean")
)

type Action struct {
	Expression string
}

func NewAction(config map[string]any) (*Action, error) {
	expression, ok := config["expression"].(string)
	if !ok || expression == "" {
		return nil, ErrExpressionRequired
	}

	return &Action{Expression: expression}, nil
}

func (a *Action) Execute(ctx context.Context, actionCtx protocol.ActionContext) (*protocol.ActionResult, error) {
	env := dataflow.Document(actionCtx.State)

	program, err := expr.Compile(a.Expression, expr.Env(env), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("failed to compile condition expression %q: %w", a.Expression, err)
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate condition expression %q: %w", a.Expression, err)
	}

	result, ok := out.(bool)
	if !ok {
		return nil, fmt.Errorf("%w: %q returned %T", ErrNotBoolean, a.Expression, out)
	}

	port := "false"
	if result {
		port = "true"
	}

	actionCtx.Logger.DebugContext(ctx, "Condition evaluated", "expression", a.Expression, "result", result)

	return &protocol.ActionResult{
		Output:     map[string]any{"result": result},
		OutputPort: port,
	}, nil
}
