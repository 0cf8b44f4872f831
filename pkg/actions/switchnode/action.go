// Package switchnode provides the multi-way branch node: the first case
// whose expression evaluates to true selects the output port, otherwise
// the default port is emitted.
package switchnode

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainreact/chainreact/pkg/dataflow"
	"github.com/chainreact/chainreact/pkg/protocol"
	"github.com/expr-lang/expr"
)

// ErrCasesRequired is returned when no cases are configured.
var ErrCasesRequired = errors.New("missing or invalid 'cases' in configuration")

// Case pairs an expression with the port it selects.
type Case struct {
	Port       string
	Expression string
}

type Action struct {
	Cases       []Case
	DefaultPort string
}

func NewAction(config map[string]any) (*Action, error) {
	rawCases, ok := config["cases"].([]any)
	if !ok || len(rawCases) == 0 {
		return nil, ErrCasesRequired
	}

	cases := make([]Case, 0, len(rawCases))

	for i, rawCase := range rawCases {
		caseMap, ok := rawCase.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: case %d is not an object", ErrCasesRequired, i)
		}

		port, _ := caseMap["port"].(string)
		expression, _ := caseMap["expression"].(string)

		if port == "" || expression == "" {
			return nil, fmt.Errorf("%w: case %d needs 'port' and 'expression'", ErrCasesRequired, i)
		}

		cases = append(cases, Case{Port: port, Expression: expression})
	}

	defaultPort, _ := config["default_port"].(string)
	if defaultPort == "" {
		defaultPort = "default"
	}

	return &Action{Cases: cases, DefaultPort: defaultPort}, nil
}

func (a *Action) Execute(ctx context.Context, actionCtx protocol.ActionContext) (*protocol.ActionResult, error) {
	env := dataflow.Document(actionCtx.State)

	for _, branch := range a.Cases {
		program, err := expr.Compile(branch.Expression, expr.Env(env), expr.AllowUndefinedVariables())
		if err != nil {
			return nil, fmt.Errorf("failed to compile case expression %q: %w", branch.Expression, err)
		}

		out, err := expr.Run(program, env)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate case expression %q: %w", branch.Expression, err)
		}

		if matched, ok := out.(bool); ok && matched {
			actionCtx.Logger.DebugContext(ctx, "Switch case matched", "port", branch.Port)

			return &protocol.ActionResult{
				Output:     map[string]any{"port": branch.Port},
				OutputPort: branch.Port,
			}, nil
		}
	}

	return &protocol.ActionResult{
		Output:     map[string]any{"port": a.DefaultPort},
		OutputPort: a.DefaultPort,
	}, nil
}
