package condition

import (
	"github.com/chainreact/chainreact/pkg/protocol"
)

type ActionFactory struct{}

func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

func (*ActionFactory) ID() string {
	return "condition"
}

func (*ActionFactory) Name() string {
	return "Condition"
}

func (*ActionFactory) Description() string {
	return "Evaluates a boolean expression against the execution state and branches on the \"true\" or \"false\" port."
}

func (*ActionFactory) IsTrigger() bool {
	return false
}

func (f *ActionFactory) Create(config map[string]any) (protocol.Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	return NewAction(config)
}

func (f *ActionFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"expression": map[string]any{
				"type":        "string",
				"description": "Boolean expression over the execution state.",
				"examples": []string{
					`trigger.amount > 1000`,
					`fetch_order.output.body.status == "paid"`,
				},
			},
		},
		"required": []string{"expression"},
	}
}
