package switchnode

import (
	"github.com/chainreact/chainreact/pkg/protocol"
)

type ActionFactory struct{}

func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

func (*ActionFactory) ID() string {
	return "switch"
}

func (*ActionFactory) Name() string {
	return "Switch"
}

func (*ActionFactory) Description() string {
	return "Routes the execution to the port of the first matching case, or to the default port."
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
			"cases": map[string]any{
				"type":        "array",
				"description": "Evaluated in order; the first true expression wins.",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"port": map[string]any{
							"type": "string",
						},
						"expression": map[string]any{
							"type": "string",
						},
					},
					"required": []string{"port", "expression"},
				},
				"minItems": 1,
			},
			"default_port": map[string]any{
				"type":        "string",
				"description": "Port emitted when no case matches",
				"default":     "default",
			},
		},
		"required": []string{"cases"},
	}
}
