package setvariable

import (
	"github.com/chainreact/chainreact/pkg/protocol"
)

type ActionFactory struct{}

func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

func (*ActionFactory) ID() string {
	return "set_variable"
}

func (*ActionFactory) Name() string {
	return "Set Variable"
}

func (*ActionFactory) Description() string {
	return "Stores a value in the execution's variables, readable downstream as {{vars.<name>}}."
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
			"name": map[string]any{
				"type":        "string",
				"description": "Variable name.",
			},
			"value": map[string]any{
				"description": "Value to store. May reference upstream outputs.",
			},
		},
		"required": []string{"name"},
	}
}
