package approval

import (
	"github.com/chainreact/chainreact/pkg/protocol"
)

type ActionFactory struct{}

func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

func (*ActionFactory) ID() string {
	return "approval"
}

func (*ActionFactory) Name() string {
	return "Approval"
}

func (*ActionFactory) Description() string {
	return "Pauses the execution until a human responds. The response payload is exposed to downstream nodes as {{event}}."
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
			"prompt": map[string]any{
				"type":        "string",
				"description": "Question shown to the approver.",
			},
			"timeout": map[string]any{
				"type":        "number",
				"description": "Seconds to wait before the timeout action runs. Zero waits forever.",
			},
			"timeout_action": map[string]any{
				"type":    "string",
				"default": "cancel",
				"enum":    []string{"cancel", "proceed"},
			},
		},
	}
}
