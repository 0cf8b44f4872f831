package wait

import (
	"github.com/chainreact/chainreact/pkg/protocol"
)

type ActionFactory struct{}

func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

func (*ActionFactory) ID() string {
	return "wait"
}

func (*ActionFactory) Name() string {
	return "Wait for Event"
}

func (*ActionFactory) Description() string {
	return "Suspends the execution until a matching external event arrives or the timeout fires."
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
			"event_type": map[string]any{
				"type":        "string",
				"description": "Kind of event to wait for",
				"enum":        []string{"webhook", "custom_event", "integration_event", "human_response"},
			},
			"provider": map[string]any{
				"type":        "string",
				"description": "Integration provider to match, for integration_event waits.",
				"examples":    []string{"gmail", "slack", "stripe"},
			},
			"webhook_path": map[string]any{
				"type":        "string",
				"description": "Webhook path to match, for webhook waits.",
			},
			"event_name": map[string]any{
				"type":        "string",
				"description": "Event name to match, for custom_event and integration_event waits.",
			},
			"match": map[string]any{
				"type":        "object",
				"description": "Payload predicate: field paths to expected values or {\"$eq\"|\"$ne\"|\"$exists\": ...} operators. All entries must match.",
				"examples": []map[string]any{
					{"order_id": "{{trigger.order_id}}"},
					{"status": map[string]any{"$ne": "pending"}},
				},
			},
			"timeout": map[string]any{
				"description": "Seconds as a number, or a duration string like \"48h\". Zero means wait forever.",
			},
			"timeout_action": map[string]any{
				"type":        "string",
				"description": "What to do when the timeout fires",
				"default":     "cancel",
				"enum":        []string{"cancel", "proceed"},
			},
		},
		"required": []string{"event_type"},
	}
}
