package trigger

import (
	"github.com/chainreact/chainreact/pkg/protocol"
)

// ActionFactory serves one trigger node type. All trigger types share the
// same pass-through behavior; they differ only in how the execution gets
// started (manual call, webhook delivery, schedule).
type ActionFactory struct {
	id          string
	name        string
	description string
	schema      map[string]any
}

func NewManualFactory() *ActionFactory {
	return &ActionFactory{
		id:          "manual_trigger",
		name:        "Manual Trigger",
		description: "Starts the workflow from an explicit execute call. The call payload becomes the trigger data.",
		schema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}
}

func NewWebhookFactory() *ActionFactory {
	return &ActionFactory{
		id:          "webhook_trigger",
		name:        "Webhook Trigger",
		description: "Starts the workflow when a webhook is delivered to the configured path.",
		schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path": map[string]any{
					"type":        "string",
					"description": "Webhook path this trigger listens on.",
					"examples":    []string{"/hooks/orders"},
				},
			},
			"required": []string{"path"},
		},
	}
}

func NewScheduleFactory() *ActionFactory {
	return &ActionFactory{
		id:          "schedule_trigger",
		name:        "Schedule Trigger",
		description: "Starts the workflow on a cron schedule.",
		schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"cron": map[string]any{
					"type":        "string",
					"description": "Cron expression.",
					"examples":    []string{"0 9 * * MON-FRI"},
				},
			},
			"required": []string{"cron"},
		},
	}
}

func (f *ActionFactory) ID() string {
	return f.id
}

func (f *ActionFactory) Name() string {
	return f.name
}

func (f *ActionFactory) Description() string {
	return f.description
}

func (*ActionFactory) IsTrigger() bool {
	return true
}

func (f *ActionFactory) Create(_ map[string]any) (protocol.Action, error) {
	return NewAction(), nil
}

func (f *ActionFactory) Schema() map[string]any {
	return f.schema
}
