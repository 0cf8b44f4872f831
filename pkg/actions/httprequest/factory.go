package httprequest

import (
	"github.com/chainreact/chainreact/pkg/protocol"
)

type ActionFactory struct{}

func NewActionFactory() *ActionFactory {
	return &ActionFactory{}
}

func (*ActionFactory) ID() string {
	return "http_request"
}

func (*ActionFactory) Name() string {
	return "HTTP Request"
}

func (*ActionFactory) Description() string {
	return "Performs an HTTP request with configurable method, headers, body, timeout and retry."
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
			"url": map[string]any{
				"type":        "string",
				"description": "Full request URL.",
				"examples":    []string{"https://api.example.com/v1/charges"},
			},
			"method": map[string]any{
				"type":        "string",
				"description": "HTTP method",
				"default":     "GET",
				"enum":        []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD"},
			},
			"headers": map[string]any{
				"type":        "object",
				"description": "Request headers.",
				"additionalProperties": map[string]any{
					"type": "string",
				},
			},
			"body": map[string]any{
				"type":        "string",
				"description": "Raw request body.",
			},
			"timeout": map[string]any{
				"type":        "number",
				"description": "Request timeout in seconds",
				"default":     defaultTimeoutSeconds,
			},
			"retry": map[string]any{
				"type":        "object",
				"description": "Retry behavior for failed requests",
				"properties": map[string]any{
					"attempts": map[string]any{
						"type":    "number",
						"default": 1,
					},
					"delay": map[string]any{
						"type":        "number",
						"description": "Delay between attempts in seconds",
						"default":     0,
					},
				},
			},
		},
		"required": []string{"url"},
	}
}
