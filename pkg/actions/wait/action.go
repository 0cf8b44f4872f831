// Package wait provides the generic wait-for-event node. Executing it never
// completes the node: it suspends the whole execution until an external
// event matching the configured criteria arrives, or the timeout fires.
package wait

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chainreact/chainreact/pkg/models"
	"github.com/chainreact/chainreact/pkg/protocol"
)

var (
	// ErrEventTypeRequired is returned when the wait event type is missing.
	ErrEventTypeRequired = errors.New("missing or invalid 'event_type' in configuration")
	// ErrEventTypeUnknown is returned for an unsupported wait event type.
	ErrEventTypeUnknown = errors.New("unknown wait event type")
	// ErrTimeoutInvalid is returned when the timeout cannot be parsed.
	ErrTimeoutInvalid = errors.New("invalid 'timeout' in configuration")
)

type Action struct {
	EventType      models.WaitEventType
	EventConfig    models.EventConfig
	MatchCondition models.MatchCondition
	Timeout        time.Duration
	TimeoutAction  models.TimeoutAction
}

func NewAction(config map[string]any) (*Action, error) {
	rawType, ok := config["event_type"].(string)
	if !ok || rawType == "" {
		return nil, ErrEventTypeRequired
	}

	eventType := models.WaitEventType(rawType)

	switch eventType {
	case models.WaitEventWebhook, models.WaitEventCustom, models.WaitEventIntegrationEvent, models.WaitEventHumanResponse:
	default:
		return nil, fmt.Errorf("%w: %s", ErrEventTypeUnknown, rawType)
	}

	action := &Action{EventType: eventType}

	if provider, ok := config["provider"].(string); ok {
		action.EventConfig.Provider = provider
	}

	if path, ok := config["webhook_path"].(string); ok {
		action.EventConfig.WebhookPath = path
	}

	if name, ok := config["event_name"].(string); ok {
		action.EventConfig.EventName = name
	}

	if match, ok := config["match"].(map[string]any); ok {
		action.MatchCondition = models.MatchCondition(match)
	}

	timeout, err := parseTimeout(config["timeout"])
	if err != nil {
		return nil, err
	}

	action.Timeout = timeout

	if timeoutAction, ok := config["timeout_action"].(string); ok {
		action.TimeoutAction = models.TimeoutAction(timeoutAction)
	}

	return action, nil
}

// parseTimeout accepts seconds as a number or a duration string like "48h".
func parseTimeout(raw any) (time.Duration, error) {
	switch value := raw.(type) {
	case nil:
		return 0, nil
	case float64:
		if value < 0 {
			return 0, ErrTimeoutInvalid
		}

		return time.Duration(value) * time.Second, nil
	case string:
		duration, err := time.ParseDuration(value)
		if err != nil || duration < 0 {
			return 0, fmt.Errorf("%w: %q", ErrTimeoutInvalid, value)
		}

		return duration, nil
	default:
		return 0, ErrTimeoutInvalid
	}
}

func (a *Action) Execute(ctx context.Context, actionCtx protocol.ActionContext) (*protocol.ActionResult, error) {
	actionCtx.Logger.InfoContext(ctx, "Suspending execution to wait for event",
		"wait_event_type", a.EventType,
		"timeout", a.Timeout,
	)

	return &protocol.ActionResult{
		Pause: &protocol.PauseRequest{
			EventType:      a.EventType,
			EventConfig:    a.EventConfig,
			MatchCondition: a.MatchCondition,
			Timeout:        a.Timeout,
			TimeoutAction:  a.TimeoutAction,
		},
	}, nil
}
