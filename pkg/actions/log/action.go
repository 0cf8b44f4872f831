// Package log provides a logging node for workflow debugging.
package log

import (
	"context"
	"fmt"

	"github.com/chainreact/chainreact/pkg/protocol"
)

type Action struct {
	Message string
	Level   string
}

func NewAction(config map[string]any) *Action {
	message, _ := config["message"].(string)

	level, _ := config["level"].(string)
	if level == "" {
		level = "info"
	}

	return &Action{Message: message, Level: level}
}

func (a *Action) Execute(ctx context.Context, actionCtx protocol.ActionContext) (*protocol.ActionResult, error) {
	logger := actionCtx.Logger.With("action_type", "log")

	switch a.Level {
	case "debug":
		logger.DebugContext(ctx, a.Message)
	case "warn", "warning":
		logger.WarnContext(ctx, a.Message)
	case "error":
		logger.ErrorContext(ctx, a.Message)
	default:
		logger.InfoContext(ctx, a.Message)
	}

	return &protocol.ActionResult{
		Output: map[string]any{
			"message": a.Message,
			"level":   a.Level,
		},
	}, nil
}

// Validate checks the configured log level.
func (a *Action) Validate(_ context.Context) error {
	switch a.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	}

	return fmt.Errorf("%w: %s", ErrInvalidLevel, a.Level)
}
