// Package approval provides a human-in-the-loop node: a wait specialized to
// human_response events, keyed by the execution so one approval resumes
// exactly one run.
package approval

import (
	"context"
	"time"

	"github.com/chainreact/chainreact/pkg/models"
	"github.com/chainreact/chainreact/pkg/protocol"
)

type Action struct {
	Prompt        string
	Timeout       time.Duration
	TimeoutAction models.TimeoutAction
}

func NewAction(config map[string]any) (*Action, error) {
	action := &Action{TimeoutAction: models.TimeoutActionCancel}

	if prompt, ok := config["prompt"].(string); ok {
		action.Prompt = prompt
	}

	if seconds, ok := config["timeout"].(float64); ok && seconds > 0 {
		action.Timeout = time.Duration(seconds) * time.Second
	}

	if timeoutAction, ok := config["timeout_action"].(string); ok && timeoutAction != "" {
		action.TimeoutAction = models.TimeoutAction(timeoutAction)
	}

	return action, nil
}

func (a *Action) Execute(ctx context.Context, actionCtx protocol.ActionContext) (*protocol.ActionResult, error) {
	actionCtx.Logger.InfoContext(ctx, "Waiting for human response", "prompt", a.Prompt)

	return &protocol.ActionResult{
		Pause: &protocol.PauseRequest{
			EventType: models.WaitEventHumanResponse,
			// Responses carry the execution id, so match on it: an approval
			// for one run can never resume another.
			MatchCondition: models.MatchCondition{
				"execution_id": actionCtx.ExecutionID,
			},
			Timeout:       a.Timeout,
			TimeoutAction: a.TimeoutAction,
		},
	}, nil
}
