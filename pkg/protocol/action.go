// Package protocol defines the contracts between the execution engine and
// pluggable node implementations. Every per-provider integration (Gmail,
// Slack, Stripe, ...) plugs in by satisfying these interfaces.
package protocol

import (
	"context"
	"log/slog"
	"time"

	"github.com/chainreact/chainreact/pkg/models"
)

// ActionContext exposes the execution scope to a running action: who runs
// it, which execution it belongs to, and read access to the accumulated
// data-flow state.
type ActionContext struct {
	UserID      string
	WorkflowID  string
	ExecutionID string
	NodeID      string
	State       *models.ExecutionState
	Logger      *slog.Logger
}

// PauseRequest is the sentinel an action returns to suspend the execution
// until a matching external event arrives.
type PauseRequest struct {
	EventType      models.WaitEventType
	EventConfig    models.EventConfig
	MatchCondition models.MatchCondition
	Timeout        time.Duration // zero means no deadline
	TimeoutAction  models.TimeoutAction
}

// ActionResult is the normalized outcome of one action invocation. Output
// is merged into the data-flow state under the node id. A non-empty
// OutputPort selects the branch edge to follow; empty means the default
// port. Pause, when set, suspends the execution instead.
type ActionResult struct {
	Output     map[string]any
	OutputPort string
	Pause      *PauseRequest
}

// Action executes one configured node. Implementations must return errors
// instead of panicking; the node executor converts both into node-level
// failures without aborting the process.
type Action interface {
	Execute(ctx context.Context, actionCtx ActionContext) (*ActionResult, error)
}

// ActionFactory creates action instances for one node type and describes it
// to the catalog. Create receives the node config with all data-flow
// references already resolved.
type ActionFactory interface {
	Create(config map[string]any) (Action, error)

	// ID returns the node type this factory serves.
	ID() string

	// Name returns the human-readable name for this node type.
	Name() string

	// Description returns a description of what this node does.
	Description() string

	// Schema returns the JSON schema for configuring this node type.
	Schema() map[string]any

	// IsTrigger reports whether nodes of this type are workflow entry points.
	IsTrigger() bool
}
