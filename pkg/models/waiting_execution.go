package models

import "time"

// WaitEventType classifies the external event a paused execution waits for.
type WaitEventType string

const (
	WaitEventWebhook          WaitEventType = "webhook"
	WaitEventCustom           WaitEventType = "custom_event"
	WaitEventIntegrationEvent WaitEventType = "integration_event"
	WaitEventHumanResponse    WaitEventType = "human_response"
)

// WaitStatus is the state of a waiting execution record. The transition
// from waiting to resumed happens exactly once, claimed atomically by
// whichever intake invocation matches first.
type WaitStatus string

const (
	WaitStatusWaiting WaitStatus = "waiting"
	WaitStatusResumed WaitStatus = "resumed"
)

// TimeoutAction decides what the sweep does with an expired wait.
type TimeoutAction string

const (
	TimeoutActionCancel  TimeoutAction = "cancel"  // fail the execution with a timeout reason
	TimeoutActionProceed TimeoutAction = "proceed" // resume as if a null event arrived
)

// Resume reasons recorded when a waiting execution is claimed for anything
// other than a matching event.
const (
	ResumeReasonEvent     = "event"
	ResumeReasonTimeout   = "timeout"
	ResumeReasonCancelled = "cancelled"
)

// EventConfig carries the coarse discriminators used to bound the candidate
// set during intake matching, before the fine match condition runs.
type EventConfig struct {
	Provider    string `json:"provider,omitempty"`
	WebhookPath string `json:"webhook_path,omitempty"`
	EventName   string `json:"event_name,omitempty"`
}

// WaitingExecution is the durable record of an execution suspended at a
// specific node: the condition under which it resumes, the serialized
// data-flow snapshot, and a deadline.
type WaitingExecution struct {
	ID             string          `json:"id"`
	ExecutionID    string          `json:"execution_id" validate:"required"`
	WorkflowID     string          `json:"workflow_id"  validate:"required"`
	UserID         string          `json:"user_id"`
	NodeID         string          `json:"node_id"      validate:"required"`
	EventType      WaitEventType   `json:"event_type"   validate:"required"`
	EventConfig    EventConfig     `json:"event_config"`
	MatchCondition MatchCondition  `json:"match_condition,omitempty"`
	ExecutionData  *ExecutionState `json:"execution_data"`
	Status         WaitStatus      `json:"status"`
	ResumeReason   string          `json:"resume_reason,omitempty"`
	TimeoutAt      *time.Time      `json:"timeout_at,omitempty"`
	TimeoutAction  TimeoutAction   `json:"timeout_action,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	ResumedAt      *time.Time      `json:"resumed_at,omitempty"`
}

// Expired reports whether the wait deadline has passed at the given time.
func (w *WaitingExecution) Expired(now time.Time) bool {
	return w.TimeoutAt != nil && now.After(*w.TimeoutAt)
}
