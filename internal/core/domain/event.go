package domain

// EventType identifies a stage-completing transition on an aggregate.
type EventType string

const (
	EventCreated   EventType = "created"
	EventApproved  EventType = "approved"
	EventDeclined  EventType = "declined"
	EventDisbursed EventType = "disbursed"
)

// Stage names the approval track a transition completed.
type Stage string

const (
	StageAreaManager     Stage = "area_manager"
	StageInternalControl Stage = "internal_control"
	StageDisbursement    Stage = "disbursement"
)

// AggregateType distinguishes which kind of aggregate an event refers to.
type AggregateType string

const (
	AggregatePurchaseRequest AggregateType = "purchase_request"
	AggregateReimbursement   AggregateType = "reimbursement"
)

// Event is returned by a state-machine transition for the caller to dispatch
// after commit. The core never dispatches events itself, and carries only
// identifiers, never rendered content.
type Event struct {
	Type          EventType
	AggregateType AggregateType
	AggregateID   int64
	Stage         Stage
	ActorID       string
	Reason        string
}
