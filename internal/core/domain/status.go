package domain

// ApprovalStatus is the state of a request, a reimbursement track, or a single
// line item within either.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusDeclined ApprovalStatus = "declined"

	// StatusDisbursed applies only to the reimbursement aggregate status once
	// the treasurer pays out. The aggregation rule never produces it.
	StatusDisbursed ApprovalStatus = "disbursed"
)

// DisbursementStatus tracks whether an approved reimbursement has been paid
// out. Disbursed is terminal.
type DisbursementStatus string

const (
	DisbursementPending   DisbursementStatus = "pending"
	DisbursementDisbursed DisbursementStatus = "disbursed"
)

// AggregateItemStatuses folds a set of item statuses into the aggregate-level
// status: any declined item declines the aggregate, otherwise the aggregate is
// approved only once every item is approved, otherwise it stays pending.
//
// The rule is re-evaluated after every single item-level decision, never
// computed once and cached.
func AggregateItemStatuses(statuses []ApprovalStatus) ApprovalStatus {
	if len(statuses) == 0 {
		return StatusPending
	}
	allApproved := true
	for _, s := range statuses {
		if s == StatusDeclined {
			return StatusDeclined
		}
		if s != StatusApproved {
			allApproved = false
		}
	}
	if allApproved {
		return StatusApproved
	}
	return StatusPending
}
