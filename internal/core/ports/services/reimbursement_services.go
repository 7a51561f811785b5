package services

import (
	"context"

	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
	"github.com/temmy669/imprest-portal-back-up/internal/dto"
)

// ReimbursementReaderSvc defines read operations for reimbursements
type ReimbursementReaderSvc interface {
	// GetReimbursementByID retrieves a reimbursement visible to the actor.
	GetReimbursementByID(ctx context.Context, actor domain.Actor, reimbursementID int64) (*domain.Reimbursement, error)

	// ListReimbursements retrieves the actor's role-scoped listing. Internal
	// Control only sees area-manager-approved requests; drafts are visible to
	// their requester only.
	ListReimbursements(ctx context.Context, actor domain.Actor, query dto.ReimbursementListQuery) (*dto.ListResponse[dto.ReimbursementResponse], error)
}

// ReimbursementWriterSvc defines the workflow transitions for reimbursements
type ReimbursementWriterSvc interface {
	// CreateReimbursement persists a new reimbursement, resolving purchase
	// request references into links and carrying over receipt validations.
	CreateReimbursement(ctx context.Context, actor domain.Actor, req dto.CreateReimbursementRequest) (*domain.Reimbursement, []domain.Event, error)

	// Submit finalizes a draft, enforcing the missing-receipt invariant.
	Submit(ctx context.Context, actor domain.Actor, reimbursementID int64) (*domain.Reimbursement, error)

	// Approve completes the track matching the actor's role.
	Approve(ctx context.Context, actor domain.Actor, reimbursementID int64) (*domain.Reimbursement, []domain.Event, error)

	// Decline declines on the actor's track. An Internal Control decline
	// re-opens the Area Manager track.
	Decline(ctx context.Context, actor domain.Actor, reimbursementID int64, comment string) (*domain.Reimbursement, []domain.Event, error)

	// ApproveItem approves one item on the actor's track.
	ApproveItem(ctx context.Context, actor domain.Actor, reimbursementID, itemID int64) (*domain.Reimbursement, []domain.Event, error)

	// DeclineItem declines one item on the actor's track.
	DeclineItem(ctx context.Context, actor domain.Actor, reimbursementID, itemID int64, comment string) (*domain.Reimbursement, []domain.Event, error)

	// UpdateItems edits items before disbursement, resetting both tracks.
	UpdateItems(ctx context.Context, actor domain.Actor, reimbursementID int64, req dto.UpdateReimbursementRequest) (*domain.Reimbursement, error)

	// AttachReceipt stores an uploaded receipt path on an item.
	AttachReceipt(ctx context.Context, actor domain.Actor, reimbursementID, itemID int64, path string) (*domain.Reimbursement, error)

	// Disburse pays out an approved reimbursement exactly once, validating the
	// bank and account are active.
	Disburse(ctx context.Context, actor domain.Actor, reimbursementID int64, req dto.DisburseRequest) (*domain.Reimbursement, []domain.Event, error)

	// BulkDisburse pays out several reimbursements from one account. Failures
	// are reported per id; successful disbursements stand.
	BulkDisburse(ctx context.Context, actor domain.Actor, req dto.BulkDisburseRequest) (map[int64]error, []domain.Event, error)
}

// ReimbursementSvcFacade combines all reimbursement service interfaces
type ReimbursementSvcFacade interface {
	ReimbursementReaderSvc
	ReimbursementWriterSvc
}
