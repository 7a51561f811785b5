package services

import (
	"context"

	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
	"github.com/temmy669/imprest-portal-back-up/internal/dto"
)

// PurchaseRequestReaderSvc defines read operations for purchase requests
type PurchaseRequestReaderSvc interface {
	// GetRequestByID retrieves a purchase request visible to the actor.
	GetRequestByID(ctx context.Context, actor domain.Actor, requestID int64) (*domain.PurchaseRequest, error)

	// ListRequests retrieves the actor's role-scoped listing with dashboard counts.
	ListRequests(ctx context.Context, actor domain.Actor, query dto.ListQuery) (*dto.ListResponse[dto.PurchaseRequestResponse], error)

	// ListApprovedForReferencing lists the actor's approved, voucher-bearing
	// requests rendered as reimbursement reference candidates.
	ListApprovedForReferencing(ctx context.Context, actor domain.Actor) ([]dto.ApprovedPurchaseRequestResponse, error)
}

// PurchaseRequestWriterSvc defines the workflow transitions for purchase requests
type PurchaseRequestWriterSvc interface {
	// CreateRequest validates items against the current threshold and persists
	// a pending request.
	CreateRequest(ctx context.Context, actor domain.Actor, req dto.CreatePurchaseRequestRequest) (*domain.PurchaseRequest, []domain.Event, error)

	// Approve finalizes the whole request under the aggregate lock.
	Approve(ctx context.Context, actor domain.Actor, requestID int64) (*domain.PurchaseRequest, []domain.Event, error)

	// Decline finalizes the whole request as declined; the comment is mandatory.
	Decline(ctx context.Context, actor domain.Actor, requestID int64, comment string) (*domain.PurchaseRequest, []domain.Event, error)

	// ApproveItem approves one item and re-evaluates the aggregation rule.
	ApproveItem(ctx context.Context, actor domain.Actor, requestID, itemID int64) (*domain.PurchaseRequest, []domain.Event, error)

	// DeclineItem declines one item; any declined item declines the request.
	DeclineItem(ctx context.Context, actor domain.Actor, requestID, itemID int64, comment string) (*domain.PurchaseRequest, []domain.Event, error)

	// UpdateItems edits items before final approval, resetting touched items
	// and the aggregate to pending.
	UpdateItems(ctx context.Context, actor domain.Actor, requestID int64, req dto.UpdatePurchaseRequestRequest) (*domain.PurchaseRequest, error)
}

// PurchaseRequestSvcFacade combines all purchase request service interfaces
type PurchaseRequestSvcFacade interface {
	PurchaseRequestReaderSvc
	PurchaseRequestWriterSvc
}
