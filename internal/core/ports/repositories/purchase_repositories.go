package repositories

import (
	"context"
	"time"

	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
)

// PurchaseRequestFilter narrows listing queries.
type PurchaseRequestFilter struct {
	RequesterID string
	StoreIDs    []int64
	Status      domain.ApprovalStatus
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// PurchaseRequestReader defines read operations for purchase request data.
type PurchaseRequestReader interface {
	// FindRequestByID retrieves a purchase request with its items and comments.
	FindRequestByID(ctx context.Context, requestID int64) (*domain.PurchaseRequest, error)

	// FindRequestsByIDs retrieves multiple requests (items included, comments omitted).
	FindRequestsByIDs(ctx context.Context, requestIDs []int64) ([]domain.PurchaseRequest, error)

	// ListRequests retrieves requests matching the filter, newest first, along
	// with the total match count and per-status counts.
	ListRequests(ctx context.Context, filter PurchaseRequestFilter) ([]domain.PurchaseRequest, int, map[domain.ApprovalStatus]int, error)

	// ListApprovedByRequester retrieves the requester's approved requests for
	// use as reimbursement references.
	ListApprovedByRequester(ctx context.Context, requesterID string) ([]domain.PurchaseRequest, error)
}

// PurchaseRequestWriter defines write operations for purchase request data.
type PurchaseRequestWriter interface {
	// CreateRequest persists a new aggregate and assigns RequestID and item ids.
	CreateRequest(ctx context.Context, pr *domain.PurchaseRequest) error
}

// PurchaseRequestLocker is the concurrency guard for the purchase request
// aggregate. WithRequestLock acquires an exclusive row lock on the request,
// re-reads the aggregate (items and comments included) inside the lock, runs
// fn against the fresh state, persists the mutated aggregate and commits.
// The lock is released on every exit path; a bounded lock wait that elapses
// surfaces apperrors.ErrConcurrency and nothing is applied.
type PurchaseRequestLocker interface {
	WithRequestLock(ctx context.Context, requestID int64, fn func(pr *domain.PurchaseRequest) error) (*domain.PurchaseRequest, error)
}

// PurchaseRequestRepositoryFacade combines all purchase request repository interfaces.
type PurchaseRequestRepositoryFacade interface {
	PurchaseRequestReader
	PurchaseRequestWriter
	PurchaseRequestLocker
}

// PurchaseRequestRepositoryWithTx extends the facade with transaction capabilities.
type PurchaseRequestRepositoryWithTx interface {
	PurchaseRequestRepositoryFacade
	TransactionManager
}
