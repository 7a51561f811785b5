package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
)

// ReimbursementFilter narrows listing queries.
type ReimbursementFilter struct {
	RequesterID           string
	StoreIDs              []int64
	Status                domain.ApprovalStatus
	InternalControlStatus domain.ApprovalStatus
	IncludeDrafts         bool
	From                  *time.Time
	To                    *time.Time
	Limit                 int
	Offset                int
}

// ReimbursementReader defines read operations for reimbursement data.
type ReimbursementReader interface {
	// FindReimbursementByID retrieves a reimbursement with its items, comments
	// and linked purchase request ids.
	FindReimbursementByID(ctx context.Context, reimbursementID int64) (*domain.Reimbursement, error)

	// ListReimbursements retrieves reimbursements matching the filter, newest
	// first, with the total match count and per-status counts.
	ListReimbursements(ctx context.Context, filter ReimbursementFilter) ([]domain.Reimbursement, int, map[domain.ApprovalStatus]int, error)

	// SumApprovedTotalByStore returns the total amount of reimbursements whose
	// Internal Control track is approved for a store. Used for the derived
	// imprest balance; never persisted.
	SumApprovedTotalByStore(ctx context.Context, storeID int64) (decimal.Decimal, error)
}

// ReimbursementWriter defines write operations for reimbursement data.
type ReimbursementWriter interface {
	// CreateReimbursement persists a new aggregate, its items, and the
	// purchase request links, assigning ids.
	CreateReimbursement(ctx context.Context, r *domain.Reimbursement) error
}

// ReimbursementLocker is the concurrency guard for the reimbursement
// aggregate, with the same contract as PurchaseRequestLocker.
type ReimbursementLocker interface {
	WithReimbursementLock(ctx context.Context, reimbursementID int64, fn func(r *domain.Reimbursement) error) (*domain.Reimbursement, error)
}

// ReimbursementRepositoryFacade combines all reimbursement repository interfaces.
type ReimbursementRepositoryFacade interface {
	ReimbursementReader
	ReimbursementWriter
	ReimbursementLocker
}

// ReimbursementRepositoryWithTx extends the facade with transaction capabilities.
type ReimbursementRepositoryWithTx interface {
	ReimbursementRepositoryFacade
	TransactionManager
}
