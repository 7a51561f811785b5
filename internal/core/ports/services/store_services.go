package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
	"github.com/temmy669/imprest-portal-back-up/internal/dto"
)

// StoreReaderSvc defines read operations for stores
type StoreReaderSvc interface {
	// GetStoreByID retrieves a store together with its derived imprest balance.
	GetStoreByID(ctx context.Context, actor domain.Actor, storeID int64) (*dto.StoreResponse, error)

	// ListStores lists the stores visible to the actor, balances included.
	ListStores(ctx context.Context, actor domain.Actor) ([]dto.StoreResponse, error)

	// GetStoreBalance computes budget minus approved reimbursement totals.
	GetStoreBalance(ctx context.Context, storeID int64) (decimal.Decimal, error)

	// ListBudgetHistory retrieves the audit trail of budget changes.
	ListBudgetHistory(ctx context.Context, actor domain.Actor, storeID int64) ([]dto.BudgetChangeResponse, error)
}

// StoreWriterSvc defines admin mutations for stores
type StoreWriterSvc interface {
	// CreateStore registers a new retail location.
	CreateStore(ctx context.Context, actor domain.Actor, req dto.CreateStoreRequest) (*domain.Store, error)

	// UpdateStore updates store attributes; budget changes are recorded in the
	// budget history.
	UpdateStore(ctx context.Context, actor domain.Actor, storeID int64, req dto.UpdateStoreRequest) (*domain.Store, error)
}

// StoreSvcFacade combines all store service interfaces
type StoreSvcFacade interface {
	StoreReaderSvc
	StoreWriterSvc
}
