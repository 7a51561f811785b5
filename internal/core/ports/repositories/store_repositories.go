package repositories

import (
	"context"

	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
)

// StoreReader defines read operations for store data.
type StoreReader interface {
	FindStoreByID(ctx context.Context, storeID int64) (*domain.Store, error)
	ListStores(ctx context.Context) ([]domain.Store, error)
	ListBudgetHistory(ctx context.Context, storeID int64) ([]domain.BudgetChange, error)
}

// StoreWriter defines write operations for store data.
type StoreWriter interface {
	CreateStore(ctx context.Context, store *domain.Store) error
	UpdateStore(ctx context.Context, store *domain.Store) error

	// RecordBudgetChange appends a budget audit entry. Never updated or deleted.
	RecordBudgetChange(ctx context.Context, change domain.BudgetChange) error
}

// StoreRepositoryFacade combines store repository interfaces.
type StoreRepositoryFacade interface {
	StoreReader
	StoreWriter
}
