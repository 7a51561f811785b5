package pgsql

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/temmy669/imprest-portal-back-up/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool, lockWait time.Duration) portsrepo.RepositoryProvider {
	purchaseRepo := newPgxPurchaseRequestRepository(dbPool, lockWait)
	reimbursementRepo := newPgxReimbursementRepository(dbPool, lockWait)
	storeRepo := newPgxStoreRepository(dbPool)
	bankRepo := newPgxBankRepository(dbPool)
	limitRepo := newPgxLimitRepository(dbPool)

	return portsrepo.RepositoryProvider{
		PurchaseRepo:      purchaseRepo,
		ReimbursementRepo: reimbursementRepo,
		StoreRepo:         storeRepo,
		BankRepo:          bankRepo,
		LimitRepo:         limitRepo,
	}
}
