package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	PurchaseRepo      PurchaseRequestRepositoryWithTx
	ReimbursementRepo ReimbursementRepositoryWithTx
	StoreRepo         StoreRepositoryFacade
	BankRepo          BankRepositoryFacade
	LimitRepo         LimitConfigRepository
}
