package services

import (
	portsrepo "github.com/temmy669/imprest-portal-back-up/internal/core/ports/repositories"
	portssvc "github.com/temmy669/imprest-portal-back-up/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The limit service comes first since both workflows validate against it.
	container.Limit = NewLimitService(repos.LimitRepo)

	container.Purchase = NewPurchaseRequestService(repos.PurchaseRepo, container.Limit)
	container.Reimbursement = NewReimbursementService(repos.ReimbursementRepo, repos.PurchaseRepo, repos.BankRepo, container.Limit)
	container.Store = NewStoreService(repos.StoreRepo, repos.ReimbursementRepo)
	container.Bank = NewBankService(repos.BankRepo)
	container.Reporting = NewReportingService(container.Purchase, container.Reimbursement)
	container.Notifier = NewLogNotificationDispatcher()

	return container
}
