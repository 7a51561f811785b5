package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Purchase      PurchaseRequestSvcFacade
	Reimbursement ReimbursementSvcFacade
	Store         StoreSvcFacade
	Bank          BankSvcFacade
	Limit         LimitSvcFacade
	Reporting     ReportingService
	Notifier      NotificationDispatcher
}
