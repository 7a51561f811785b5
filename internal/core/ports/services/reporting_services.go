package services

import (
	"context"

	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
	"github.com/temmy669/imprest-portal-back-up/internal/dto"
)

// ReportingService defines spreadsheet export operations
type ReportingService interface {
	// ExportPurchaseRequests renders the actor's role-scoped purchase request
	// listing as an xlsx workbook.
	ExportPurchaseRequests(ctx context.Context, actor domain.Actor, query dto.ListQuery) ([]byte, string, error)

	// ExportReimbursements renders the actor's role-scoped reimbursement
	// listing as an xlsx workbook.
	ExportReimbursements(ctx context.Context, actor domain.Actor, query dto.ReimbursementListQuery) ([]byte, string, error)
}
