package services

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
	portssvc "github.com/temmy669/imprest-portal-back-up/internal/core/ports/services"
	"github.com/temmy669/imprest-portal-back-up/internal/dto"
)

// reportingService renders role-scoped workflow listings as xlsx workbooks.
// It reuses the listing services so exports honor the same visibility rules as
// the dashboard.
type reportingService struct {
	BaseService
	purchaseSvc      portssvc.PurchaseRequestReaderSvc
	reimbursementSvc portssvc.ReimbursementReaderSvc
}

// NewReportingService creates a new reporting service.
func NewReportingService(purchaseSvc portssvc.PurchaseRequestReaderSvc, reimbursementSvc portssvc.ReimbursementReaderSvc) portssvc.ReportingService {
	return &reportingService{purchaseSvc: purchaseSvc, reimbursementSvc: reimbursementSvc}
}

var _ portssvc.ReportingService = (*reportingService)(nil)

const exportSheet = "Sheet1"

// exportPageSize caps one export at a single large page.
const exportPageSize = 1000

// ExportPurchaseRequests renders the actor's purchase request listing.
func (s *reportingService) ExportPurchaseRequests(ctx context.Context, actor domain.Actor, query dto.ListQuery) ([]byte, string, error) {
	query.Limit = exportPageSize
	query.Offset = 0
	listing, err := s.purchaseSvc.ListRequests(ctx, actor, query)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	headers := []string{"Reference", "Voucher", "Store", "Requester", "Status", "Total Amount", "Request Date"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, h)
	}
	for i, pr := range listing.Items {
		row := i + 2
		values := []any{
			pr.Reference,
			pr.VoucherID,
			pr.StoreID,
			pr.RequesterID,
			pr.Status,
			pr.TotalAmount.StringFixed(2),
			pr.RequestDate.Format("2006-01-02"),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			f.SetCellValue(exportSheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render purchase request export: %w", err)
	}
	filename := fmt.Sprintf("purchase_requests_%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportReimbursements renders the actor's reimbursement listing.
func (s *reportingService) ExportReimbursements(ctx context.Context, actor domain.Actor, query dto.ReimbursementListQuery) ([]byte, string, error) {
	query.Limit = exportPageSize
	query.Offset = 0
	listing, err := s.reimbursementSvc.ListReimbursements(ctx, actor, query)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	headers := []string{"Reference", "Store", "Requester", "Status", "Internal Control", "Disbursement", "Total Amount", "Request Date"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, h)
	}
	for i, r := range listing.Items {
		row := i + 2
		values := []any{
			r.Reference,
			r.StoreID,
			r.RequesterID,
			r.Status,
			r.InternalControlStatus,
			r.DisbursementStatus,
			r.TotalAmount.StringFixed(2),
			r.RequestDate.Format("2006-01-02"),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			f.SetCellValue(exportSheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render reimbursement export: %w", err)
	}
	filename := fmt.Sprintf("reimbursements_%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}
