package mapping

import (
	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
	"github.com/temmy669/imprest-portal-back-up/internal/models"
)

// ToModelReimbursement converts a domain Reimbursement to its row model.
func ToModelReimbursement(d domain.Reimbursement) models.Reimbursement {
	return models.Reimbursement{
		ReimbursementID:           d.ReimbursementID,
		RequesterID:               d.RequesterID,
		StoreID:                   d.StoreID,
		Status:                    string(d.Status),
		InternalControlStatus:     string(d.InternalControlStatus),
		DisbursementStatus:        string(d.DisbursementStatus),
		IsDraft:                   d.IsDraft,
		TotalAmount:               d.TotalAmount,
		AreaManagerID:             strPtrOrNil(d.AreaManagerID),
		AreaManagerApprovedAt:     d.AreaManagerApprovedAt,
		AreaManagerDeclinedAt:     d.AreaManagerDeclinedAt,
		InternalControlID:         strPtrOrNil(d.InternalControlID),
		InternalControlApprovedAt: d.InternalControlApprovedAt,
		InternalControlDeclinedAt: d.InternalControlDeclinedAt,
		TreasurerID:               strPtrOrNil(d.TreasurerID),
		DisbursedAt:               d.DisbursedAt,
		BankID:                    strPtrOrNil(d.BankID),
		AccountID:                 strPtrOrNil(d.AccountID),
		AuditFields:               ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainReimbursement converts a row model plus child rows back to the
// domain aggregate.
func ToDomainReimbursement(m models.Reimbursement, items []models.ReimbursementItem, comments []models.WorkflowComment, linkedIDs []int64) domain.Reimbursement {
	d := domain.Reimbursement{
		ReimbursementID:           m.ReimbursementID,
		RequesterID:               m.RequesterID,
		StoreID:                   m.StoreID,
		Status:                    domain.ApprovalStatus(m.Status),
		InternalControlStatus:     domain.ApprovalStatus(m.InternalControlStatus),
		DisbursementStatus:        domain.DisbursementStatus(m.DisbursementStatus),
		IsDraft:                   m.IsDraft,
		TotalAmount:               m.TotalAmount,
		AreaManagerID:             strOrEmpty(m.AreaManagerID),
		AreaManagerApprovedAt:     m.AreaManagerApprovedAt,
		AreaManagerDeclinedAt:     m.AreaManagerDeclinedAt,
		InternalControlID:         strOrEmpty(m.InternalControlID),
		InternalControlApprovedAt: m.InternalControlApprovedAt,
		InternalControlDeclinedAt: m.InternalControlDeclinedAt,
		TreasurerID:               strOrEmpty(m.TreasurerID),
		DisbursedAt:               m.DisbursedAt,
		BankID:                    strOrEmpty(m.BankID),
		AccountID:                 strOrEmpty(m.AccountID),
		LinkedRequestIDs:          linkedIDs,
		AuditFields:               ToDomainAuditFields(m.AuditFields),
	}
	for _, item := range items {
		d.Items = append(d.Items, ToDomainReimbursementItem(item))
	}
	for _, c := range comments {
		d.Comments = append(d.Comments, ToDomainComment(c))
	}
	return d
}

// ToModelReimbursementItem converts a domain item to its row model
func ToModelReimbursementItem(d domain.ReimbursementItem) models.ReimbursementItem {
	return models.ReimbursementItem{
		ItemID:                d.ItemID,
		ReimbursementID:       d.ReimbursementID,
		ItemName:              d.ItemName,
		GLCode:                d.GLCode,
		TransportFrom:         d.TransportFrom,
		TransportTo:           d.TransportTo,
		UnitPrice:             d.UnitPrice,
		Quantity:              d.Quantity,
		ItemTotal:             d.ItemTotal,
		PurchaseRequestRef:    d.PurchaseRequestRef,
		Status:                string(d.Status),
		InternalControlStatus: string(d.InternalControlStatus),
		ReceiptPath:           d.ReceiptPath,
		RequiresReceipt:       d.RequiresReceipt,
		ReceiptValidated:      d.ReceiptValidated,
	}
}

// ToDomainReimbursementItem converts a row model to the domain item
func ToDomainReimbursementItem(m models.ReimbursementItem) domain.ReimbursementItem {
	return domain.ReimbursementItem{
		ItemID:                m.ItemID,
		ReimbursementID:       m.ReimbursementID,
		ItemName:              m.ItemName,
		GLCode:                m.GLCode,
		TransportFrom:         m.TransportFrom,
		TransportTo:           m.TransportTo,
		UnitPrice:             m.UnitPrice,
		Quantity:              m.Quantity,
		ItemTotal:             m.ItemTotal,
		PurchaseRequestRef:    m.PurchaseRequestRef,
		Status:                domain.ApprovalStatus(m.Status),
		InternalControlStatus: domain.ApprovalStatus(m.InternalControlStatus),
		ReceiptPath:           m.ReceiptPath,
		RequiresReceipt:       m.RequiresReceipt,
		ReceiptValidated:      m.ReceiptValidated,
	}
}
