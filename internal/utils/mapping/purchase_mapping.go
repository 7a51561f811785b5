package mapping

import (
	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
	"github.com/temmy669/imprest-portal-back-up/internal/models"
)

// ToModelPurchaseRequest converts a domain PurchaseRequest to its row model.
// Items and comments are mapped separately since they live in their own tables.
func ToModelPurchaseRequest(d domain.PurchaseRequest) models.PurchaseRequest {
	return models.PurchaseRequest{
		RequestID:             d.RequestID,
		RequesterID:           d.RequesterID,
		StoreID:               d.StoreID,
		Status:                string(d.Status),
		TotalAmount:           d.TotalAmount,
		VoucherID:             strPtrOrNil(d.VoucherID),
		AreaManagerID:         strPtrOrNil(d.AreaManagerID),
		AreaManagerApprovedAt: d.AreaManagerApprovedAt,
		AreaManagerDeclinedAt: d.AreaManagerDeclinedAt,
		AuditFields:           ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPurchaseRequest converts a row model plus its child rows back to the
// domain aggregate.
func ToDomainPurchaseRequest(m models.PurchaseRequest, items []models.PurchaseRequestItem, comments []models.WorkflowComment) domain.PurchaseRequest {
	d := domain.PurchaseRequest{
		RequestID:             m.RequestID,
		RequesterID:           m.RequesterID,
		StoreID:               m.StoreID,
		Status:                domain.ApprovalStatus(m.Status),
		TotalAmount:           m.TotalAmount,
		VoucherID:             strOrEmpty(m.VoucherID),
		AreaManagerID:         strOrEmpty(m.AreaManagerID),
		AreaManagerApprovedAt: m.AreaManagerApprovedAt,
		AreaManagerDeclinedAt: m.AreaManagerDeclinedAt,
		AuditFields:           ToDomainAuditFields(m.AuditFields),
	}
	for _, item := range items {
		d.Items = append(d.Items, ToDomainPurchaseItem(item))
	}
	for _, c := range comments {
		d.Comments = append(d.Comments, ToDomainComment(c))
	}
	return d
}

// ToModelPurchaseItem converts a domain item to its row model
func ToModelPurchaseItem(d domain.PurchaseRequestItem) models.PurchaseRequestItem {
	return models.PurchaseRequestItem{
		ItemID:           d.ItemID,
		RequestID:        d.RequestID,
		GLCode:           d.GLCode,
		ExpenseItem:      d.ExpenseItem,
		UnitPrice:        d.UnitPrice,
		Quantity:         d.Quantity,
		TotalPrice:       d.TotalPrice,
		Status:           string(d.Status),
		ReceiptValidated: d.ReceiptValidated,
	}
}

// ToDomainPurchaseItem converts a row model to the domain item
func ToDomainPurchaseItem(m models.PurchaseRequestItem) domain.PurchaseRequestItem {
	return domain.PurchaseRequestItem{
		ItemID:           m.ItemID,
		RequestID:        m.RequestID,
		GLCode:           m.GLCode,
		ExpenseItem:      m.ExpenseItem,
		UnitPrice:        m.UnitPrice,
		Quantity:         m.Quantity,
		TotalPrice:       m.TotalPrice,
		Status:           domain.ApprovalStatus(m.Status),
		ReceiptValidated: m.ReceiptValidated,
	}
}

// ToModelComment converts a domain comment to its row model under the given
// aggregate discriminator.
func ToModelComment(d domain.Comment, aggregateType domain.AggregateType, aggregateID int64) models.WorkflowComment {
	return models.WorkflowComment{
		CommentID:       d.CommentID,
		AggregateType:   string(aggregateType),
		AggregateID:     aggregateID,
		AuthorID:        d.AuthorID,
		AuthorRole:      string(d.AuthorRole),
		Text:            d.Text,
		SystemGenerated: d.SystemGenerated,
		CreatedAt:       d.CreatedAt,
	}
}

// ToDomainComment converts a row model to the domain comment
func ToDomainComment(m models.WorkflowComment) domain.Comment {
	return domain.Comment{
		CommentID:       m.CommentID,
		AuthorID:        m.AuthorID,
		AuthorRole:      domain.Role(m.AuthorRole),
		Text:            m.Text,
		SystemGenerated: m.SystemGenerated,
		CreatedAt:       m.CreatedAt,
	}
}
