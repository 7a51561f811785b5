package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseRequest mirrors the purchase_requests table.
type PurchaseRequest struct {
	RequestID             int64           `json:"requestID"`
	RequesterID           string          `json:"requesterID"`
	StoreID               int64           `json:"storeID"`
	Status                string          `json:"status"`
	TotalAmount           decimal.Decimal `json:"totalAmount"`
	VoucherID             *string         `json:"voucherID"`
	AreaManagerID         *string         `json:"areaManagerID"`
	AreaManagerApprovedAt *time.Time      `json:"areaManagerApprovedAt"`
	AreaManagerDeclinedAt *time.Time      `json:"areaManagerDeclinedAt"`
	AuditFields
}

// PurchaseRequestItem mirrors the purchase_request_items table.
type PurchaseRequestItem struct {
	ItemID           int64           `json:"itemID"`
	RequestID        int64           `json:"requestID"`
	GLCode           string          `json:"glCode"`
	ExpenseItem      string          `json:"expenseItem"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	Quantity         int             `json:"quantity"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	Status           string          `json:"status"`
	ReceiptValidated bool            `json:"receiptValidated"`
}

// WorkflowComment mirrors the workflow_comments table, shared by both
// aggregates through the aggregate_type discriminator.
type WorkflowComment struct {
	CommentID       int64     `json:"commentID"`
	AggregateType   string    `json:"aggregateType"`
	AggregateID     int64     `json:"aggregateID"`
	AuthorID        string    `json:"authorID"`
	AuthorRole      string    `json:"authorRole"`
	Text            string    `json:"text"`
	SystemGenerated bool      `json:"systemGenerated"`
	CreatedAt       time.Time `json:"createdAt"`
}
