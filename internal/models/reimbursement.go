package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reimbursement mirrors the reimbursements table.
type Reimbursement struct {
	ReimbursementID           int64           `json:"reimbursementID"`
	RequesterID               string          `json:"requesterID"`
	StoreID                   int64           `json:"storeID"`
	Status                    string          `json:"status"`
	InternalControlStatus     string          `json:"internalControlStatus"`
	DisbursementStatus        string          `json:"disbursementStatus"`
	IsDraft                   bool            `json:"isDraft"`
	TotalAmount               decimal.Decimal `json:"totalAmount"`
	AreaManagerID             *string         `json:"areaManagerID"`
	AreaManagerApprovedAt     *time.Time      `json:"areaManagerApprovedAt"`
	AreaManagerDeclinedAt     *time.Time      `json:"areaManagerDeclinedAt"`
	InternalControlID         *string         `json:"internalControlID"`
	InternalControlApprovedAt *time.Time      `json:"internalControlApprovedAt"`
	InternalControlDeclinedAt *time.Time      `json:"internalControlDeclinedAt"`
	TreasurerID               *string         `json:"treasurerID"`
	DisbursedAt               *time.Time      `json:"disbursedAt"`
	BankID                    *string         `json:"bankID"`
	AccountID                 *string         `json:"accountID"`
	AuditFields
}

// ReimbursementItem mirrors the reimbursement_items table.
type ReimbursementItem struct {
	ItemID                int64           `json:"itemID"`
	ReimbursementID       int64           `json:"reimbursementID"`
	ItemName              string          `json:"itemName"`
	GLCode                string          `json:"glCode"`
	TransportFrom         string          `json:"transportationFrom"`
	TransportTo           string          `json:"transportationTo"`
	UnitPrice             decimal.Decimal `json:"unitPrice"`
	Quantity              int             `json:"quantity"`
	ItemTotal             decimal.Decimal `json:"itemTotal"`
	PurchaseRequestRef    string          `json:"purchaseRequestRef"`
	Status                string          `json:"status"`
	InternalControlStatus string          `json:"internalControlStatus"`
	ReceiptPath           string          `json:"receipt"`
	RequiresReceipt       bool            `json:"requiresReceipt"`
	ReceiptValidated      bool            `json:"receiptValidated"`
}

// ReimbursementRequestLink mirrors the reimbursement_request_links join table
// connecting reimbursements to the purchase requests their items reference.
type ReimbursementRequestLink struct {
	ReimbursementID   int64 `json:"reimbursementID"`
	PurchaseRequestID int64 `json:"purchaseRequestID"`
}
