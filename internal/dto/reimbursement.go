package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
)

// ReimbursementItemRequest is one expense line of a new reimbursement.
type ReimbursementItemRequest struct {
	ItemName           string          `json:"itemName" binding:"required"`
	GLCode             string          `json:"glCode"`
	TransportFrom      string          `json:"transportationFrom"`
	TransportTo        string          `json:"transportationTo"`
	UnitPrice          decimal.Decimal `json:"unitPrice" binding:"required"`
	Quantity           int             `json:"quantity" binding:"required,gt=0"`
	PurchaseRequestRef string          `json:"purchaseRequestRef"`
	ReceiptPath        string          `json:"receipt"`
}

// CreateReimbursementRequest creates a reimbursement, optionally as a draft.
type CreateReimbursementRequest struct {
	StoreID int64                      `json:"storeID" binding:"required"`
	IsDraft bool                       `json:"isDraft"`
	Items   []ReimbursementItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ToNewItems converts the payload into domain item inputs.
func (r CreateReimbursementRequest) ToNewItems() []domain.NewReimbursementItem {
	items := make([]domain.NewReimbursementItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = domain.NewReimbursementItem{
			ItemName:           it.ItemName,
			GLCode:             it.GLCode,
			TransportFrom:      it.TransportFrom,
			TransportTo:        it.TransportTo,
			UnitPrice:          it.UnitPrice,
			Quantity:           it.Quantity,
			PurchaseRequestRef: it.PurchaseRequestRef,
			ReceiptPath:        it.ReceiptPath,
		}
	}
	return items
}

// ReimbursementItemUpdate edits an existing item (itemID set) or adds one.
type ReimbursementItemUpdate struct {
	ItemID             int64            `json:"itemID"`
	ItemName           *string          `json:"itemName"`
	GLCode             *string          `json:"glCode"`
	TransportFrom      *string          `json:"transportationFrom"`
	TransportTo        *string          `json:"transportationTo"`
	UnitPrice          *decimal.Decimal `json:"unitPrice"`
	Quantity           *int             `json:"quantity"`
	ReceiptPath        *string          `json:"receipt"`
	PurchaseRequestRef *string          `json:"purchaseRequestRef"`
}

// UpdateReimbursementRequest edits items prior to disbursement.
type UpdateReimbursementRequest struct {
	Items []ReimbursementItemUpdate `json:"items" binding:"required,min=1"`
}

// ToItemChanges converts the update payload into domain changes.
func (r UpdateReimbursementRequest) ToItemChanges() []domain.ReimbursementItemChange {
	changes := make([]domain.ReimbursementItemChange, len(r.Items))
	for i, it := range r.Items {
		changes[i] = domain.ReimbursementItemChange{
			ItemID:             it.ItemID,
			ItemName:           it.ItemName,
			GLCode:             it.GLCode,
			TransportFrom:      it.TransportFrom,
			TransportTo:        it.TransportTo,
			UnitPrice:          it.UnitPrice,
			Quantity:           it.Quantity,
			ReceiptPath:        it.ReceiptPath,
			PurchaseRequestRef: it.PurchaseRequestRef,
		}
	}
	return changes
}

// DisburseRequest binds the payout bank and account.
type DisburseRequest struct {
	BankID    string `json:"bankID" binding:"required"`
	AccountID string `json:"accountID" binding:"required"`
}

// BulkDisburseRequest pays out several reimbursements from one account.
type BulkDisburseRequest struct {
	ReimbursementIDs []int64 `json:"reimbursementIDs" binding:"required,min=1"`
	BankID           string  `json:"bankID" binding:"required"`
	AccountID        string  `json:"accountID" binding:"required"`
}

// ReimbursementItemResponse is one expense line with both track statuses.
type ReimbursementItemResponse struct {
	ItemID                int64           `json:"itemID"`
	ItemName              string          `json:"itemName"`
	GLCode                string          `json:"glCode,omitempty"`
	TransportFrom         string          `json:"transportationFrom,omitempty"`
	TransportTo           string          `json:"transportationTo,omitempty"`
	UnitPrice             decimal.Decimal `json:"unitPrice"`
	Quantity              int             `json:"quantity"`
	ItemTotal             decimal.Decimal `json:"itemTotal"`
	PurchaseRequestRef    string          `json:"purchaseRequestRef,omitempty"`
	Status                string          `json:"status"`
	InternalControlStatus string          `json:"internalControlStatus"`
	Receipt               string          `json:"receipt,omitempty"`
	RequiresReceipt       bool            `json:"requiresReceipt"`
}

// ReimbursementResponse is the full reimbursement representation.
type ReimbursementResponse struct {
	ReimbursementID       int64                       `json:"reimbursementID"`
	Reference             string                      `json:"reference"`
	RequesterID           string                      `json:"requesterID"`
	StoreID               int64                       `json:"storeID"`
	Status                string                      `json:"status"`
	InternalControlStatus string                      `json:"internalControlStatus"`
	DisbursementStatus    string                      `json:"disbursementStatus"`
	IsDraft               bool                        `json:"isDraft"`
	TotalAmount           decimal.Decimal             `json:"totalAmount"`
	BankID                string                      `json:"bankID,omitempty"`
	AccountID             string                      `json:"accountID,omitempty"`
	DisbursedAt           *time.Time                  `json:"disbursedAt,omitempty"`
	LinkedRequestIDs      []int64                     `json:"linkedRequestIDs,omitempty"`
	RequestDate           time.Time                   `json:"requestDate"`
	Items                 []ReimbursementItemResponse `json:"items"`
	Comments              []CommentResponse           `json:"comments,omitempty"`
}

// ToReimbursementResponse converts a domain aggregate to its response DTO.
func ToReimbursementResponse(r *domain.Reimbursement) ReimbursementResponse {
	resp := ReimbursementResponse{
		ReimbursementID:       r.ReimbursementID,
		Reference:             domain.FormatReimbursementRef(r.ReimbursementID),
		RequesterID:           r.RequesterID,
		StoreID:               r.StoreID,
		Status:                string(r.Status),
		InternalControlStatus: string(r.InternalControlStatus),
		DisbursementStatus:    string(r.DisbursementStatus),
		IsDraft:               r.IsDraft,
		TotalAmount:           r.TotalAmount,
		BankID:                r.BankID,
		AccountID:             r.AccountID,
		DisbursedAt:           r.DisbursedAt,
		LinkedRequestIDs:      r.LinkedRequestIDs,
		RequestDate:           r.CreatedAt,
	}
	for _, item := range r.Items {
		resp.Items = append(resp.Items, ReimbursementItemResponse{
			ItemID:                item.ItemID,
			ItemName:              item.ItemName,
			GLCode:                item.GLCode,
			TransportFrom:         item.TransportFrom,
			TransportTo:           item.TransportTo,
			UnitPrice:             item.UnitPrice,
			Quantity:              item.Quantity,
			ItemTotal:             item.ItemTotal,
			PurchaseRequestRef:    item.PurchaseRequestRef,
			Status:                string(item.Status),
			InternalControlStatus: string(item.InternalControlStatus),
			Receipt:               item.ReceiptPath,
			RequiresReceipt:       item.RequiresReceipt,
		})
	}
	for _, c := range r.Comments {
		resp.Comments = append(resp.Comments, CommentResponse{
			CommentID: c.CommentID,
			AuthorID:  c.AuthorID,
			Role:      string(c.AuthorRole),
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		})
	}
	return resp
}
