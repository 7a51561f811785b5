package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
)

// PurchaseItemRequest is one line of a new purchase request.
type PurchaseItemRequest struct {
	GLCode      string          `json:"glCode" binding:"required"`
	ExpenseItem string          `json:"expenseItem" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unitPrice" binding:"required"`
	Quantity    int             `json:"quantity" binding:"required,gt=0"`
}

// CreatePurchaseRequestRequest creates a purchase request with its items.
type CreatePurchaseRequestRequest struct {
	StoreID int64                 `json:"storeID" binding:"required"`
	Items   []PurchaseItemRequest `json:"items" binding:"required,min=1,dive"`
}

// DeclineRequest carries the mandatory decline comment.
type DeclineRequest struct {
	Comment string `json:"comment" binding:"required"`
}

// PurchaseItemUpdate edits an existing item (itemID set) or adds a new one.
type PurchaseItemUpdate struct {
	ItemID      int64            `json:"itemID"`
	GLCode      *string          `json:"glCode"`
	ExpenseItem *string          `json:"expenseItem"`
	UnitPrice   *decimal.Decimal `json:"unitPrice"`
	Quantity    *int             `json:"quantity"`
}

// UpdatePurchaseRequestRequest edits items prior to final approval.
type UpdatePurchaseRequestRequest struct {
	Items []PurchaseItemUpdate `json:"items" binding:"required,min=1"`
}

// ToItemChanges converts the update payload into domain changes.
func (r UpdatePurchaseRequestRequest) ToItemChanges() []domain.PurchaseItemChange {
	changes := make([]domain.PurchaseItemChange, len(r.Items))
	for i, it := range r.Items {
		changes[i] = domain.PurchaseItemChange{
			ItemID:      it.ItemID,
			GLCode:      it.GLCode,
			ExpenseItem: it.ExpenseItem,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
		}
	}
	return changes
}

// PurchaseItemResponse is one line of a purchase request response.
type PurchaseItemResponse struct {
	ItemID      int64           `json:"itemID"`
	GLCode      string          `json:"glCode"`
	ExpenseItem string          `json:"expenseItem"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	Status      string          `json:"status"`
}

// CommentResponse is an audit comment entry.
type CommentResponse struct {
	CommentID int64     `json:"commentID"`
	AuthorID  string    `json:"authorID"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// PurchaseRequestResponse is the full request representation, including the
// human-facing reference id and voucher.
type PurchaseRequestResponse struct {
	RequestID   int64                  `json:"requestID"`
	Reference   string                 `json:"reference"`
	RequesterID string                 `json:"requesterID"`
	StoreID     int64                  `json:"storeID"`
	Status      string                 `json:"status"`
	TotalAmount decimal.Decimal        `json:"totalAmount"`
	VoucherID   string                 `json:"voucherID,omitempty"`
	ApprovedBy  string                 `json:"approvedBy,omitempty"`
	ApprovedAt  *time.Time             `json:"approvedAt,omitempty"`
	DeclinedAt  *time.Time             `json:"declinedAt,omitempty"`
	RequestDate time.Time              `json:"requestDate"`
	Items       []PurchaseItemResponse `json:"items"`
	Comments    []CommentResponse      `json:"comments,omitempty"`
}

// ApprovedPurchaseRequestResponse lists a voucher-bearing request rendered as
// a reimbursement reference candidate (PR-0015-12000.00).
type ApprovedPurchaseRequestResponse struct {
	RequestID   int64  `json:"requestID"`
	RequestName string `json:"requestName"`
	VoucherID   string `json:"voucherID"`
}

// ToPurchaseRequestResponse converts a domain aggregate to its response DTO.
func ToPurchaseRequestResponse(pr *domain.PurchaseRequest) PurchaseRequestResponse {
	resp := PurchaseRequestResponse{
		RequestID:   pr.RequestID,
		Reference:   domain.FormatPurchaseRequestRef(pr.RequestID),
		RequesterID: pr.RequesterID,
		StoreID:     pr.StoreID,
		Status:      string(pr.Status),
		TotalAmount: pr.TotalAmount,
		VoucherID:   pr.VoucherID,
		ApprovedAt:  pr.AreaManagerApprovedAt,
		DeclinedAt:  pr.AreaManagerDeclinedAt,
		RequestDate: pr.CreatedAt,
	}
	if pr.Status == domain.StatusApproved {
		resp.ApprovedBy = pr.AreaManagerID
	}
	for _, item := range pr.Items {
		resp.Items = append(resp.Items, PurchaseItemResponse{
			ItemID:      item.ItemID,
			GLCode:      item.GLCode,
			ExpenseItem: item.ExpenseItem,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			TotalPrice:  item.TotalPrice,
			Status:      string(item.Status),
		})
	}
	for _, c := range pr.Comments {
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
