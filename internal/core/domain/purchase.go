package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/temmy669/imprest-portal-back-up/internal/apperrors"
)

// Comment is an append-only audit entry on an aggregate. Comments are never
// edited or deleted.
type Comment struct {
	CommentID       int64     `json:"commentID"`
	AuthorID        string    `json:"authorID"`
	AuthorRole      Role      `json:"authorRole"`
	Text            string    `json:"text"`
	SystemGenerated bool      `json:"systemGenerated"`
	CreatedAt       time.Time `json:"createdAt"`
}

// PurchaseRequestItem is a single line of a purchase request. Items carry
// their own status so partial item-level decisions are representable.
type PurchaseRequestItem struct {
	ItemID           int64           `json:"itemID"`
	RequestID        int64           `json:"requestID"`
	GLCode           string          `json:"glCode"`
	ExpenseItem      string          `json:"expenseItem"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	Quantity         int             `json:"quantity"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	Status           ApprovalStatus  `json:"status"`
	ReceiptValidated bool            `json:"receiptValidated"` // set by the OCR collaborator
}

// PurchaseRequest is the aggregate root for the purchase approval workflow.
// Once submitted it is mutated only through the transition methods below, and
// only inside the repository's exclusive aggregate lock.
type PurchaseRequest struct {
	RequestID             int64                 `json:"requestID"`
	RequesterID           string                `json:"requesterID"`
	StoreID               int64                 `json:"storeID"`
	Status                ApprovalStatus        `json:"status"`
	TotalAmount           decimal.Decimal       `json:"totalAmount"`
	VoucherID             string                `json:"voucherID"` // empty until approved
	AreaManagerID         string                `json:"areaManagerID"`
	AreaManagerApprovedAt *time.Time            `json:"areaManagerApprovedAt,omitempty"`
	AreaManagerDeclinedAt *time.Time            `json:"areaManagerDeclinedAt,omitempty"`
	Items                 []PurchaseRequestItem `json:"items"`
	Comments              []Comment             `json:"comments"`
	AuditFields
}

// NewPurchaseItem is the input for a purchase request line.
type NewPurchaseItem struct {
	GLCode      string
	ExpenseItem string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// NewPurchaseRequest validates the items against the current threshold and
// builds a pending aggregate. TotalAmount is frozen here as the sum of item
// totals; it is only recomputed by an explicit item update.
func NewPurchaseRequest(actor Actor, storeID int64, items []NewPurchaseItem, limit decimal.Decimal, now time.Time) (*PurchaseRequest, error) {
	if len(items) == 0 {
		return nil, apperrors.NewValidationError("purchase request must contain at least one item")
	}

	pr := &PurchaseRequest{
		RequesterID: actor.UserID,
		StoreID:     storeID,
		Status:      StatusPending,
		AuditFields: AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}

	total := decimal.Zero
	for _, in := range items {
		item, err := buildPurchaseItem(in, limit)
		if err != nil {
			return nil, err
		}
		total = total.Add(item.TotalPrice)
		pr.Items = append(pr.Items, item)
	}
	pr.TotalAmount = total
	return pr, nil
}

func buildPurchaseItem(in NewPurchaseItem, limit decimal.Decimal) (PurchaseRequestItem, error) {
	if strings.TrimSpace(in.ExpenseItem) == "" {
		return PurchaseRequestItem{}, apperrors.NewValidationError("expense item name is required")
	}
	if in.Quantity <= 0 {
		return PurchaseRequestItem{}, apperrors.NewValidationError("quantity must be greater than zero for item %q", in.ExpenseItem)
	}
	if in.UnitPrice.IsNegative() {
		return PurchaseRequestItem{}, apperrors.NewValidationError("unit price cannot be negative for item %q", in.ExpenseItem)
	}
	total := in.UnitPrice.Mul(decimal.NewFromInt(int64(in.Quantity)))
	if total.LessThan(limit) {
		return PurchaseRequestItem{}, apperrors.NewValidationError(
			"item %q total %s is below the minimum purchase request limit %s",
			in.ExpenseItem, total.String(), limit.String())
	}
	return PurchaseRequestItem{
		GLCode:      in.GLCode,
		ExpenseItem: in.ExpenseItem,
		UnitPrice:   in.UnitPrice,
		Quantity:    in.Quantity,
		TotalPrice:  total,
		Status:      StatusPending,
	}, nil
}

// authorizeApprover gates approve/decline transitions: Area Managers assigned
// to the request's store, or Admins.
func (pr *PurchaseRequest) authorizeApprover(actor Actor) error {
	if actor.Role != RoleAreaManager && actor.Role != RoleAdmin {
		return apperrors.NewForbiddenError("role %s cannot approve or decline purchase requests", actor.Role)
	}
	if !actor.CanActOnStore(pr.StoreID) {
		return apperrors.NewForbiddenError("actor is not assigned to store %d", pr.StoreID)
	}
	return nil
}

// Approve finalizes the whole request: every item becomes approved and the
// voucher is assigned exactly once. Rejected unless the request is pending.
func (pr *PurchaseRequest) Approve(actor Actor, now time.Time) ([]Event, error) {
	if err := pr.authorizeApprover(actor); err != nil {
		return nil, err
	}
	if pr.Status != StatusPending {
		return nil, apperrors.NewInvalidStateError("purchase request %s is already %s", FormatPurchaseRequestRef(pr.RequestID), pr.Status)
	}
	for i := range pr.Items {
		pr.Items[i].Status = StatusApproved
	}
	pr.finalizeApproved(actor, now)
	return []Event{pr.stageEvent(EventApproved, actor, "")}, nil
}

// Decline finalizes the whole request as declined. The comment is mandatory
// and is persisted as an immutable audit entry.
func (pr *PurchaseRequest) Decline(actor Actor, comment string, now time.Time) ([]Event, error) {
	if err := pr.authorizeApprover(actor); err != nil {
		return nil, err
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, apperrors.NewValidationError("comment is required when declining")
	}
	if pr.Status != StatusPending {
		return nil, apperrors.NewInvalidStateError("purchase request %s is already %s", FormatPurchaseRequestRef(pr.RequestID), pr.Status)
	}
	for i := range pr.Items {
		pr.Items[i].Status = StatusDeclined
	}
	pr.finalizeDeclined(actor, now)
	pr.appendComment(actor, comment, now)
	return []Event{pr.stageEvent(EventDeclined, actor, comment)}, nil
}

// ApproveItem approves a single item and re-evaluates the aggregation rule.
// An event is emitted only when the decision completes the stage.
func (pr *PurchaseRequest) ApproveItem(itemID int64, actor Actor, now time.Time) ([]Event, error) {
	if err := pr.authorizeApprover(actor); err != nil {
		return nil, err
	}
	if pr.Status != StatusPending {
		return nil, apperrors.NewInvalidStateError("purchase request %s is already %s", FormatPurchaseRequestRef(pr.RequestID), pr.Status)
	}
	item := pr.findItem(itemID)
	if item == nil {
		return nil, apperrors.NewAppError(404, "purchase request item not found", apperrors.ErrNotFound)
	}
	if item.Status == StatusApproved {
		return nil, apperrors.NewInvalidStateError("item %d is already approved", itemID)
	}
	item.Status = StatusApproved
	return pr.applyItemAggregation(actor, "", now), nil
}

// DeclineItem declines a single item. Under the any-declined-wins rule this
// immediately declines the whole request.
func (pr *PurchaseRequest) DeclineItem(itemID int64, actor Actor, comment string, now time.Time) ([]Event, error) {
	if err := pr.authorizeApprover(actor); err != nil {
		return nil, err
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, apperrors.NewValidationError("comment is required when declining")
	}
	if pr.Status != StatusPending {
		return nil, apperrors.NewInvalidStateError("purchase request %s is already %s", FormatPurchaseRequestRef(pr.RequestID), pr.Status)
	}
	item := pr.findItem(itemID)
	if item == nil {
		return nil, apperrors.NewAppError(404, "purchase request item not found", apperrors.ErrNotFound)
	}
	if item.Status == StatusDeclined {
		return nil, apperrors.NewInvalidStateError("item %d is already declined", itemID)
	}
	item.Status = StatusDeclined
	pr.appendComment(actor, comment, now)
	return pr.applyItemAggregation(actor, comment, now), nil
}

// PurchaseItemChange updates an existing item (ItemID set) or adds a new one
// (ItemID zero). Nil fields are left untouched.
type PurchaseItemChange struct {
	ItemID      int64
	GLCode      *string
	ExpenseItem *string
	UnitPrice   *decimal.Decimal
	Quantity    *int
}

// UpdateItems applies field changes prior to final approval. Any tracked-field
// edit resets the touched item to pending and forces the whole request back to
// pending, invalidating earlier item approvals. TotalAmount is recomputed over
// all items afterwards.
func (pr *PurchaseRequest) UpdateItems(changes []PurchaseItemChange, actor Actor, limit decimal.Decimal, now time.Time) error {
	if actor.UserID != pr.RequesterID && actor.Role != RoleAdmin {
		return apperrors.NewForbiddenError("only the requester can edit a purchase request")
	}
	if pr.Status == StatusApproved {
		return apperrors.NewInvalidStateError("approved purchase request %s can no longer be edited", FormatPurchaseRequestRef(pr.RequestID))
	}

	anyReset := false
	for _, ch := range changes {
		if ch.ItemID == 0 {
			in := NewPurchaseItem{GLCode: deref(ch.GLCode), ExpenseItem: deref(ch.ExpenseItem), Quantity: 1}
			if ch.UnitPrice != nil {
				in.UnitPrice = *ch.UnitPrice
			}
			if ch.Quantity != nil {
				in.Quantity = *ch.Quantity
			}
			item, err := buildPurchaseItem(in, limit)
			if err != nil {
				return err
			}
			item.RequestID = pr.RequestID
			pr.Items = append(pr.Items, item)
			anyReset = true
			continue
		}

		item := pr.findItem(ch.ItemID)
		if item == nil {
			return apperrors.NewAppError(404, "purchase request item not found", apperrors.ErrNotFound)
		}
		changed := false
		if ch.GLCode != nil && *ch.GLCode != item.GLCode {
			item.GLCode = *ch.GLCode
			changed = true
		}
		if ch.ExpenseItem != nil && *ch.ExpenseItem != item.ExpenseItem {
			item.ExpenseItem = *ch.ExpenseItem
			changed = true
		}
		if ch.UnitPrice != nil && !ch.UnitPrice.Equal(item.UnitPrice) {
			item.UnitPrice = *ch.UnitPrice
			changed = true
		}
		if ch.Quantity != nil && *ch.Quantity != item.Quantity {
			item.Quantity = *ch.Quantity
			changed = true
		}
		if changed {
			if item.Quantity <= 0 {
				return apperrors.NewValidationError("quantity must be greater than zero for item %q", item.ExpenseItem)
			}
			item.TotalPrice = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			if item.TotalPrice.LessThan(limit) {
				return apperrors.NewValidationError(
					"item %q total %s is below the minimum purchase request limit %s",
					item.ExpenseItem, item.TotalPrice.String(), limit.String())
			}
			item.Status = StatusPending
			anyReset = true
		}
	}

	total := decimal.Zero
	for _, item := range pr.Items {
		total = total.Add(item.TotalPrice)
	}
	pr.TotalAmount = total

	if anyReset {
		pr.Status = StatusPending
	}
	pr.touch(actor, now)
	return nil
}

// applyItemAggregation folds item statuses into the request status and emits
// the stage-completing event when the decision finishes the request.
func (pr *PurchaseRequest) applyItemAggregation(actor Actor, reason string, now time.Time) []Event {
	statuses := make([]ApprovalStatus, len(pr.Items))
	for i, item := range pr.Items {
		statuses[i] = item.Status
	}
	switch AggregateItemStatuses(statuses) {
	case StatusDeclined:
		pr.finalizeDeclined(actor, now)
		return []Event{pr.stageEvent(EventDeclined, actor, reason)}
	case StatusApproved:
		pr.finalizeApproved(actor, now)
		return []Event{pr.stageEvent(EventApproved, actor, "")}
	}
	pr.Status = StatusPending
	pr.touch(actor, now)
	return nil
}

func (pr *PurchaseRequest) finalizeApproved(actor Actor, now time.Time) {
	pr.Status = StatusApproved
	pr.AreaManagerID = actor.UserID
	t := now
	pr.AreaManagerApprovedAt = &t
	if pr.VoucherID == "" {
		pr.VoucherID = FormatVoucherID(pr.RequestID, pr.CreatedAt)
	}
	pr.touch(actor, now)
}

func (pr *PurchaseRequest) finalizeDeclined(actor Actor, now time.Time) {
	pr.Status = StatusDeclined
	pr.AreaManagerID = actor.UserID
	t := now
	pr.AreaManagerDeclinedAt = &t
	pr.touch(actor, now)
}

func (pr *PurchaseRequest) appendComment(actor Actor, text string, now time.Time) {
	pr.Comments = append(pr.Comments, Comment{
		AuthorID:   actor.UserID,
		AuthorRole: actor.Role,
		Text:       text,
		CreatedAt:  now,
	})
}

func (pr *PurchaseRequest) findItem(itemID int64) *PurchaseRequestItem {
	for i := range pr.Items {
		if pr.Items[i].ItemID == itemID {
			return &pr.Items[i]
		}
	}
	return nil
}

// ReceiptValidatedForRef reports the receipt-validation result of the item a
// reference points at. The reference's amount suffix selects the item whose
// total matches it; without a suffix (or when no total matches) the most
// recently added item decides, so a receipt validated once at the purchase
// stage carries over without re-upload.
func (pr *PurchaseRequest) ReceiptValidatedForRef(ref string) bool {
	if len(pr.Items) == 0 {
		return false
	}
	if amount, ok := ParsePurchaseRequestRefAmount(ref); ok {
		match := -1
		for i := range pr.Items {
			if !pr.Items[i].TotalPrice.Equal(amount) {
				continue
			}
			if match < 0 || pr.Items[i].ItemID > pr.Items[match].ItemID {
				match = i
			}
		}
		if match >= 0 {
			return pr.Items[match].ReceiptValidated
		}
	}
	latest := 0
	for i := range pr.Items {
		if pr.Items[i].ItemID > pr.Items[latest].ItemID {
			latest = i
		}
	}
	return pr.Items[latest].ReceiptValidated
}

func (pr *PurchaseRequest) stageEvent(t EventType, actor Actor, reason string) Event {
	return Event{
		Type:          t,
		AggregateType: AggregatePurchaseRequest,
		AggregateID:   pr.RequestID,
		Stage:         StageAreaManager,
		ActorID:       actor.UserID,
		Reason:        reason,
	}
}

func (pr *PurchaseRequest) touch(actor Actor, now time.Time) {
	pr.LastUpdatedAt = now
	pr.LastUpdatedBy = actor.UserID
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
