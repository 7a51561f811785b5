package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/temmy669/imprest-portal-back-up/internal/apperrors"
)

// ReimbursementItem is a single expense line. An item participates in two
// parallel approval tracks: Status (Area Manager) and InternalControlStatus.
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
	PurchaseRequestRef    string          `json:"purchaseRequestRef,omitempty"`
	Status                ApprovalStatus  `json:"status"`
	InternalControlStatus ApprovalStatus  `json:"internalControlStatus"`
	ReceiptPath           string          `json:"receipt,omitempty"`
	RequiresReceipt       bool            `json:"requiresReceipt"`
	ReceiptValidated      bool            `json:"receiptValidated"` // written by the OCR collaborator or synced from a linked purchase request
}

// HasReceipt reports whether the receipt requirement is satisfied, either by
// an uploaded file or by a validation carried over from a linked purchase
// request.
func (it ReimbursementItem) HasReceipt() bool {
	return it.ReceiptPath != "" || it.ReceiptValidated
}

// Reimbursement is the aggregate root for the reimbursement workflow. It has
// two orthogonal approval tracks: the Area Manager track (Status) and the
// Internal Control track (InternalControlStatus), plus a terminal disbursement
// step. Internal Control only evaluates requests the Area Manager already
// approved; an Internal Control decline pushes the Area Manager track back to
// pending, which is the single re-open transition in the system.
type Reimbursement struct {
	ReimbursementID           int64              `json:"reimbursementID"`
	RequesterID               string             `json:"requesterID"`
	StoreID                   int64              `json:"storeID"`
	Status                    ApprovalStatus     `json:"status"`
	InternalControlStatus     ApprovalStatus     `json:"internalControlStatus"`
	DisbursementStatus        DisbursementStatus `json:"disbursementStatus"`
	IsDraft                   bool               `json:"isDraft"`
	TotalAmount               decimal.Decimal    `json:"totalAmount"`
	AreaManagerID             string             `json:"areaManagerID"`
	AreaManagerApprovedAt     *time.Time         `json:"areaManagerApprovedAt,omitempty"`
	AreaManagerDeclinedAt     *time.Time         `json:"areaManagerDeclinedAt,omitempty"`
	InternalControlID         string             `json:"internalControlID"`
	InternalControlApprovedAt *time.Time         `json:"internalControlApprovedAt,omitempty"`
	InternalControlDeclinedAt *time.Time         `json:"internalControlDeclinedAt,omitempty"`
	TreasurerID               string             `json:"treasurerID"`
	DisbursedAt               *time.Time         `json:"disbursedAt,omitempty"`
	BankID                    string             `json:"bankID,omitempty"`
	AccountID                 string             `json:"accountID,omitempty"`
	LinkedRequestIDs          []int64             `json:"linkedRequestIDs,omitempty"`
	Items                     []ReimbursementItem `json:"items"`
	Comments                  []Comment           `json:"comments"`
	AuditFields
}

// NewReimbursementItem is the input for a reimbursement line.
type NewReimbursementItem struct {
	ItemName           string
	GLCode             string
	TransportFrom      string
	TransportTo        string
	UnitPrice          decimal.Decimal
	Quantity           int
	PurchaseRequestRef string
	ReceiptPath        string
}

// NewReimbursement builds a reimbursement aggregate. RequiresReceipt is
// derived per item (total at or above the threshold, or a purchase request
// reference present). When asDraft is false the missing-receipt invariant is
// enforced immediately; drafts defer it to Submit so items can be edited
// incrementally.
func NewReimbursement(actor Actor, storeID int64, items []NewReimbursementItem, limit decimal.Decimal, asDraft bool, now time.Time) (*Reimbursement, error) {
	if len(items) == 0 {
		return nil, apperrors.NewValidationError("reimbursement must contain at least one item")
	}

	r := &Reimbursement{
		RequesterID:           actor.UserID,
		StoreID:               storeID,
		Status:                StatusPending,
		InternalControlStatus: StatusPending,
		DisbursementStatus:    DisbursementPending,
		IsDraft:               asDraft,
		AuditFields: AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}

	total := decimal.Zero
	for _, in := range items {
		item, err := buildReimbursementItem(in, limit)
		if err != nil {
			return nil, err
		}
		total = total.Add(item.ItemTotal)
		r.Items = append(r.Items, item)
	}
	r.TotalAmount = total

	if !asDraft {
		if missing := r.MissingReceiptItems(); len(missing) > 0 {
			return nil, missingReceiptError(missing)
		}
	}
	return r, nil
}

func buildReimbursementItem(in NewReimbursementItem, limit decimal.Decimal) (ReimbursementItem, error) {
	if strings.TrimSpace(in.ItemName) == "" {
		return ReimbursementItem{}, apperrors.NewValidationError("item name is required")
	}
	if in.Quantity <= 0 {
		return ReimbursementItem{}, apperrors.NewValidationError("quantity must be greater than zero for item %q", in.ItemName)
	}
	if in.UnitPrice.IsNegative() {
		return ReimbursementItem{}, apperrors.NewValidationError("unit price cannot be negative for item %q", in.ItemName)
	}
	if strings.EqualFold(strings.TrimSpace(in.ItemName), "transportation") {
		if in.TransportFrom == "" || in.TransportTo == "" {
			return ReimbursementItem{}, apperrors.NewValidationError("transportation items must include both transportation legs")
		}
	}
	total := in.UnitPrice.Mul(decimal.NewFromInt(int64(in.Quantity)))
	item := ReimbursementItem{
		ItemName:              in.ItemName,
		GLCode:                in.GLCode,
		TransportFrom:         in.TransportFrom,
		TransportTo:           in.TransportTo,
		UnitPrice:             in.UnitPrice,
		Quantity:              in.Quantity,
		ItemTotal:             total,
		PurchaseRequestRef:    in.PurchaseRequestRef,
		Status:                StatusPending,
		InternalControlStatus: StatusPending,
		ReceiptPath:           in.ReceiptPath,
	}
	item.RequiresReceipt = total.GreaterThanOrEqual(limit) || in.PurchaseRequestRef != ""
	return item, nil
}

// MissingReceiptItems returns the items that require a receipt but have none
// attached and no carried-over validation.
func (r *Reimbursement) MissingReceiptItems() []ReimbursementItem {
	var missing []ReimbursementItem
	for _, item := range r.Items {
		if item.RequiresReceipt && !item.HasReceipt() {
			missing = append(missing, item)
		}
	}
	return missing
}

func missingReceiptError(items []ReimbursementItem) error {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.ItemName
	}
	return apperrors.NewValidationError("items require a receipt before submission: %s", strings.Join(names, ", "))
}

// ReferencedPurchaseRequestIDs extracts the ids of purchase requests that item
// references resolve to.
func (r *Reimbursement) ReferencedPurchaseRequestIDs() []int64 {
	seen := map[int64]bool{}
	var ids []int64
	for _, item := range r.Items {
		if item.PurchaseRequestRef == "" {
			continue
		}
		if id, ok := ParsePurchaseRequestRef(item.PurchaseRequestRef); ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// SyncReceiptValidation carries purchase-request-stage receipt validations
// over to the items referencing that request. Each item copies the result of
// the referenced request's matching item, so a receipt validated once at the
// purchase stage satisfies the reimbursement requirement without re-upload.
func (r *Reimbursement) SyncReceiptValidation(pr *PurchaseRequest) {
	for i := range r.Items {
		if id, ok := ParsePurchaseRequestRef(r.Items[i].PurchaseRequestRef); ok && id == pr.RequestID {
			if pr.ReceiptValidatedForRef(r.Items[i].PurchaseRequestRef) {
				r.Items[i].ReceiptValidated = true
			}
		}
	}
}

// Submit finalizes a draft: the missing-receipt invariant is enforced here,
// not at draft creation.
func (r *Reimbursement) Submit(actor Actor, now time.Time) error {
	if actor.UserID != r.RequesterID {
		return apperrors.NewForbiddenError("only the requester can submit a reimbursement")
	}
	if !r.IsDraft {
		return apperrors.NewInvalidStateError("reimbursement %s is already submitted", FormatReimbursementRef(r.ReimbursementID))
	}
	if missing := r.MissingReceiptItems(); len(missing) > 0 {
		return missingReceiptError(missing)
	}
	r.IsDraft = false
	r.Status = StatusPending
	r.touch(actor, now)
	return nil
}

// Approve dispatches on the actor's role: Area Managers complete the Status
// track, Internal Control completes its own track once the Area Manager
// approved. The whole-aggregate form short-circuits item aggregation.
func (r *Reimbursement) Approve(actor Actor, now time.Time) ([]Event, error) {
	switch actor.Role {
	case RoleAreaManager:
		if err := r.checkAreaManagerActionable(actor); err != nil {
			return nil, err
		}
		for i := range r.Items {
			r.Items[i].Status = StatusApproved
		}
		r.finalizeAreaManagerApproved(actor, now)
		return []Event{r.stageEvent(EventApproved, StageAreaManager, actor, "")}, nil

	case RoleInternalControl:
		if err := r.checkInternalControlActionable(); err != nil {
			return nil, err
		}
		for i := range r.Items {
			r.Items[i].InternalControlStatus = StatusApproved
		}
		r.finalizeInternalControlApproved(actor, now)
		return []Event{r.stageEvent(EventApproved, StageInternalControl, actor, "")}, nil
	}
	return nil, apperrors.NewForbiddenError("role %s cannot approve reimbursements", actor.Role)
}

// Decline dispatches the same way as Approve. An Area Manager decline is
// terminal; an Internal Control decline marks its track declined and re-opens
// the Area Manager track, resetting every item's Area-Manager-facing status.
func (r *Reimbursement) Decline(actor Actor, comment string, now time.Time) ([]Event, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, apperrors.NewValidationError("comment is required when declining")
	}

	switch actor.Role {
	case RoleAreaManager:
		if err := r.checkAreaManagerActionable(actor); err != nil {
			return nil, err
		}
		for i := range r.Items {
			r.Items[i].Status = StatusDeclined
		}
		r.finalizeAreaManagerDeclined(actor, now)
		r.appendComment(actor, comment, now)
		return []Event{r.stageEvent(EventDeclined, StageAreaManager, actor, comment)}, nil

	case RoleInternalControl:
		if err := r.checkInternalControlActionable(); err != nil {
			return nil, err
		}
		r.reopenAreaManagerTrack(actor, now)
		r.appendComment(actor, comment, now)
		return []Event{r.stageEvent(EventDeclined, StageInternalControl, actor, comment)}, nil
	}
	return nil, apperrors.NewForbiddenError("role %s cannot decline reimbursements", actor.Role)
}

// ApproveItem approves one item on the acting role's track and re-evaluates
// the aggregation rule for that track.
func (r *Reimbursement) ApproveItem(itemID int64, actor Actor, now time.Time) ([]Event, error) {
	item := r.findItem(itemID)
	if item == nil {
		return nil, apperrors.NewAppError(404, "reimbursement item not found", apperrors.ErrNotFound)
	}

	switch actor.Role {
	case RoleAreaManager:
		if err := r.checkAreaManagerActionable(actor); err != nil {
			return nil, err
		}
		if item.Status == StatusApproved {
			return nil, apperrors.NewInvalidStateError("item %d is already approved", itemID)
		}
		item.Status = StatusApproved
		return r.applyAreaManagerAggregation(actor, "", now), nil

	case RoleInternalControl:
		if err := r.checkInternalControlActionable(); err != nil {
			return nil, err
		}
		if item.InternalControlStatus == StatusApproved {
			return nil, apperrors.NewInvalidStateError("item %d is already approved", itemID)
		}
		item.InternalControlStatus = StatusApproved
		return r.applyInternalControlAggregation(actor, "", now), nil
	}
	return nil, apperrors.NewForbiddenError("role %s cannot approve reimbursement items", actor.Role)
}

// DeclineItem declines one item on the acting role's track. Any declined item
// declines the track immediately.
func (r *Reimbursement) DeclineItem(itemID int64, actor Actor, comment string, now time.Time) ([]Event, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, apperrors.NewValidationError("comment is required when declining")
	}
	item := r.findItem(itemID)
	if item == nil {
		return nil, apperrors.NewAppError(404, "reimbursement item not found", apperrors.ErrNotFound)
	}

	switch actor.Role {
	case RoleAreaManager:
		if err := r.checkAreaManagerActionable(actor); err != nil {
			return nil, err
		}
		if item.Status == StatusDeclined {
			return nil, apperrors.NewInvalidStateError("item %d is already declined", itemID)
		}
		item.Status = StatusDeclined
		r.appendComment(actor, comment, now)
		return r.applyAreaManagerAggregation(actor, comment, now), nil

	case RoleInternalControl:
		if err := r.checkInternalControlActionable(); err != nil {
			return nil, err
		}
		if item.InternalControlStatus == StatusDeclined {
			return nil, apperrors.NewInvalidStateError("item %d is already declined", itemID)
		}
		item.InternalControlStatus = StatusDeclined
		r.appendComment(actor, comment, now)
		return r.applyInternalControlAggregation(actor, comment, now), nil
	}
	return nil, apperrors.NewForbiddenError("role %s cannot decline reimbursement items", actor.Role)
}

// Disburse pays out an approved reimbursement exactly once, binding the bank,
// account and treasurer. Requires the Internal Control track approved.
func (r *Reimbursement) Disburse(actor Actor, bankID, accountID string, now time.Time) ([]Event, error) {
	if actor.Role != RoleTreasurer && actor.Role != RoleAdmin {
		return nil, apperrors.NewForbiddenError("role %s cannot disburse reimbursements", actor.Role)
	}
	if bankID == "" || accountID == "" {
		return nil, apperrors.NewValidationError("bank and account are required for disbursement")
	}
	if r.InternalControlStatus != StatusApproved {
		return nil, apperrors.NewInvalidStateError("reimbursement %s is not approved by internal control", FormatReimbursementRef(r.ReimbursementID))
	}
	if r.DisbursementStatus != DisbursementPending {
		return nil, apperrors.NewInvalidStateError("reimbursement %s is already disbursed", FormatReimbursementRef(r.ReimbursementID))
	}
	r.DisbursementStatus = DisbursementDisbursed
	r.Status = StatusDisbursed
	r.BankID = bankID
	r.AccountID = accountID
	r.TreasurerID = actor.UserID
	t := now
	r.DisbursedAt = &t
	r.touch(actor, now)
	return []Event{r.stageEvent(EventDisbursed, StageDisbursement, actor, "")}, nil
}

// ReimbursementItemChange updates an existing item (ItemID set) or adds a new
// one (ItemID zero). Nil fields are left untouched.
type ReimbursementItemChange struct {
	ItemID             int64
	ItemName           *string
	GLCode             *string
	TransportFrom      *string
	TransportTo        *string
	UnitPrice          *decimal.Decimal
	Quantity           *int
	ReceiptPath        *string
	PurchaseRequestRef *string
}

// UpdateItems applies edits before disbursement. A tracked-field change
// (price, quantity, name, transport leg, receipt) resets the touched item to
// pending on both tracks and forces the aggregate back to pending: edits
// invalidate prior approvals. TotalAmount is recomputed over all items.
func (r *Reimbursement) UpdateItems(changes []ReimbursementItemChange, actor Actor, limit decimal.Decimal, now time.Time) error {
	if actor.UserID != r.RequesterID && actor.Role != RoleAdmin {
		return apperrors.NewForbiddenError("only the requester can edit a reimbursement")
	}
	if r.DisbursementStatus == DisbursementDisbursed {
		return apperrors.NewInvalidStateError("reimbursement %s is already disbursed", FormatReimbursementRef(r.ReimbursementID))
	}

	anyReset := false
	for _, ch := range changes {
		if ch.ItemID == 0 {
			in := NewReimbursementItem{
				ItemName:           deref(ch.ItemName),
				GLCode:             deref(ch.GLCode),
				TransportFrom:      deref(ch.TransportFrom),
				TransportTo:        deref(ch.TransportTo),
				PurchaseRequestRef: deref(ch.PurchaseRequestRef),
				ReceiptPath:        deref(ch.ReceiptPath),
				Quantity:           1,
			}
			if ch.UnitPrice != nil {
				in.UnitPrice = *ch.UnitPrice
			}
			if ch.Quantity != nil {
				in.Quantity = *ch.Quantity
			}
			item, err := buildReimbursementItem(in, limit)
			if err != nil {
				return err
			}
			item.ReimbursementID = r.ReimbursementID
			r.Items = append(r.Items, item)
			anyReset = true
			continue
		}

		item := r.findItem(ch.ItemID)
		if item == nil {
			return apperrors.NewAppError(404, "reimbursement item not found", apperrors.ErrNotFound)
		}
		changed := false
		if ch.ItemName != nil && *ch.ItemName != item.ItemName {
			item.ItemName = *ch.ItemName
			changed = true
		}
		if ch.GLCode != nil && *ch.GLCode != item.GLCode {
			item.GLCode = *ch.GLCode
			changed = true
		}
		if ch.TransportFrom != nil && *ch.TransportFrom != item.TransportFrom {
			item.TransportFrom = *ch.TransportFrom
			changed = true
		}
		if ch.TransportTo != nil && *ch.TransportTo != item.TransportTo {
			item.TransportTo = *ch.TransportTo
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
		if ch.ReceiptPath != nil && *ch.ReceiptPath != item.ReceiptPath {
			item.ReceiptPath = *ch.ReceiptPath
			changed = true
		}
		if ch.PurchaseRequestRef != nil && *ch.PurchaseRequestRef != item.PurchaseRequestRef {
			item.PurchaseRequestRef = *ch.PurchaseRequestRef
			changed = true
		}
		if changed {
			if item.Quantity <= 0 {
				return apperrors.NewValidationError("quantity must be greater than zero for item %q", item.ItemName)
			}
			item.ItemTotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			item.RequiresReceipt = item.ItemTotal.GreaterThanOrEqual(limit) || item.PurchaseRequestRef != ""
			item.Status = StatusPending
			item.InternalControlStatus = StatusPending
			anyReset = true
		}
	}

	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.ItemTotal)
	}
	r.TotalAmount = total

	if anyReset {
		r.Status = StatusPending
		r.InternalControlStatus = StatusPending
	}
	r.touch(actor, now)
	return nil
}

// AttachReceipt stores the uploaded receipt path on an item. Attaching a
// receipt is a tracked-field change, so a non-pending item goes back to
// pending along with the aggregate.
func (r *Reimbursement) AttachReceipt(itemID int64, path string, actor Actor, now time.Time) error {
	if actor.UserID != r.RequesterID && actor.Role != RoleAdmin {
		return apperrors.NewForbiddenError("only the requester can upload receipts")
	}
	if path == "" {
		return apperrors.NewValidationError("receipt file is required")
	}
	item := r.findItem(itemID)
	if item == nil {
		return apperrors.NewAppError(404, "reimbursement item not found", apperrors.ErrNotFound)
	}
	item.ReceiptPath = path
	if item.Status != StatusPending || item.InternalControlStatus != StatusPending {
		item.Status = StatusPending
		item.InternalControlStatus = StatusPending
		r.Status = StatusPending
		r.InternalControlStatus = StatusPending
	}
	r.touch(actor, now)
	return nil
}

func (r *Reimbursement) checkAreaManagerActionable(actor Actor) error {
	if !actor.CanActOnStore(r.StoreID) {
		return apperrors.NewForbiddenError("actor is not assigned to store %d", r.StoreID)
	}
	if r.IsDraft {
		return apperrors.NewInvalidStateError("reimbursement %s has not been submitted", FormatReimbursementRef(r.ReimbursementID))
	}
	if r.Status != StatusPending {
		return apperrors.NewInvalidStateError("reimbursement %s is already %s", FormatReimbursementRef(r.ReimbursementID), r.Status)
	}
	return nil
}

func (r *Reimbursement) checkInternalControlActionable() error {
	if r.IsDraft {
		return apperrors.NewInvalidStateError("reimbursement %s has not been submitted", FormatReimbursementRef(r.ReimbursementID))
	}
	if r.Status != StatusApproved {
		return apperrors.NewInvalidStateError("reimbursement %s has not been approved by the area manager", FormatReimbursementRef(r.ReimbursementID))
	}
	if r.InternalControlStatus != StatusPending {
		return apperrors.NewInvalidStateError("reimbursement %s is already %s by internal control", FormatReimbursementRef(r.ReimbursementID), r.InternalControlStatus)
	}
	return nil
}

func (r *Reimbursement) applyAreaManagerAggregation(actor Actor, reason string, now time.Time) []Event {
	statuses := make([]ApprovalStatus, len(r.Items))
	for i, item := range r.Items {
		statuses[i] = item.Status
	}
	switch AggregateItemStatuses(statuses) {
	case StatusDeclined:
		r.finalizeAreaManagerDeclined(actor, now)
		return []Event{r.stageEvent(EventDeclined, StageAreaManager, actor, reason)}
	case StatusApproved:
		r.finalizeAreaManagerApproved(actor, now)
		return []Event{r.stageEvent(EventApproved, StageAreaManager, actor, "")}
	}
	r.Status = StatusPending
	r.touch(actor, now)
	return nil
}

func (r *Reimbursement) applyInternalControlAggregation(actor Actor, reason string, now time.Time) []Event {
	statuses := make([]ApprovalStatus, len(r.Items))
	for i, item := range r.Items {
		statuses[i] = item.InternalControlStatus
	}
	switch AggregateItemStatuses(statuses) {
	case StatusDeclined:
		r.reopenAreaManagerTrack(actor, now)
		return []Event{r.stageEvent(EventDeclined, StageInternalControl, actor, reason)}
	case StatusApproved:
		r.finalizeInternalControlApproved(actor, now)
		return []Event{r.stageEvent(EventApproved, StageInternalControl, actor, "")}
	}
	r.touch(actor, now)
	return nil
}

func (r *Reimbursement) finalizeAreaManagerApproved(actor Actor, now time.Time) {
	r.Status = StatusApproved
	r.AreaManagerID = actor.UserID
	t := now
	r.AreaManagerApprovedAt = &t
	// A fresh Area Manager approval after an Internal Control decline re-opens
	// the Internal Control track for re-evaluation.
	if r.InternalControlStatus == StatusDeclined {
		r.InternalControlStatus = StatusPending
		for i := range r.Items {
			r.Items[i].InternalControlStatus = StatusPending
		}
	}
	r.touch(actor, now)
}

func (r *Reimbursement) finalizeAreaManagerDeclined(actor Actor, now time.Time) {
	r.Status = StatusDeclined
	r.AreaManagerID = actor.UserID
	t := now
	r.AreaManagerDeclinedAt = &t
	r.touch(actor, now)
}

func (r *Reimbursement) finalizeInternalControlApproved(actor Actor, now time.Time) {
	r.InternalControlStatus = StatusApproved
	r.InternalControlID = actor.UserID
	t := now
	r.InternalControlApprovedAt = &t
	r.touch(actor, now)
}

// reopenAreaManagerTrack is the deliberate asymmetric transition: the Internal
// Control track is marked declined while the whole request returns to the Area
// Manager queue, items included.
func (r *Reimbursement) reopenAreaManagerTrack(actor Actor, now time.Time) {
	r.InternalControlStatus = StatusDeclined
	r.InternalControlID = actor.UserID
	t := now
	r.InternalControlDeclinedAt = &t
	r.Status = StatusPending
	for i := range r.Items {
		r.Items[i].Status = StatusPending
	}
	r.touch(actor, now)
}

func (r *Reimbursement) appendComment(actor Actor, text string, now time.Time) {
	r.Comments = append(r.Comments, Comment{
		AuthorID:   actor.UserID,
		AuthorRole: actor.Role,
		Text:       text,
		CreatedAt:  now,
	})
}

func (r *Reimbursement) findItem(itemID int64) *ReimbursementItem {
	for i := range r.Items {
		if r.Items[i].ItemID == itemID {
			return &r.Items[i]
		}
	}
	return nil
}

func (r *Reimbursement) stageEvent(t EventType, stage Stage, actor Actor, reason string) Event {
	return Event{
		Type:          t,
		AggregateType: AggregateReimbursement,
		AggregateID:   r.ReimbursementID,
		Stage:         stage,
		ActorID:       actor.UserID,
		Reason:        reason,
	}
}

func (r *Reimbursement) touch(actor Actor, now time.Time) {
	r.LastUpdatedAt = now
	r.LastUpdatedBy = actor.UserID
}
