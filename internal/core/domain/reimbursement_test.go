package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temmy669/imprest-portal-back-up/internal/apperrors"
	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
)

func internalControlActor() domain.Actor {
	return domain.Actor{UserID: "ic-1", Role: domain.RoleInternalControl}
}

func treasurerActor() domain.Actor {
	return domain.Actor{UserID: "tr-1", Role: domain.RoleTreasurer}
}

// newTestReimbursement builds a submitted two-item reimbursement whose items
// sit below the receipt threshold.
func newTestReimbursement(t *testing.T) *domain.Reimbursement {
	t.Helper()
	r, err := domain.NewReimbursement(requesterActor(), 1, []domain.NewReimbursementItem{
		{ItemName: "cleaning supplies", UnitPrice: decimal.NewFromInt(1200), Quantity: 1},
		{ItemName: "fuel", UnitPrice: decimal.NewFromInt(800), Quantity: 2},
	}, testLimit, false, testNow)
	require.NoError(t, err)
	r.ReimbursementID = 7
	for i := range r.Items {
		r.Items[i].ItemID = int64(i + 1)
	}
	return r
}

func approvedByAreaManager(t *testing.T) *domain.Reimbursement {
	t.Helper()
	r := newTestReimbursement(t)
	_, err := r.Approve(areaManagerActor(), testNow)
	require.NoError(t, err)
	return r
}

func TestNewReimbursement_ReceiptRequirement(t *testing.T) {
	tests := []struct {
		name    string
		item    domain.NewReimbursementItem
		want    bool
		wantErr bool
	}{
		{
			name: "below threshold needs no receipt",
			item: domain.NewReimbursementItem{ItemName: "stationery", UnitPrice: decimal.NewFromInt(100), Quantity: 1},
			want: false,
		},
		{
			name:    "at threshold requires a receipt",
			item:    domain.NewReimbursementItem{ItemName: "generator repair", UnitPrice: decimal.NewFromInt(5000), Quantity: 1},
			want:    true,
			wantErr: true, // no receipt attached, non-draft creation fails
		},
		{
			name: "purchase request reference requires a receipt",
			item: domain.NewReimbursementItem{ItemName: "fryer delivery", UnitPrice: decimal.NewFromInt(200), Quantity: 1,
				PurchaseRequestRef: "PR-0015"},
			want:    true,
			wantErr: true,
		},
		{
			name: "receipt attached satisfies the requirement",
			item: domain.NewReimbursementItem{ItemName: "generator repair", UnitPrice: decimal.NewFromInt(5000), Quantity: 1,
				ReceiptPath: "receipts/abc.pdf"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := domain.NewReimbursement(requesterActor(), 1, []domain.NewReimbursementItem{tt.item}, testLimit, false, testNow)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Items[0].RequiresReceipt)
		})
	}
}

func TestNewReimbursement_DraftDefersReceiptCheck(t *testing.T) {
	items := []domain.NewReimbursementItem{
		{ItemName: "generator repair", UnitPrice: decimal.NewFromInt(6000), Quantity: 1},
	}

	// Non-draft creation fails without a receipt.
	_, err := domain.NewReimbursement(requesterActor(), 1, items, testLimit, false, testNow)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// Draft creation succeeds; Submit enforces the invariant.
	r, err := domain.NewReimbursement(requesterActor(), 1, items, testLimit, true, testNow)
	require.NoError(t, err)
	r.Items[0].ItemID = 1

	err = r.Submit(requesterActor(), testNow)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.True(t, r.IsDraft)

	err = r.AttachReceipt(1, "receipts/gen.pdf", requesterActor(), testNow)
	require.NoError(t, err)

	err = r.Submit(requesterActor(), testNow)
	require.NoError(t, err)
	assert.False(t, r.IsDraft)
	assert.Equal(t, domain.StatusPending, r.Status)
}

func TestNewReimbursement_TransportationLegs(t *testing.T) {
	_, err := domain.NewReimbursement(requesterActor(), 1, []domain.NewReimbursementItem{
		{ItemName: "Transportation", UnitPrice: decimal.NewFromInt(50), Quantity: 1},
	}, testLimit, false, testNow)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	r, err := domain.NewReimbursement(requesterActor(), 1, []domain.NewReimbursementItem{
		{ItemName: "Transportation", UnitPrice: decimal.NewFromInt(50), Quantity: 1,
			TransportFrom: "Ikeja", TransportTo: "Victoria Island"},
	}, testLimit, false, testNow)
	require.NoError(t, err)
	assert.Equal(t, "Ikeja", r.Items[0].TransportFrom)
}

func TestReimbursement_SyncReceiptValidation(t *testing.T) {
	// PR-0015 with two items: the older one (6000) unvalidated, the most
	// recent one (8000) validated at the purchase stage.
	pr, err := domain.NewPurchaseRequest(requesterActor(), 1, []domain.NewPurchaseItem{
		{GLCode: "6001", ExpenseItem: "industrial fryer", UnitPrice: decimal.NewFromInt(6000), Quantity: 1},
		{GLCode: "6002", ExpenseItem: "extraction hood", UnitPrice: decimal.NewFromInt(8000), Quantity: 1},
	}, testLimit, testNow)
	require.NoError(t, err)
	pr.RequestID = 15
	for i := range pr.Items {
		pr.Items[i].ItemID = int64(i + 1)
	}
	pr.Items[1].ReceiptValidated = true

	t.Run("the most recent item decides when the reference has no amount", func(t *testing.T) {
		r, err := domain.NewReimbursement(requesterActor(), 1, []domain.NewReimbursementItem{
			{ItemName: "fryer delivery", UnitPrice: decimal.NewFromInt(200), Quantity: 1, PurchaseRequestRef: "PR-0015"},
			{ItemName: "fuel", UnitPrice: decimal.NewFromInt(100), Quantity: 1},
		}, testLimit, true, testNow)
		require.NoError(t, err)

		assert.Equal(t, []int64{15}, r.ReferencedPurchaseRequestIDs())

		r.SyncReceiptValidation(pr)
		assert.True(t, r.Items[0].ReceiptValidated)
		assert.True(t, r.Items[0].HasReceipt())
		assert.False(t, r.Items[1].ReceiptValidated)
		assert.Empty(t, r.MissingReceiptItems())
	})

	t.Run("an amount suffix selects the matching item", func(t *testing.T) {
		r, err := domain.NewReimbursement(requesterActor(), 1, []domain.NewReimbursementItem{
			{ItemName: "fryer delivery", UnitPrice: decimal.NewFromInt(200), Quantity: 1, PurchaseRequestRef: "PR-0015-6000"},
			{ItemName: "hood install", UnitPrice: decimal.NewFromInt(300), Quantity: 1, PurchaseRequestRef: "PR-0015-8000"},
		}, testLimit, true, testNow)
		require.NoError(t, err)

		r.SyncReceiptValidation(pr)
		assert.False(t, r.Items[0].ReceiptValidated, "the 6000 item was never validated")
		assert.True(t, r.Items[1].ReceiptValidated, "the 8000 item's validation carries over")
	})
}

func TestReimbursement_ApprovalTracks(t *testing.T) {
	t.Run("internal control cannot act before the area manager approves", func(t *testing.T) {
		r := newTestReimbursement(t)
		_, err := r.Approve(internalControlActor(), testNow)
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	})

	t.Run("area manager then internal control", func(t *testing.T) {
		r := newTestReimbursement(t)

		events, err := r.Approve(areaManagerActor(), testNow)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusApproved, r.Status)
		assert.Equal(t, domain.StatusPending, r.InternalControlStatus)
		require.Len(t, events, 1)
		assert.Equal(t, domain.StageAreaManager, events[0].Stage)

		events, err = r.Approve(internalControlActor(), testNow)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusApproved, r.InternalControlStatus)
		assert.Equal(t, "ic-1", r.InternalControlID)
		require.Len(t, events, 1)
		assert.Equal(t, domain.StageInternalControl, events[0].Stage)
	})

	t.Run("treasurer cannot approve", func(t *testing.T) {
		r := newTestReimbursement(t)
		_, err := r.Approve(treasurerActor(), testNow)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("drafts are not actionable", func(t *testing.T) {
		r, err := domain.NewReimbursement(requesterActor(), 1, []domain.NewReimbursementItem{
			{ItemName: "fuel", UnitPrice: decimal.NewFromInt(100), Quantity: 1},
		}, testLimit, true, testNow)
		require.NoError(t, err)
		_, err = r.Approve(areaManagerActor(), testNow)
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	})
}

func TestReimbursement_InternalControlDeclineReopens(t *testing.T) {
	r := approvedByAreaManager(t)

	events, err := r.Decline(internalControlActor(), "receipts do not match amounts", testNow)
	require.NoError(t, err)

	// IC track is declined, but the request goes back to the Area Manager
	// queue with every item reset.
	assert.Equal(t, domain.StatusDeclined, r.InternalControlStatus)
	assert.Equal(t, domain.StatusPending, r.Status)
	for _, item := range r.Items {
		assert.Equal(t, domain.StatusPending, item.Status)
	}
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventDeclined, events[0].Type)
	assert.Equal(t, domain.StageInternalControl, events[0].Stage)

	// A fresh Area Manager approval re-opens the IC track.
	_, err = r.Approve(areaManagerActor(), testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, r.Status)
	assert.Equal(t, domain.StatusPending, r.InternalControlStatus)
	for _, item := range r.Items {
		assert.Equal(t, domain.StatusPending, item.InternalControlStatus)
	}
}

func TestReimbursement_ItemDecisions(t *testing.T) {
	t.Run("area manager item aggregation", func(t *testing.T) {
		r := newTestReimbursement(t)
		am := areaManagerActor()

		events, err := r.ApproveItem(1, am, testNow)
		require.NoError(t, err)
		assert.Empty(t, events)
		assert.Equal(t, domain.StatusPending, r.Status)

		events, err = r.ApproveItem(2, am, testNow)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, domain.StatusApproved, r.Status)
	})

	t.Run("internal control item decline reopens the area manager track", func(t *testing.T) {
		r := approvedByAreaManager(t)
		ic := internalControlActor()

		_, err := r.ApproveItem(1, ic, testNow)
		require.NoError(t, err)

		events, err := r.DeclineItem(2, ic, "no receipt for the second leg", testNow)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, domain.StatusDeclined, r.InternalControlStatus)
		assert.Equal(t, domain.StatusPending, r.Status)
	})

	t.Run("decline requires a comment", func(t *testing.T) {
		r := newTestReimbursement(t)
		_, err := r.DeclineItem(1, areaManagerActor(), "", testNow)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestReimbursement_Disburse(t *testing.T) {
	t.Run("requires internal control approval", func(t *testing.T) {
		r := approvedByAreaManager(t)
		_, err := r.Disburse(treasurerActor(), "bank-1", "acct-1", testNow)
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	})

	t.Run("disburses exactly once", func(t *testing.T) {
		r := approvedByAreaManager(t)
		_, err := r.Approve(internalControlActor(), testNow)
		require.NoError(t, err)

		events, err := r.Disburse(treasurerActor(), "bank-1", "acct-1", testNow)
		require.NoError(t, err)
		assert.Equal(t, domain.DisbursementDisbursed, r.DisbursementStatus)
		assert.Equal(t, domain.StatusDisbursed, r.Status)
		assert.Equal(t, "bank-1", r.BankID)
		assert.Equal(t, "acct-1", r.AccountID)
		assert.Equal(t, "tr-1", r.TreasurerID)
		require.NotNil(t, r.DisbursedAt)
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventDisbursed, events[0].Type)

		_, err = r.Disburse(treasurerActor(), "bank-2", "acct-2", testNow.Add(time.Minute))
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
		assert.Equal(t, "bank-1", r.BankID, "payout target must not change after disbursement")
	})

	t.Run("role gate", func(t *testing.T) {
		r := approvedByAreaManager(t)
		_, err := r.Approve(internalControlActor(), testNow)
		require.NoError(t, err)
		_, err = r.Disburse(areaManagerActor(), "bank-1", "acct-1", testNow)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("bank and account are mandatory", func(t *testing.T) {
		r := approvedByAreaManager(t)
		_, err := r.Approve(internalControlActor(), testNow)
		require.NoError(t, err)
		_, err = r.Disburse(treasurerActor(), "", "acct-1", testNow)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestReimbursement_UpdateItemsResetsBothTracks(t *testing.T) {
	r := approvedByAreaManager(t)

	newPrice := decimal.NewFromInt(950)
	err := r.UpdateItems([]domain.ReimbursementItemChange{{ItemID: 1, UnitPrice: &newPrice}}, requesterActor(), testLimit, testNow)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, r.Status)
	assert.Equal(t, domain.StatusPending, r.InternalControlStatus)
	assert.Equal(t, domain.StatusPending, r.Items[0].Status)
	assert.Equal(t, domain.StatusPending, r.Items[0].InternalControlStatus)
	assert.True(t, r.TotalAmount.Equal(decimal.NewFromInt(2550)), "total recomputed, got %s", r.TotalAmount)
}

func TestReimbursement_UpdateItemsAfterDisbursement(t *testing.T) {
	r := approvedByAreaManager(t)
	_, err := r.Approve(internalControlActor(), testNow)
	require.NoError(t, err)
	_, err = r.Disburse(treasurerActor(), "bank-1", "acct-1", testNow)
	require.NoError(t, err)

	newPrice := decimal.NewFromInt(950)
	err = r.UpdateItems([]domain.ReimbursementItemChange{{ItemID: 1, UnitPrice: &newPrice}}, requesterActor(), testLimit, testNow)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestReimbursement_AttachReceiptResetsDecidedItem(t *testing.T) {
	r := approvedByAreaManager(t)

	err := r.AttachReceipt(1, "receipts/fuel.jpg", requesterActor(), testNow)
	require.NoError(t, err)

	assert.Equal(t, "receipts/fuel.jpg", r.Items[0].ReceiptPath)
	assert.Equal(t, domain.StatusPending, r.Items[0].Status)
	assert.Equal(t, domain.StatusPending, r.Status)
	assert.Equal(t, domain.StatusPending, r.InternalControlStatus)
}
