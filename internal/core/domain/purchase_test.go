package domain_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temmy669/imprest-portal-back-up/internal/apperrors"
	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
)

var (
	testLimit = decimal.NewFromInt(5000)
	testNow   = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
)

func requesterActor() domain.Actor {
	return domain.Actor{UserID: "rm-1", Role: domain.RoleRestaurantManager, HomeStoreID: 1}
}

func areaManagerActor() domain.Actor {
	return domain.Actor{UserID: "am-1", Role: domain.RoleAreaManager, AssignedStoreIDs: []int64{1, 2}}
}

func newTestRequest(t *testing.T, itemCount int) *domain.PurchaseRequest {
	t.Helper()
	items := make([]domain.NewPurchaseItem, itemCount)
	for i := range items {
		items[i] = domain.NewPurchaseItem{
			GLCode:      "6001",
			ExpenseItem: "industrial fryer",
			UnitPrice:   decimal.NewFromInt(6000),
			Quantity:    1,
		}
	}
	pr, err := domain.NewPurchaseRequest(requesterActor(), 1, items, testLimit, testNow)
	require.NoError(t, err)
	pr.RequestID = 15
	for i := range pr.Items {
		pr.Items[i].ItemID = int64(i + 1)
	}
	return pr
}

func TestAggregateItemStatuses(t *testing.T) {
	tests := []struct {
		name     string
		statuses []domain.ApprovalStatus
		want     domain.ApprovalStatus
	}{
		{
			name:     "empty stays pending",
			statuses: nil,
			want:     domain.StatusPending,
		},
		{
			name:     "all approved",
			statuses: []domain.ApprovalStatus{domain.StatusApproved, domain.StatusApproved},
			want:     domain.StatusApproved,
		},
		{
			name:     "any declined wins over approvals",
			statuses: []domain.ApprovalStatus{domain.StatusApproved, domain.StatusDeclined, domain.StatusApproved},
			want:     domain.StatusDeclined,
		},
		{
			name:     "declined wins even when the rest are pending",
			statuses: []domain.ApprovalStatus{domain.StatusPending, domain.StatusDeclined},
			want:     domain.StatusDeclined,
		},
		{
			name:     "mixed approved and pending stays pending",
			statuses: []domain.ApprovalStatus{domain.StatusApproved, domain.StatusPending},
			want:     domain.StatusPending,
		},
		{
			name:     "single pending",
			statuses: []domain.ApprovalStatus{domain.StatusPending},
			want:     domain.StatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.AggregateItemStatuses(tt.statuses))
		})
	}
}

func TestAggregateItemStatuses_RandomVectors(t *testing.T) {
	pool := []domain.ApprovalStatus{domain.StatusPending, domain.StatusApproved, domain.StatusDeclined}
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 500; i++ {
		statuses := make([]domain.ApprovalStatus, 1+rng.Intn(20))
		var declined, approved int
		for j := range statuses {
			statuses[j] = pool[rng.Intn(len(pool))]
			switch statuses[j] {
			case domain.StatusDeclined:
				declined++
			case domain.StatusApproved:
				approved++
			}
		}

		want := domain.StatusPending
		switch {
		case declined > 0:
			want = domain.StatusDeclined
		case approved == len(statuses):
			want = domain.StatusApproved
		}
		assert.Equal(t, want, domain.AggregateItemStatuses(statuses), "statuses %v", statuses)
	}
}

func TestNewPurchaseRequest_ThresholdBoundary(t *testing.T) {
	actor := requesterActor()

	tests := []struct {
		name      string
		unitPrice decimal.Decimal
		quantity  int
		wantErr   bool
	}{
		{name: "item total below limit is rejected", unitPrice: decimal.NewFromInt(4999), quantity: 1, wantErr: true},
		{name: "item total exactly at limit is accepted", unitPrice: decimal.NewFromInt(5000), quantity: 1, wantErr: false},
		{name: "quantity lifts a small unit price over the limit", unitPrice: decimal.NewFromInt(2500), quantity: 2, wantErr: false},
		{name: "item total above limit is accepted", unitPrice: decimal.NewFromInt(5001), quantity: 1, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewPurchaseRequest(actor, 1, []domain.NewPurchaseItem{{
				ExpenseItem: "walk-in freezer",
				UnitPrice:   tt.unitPrice,
				Quantity:    tt.quantity,
			}}, testLimit, testNow)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewPurchaseRequest_TotalAmount(t *testing.T) {
	pr, err := domain.NewPurchaseRequest(requesterActor(), 1, []domain.NewPurchaseItem{
		{ExpenseItem: "oven", UnitPrice: decimal.NewFromInt(6000), Quantity: 2},
		{ExpenseItem: "grill", UnitPrice: decimal.NewFromFloat(7500.50), Quantity: 1},
	}, testLimit, testNow)
	require.NoError(t, err)

	assert.True(t, pr.TotalAmount.Equal(decimal.NewFromFloat(19500.50)),
		"expected 19500.50, got %s", pr.TotalAmount)
	assert.Equal(t, domain.StatusPending, pr.Status)
	assert.Empty(t, pr.VoucherID)
}

func TestPurchaseRequest_Approve(t *testing.T) {
	pr := newTestRequest(t, 2)
	am := areaManagerActor()

	events, err := pr.Approve(am, testNow)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusApproved, pr.Status)
	assert.Equal(t, "am-1", pr.AreaManagerID)
	assert.Equal(t, "PV-0015-2025-03-10", pr.VoucherID)
	for _, item := range pr.Items {
		assert.Equal(t, domain.StatusApproved, item.Status)
	}
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventApproved, events[0].Type)
	assert.Equal(t, domain.StageAreaManager, events[0].Stage)

	// A second approval must fail and must not touch the voucher.
	_, err = pr.Approve(am, testNow.Add(time.Hour))
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	assert.Equal(t, "PV-0015-2025-03-10", pr.VoucherID)
}

func TestPurchaseRequest_ApproveRoleGate(t *testing.T) {
	pr := newTestRequest(t, 1)

	_, err := pr.Approve(requesterActor(), testNow)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	outsideAM := domain.Actor{UserID: "am-9", Role: domain.RoleAreaManager, AssignedStoreIDs: []int64{9}}
	_, err = pr.Approve(outsideAM, testNow)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	admin := domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin}
	_, err = pr.Approve(admin, testNow)
	assert.NoError(t, err)
}

func TestPurchaseRequest_DeclineRequiresComment(t *testing.T) {
	pr := newTestRequest(t, 1)
	am := areaManagerActor()

	_, err := pr.Decline(am, "   ", testNow)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, domain.StatusPending, pr.Status)

	events, err := pr.Decline(am, "over budget for this quarter", testNow)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDeclined, pr.Status)
	require.Len(t, pr.Comments, 1)
	assert.Equal(t, "over budget for this quarter", pr.Comments[0].Text)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventDeclined, events[0].Type)
	assert.Equal(t, "over budget for this quarter", events[0].Reason)
}

func TestPurchaseRequest_ItemDecisions(t *testing.T) {
	t.Run("approving all items finalizes the request", func(t *testing.T) {
		pr := newTestRequest(t, 3)
		am := areaManagerActor()

		events, err := pr.ApproveItem(1, am, testNow)
		require.NoError(t, err)
		assert.Empty(t, events, "partial approval must not complete the stage")
		assert.Equal(t, domain.StatusPending, pr.Status)

		_, err = pr.ApproveItem(2, am, testNow)
		require.NoError(t, err)

		events, err = pr.ApproveItem(3, am, testNow)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventApproved, events[0].Type)
		assert.Equal(t, domain.StatusApproved, pr.Status)
		assert.NotEmpty(t, pr.VoucherID)
	})

	t.Run("declining one item declines the whole request", func(t *testing.T) {
		pr := newTestRequest(t, 3)
		am := areaManagerActor()

		_, err := pr.ApproveItem(1, am, testNow)
		require.NoError(t, err)

		events, err := pr.DeclineItem(2, am, "duplicate of last month's purchase", testNow)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventDeclined, events[0].Type)
		assert.Equal(t, domain.StatusDeclined, pr.Status)
		assert.Empty(t, pr.VoucherID)
	})

	t.Run("re-approving an approved item is rejected", func(t *testing.T) {
		pr := newTestRequest(t, 2)
		am := areaManagerActor()

		_, err := pr.ApproveItem(1, am, testNow)
		require.NoError(t, err)
		_, err = pr.ApproveItem(1, am, testNow)
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	})

	t.Run("unknown item id", func(t *testing.T) {
		pr := newTestRequest(t, 1)
		_, err := pr.ApproveItem(42, areaManagerActor(), testNow)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestPurchaseRequest_UpdateItems(t *testing.T) {
	am := areaManagerActor()

	t.Run("price edit resets the item and the request to pending", func(t *testing.T) {
		pr := newTestRequest(t, 2)
		_, err := pr.ApproveItem(1, am, testNow)
		require.NoError(t, err)

		newPrice := decimal.NewFromInt(8000)
		err = pr.UpdateItems([]domain.PurchaseItemChange{{ItemID: 1, UnitPrice: &newPrice}}, requesterActor(), testLimit, testNow)
		require.NoError(t, err)

		assert.Equal(t, domain.StatusPending, pr.Items[0].Status)
		assert.Equal(t, domain.StatusPending, pr.Status)
		assert.True(t, pr.Items[0].TotalPrice.Equal(decimal.NewFromInt(8000)))
		assert.True(t, pr.TotalAmount.Equal(decimal.NewFromInt(14000)), "total recomputed, got %s", pr.TotalAmount)
	})

	t.Run("edit below the limit is rejected", func(t *testing.T) {
		pr := newTestRequest(t, 1)
		lowPrice := decimal.NewFromInt(100)
		err := pr.UpdateItems([]domain.PurchaseItemChange{{ItemID: 1, UnitPrice: &lowPrice}}, requesterActor(), testLimit, testNow)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("approved requests can no longer be edited", func(t *testing.T) {
		pr := newTestRequest(t, 1)
		_, err := pr.Approve(am, testNow)
		require.NoError(t, err)

		newPrice := decimal.NewFromInt(9000)
		err = pr.UpdateItems([]domain.PurchaseItemChange{{ItemID: 1, UnitPrice: &newPrice}}, requesterActor(), testLimit, testNow)
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	})

	t.Run("only the requester or an admin may edit", func(t *testing.T) {
		pr := newTestRequest(t, 1)
		stranger := domain.Actor{UserID: "rm-2", Role: domain.RoleRestaurantManager, HomeStoreID: 1}
		newPrice := decimal.NewFromInt(9000)
		err := pr.UpdateItems([]domain.PurchaseItemChange{{ItemID: 1, UnitPrice: &newPrice}}, stranger, testLimit, testNow)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestPurchaseRequestReferences(t *testing.T) {
	assert.Equal(t, "PR-0015", domain.FormatPurchaseRequestRef(15))
	assert.Equal(t, "RR-0007", domain.FormatReimbursementRef(7))
	assert.Equal(t, "PR-0015-12000.00", domain.FormatApprovedRequestName(15, "12000.00"))
	assert.Equal(t, "PV-0015-2025-03-10", domain.FormatVoucherID(15, testNow))

	tests := []struct {
		ref    string
		wantID int64
		wantOK bool
	}{
		{ref: "PR-0015", wantID: 15, wantOK: true},
		{ref: "PR-0015-12000.00", wantID: 15, wantOK: true},
		{ref: "PR-0015-12000", wantID: 15, wantOK: true},
		{ref: "PR-12345", wantID: 12345, wantOK: true},
		{ref: "PR-0000", wantOK: false},
		{ref: "RR-0015", wantOK: false},
		{ref: "PR-", wantOK: false},
		{ref: "fifteen", wantOK: false},
		{ref: "", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			id, ok := domain.ParsePurchaseRequestRef(tt.ref)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, id)
			}
		})
	}
}

func TestParsePurchaseRequestRefAmount(t *testing.T) {
	amount, ok := domain.ParsePurchaseRequestRefAmount("PR-0015-12000.00")
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(12000).Equal(amount))

	amount, ok = domain.ParsePurchaseRequestRefAmount("PR-0015-6000")
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(6000).Equal(amount))

	_, ok = domain.ParsePurchaseRequestRefAmount("PR-0015")
	assert.False(t, ok)

	_, ok = domain.ParsePurchaseRequestRefAmount("RR-0015-6000")
	assert.False(t, ok)
}

func TestPurchaseRequestRef_RoundTrip(t *testing.T) {
	for _, id := range []int64{1, 15, 999, 1000, 123456} {
		id2, ok := domain.ParsePurchaseRequestRef(domain.FormatPurchaseRequestRef(id))
		require.True(t, ok)
		assert.Equal(t, id, id2)
	}
}
