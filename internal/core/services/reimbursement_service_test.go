package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/temmy669/imprest-portal-back-up/internal/apperrors"
	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
	portsrepo "github.com/temmy669/imprest-portal-back-up/internal/core/ports/repositories"
	"github.com/temmy669/imprest-portal-back-up/internal/core/services"
	"github.com/temmy669/imprest-portal-back-up/internal/dto"
)

// MockReimbursementRepository is a mock implementation of portsrepo.ReimbursementRepositoryWithTx.
type MockReimbursementRepository struct {
	mock.Mock
}

var _ portsrepo.ReimbursementRepositoryWithTx = (*MockReimbursementRepository)(nil)

func (m *MockReimbursementRepository) FindReimbursementByID(ctx context.Context, reimbursementID int64) (*domain.Reimbursement, error) {
	args := m.Called(ctx, reimbursementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reimbursement), args.Error(1)
}

func (m *MockReimbursementRepository) ListReimbursements(ctx context.Context, filter portsrepo.ReimbursementFilter) ([]domain.Reimbursement, int, map[domain.ApprovalStatus]int, error) {
	args := m.Called(ctx, filter)
	var reimbursements []domain.Reimbursement
	if args.Get(0) != nil {
		reimbursements = args.Get(0).([]domain.Reimbursement)
	}
	var counts map[domain.ApprovalStatus]int
	if args.Get(2) != nil {
		counts = args.Get(2).(map[domain.ApprovalStatus]int)
	}
	return reimbursements, args.Int(1), counts, args.Error(3)
}

func (m *MockReimbursementRepository) SumApprovedTotalByStore(ctx context.Context, storeID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return decimal.Zero, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockReimbursementRepository) CreateReimbursement(ctx context.Context, r *domain.Reimbursement) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReimbursementRepository) WithReimbursementLock(ctx context.Context, reimbursementID int64, fn func(r *domain.Reimbursement) error) (*domain.Reimbursement, error) {
	args := m.Called(ctx, reimbursementID, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reimbursement), args.Error(1)
}

func (m *MockReimbursementRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockReimbursementRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockReimbursementRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// MockBankRepository is a mock implementation of portsrepo.BankRepositoryFacade.
type MockBankRepository struct {
	mock.Mock
}

var _ portsrepo.BankRepositoryFacade = (*MockBankRepository)(nil)

func (m *MockBankRepository) FindBankByID(ctx context.Context, bankID string) (*domain.Bank, error) {
	args := m.Called(ctx, bankID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bank), args.Error(1)
}

func (m *MockBankRepository) ListBanks(ctx context.Context) ([]domain.Bank, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Bank), args.Error(1)
}

func (m *MockBankRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockBankRepository) ListAccountsByBank(ctx context.Context, bankID string) ([]domain.Account, error) {
	args := m.Called(ctx, bankID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockBankRepository) CreateBank(ctx context.Context, bank *domain.Bank) error {
	args := m.Called(ctx, bank)
	return args.Error(0)
}

func (m *MockBankRepository) UpdateBank(ctx context.Context, bank *domain.Bank) error {
	args := m.Called(ctx, bank)
	return args.Error(0)
}

func (m *MockBankRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockBankRepository) UpdateAccount(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// lockedReimbursementRepo serializes WithReimbursementLock over in-memory
// aggregates, keyed by id.
type lockedReimbursementRepo struct {
	MockReimbursementRepository
	byID map[int64]*domain.Reimbursement
}

func (r *lockedReimbursementRepo) WithReimbursementLock(ctx context.Context, reimbursementID int64, fn func(r *domain.Reimbursement) error) (*domain.Reimbursement, error) {
	reimb, ok := r.byID[reimbursementID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if err := fn(reimb); err != nil {
		return nil, err
	}
	snapshot := *reimb
	return &snapshot, nil
}

// activeBankMocks wires a bank repo where bank-1/acct-1 is a valid active
// payout target.
func activeBankMocks() *MockBankRepository {
	bankRepo := new(MockBankRepository)
	bankRepo.On("FindBankByID", mock.Anything, "bank-1").
		Return(&domain.Bank{BankID: "bank-1", BankName: "First Bank", Status: domain.BankActive}, nil)
	bankRepo.On("FindAccountByID", mock.Anything, "acct-1").
		Return(&domain.Account{AccountID: "acct-1", BankID: "bank-1", AccountNumber: "0123456789", Status: domain.BankActive}, nil)
	return bankRepo
}

// approvedReimbursement walks a fresh reimbursement through both approval
// tracks so it is ready for disbursement.
func approvedReimbursement(t *testing.T, id int64) *domain.Reimbursement {
	t.Helper()
	reimb, err := domain.NewReimbursement(requesterActor(), 1, []domain.NewReimbursementItem{
		{ItemName: "cleaning supplies", GLCode: "7001", UnitPrice: decimal.NewFromInt(1200), Quantity: 1},
		{ItemName: "fuel", GLCode: "7002", UnitPrice: decimal.NewFromInt(800), Quantity: 2},
	}, decimal.NewFromInt(5000), false, time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	reimb.ReimbursementID = id
	for i := range reimb.Items {
		reimb.Items[i].ItemID = int64(i + 1)
	}
	_, err = reimb.Approve(areaManagerActor(), time.Now().UTC())
	require.NoError(t, err)
	_, err = reimb.Approve(internalControlActor(), time.Now().UTC())
	require.NoError(t, err)
	return reimb
}

func TestReimbursementService_CreateResolvesReferences(t *testing.T) {
	ctx := context.Background()
	req := dto.CreateReimbursementRequest{
		StoreID: 1,
		Items: []dto.ReimbursementItemRequest{
			{ItemName: "bulk rice order", GLCode: "7001", UnitPrice: decimal.NewFromInt(6000), Quantity: 1, PurchaseRequestRef: "PR-0015"},
		},
	}

	t.Run("carries receipt validation over from the linked request", func(t *testing.T) {
		linked := newServiceTestRequest(t, 15)
		linked.Status = domain.StatusApproved
		for i := range linked.Items {
			linked.Items[i].ReceiptValidated = true
		}

		purchaseRepo := new(MockPurchaseRequestRepository)
		purchaseRepo.On("FindRequestsByIDs", mock.Anything, []int64{15}).
			Return([]domain.PurchaseRequest{*linked}, nil)
		reimbRepo := new(MockReimbursementRepository)
		reimbRepo.On("CreateReimbursement", mock.Anything, mock.AnythingOfType("*domain.Reimbursement")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*domain.Reimbursement).ReimbursementID = 7
			}).Return(nil)

		svc := services.NewReimbursementService(reimbRepo, purchaseRepo, activeBankMocks(), fixedLimitSvc(decimal.NewFromInt(5000)))
		reimb, events, err := svc.CreateReimbursement(ctx, requesterActor(), req)
		require.NoError(t, err)
		assert.Equal(t, []int64{15}, reimb.LinkedRequestIDs)
		assert.True(t, reimb.Items[0].ReceiptValidated)
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventCreated, events[0].Type)
		reimbRepo.AssertExpectations(t)
	})

	t.Run("a partially validated request still carries the most recent item's validation", func(t *testing.T) {
		// Only the later of the two purchase items was validated; the
		// reference has no amount suffix, so that item decides and no
		// re-upload is needed.
		linked := newServiceTestRequest(t, 15)
		linked.Status = domain.StatusApproved
		linked.Items[1].ReceiptValidated = true

		purchaseRepo := new(MockPurchaseRequestRepository)
		purchaseRepo.On("FindRequestsByIDs", mock.Anything, []int64{15}).
			Return([]domain.PurchaseRequest{*linked}, nil)
		reimbRepo := new(MockReimbursementRepository)
		reimbRepo.On("CreateReimbursement", mock.Anything, mock.AnythingOfType("*domain.Reimbursement")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*domain.Reimbursement).ReimbursementID = 7
			}).Return(nil)

		svc := services.NewReimbursementService(reimbRepo, purchaseRepo, activeBankMocks(), fixedLimitSvc(decimal.NewFromInt(5000)))
		reimb, _, err := svc.CreateReimbursement(ctx, requesterActor(), req)
		require.NoError(t, err)
		assert.True(t, reimb.Items[0].ReceiptValidated)
		reimbRepo.AssertExpectations(t)
	})

	t.Run("an amount suffix pointing at an unvalidated item requires a receipt", func(t *testing.T) {
		linked := newServiceTestRequest(t, 15)
		linked.Status = domain.StatusApproved
		linked.Items[1].ReceiptValidated = true

		purchaseRepo := new(MockPurchaseRequestRepository)
		purchaseRepo.On("FindRequestsByIDs", mock.Anything, []int64{15}).
			Return([]domain.PurchaseRequest{*linked}, nil)
		reimbRepo := new(MockReimbursementRepository)

		// The 6000.00 suffix matches the unvalidated fryer item, so the
		// carried-over validation must not apply.
		suffixed := req
		suffixed.Items = []dto.ReimbursementItemRequest{
			{ItemName: "bulk rice order", GLCode: "7001", UnitPrice: decimal.NewFromInt(6000), Quantity: 1, PurchaseRequestRef: "PR-0015-6000.00"},
		}
		svc := services.NewReimbursementService(reimbRepo, purchaseRepo, activeBankMocks(), fixedLimitSvc(decimal.NewFromInt(5000)))
		_, _, err := svc.CreateReimbursement(ctx, requesterActor(), suffixed)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		reimbRepo.AssertNotCalled(t, "CreateReimbursement", mock.Anything, mock.Anything)
	})

	t.Run("rejects a reference to an unapproved request", func(t *testing.T) {
		linked := newServiceTestRequest(t, 15)

		purchaseRepo := new(MockPurchaseRequestRepository)
		purchaseRepo.On("FindRequestsByIDs", mock.Anything, []int64{15}).
			Return([]domain.PurchaseRequest{*linked}, nil)
		reimbRepo := new(MockReimbursementRepository)

		svc := services.NewReimbursementService(reimbRepo, purchaseRepo, activeBankMocks(), fixedLimitSvc(decimal.NewFromInt(5000)))
		_, _, err := svc.CreateReimbursement(ctx, requesterActor(), req)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		reimbRepo.AssertNotCalled(t, "CreateReimbursement", mock.Anything, mock.Anything)
	})

	t.Run("rejects a reference owned by another requester", func(t *testing.T) {
		linked := newServiceTestRequest(t, 15)
		linked.Status = domain.StatusApproved
		linked.RequesterID = "rm-9"

		purchaseRepo := new(MockPurchaseRequestRepository)
		purchaseRepo.On("FindRequestsByIDs", mock.Anything, []int64{15}).
			Return([]domain.PurchaseRequest{*linked}, nil)
		reimbRepo := new(MockReimbursementRepository)

		svc := services.NewReimbursementService(reimbRepo, purchaseRepo, activeBankMocks(), fixedLimitSvc(decimal.NewFromInt(5000)))
		_, _, err := svc.CreateReimbursement(ctx, requesterActor(), req)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("rejects a reference that does not resolve", func(t *testing.T) {
		purchaseRepo := new(MockPurchaseRequestRepository)
		purchaseRepo.On("FindRequestsByIDs", mock.Anything, []int64{15}).
			Return([]domain.PurchaseRequest{}, nil)
		reimbRepo := new(MockReimbursementRepository)

		svc := services.NewReimbursementService(reimbRepo, purchaseRepo, activeBankMocks(), fixedLimitSvc(decimal.NewFromInt(5000)))
		_, _, err := svc.CreateReimbursement(ctx, requesterActor(), req)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestReimbursementService_ListScoping(t *testing.T) {
	ctx := context.Background()
	empty := []domain.Reimbursement{}
	counts := map[domain.ApprovalStatus]int{}

	t.Run("internal control only sees area-manager-approved requests", func(t *testing.T) {
		reimbRepo := new(MockReimbursementRepository)
		reimbRepo.On("ListReimbursements", mock.Anything, mock.MatchedBy(func(f portsrepo.ReimbursementFilter) bool {
			return f.Status == domain.StatusApproved && !f.IncludeDrafts
		})).Return(empty, 0, counts, nil)

		svc := services.NewReimbursementService(reimbRepo, new(MockPurchaseRequestRepository), activeBankMocks(), fixedLimitSvc(decimal.NewFromInt(5000)))
		// A pending filter from the client must not widen the scope.
		_, err := svc.ListReimbursements(ctx, internalControlActor(), dto.ReimbursementListQuery{ListQuery: dto.ListQuery{Status: "pending"}})
		require.NoError(t, err)
		reimbRepo.AssertExpectations(t)
	})

	t.Run("requesters may include their drafts", func(t *testing.T) {
		reimbRepo := new(MockReimbursementRepository)
		reimbRepo.On("ListReimbursements", mock.Anything, mock.MatchedBy(func(f portsrepo.ReimbursementFilter) bool {
			return f.RequesterID == "rm-1" && f.IncludeDrafts
		})).Return(empty, 0, counts, nil)

		svc := services.NewReimbursementService(reimbRepo, new(MockPurchaseRequestRepository), activeBankMocks(), fixedLimitSvc(decimal.NewFromInt(5000)))
		_, err := svc.ListReimbursements(ctx, requesterActor(), dto.ReimbursementListQuery{IncludeDrafts: true})
		require.NoError(t, err)
		reimbRepo.AssertExpectations(t)
	})
}

func TestReimbursementService_DisbursePayoutTarget(t *testing.T) {
	ctx := context.Background()
	limitSvc := fixedLimitSvc(decimal.NewFromInt(5000))

	t.Run("rejects an inactive bank", func(t *testing.T) {
		bankRepo := new(MockBankRepository)
		bankRepo.On("FindBankByID", mock.Anything, "bank-1").
			Return(&domain.Bank{BankID: "bank-1", BankName: "First Bank", Status: domain.BankInactive}, nil)

		svc := services.NewReimbursementService(new(MockReimbursementRepository), new(MockPurchaseRequestRepository), bankRepo, limitSvc)
		_, _, err := svc.Disburse(ctx, treasurerActor(), 7, dto.DisburseRequest{BankID: "bank-1", AccountID: "acct-1"})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("rejects an account held at a different bank", func(t *testing.T) {
		bankRepo := new(MockBankRepository)
		bankRepo.On("FindBankByID", mock.Anything, "bank-1").
			Return(&domain.Bank{BankID: "bank-1", BankName: "First Bank", Status: domain.BankActive}, nil)
		bankRepo.On("FindAccountByID", mock.Anything, "acct-2").
			Return(&domain.Account{AccountID: "acct-2", BankID: "bank-9", AccountNumber: "987", Status: domain.BankActive}, nil)

		svc := services.NewReimbursementService(new(MockReimbursementRepository), new(MockPurchaseRequestRepository), bankRepo, limitSvc)
		_, _, err := svc.Disburse(ctx, treasurerActor(), 7, dto.DisburseRequest{BankID: "bank-1", AccountID: "acct-2"})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("disburses an approved reimbursement through the lock", func(t *testing.T) {
		reimb := approvedReimbursement(t, 7)
		repo := &lockedReimbursementRepo{byID: map[int64]*domain.Reimbursement{7: reimb}}

		svc := services.NewReimbursementService(repo, new(MockPurchaseRequestRepository), activeBankMocks(), limitSvc)
		got, events, err := svc.Disburse(ctx, treasurerActor(), 7, dto.DisburseRequest{BankID: "bank-1", AccountID: "acct-1"})
		require.NoError(t, err)
		assert.Equal(t, domain.DisbursementDisbursed, got.DisbursementStatus)
		assert.Equal(t, "bank-1", got.BankID)
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventDisbursed, events[0].Type)
	})
}

func TestReimbursementService_BulkDisburse(t *testing.T) {
	ctx := context.Background()

	ready := approvedReimbursement(t, 7)
	notReady, err := domain.NewReimbursement(requesterActor(), 1, []domain.NewReimbursementItem{
		{ItemName: "fuel", GLCode: "7002", UnitPrice: decimal.NewFromInt(800), Quantity: 1},
	}, decimal.NewFromInt(5000), false, time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	notReady.ReimbursementID = 8

	repo := &lockedReimbursementRepo{byID: map[int64]*domain.Reimbursement{7: ready, 8: notReady}}
	svc := services.NewReimbursementService(repo, new(MockPurchaseRequestRepository), activeBankMocks(), fixedLimitSvc(decimal.NewFromInt(5000)))

	results, events, err := svc.BulkDisburse(ctx, treasurerActor(), dto.BulkDisburseRequest{
		ReimbursementIDs: []int64{7, 8},
		BankID:           "bank-1",
		AccountID:        "acct-1",
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.NoError(t, results[7])
	assert.ErrorIs(t, results[8], apperrors.ErrInvalidState)

	// Only the successful payout produces an event; the failure stands alone
	// and does not roll the success back.
	require.Len(t, events, 1)
	assert.Equal(t, int64(7), events[0].AggregateID)
	assert.Equal(t, domain.DisbursementDisbursed, ready.DisbursementStatus)
	assert.Equal(t, domain.DisbursementPending, notReady.DisbursementStatus)
}
