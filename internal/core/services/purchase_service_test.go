package services_test

import (
	"context"
	"sync"
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
	portssvc "github.com/temmy669/imprest-portal-back-up/internal/core/ports/services"
	"github.com/temmy669/imprest-portal-back-up/internal/core/services"
	"github.com/temmy669/imprest-portal-back-up/internal/dto"
)

// MockPurchaseRequestRepository is a mock implementation of portsrepo.PurchaseRequestRepositoryWithTx.
type MockPurchaseRequestRepository struct {
	mock.Mock
}

var _ portsrepo.PurchaseRequestRepositoryWithTx = (*MockPurchaseRequestRepository)(nil)

func (m *MockPurchaseRequestRepository) FindRequestByID(ctx context.Context, requestID int64) (*domain.PurchaseRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PurchaseRequest), args.Error(1)
}

func (m *MockPurchaseRequestRepository) FindRequestsByIDs(ctx context.Context, requestIDs []int64) ([]domain.PurchaseRequest, error) {
	args := m.Called(ctx, requestIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PurchaseRequest), args.Error(1)
}

func (m *MockPurchaseRequestRepository) ListRequests(ctx context.Context, filter portsrepo.PurchaseRequestFilter) ([]domain.PurchaseRequest, int, map[domain.ApprovalStatus]int, error) {
	args := m.Called(ctx, filter)
	var requests []domain.PurchaseRequest
	if args.Get(0) != nil {
		requests = args.Get(0).([]domain.PurchaseRequest)
	}
	var counts map[domain.ApprovalStatus]int
	if args.Get(2) != nil {
		counts = args.Get(2).(map[domain.ApprovalStatus]int)
	}
	return requests, args.Int(1), counts, args.Error(3)
}

func (m *MockPurchaseRequestRepository) ListApprovedByRequester(ctx context.Context, requesterID string) ([]domain.PurchaseRequest, error) {
	args := m.Called(ctx, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PurchaseRequest), args.Error(1)
}

func (m *MockPurchaseRequestRepository) CreateRequest(ctx context.Context, pr *domain.PurchaseRequest) error {
	args := m.Called(ctx, pr)
	return args.Error(0)
}

func (m *MockPurchaseRequestRepository) WithRequestLock(ctx context.Context, requestID int64, fn func(pr *domain.PurchaseRequest) error) (*domain.PurchaseRequest, error) {
	args := m.Called(ctx, requestID, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PurchaseRequest), args.Error(1)
}

func (m *MockPurchaseRequestRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockPurchaseRequestRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockPurchaseRequestRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// MockLimitConfigRepository is a mock implementation of portsrepo.LimitConfigRepository.
type MockLimitConfigRepository struct {
	mock.Mock
}

var _ portsrepo.LimitConfigRepository = (*MockLimitConfigRepository)(nil)

func (m *MockLimitConfigRepository) GetLimit(ctx context.Context) (*domain.LimitConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LimitConfig), args.Error(1)
}

func (m *MockLimitConfigRepository) UpsertLimit(ctx context.Context, cfg domain.LimitConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

// lockedPurchaseRepo serializes WithRequestLock over an in-memory aggregate,
// mirroring the row-lock contract of the pgsql repository: fn always sees the
// state left behind by the previous holder.
type lockedPurchaseRepo struct {
	MockPurchaseRequestRepository
	mu sync.Mutex
	pr *domain.PurchaseRequest
}

func (r *lockedPurchaseRepo) WithRequestLock(ctx context.Context, requestID int64, fn func(pr *domain.PurchaseRequest) error) (*domain.PurchaseRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pr == nil || r.pr.RequestID != requestID {
		return nil, apperrors.ErrNotFound
	}
	if err := fn(r.pr); err != nil {
		return nil, err
	}
	snapshot := *r.pr
	return &snapshot, nil
}

func requesterActor() domain.Actor {
	return domain.Actor{UserID: "rm-1", Role: domain.RoleRestaurantManager, HomeStoreID: 1}
}

func areaManagerActor() domain.Actor {
	return domain.Actor{UserID: "am-1", Role: domain.RoleAreaManager, AssignedStoreIDs: []int64{1, 2}}
}

func adminActor() domain.Actor {
	return domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin}
}

func internalControlActor() domain.Actor {
	return domain.Actor{UserID: "ic-1", Role: domain.RoleInternalControl}
}

func treasurerActor() domain.Actor {
	return domain.Actor{UserID: "tr-1", Role: domain.RoleTreasurer}
}

// fixedLimitSvc builds a limit service whose repository always returns the
// given threshold.
func fixedLimitSvc(limit decimal.Decimal) portssvc.LimitSvcFacade {
	limitRepo := new(MockLimitConfigRepository)
	limitRepo.On("GetLimit", mock.Anything).Return(&domain.LimitConfig{Limit: limit}, nil)
	return services.NewLimitService(limitRepo)
}

func TestPurchaseService_CreateRequest(t *testing.T) {
	ctx := context.Background()
	req := dto.CreatePurchaseRequestRequest{
		StoreID: 1,
		Items: []dto.PurchaseItemRequest{
			{GLCode: "6001", ExpenseItem: "walk-in freezer", UnitPrice: decimal.NewFromInt(7500), Quantity: 1},
		},
	}

	t.Run("persists a pending request and emits a created event", func(t *testing.T) {
		purchaseRepo := new(MockPurchaseRequestRepository)
		purchaseRepo.On("CreateRequest", mock.Anything, mock.AnythingOfType("*domain.PurchaseRequest")).
			Run(func(args mock.Arguments) {
				pr := args.Get(1).(*domain.PurchaseRequest)
				pr.RequestID = 42
				for i := range pr.Items {
					pr.Items[i].ItemID = int64(i + 1)
				}
			}).Return(nil)
		svc := services.NewPurchaseRequestService(purchaseRepo, fixedLimitSvc(decimal.NewFromInt(5000)))

		pr, events, err := svc.CreateRequest(ctx, requesterActor(), req)
		require.NoError(t, err)
		assert.Equal(t, int64(42), pr.RequestID)
		assert.Equal(t, domain.StatusPending, pr.Status)
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventCreated, events[0].Type)
		assert.Equal(t, int64(42), events[0].AggregateID)
		purchaseRepo.AssertExpectations(t)
	})

	t.Run("rejects a store outside the actor's assignment", func(t *testing.T) {
		purchaseRepo := new(MockPurchaseRequestRepository)
		svc := services.NewPurchaseRequestService(purchaseRepo, fixedLimitSvc(decimal.NewFromInt(5000)))

		other := req
		other.StoreID = 9
		_, _, err := svc.CreateRequest(ctx, requesterActor(), other)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		purchaseRepo.AssertNotCalled(t, "CreateRequest", mock.Anything, mock.Anything)
	})

	t.Run("falls back to the default threshold when none is configured", func(t *testing.T) {
		limitRepo := new(MockLimitConfigRepository)
		limitRepo.On("GetLimit", mock.Anything).Return(nil, apperrors.ErrNotFound)
		purchaseRepo := new(MockPurchaseRequestRepository)
		svc := services.NewPurchaseRequestService(purchaseRepo, services.NewLimitService(limitRepo))

		// 4999 sits under the 5000 default, so the item must be rejected
		// even with no threshold row present.
		small := req
		small.Items = []dto.PurchaseItemRequest{
			{GLCode: "6001", ExpenseItem: "hand mixer", UnitPrice: decimal.NewFromInt(4999), Quantity: 1},
		}
		_, _, err := svc.CreateRequest(ctx, requesterActor(), small)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		purchaseRepo.AssertNotCalled(t, "CreateRequest", mock.Anything, mock.Anything)
	})
}

func TestPurchaseService_ListRequests(t *testing.T) {
	ctx := context.Background()

	t.Run("scopes restaurant managers to their own requests", func(t *testing.T) {
		purchaseRepo := new(MockPurchaseRequestRepository)
		purchaseRepo.On("ListRequests", mock.Anything, mock.MatchedBy(func(f portsrepo.PurchaseRequestFilter) bool {
			return f.RequesterID == "rm-1" && len(f.StoreIDs) == 0
		})).Return([]domain.PurchaseRequest{}, 0, map[domain.ApprovalStatus]int{}, nil)
		svc := services.NewPurchaseRequestService(purchaseRepo, fixedLimitSvc(decimal.NewFromInt(5000)))

		_, err := svc.ListRequests(ctx, requesterActor(), dto.ListQuery{})
		require.NoError(t, err)
		purchaseRepo.AssertExpectations(t)
	})

	t.Run("scopes area managers to their assigned stores", func(t *testing.T) {
		purchaseRepo := new(MockPurchaseRequestRepository)
		purchaseRepo.On("ListRequests", mock.Anything, mock.MatchedBy(func(f portsrepo.PurchaseRequestFilter) bool {
			return f.RequesterID == "" && assert.ObjectsAreEqual([]int64{1, 2}, f.StoreIDs)
		})).Return([]domain.PurchaseRequest{}, 0, map[domain.ApprovalStatus]int{}, nil)
		svc := services.NewPurchaseRequestService(purchaseRepo, fixedLimitSvc(decimal.NewFromInt(5000)))

		_, err := svc.ListRequests(ctx, areaManagerActor(), dto.ListQuery{})
		require.NoError(t, err)
		purchaseRepo.AssertExpectations(t)
	})

	t.Run("a store filter outside the actor's scope matches nothing", func(t *testing.T) {
		purchaseRepo := new(MockPurchaseRequestRepository)
		purchaseRepo.On("ListRequests", mock.Anything, mock.MatchedBy(func(f portsrepo.PurchaseRequestFilter) bool {
			return assert.ObjectsAreEqual([]int64{-1}, f.StoreIDs)
		})).Return([]domain.PurchaseRequest{}, 0, map[domain.ApprovalStatus]int{}, nil)
		svc := services.NewPurchaseRequestService(purchaseRepo, fixedLimitSvc(decimal.NewFromInt(5000)))

		_, err := svc.ListRequests(ctx, areaManagerActor(), dto.ListQuery{StoreID: 7})
		require.NoError(t, err)
		purchaseRepo.AssertExpectations(t)
	})

	t.Run("a PR reference search resolves the request directly", func(t *testing.T) {
		pr := newServiceTestRequest(t, 15)
		purchaseRepo := new(MockPurchaseRequestRepository)
		purchaseRepo.On("FindRequestByID", mock.Anything, int64(15)).Return(pr, nil)
		svc := services.NewPurchaseRequestService(purchaseRepo, fixedLimitSvc(decimal.NewFromInt(5000)))

		resp, err := svc.ListRequests(ctx, requesterActor(), dto.ListQuery{Search: "PR-0015"})
		require.NoError(t, err)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, int64(15), resp.Items[0].RequestID)
		purchaseRepo.AssertNotCalled(t, "ListRequests", mock.Anything, mock.Anything)
	})

	t.Run("an unresolvable reference search yields an empty page, not an error", func(t *testing.T) {
		purchaseRepo := new(MockPurchaseRequestRepository)
		purchaseRepo.On("FindRequestByID", mock.Anything, int64(99)).Return(nil, apperrors.ErrNotFound)
		svc := services.NewPurchaseRequestService(purchaseRepo, fixedLimitSvc(decimal.NewFromInt(5000)))

		resp, err := svc.ListRequests(ctx, requesterActor(), dto.ListQuery{Search: "PR-0099"})
		require.NoError(t, err)
		assert.Empty(t, resp.Items)
		assert.Zero(t, resp.Total)
	})
}

// newServiceTestRequest builds a pending request owned by rm-1 on store 1.
func newServiceTestRequest(t *testing.T, requestID int64) *domain.PurchaseRequest {
	t.Helper()
	pr, err := domain.NewPurchaseRequest(requesterActor(), 1, []domain.NewPurchaseItem{
		{GLCode: "6001", ExpenseItem: "industrial fryer", UnitPrice: decimal.NewFromInt(6000), Quantity: 1},
		{GLCode: "6002", ExpenseItem: "extraction hood", UnitPrice: decimal.NewFromInt(8000), Quantity: 1},
	}, decimal.NewFromInt(5000), time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	pr.RequestID = requestID
	for i := range pr.Items {
		pr.Items[i].ItemID = int64(i + 1)
	}
	return pr
}

func TestPurchaseService_ConcurrentLastItemApproval(t *testing.T) {
	ctx := context.Background()
	pr := newServiceTestRequest(t, 15)

	am := areaManagerActor()
	_, err := pr.ApproveItem(1, am, time.Now().UTC())
	require.NoError(t, err)

	repo := &lockedPurchaseRepo{pr: pr}
	svc := services.NewPurchaseRequestService(repo, fixedLimitSvc(decimal.NewFromInt(5000)))

	// Two approvers race on the last pending item. The lock serializes them:
	// exactly one finalizes the request and assigns the voucher, the loser
	// sees the already-approved item.
	type outcome struct {
		events []domain.Event
		err    error
	}
	results := make(chan outcome, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, events, err := svc.ApproveItem(ctx, am, 15, 2)
			results <- outcome{events: events, err: err}
		}()
	}
	wg.Wait()
	close(results)

	var finalized, rejected int
	for res := range results {
		if res.err != nil {
			assert.ErrorIs(t, res.err, apperrors.ErrInvalidState)
			rejected++
			continue
		}
		require.Len(t, res.events, 1)
		assert.Equal(t, domain.EventApproved, res.events[0].Type)
		finalized++
	}
	assert.Equal(t, 1, finalized)
	assert.Equal(t, 1, rejected)

	assert.Equal(t, domain.StatusApproved, pr.Status)
	assert.Equal(t, "PV-0015-"+pr.CreatedAt.Format("2006-01-02"), pr.VoucherID)
}

func TestPurchaseService_GetRequestByID(t *testing.T) {
	ctx := context.Background()
	pr := newServiceTestRequest(t, 15)

	purchaseRepo := new(MockPurchaseRequestRepository)
	purchaseRepo.On("FindRequestByID", mock.Anything, int64(15)).Return(pr, nil)
	svc := services.NewPurchaseRequestService(purchaseRepo, fixedLimitSvc(decimal.NewFromInt(5000)))

	got, err := svc.GetRequestByID(ctx, requesterActor(), 15)
	require.NoError(t, err)
	assert.Equal(t, int64(15), got.RequestID)

	// A restaurant manager from another store cannot see it.
	stranger := domain.Actor{UserID: "rm-9", Role: domain.RoleRestaurantManager, HomeStoreID: 9}
	_, err = svc.GetRequestByID(ctx, stranger, 15)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestPurchaseService_ListApprovedForReferencing(t *testing.T) {
	ctx := context.Background()
	pr := newServiceTestRequest(t, 15)
	pr.Status = domain.StatusApproved
	pr.VoucherID = "PV-0015-2025-03-10"

	purchaseRepo := new(MockPurchaseRequestRepository)
	purchaseRepo.On("ListApprovedByRequester", mock.Anything, "rm-1").Return([]domain.PurchaseRequest{*pr}, nil)
	svc := services.NewPurchaseRequestService(purchaseRepo, fixedLimitSvc(decimal.NewFromInt(5000)))

	refs, err := svc.ListApprovedForReferencing(ctx, requesterActor())
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, int64(15), refs[0].RequestID)
	assert.Equal(t, "PR-0015-14000.00", refs[0].RequestName)
	assert.Equal(t, "PV-0015-2025-03-10", refs[0].VoucherID)
}
