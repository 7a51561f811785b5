package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/temmy669/imprest-portal-back-up/internal/apperrors"
	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
	portsrepo "github.com/temmy669/imprest-portal-back-up/internal/core/ports/repositories"
	portssvc "github.com/temmy669/imprest-portal-back-up/internal/core/ports/services"
	"github.com/temmy669/imprest-portal-back-up/internal/dto"
)

// storeService manages stores and derives the imprest balance on every read.
type storeService struct {
	BaseService
	storeRepo         portsrepo.StoreRepositoryFacade
	reimbursementRepo portsrepo.ReimbursementRepositoryWithTx
}

// NewStoreService creates a new store service.
func NewStoreService(storeRepo portsrepo.StoreRepositoryFacade, reimbursementRepo portsrepo.ReimbursementRepositoryWithTx) portssvc.StoreSvcFacade {
	return &storeService{storeRepo: storeRepo, reimbursementRepo: reimbursementRepo}
}

var _ portssvc.StoreSvcFacade = (*storeService)(nil)

// CreateStore registers a new retail location. Admin only.
func (s *storeService) CreateStore(ctx context.Context, actor domain.Actor, req dto.CreateStoreRequest) (*domain.Store, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbiddenError("role %s cannot create stores", actor.Role)
	}
	if req.Budget.IsNegative() {
		return nil, apperrors.NewValidationError("budget cannot be negative")
	}

	now := time.Now().UTC()
	store := &domain.Store{
		Name:              req.Name,
		Code:              req.Code,
		Region:            req.Region,
		Budget:            req.Budget,
		RestaurantManager: req.RestaurantManager,
		AreaManager:       req.AreaManager,
		IsActive:          true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}
	if err := s.storeRepo.CreateStore(ctx, store); err != nil {
		s.LogError(ctx, err, "failed to create store", slog.String("code", req.Code))
		return nil, err
	}
	s.LogInfo(ctx, "store created", slog.Int64("store_id", store.StoreID), slog.String("code", store.Code))
	return store, nil
}

// UpdateStore updates store attributes. A budget change is recorded in the
// budget history for audit.
func (s *storeService) UpdateStore(ctx context.Context, actor domain.Actor, storeID int64, req dto.UpdateStoreRequest) (*domain.Store, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbiddenError("role %s cannot update stores", actor.Role)
	}
	store, err := s.storeRepo.FindStoreByID(ctx, storeID)
	if err != nil {
		return nil, err
	}

	previousBudget := store.Budget
	if req.Name != nil {
		store.Name = *req.Name
	}
	if req.Code != nil {
		store.Code = *req.Code
	}
	if req.Region != nil {
		store.Region = *req.Region
	}
	if req.Budget != nil {
		if req.Budget.IsNegative() {
			return nil, apperrors.NewValidationError("budget cannot be negative")
		}
		store.Budget = *req.Budget
	}
	if req.RestaurantManager != nil {
		store.RestaurantManager = *req.RestaurantManager
	}
	if req.AreaManager != nil {
		store.AreaManager = *req.AreaManager
	}
	if req.IsActive != nil {
		store.IsActive = *req.IsActive
	}
	store.LastUpdatedAt = time.Now().UTC()
	store.LastUpdatedBy = actor.UserID

	if err := s.storeRepo.UpdateStore(ctx, store); err != nil {
		return nil, err
	}

	if req.Budget != nil && !previousBudget.Equal(store.Budget) {
		change := domain.BudgetChange{
			StoreID:        storeID,
			PreviousBudget: previousBudget,
			NewBudget:      store.Budget,
			ChangedBy:      actor.UserID,
		}
		if err := s.storeRepo.RecordBudgetChange(ctx, change); err != nil {
			s.LogError(ctx, err, "failed to record budget change", slog.Int64("store_id", storeID))
			return nil, err
		}
		s.LogInfo(ctx, "store budget changed",
			slog.Int64("store_id", storeID),
			slog.String("previous", previousBudget.String()),
			slog.String("new", store.Budget.String()))
	}
	return store, nil
}

// GetStoreByID retrieves a store with its derived balance.
func (s *storeService) GetStoreByID(ctx context.Context, actor domain.Actor, storeID int64) (*dto.StoreResponse, error) {
	if !actor.CanActOnStore(storeID) {
		return nil, apperrors.NewForbiddenError("actor is not assigned to store %d", storeID)
	}
	store, err := s.storeRepo.FindStoreByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	balance, err := s.GetStoreBalance(ctx, storeID)
	if err != nil {
		return nil, err
	}
	resp := dto.ToStoreResponse(*store, balance)
	return &resp, nil
}

// ListStores lists the stores visible to the actor with derived balances.
func (s *storeService) ListStores(ctx context.Context, actor domain.Actor) ([]dto.StoreResponse, error) {
	stores, err := s.storeRepo.ListStores(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StoreResponse, 0, len(stores))
	for _, store := range stores {
		if !actor.CanActOnStore(store.StoreID) {
			continue
		}
		balance, err := s.GetStoreBalance(ctx, store.StoreID)
		if err != nil {
			return nil, err
		}
		out = append(out, dto.ToStoreResponse(store, balance))
	}
	return out, nil
}

// GetStoreBalance derives the imprest balance: budget minus the total of
// reimbursements approved by Internal Control. Never persisted.
func (s *storeService) GetStoreBalance(ctx context.Context, storeID int64) (decimal.Decimal, error) {
	store, err := s.storeRepo.FindStoreByID(ctx, storeID)
	if err != nil {
		return decimal.Zero, err
	}
	approved, err := s.reimbursementRepo.SumApprovedTotalByStore(ctx, storeID)
	if err != nil {
		return decimal.Zero, err
	}
	return store.Balance(approved), nil
}

// ListBudgetHistory retrieves the audit trail of budget changes. Admin only.
func (s *storeService) ListBudgetHistory(ctx context.Context, actor domain.Actor, storeID int64) ([]dto.BudgetChangeResponse, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbiddenError("role %s cannot view budget history", actor.Role)
	}
	changes, err := s.storeRepo.ListBudgetHistory(ctx, storeID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BudgetChangeResponse, 0, len(changes))
	for _, c := range changes {
		out = append(out, dto.ToBudgetChangeResponse(c))
	}
	return out, nil
}
