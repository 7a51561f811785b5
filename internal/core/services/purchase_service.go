package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/temmy669/imprest-portal-back-up/internal/apperrors"
	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
	portsrepo "github.com/temmy669/imprest-portal-back-up/internal/core/ports/repositories"
	portssvc "github.com/temmy669/imprest-portal-back-up/internal/core/ports/services"
	"github.com/temmy669/imprest-portal-back-up/internal/dto"
)

// purchaseService drives the purchase request approval workflow. Transitions
// run inside the repository's aggregate lock; the threshold is fetched fresh
// for every operation that validates against it.
type purchaseService struct {
	BaseService
	purchaseRepo portsrepo.PurchaseRequestRepositoryWithTx
	limitSvc     portssvc.LimitSvcFacade
}

// NewPurchaseRequestService creates a new purchase request service.
func NewPurchaseRequestService(purchaseRepo portsrepo.PurchaseRequestRepositoryWithTx, limitSvc portssvc.LimitSvcFacade) portssvc.PurchaseRequestSvcFacade {
	return &purchaseService{purchaseRepo: purchaseRepo, limitSvc: limitSvc}
}

var _ portssvc.PurchaseRequestSvcFacade = (*purchaseService)(nil)

func (s *purchaseService) currentLimit(ctx context.Context) (domain.LimitConfig, error) {
	return s.limitSvc.GetLimit(ctx)
}

// CreateRequest validates the items against the current threshold and persists
// a pending request.
func (s *purchaseService) CreateRequest(ctx context.Context, actor domain.Actor, req dto.CreatePurchaseRequestRequest) (*domain.PurchaseRequest, []domain.Event, error) {
	if !actor.CanActOnStore(req.StoreID) {
		return nil, nil, apperrors.NewForbiddenError("actor is not assigned to store %d", req.StoreID)
	}

	cfg, err := s.currentLimit(ctx)
	if err != nil {
		return nil, nil, err
	}

	items := make([]domain.NewPurchaseItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = domain.NewPurchaseItem{
			GLCode:      it.GLCode,
			ExpenseItem: it.ExpenseItem,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
		}
	}

	pr, err := domain.NewPurchaseRequest(actor, req.StoreID, items, cfg.Limit, time.Now().UTC())
	if err != nil {
		return nil, nil, err
	}
	if err := s.purchaseRepo.CreateRequest(ctx, pr); err != nil {
		s.LogError(ctx, err, "failed to create purchase request", slog.Int64("store_id", req.StoreID))
		return nil, nil, err
	}

	s.LogInfo(ctx, "purchase request created",
		slog.Int64("request_id", pr.RequestID),
		slog.String("requester_id", actor.UserID),
		slog.String("total_amount", pr.TotalAmount.String()))

	events := []domain.Event{{
		Type:          domain.EventCreated,
		AggregateType: domain.AggregatePurchaseRequest,
		AggregateID:   pr.RequestID,
		Stage:         domain.StageAreaManager,
		ActorID:       actor.UserID,
	}}
	return pr, events, nil
}

// GetRequestByID retrieves a request the actor is allowed to see.
func (s *purchaseService) GetRequestByID(ctx context.Context, actor domain.Actor, requestID int64) (*domain.PurchaseRequest, error) {
	pr, err := s.purchaseRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !s.canView(actor, pr) {
		return nil, apperrors.NewForbiddenError("actor cannot view purchase request %s", domain.FormatPurchaseRequestRef(requestID))
	}
	return pr, nil
}

func (s *purchaseService) canView(actor domain.Actor, pr *domain.PurchaseRequest) bool {
	if actor.UserID == pr.RequesterID {
		return true
	}
	return actor.CanActOnStore(pr.StoreID)
}

// ListRequests retrieves the actor's role-scoped listing. A PR-XXXX search
// resolves the reference directly.
func (s *purchaseService) ListRequests(ctx context.Context, actor domain.Actor, query dto.ListQuery) (*dto.ListResponse[dto.PurchaseRequestResponse], error) {
	if query.Search != "" {
		if id, ok := domain.ParsePurchaseRequestRef(query.Search); ok {
			return s.listByReference(ctx, actor, id, query)
		}
	}

	filter, err := s.buildFilter(actor, query)
	if err != nil {
		return nil, err
	}
	requests, total, counts, err := s.purchaseRepo.ListRequests(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListResponse[dto.PurchaseRequestResponse]{
		Items:        make([]dto.PurchaseRequestResponse, 0, len(requests)),
		Total:        total,
		StatusCounts: statusCountsToDTO(counts),
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	}
	for i := range requests {
		resp.Items = append(resp.Items, dto.ToPurchaseRequestResponse(&requests[i]))
	}
	return resp, nil
}

func (s *purchaseService) listByReference(ctx context.Context, actor domain.Actor, requestID int64, query dto.ListQuery) (*dto.ListResponse[dto.PurchaseRequestResponse], error) {
	resp := &dto.ListResponse[dto.PurchaseRequestResponse]{
		Items:  []dto.PurchaseRequestResponse{},
		Limit:  query.Limit,
		Offset: 0,
	}
	pr, err := s.purchaseRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		if isNotFound(err) {
			return resp, nil
		}
		return nil, err
	}
	if !s.canView(actor, pr) {
		return resp, nil
	}
	resp.Items = append(resp.Items, dto.ToPurchaseRequestResponse(pr))
	resp.Total = 1
	return resp, nil
}

func (s *purchaseService) buildFilter(actor domain.Actor, query dto.ListQuery) (portsrepo.PurchaseRequestFilter, error) {
	from, to, err := query.DateWindow()
	if err != nil {
		return portsrepo.PurchaseRequestFilter{}, apperrors.NewValidationError("invalid date filter: %v", err)
	}

	filter := portsrepo.PurchaseRequestFilter{
		Status: domain.ApprovalStatus(query.Status),
		From:   from,
		To:     to,
		Limit:  query.Limit,
		Offset: query.Offset,
	}

	switch actor.Role {
	case domain.RoleRestaurantManager:
		filter.RequesterID = actor.UserID
	case domain.RoleAreaManager:
		filter.StoreIDs = actor.AssignedStoreIDs
	}
	if query.StoreID != 0 {
		filter.StoreIDs = intersectStoreScope(filter.StoreIDs, query.StoreID)
	}
	return filter, nil
}

// intersectStoreScope narrows a role scope to one requested store without
// letting the request escape the scope.
func intersectStoreScope(scope []int64, requested int64) []int64 {
	if len(scope) == 0 {
		return []int64{requested}
	}
	for _, id := range scope {
		if id == requested {
			return []int64{requested}
		}
	}
	// Requested store outside the actor's scope: match nothing.
	return []int64{-1}
}

func statusCountsToDTO(counts map[domain.ApprovalStatus]int) map[string]int {
	if counts == nil {
		return nil
	}
	out := make(map[string]int, len(counts))
	for k, v := range counts {
		out[string(k)] = v
	}
	return out
}

// ListApprovedForReferencing lists the actor's approved requests rendered as
// reimbursement reference candidates.
func (s *purchaseService) ListApprovedForReferencing(ctx context.Context, actor domain.Actor) ([]dto.ApprovedPurchaseRequestResponse, error) {
	requests, err := s.purchaseRepo.ListApprovedByRequester(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ApprovedPurchaseRequestResponse, 0, len(requests))
	for _, pr := range requests {
		out = append(out, dto.ApprovedPurchaseRequestResponse{
			RequestID:   pr.RequestID,
			RequestName: domain.FormatApprovedRequestName(pr.RequestID, pr.TotalAmount.StringFixed(2)),
			VoucherID:   pr.VoucherID,
		})
	}
	return out, nil
}

// Approve finalizes the whole request under the aggregate lock.
func (s *purchaseService) Approve(ctx context.Context, actor domain.Actor, requestID int64) (*domain.PurchaseRequest, []domain.Event, error) {
	return s.transition(ctx, requestID, func(pr *domain.PurchaseRequest) ([]domain.Event, error) {
		return pr.Approve(actor, time.Now().UTC())
	})
}

// Decline finalizes the whole request as declined.
func (s *purchaseService) Decline(ctx context.Context, actor domain.Actor, requestID int64, comment string) (*domain.PurchaseRequest, []domain.Event, error) {
	return s.transition(ctx, requestID, func(pr *domain.PurchaseRequest) ([]domain.Event, error) {
		return pr.Decline(actor, comment, time.Now().UTC())
	})
}

// ApproveItem approves one item and re-evaluates the aggregation rule.
func (s *purchaseService) ApproveItem(ctx context.Context, actor domain.Actor, requestID, itemID int64) (*domain.PurchaseRequest, []domain.Event, error) {
	return s.transition(ctx, requestID, func(pr *domain.PurchaseRequest) ([]domain.Event, error) {
		return pr.ApproveItem(itemID, actor, time.Now().UTC())
	})
}

// DeclineItem declines one item; any declined item declines the request.
func (s *purchaseService) DeclineItem(ctx context.Context, actor domain.Actor, requestID, itemID int64, comment string) (*domain.PurchaseRequest, []domain.Event, error) {
	return s.transition(ctx, requestID, func(pr *domain.PurchaseRequest) ([]domain.Event, error) {
		return pr.DeclineItem(itemID, actor, comment, time.Now().UTC())
	})
}

// UpdateItems edits items before final approval. The threshold is re-fetched
// so edits are validated against the current configuration.
func (s *purchaseService) UpdateItems(ctx context.Context, actor domain.Actor, requestID int64, req dto.UpdatePurchaseRequestRequest) (*domain.PurchaseRequest, error) {
	cfg, err := s.currentLimit(ctx)
	if err != nil {
		return nil, err
	}
	changes := req.ToItemChanges()
	pr, err := s.purchaseRepo.WithRequestLock(ctx, requestID, func(pr *domain.PurchaseRequest) error {
		return pr.UpdateItems(changes, actor, cfg.Limit, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "purchase request items updated",
		slog.Int64("request_id", requestID),
		slog.String("actor_id", actor.UserID))
	return pr, nil
}

// transition runs a state-machine transition under the aggregate lock and
// returns the events it produced for post-commit dispatch.
func (s *purchaseService) transition(ctx context.Context, requestID int64, fn func(pr *domain.PurchaseRequest) ([]domain.Event, error)) (*domain.PurchaseRequest, []domain.Event, error) {
	var events []domain.Event
	pr, err := s.purchaseRepo.WithRequestLock(ctx, requestID, func(pr *domain.PurchaseRequest) error {
		evs, err := fn(pr)
		if err != nil {
			return err
		}
		events = evs
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	for _, ev := range events {
		s.LogInfo(ctx, "purchase request transition",
			slog.Int64("request_id", requestID),
			slog.String("event", string(ev.Type)),
			slog.String("actor_id", ev.ActorID))
	}
	return pr, events, nil
}
