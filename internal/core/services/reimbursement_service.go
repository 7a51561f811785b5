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

// reimbursementService drives the two-track reimbursement workflow, the
// purchase request linkage, and disbursement.
type reimbursementService struct {
	BaseService
	reimbursementRepo portsrepo.ReimbursementRepositoryWithTx
	purchaseRepo      portsrepo.PurchaseRequestRepositoryWithTx
	bankRepo          portsrepo.BankRepositoryFacade
	limitSvc          portssvc.LimitSvcFacade
}

// NewReimbursementService creates a new reimbursement service.
func NewReimbursementService(
	reimbursementRepo portsrepo.ReimbursementRepositoryWithTx,
	purchaseRepo portsrepo.PurchaseRequestRepositoryWithTx,
	bankRepo portsrepo.BankRepositoryFacade,
	limitSvc portssvc.LimitSvcFacade,
) portssvc.ReimbursementSvcFacade {
	return &reimbursementService{
		reimbursementRepo: reimbursementRepo,
		purchaseRepo:      purchaseRepo,
		bankRepo:          bankRepo,
		limitSvc:          limitSvc,
	}
}

var _ portssvc.ReimbursementSvcFacade = (*reimbursementService)(nil)

// CreateReimbursement persists a new reimbursement. Item references are
// resolved to purchase requests, stored as links, and any receipt validation
// already performed at the purchase stage carries over.
func (s *reimbursementService) CreateReimbursement(ctx context.Context, actor domain.Actor, req dto.CreateReimbursementRequest) (*domain.Reimbursement, []domain.Event, error) {
	if !actor.CanActOnStore(req.StoreID) {
		return nil, nil, apperrors.NewForbiddenError("actor is not assigned to store %d", req.StoreID)
	}

	cfg, err := s.limitSvc.GetLimit(ctx)
	if err != nil {
		return nil, nil, err
	}

	reimb, err := domain.NewReimbursement(actor, req.StoreID, req.ToNewItems(), cfg.Limit, req.IsDraft, time.Now().UTC())
	if err != nil {
		return nil, nil, err
	}

	if err := s.resolveRequestLinks(ctx, actor, reimb); err != nil {
		return nil, nil, err
	}
	if !req.IsDraft {
		// Re-check the receipt invariant after validations carried over.
		if missing := reimb.MissingReceiptItems(); len(missing) > 0 {
			names := make([]string, len(missing))
			for i, it := range missing {
				names[i] = it.ItemName
			}
			return nil, nil, apperrors.NewValidationError("items require a receipt before submission: %v", names)
		}
	}

	if err := s.reimbursementRepo.CreateReimbursement(ctx, reimb); err != nil {
		s.LogError(ctx, err, "failed to create reimbursement", slog.Int64("store_id", req.StoreID))
		return nil, nil, err
	}

	s.LogInfo(ctx, "reimbursement created",
		slog.Int64("reimbursement_id", reimb.ReimbursementID),
		slog.String("requester_id", actor.UserID),
		slog.Bool("is_draft", reimb.IsDraft))

	var events []domain.Event
	if !reimb.IsDraft {
		events = append(events, domain.Event{
			Type:          domain.EventCreated,
			AggregateType: domain.AggregateReimbursement,
			AggregateID:   reimb.ReimbursementID,
			Stage:         domain.StageAreaManager,
			ActorID:       actor.UserID,
		})
	}
	return reimb, events, nil
}

// resolveRequestLinks validates every purchase request reference, records the
// linked ids, and syncs over receipt validations. A reference must resolve to
// an approved request owned by the same requester.
func (s *reimbursementService) resolveRequestLinks(ctx context.Context, actor domain.Actor, reimb *domain.Reimbursement) error {
	ids := reimb.ReferencedPurchaseRequestIDs()
	if len(ids) == 0 {
		return nil
	}
	requests, err := s.purchaseRepo.FindRequestsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[int64]domain.PurchaseRequest, len(requests))
	for _, pr := range requests {
		byID[pr.RequestID] = pr
	}

	for _, id := range ids {
		pr, ok := byID[id]
		if !ok {
			return apperrors.NewValidationError("referenced purchase request %s does not exist", domain.FormatPurchaseRequestRef(id))
		}
		if pr.Status != domain.StatusApproved {
			return apperrors.NewValidationError("referenced purchase request %s is not approved", domain.FormatPurchaseRequestRef(id))
		}
		if pr.RequesterID != reimb.RequesterID && actor.Role != domain.RoleAdmin {
			return apperrors.NewForbiddenError("referenced purchase request %s belongs to another requester", domain.FormatPurchaseRequestRef(id))
		}
		reimb.SyncReceiptValidation(&pr)
	}
	reimb.LinkedRequestIDs = ids
	return nil
}

// GetReimbursementByID retrieves a reimbursement the actor is allowed to see.
func (s *reimbursementService) GetReimbursementByID(ctx context.Context, actor domain.Actor, reimbursementID int64) (*domain.Reimbursement, error) {
	reimb, err := s.reimbursementRepo.FindReimbursementByID(ctx, reimbursementID)
	if err != nil {
		return nil, err
	}
	if !s.canView(actor, reimb) {
		return nil, apperrors.NewForbiddenError("actor cannot view reimbursement %s", domain.FormatReimbursementRef(reimbursementID))
	}
	return reimb, nil
}

// canView gates reads. Drafts are visible to their requester (and admins) only.
func (s *reimbursementService) canView(actor domain.Actor, reimb *domain.Reimbursement) bool {
	if actor.UserID == reimb.RequesterID {
		return true
	}
	if reimb.IsDraft {
		return actor.Role == domain.RoleAdmin
	}
	return actor.CanActOnStore(reimb.StoreID)
}

// ListReimbursements retrieves the actor's role-scoped listing. Internal
// Control sees only requests the Area Manager already approved.
func (s *reimbursementService) ListReimbursements(ctx context.Context, actor domain.Actor, query dto.ReimbursementListQuery) (*dto.ListResponse[dto.ReimbursementResponse], error) {
	from, to, err := query.DateWindow()
	if err != nil {
		return nil, apperrors.NewValidationError("invalid date filter: %v", err)
	}

	filter := portsrepo.ReimbursementFilter{
		Status:                domain.ApprovalStatus(query.Status),
		InternalControlStatus: domain.ApprovalStatus(query.InternalControlStatus),
		From:                  from,
		To:                    to,
		Limit:                 query.Limit,
		Offset:                query.Offset,
	}

	switch actor.Role {
	case domain.RoleRestaurantManager:
		filter.RequesterID = actor.UserID
		filter.IncludeDrafts = query.IncludeDrafts
	case domain.RoleAreaManager:
		filter.StoreIDs = actor.AssignedStoreIDs
	case domain.RoleInternalControl:
		// Internal Control evaluates only what the Area Manager approved.
		filter.Status = domain.StatusApproved
	}
	if query.StoreID != 0 {
		filter.StoreIDs = intersectStoreScope(filter.StoreIDs, query.StoreID)
	}

	reimbursements, total, counts, err := s.reimbursementRepo.ListReimbursements(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.ListResponse[dto.ReimbursementResponse]{
		Items:        make([]dto.ReimbursementResponse, 0, len(reimbursements)),
		Total:        total,
		StatusCounts: statusCountsToDTO(counts),
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	}
	for i := range reimbursements {
		resp.Items = append(resp.Items, dto.ToReimbursementResponse(&reimbursements[i]))
	}
	return resp, nil
}

// Submit finalizes a draft.
func (s *reimbursementService) Submit(ctx context.Context, actor domain.Actor, reimbursementID int64) (*domain.Reimbursement, error) {
	reimb, err := s.reimbursementRepo.WithReimbursementLock(ctx, reimbursementID, func(r *domain.Reimbursement) error {
		return r.Submit(actor, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "reimbursement submitted",
		slog.Int64("reimbursement_id", reimbursementID),
		slog.String("requester_id", actor.UserID))
	return reimb, nil
}

// Approve completes the track matching the actor's role.
func (s *reimbursementService) Approve(ctx context.Context, actor domain.Actor, reimbursementID int64) (*domain.Reimbursement, []domain.Event, error) {
	return s.transition(ctx, reimbursementID, func(r *domain.Reimbursement) ([]domain.Event, error) {
		return r.Approve(actor, time.Now().UTC())
	})
}

// Decline declines on the actor's track.
func (s *reimbursementService) Decline(ctx context.Context, actor domain.Actor, reimbursementID int64, comment string) (*domain.Reimbursement, []domain.Event, error) {
	return s.transition(ctx, reimbursementID, func(r *domain.Reimbursement) ([]domain.Event, error) {
		return r.Decline(actor, comment, time.Now().UTC())
	})
}

// ApproveItem approves one item on the actor's track.
func (s *reimbursementService) ApproveItem(ctx context.Context, actor domain.Actor, reimbursementID, itemID int64) (*domain.Reimbursement, []domain.Event, error) {
	return s.transition(ctx, reimbursementID, func(r *domain.Reimbursement) ([]domain.Event, error) {
		return r.ApproveItem(itemID, actor, time.Now().UTC())
	})
}

// DeclineItem declines one item on the actor's track.
func (s *reimbursementService) DeclineItem(ctx context.Context, actor domain.Actor, reimbursementID, itemID int64, comment string) (*domain.Reimbursement, []domain.Event, error) {
	return s.transition(ctx, reimbursementID, func(r *domain.Reimbursement) ([]domain.Event, error) {
		return r.DeclineItem(itemID, actor, comment, time.Now().UTC())
	})
}

// UpdateItems edits items before disbursement against the current threshold.
func (s *reimbursementService) UpdateItems(ctx context.Context, actor domain.Actor, reimbursementID int64, req dto.UpdateReimbursementRequest) (*domain.Reimbursement, error) {
	cfg, err := s.limitSvc.GetLimit(ctx)
	if err != nil {
		return nil, err
	}
	changes := req.ToItemChanges()
	reimb, err := s.reimbursementRepo.WithReimbursementLock(ctx, reimbursementID, func(r *domain.Reimbursement) error {
		return r.UpdateItems(changes, actor, cfg.Limit, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "reimbursement items updated",
		slog.Int64("reimbursement_id", reimbursementID),
		slog.String("actor_id", actor.UserID))
	return reimb, nil
}

// AttachReceipt stores an uploaded receipt path on an item.
func (s *reimbursementService) AttachReceipt(ctx context.Context, actor domain.Actor, reimbursementID, itemID int64, path string) (*domain.Reimbursement, error) {
	reimb, err := s.reimbursementRepo.WithReimbursementLock(ctx, reimbursementID, func(r *domain.Reimbursement) error {
		return r.AttachReceipt(itemID, path, actor, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "receipt attached",
		slog.Int64("reimbursement_id", reimbursementID),
		slog.Int64("item_id", itemID))
	return reimb, nil
}

// Disburse pays out an approved reimbursement exactly once. The bank and
// account must exist and be active.
func (s *reimbursementService) Disburse(ctx context.Context, actor domain.Actor, reimbursementID int64, req dto.DisburseRequest) (*domain.Reimbursement, []domain.Event, error) {
	if err := s.validatePayoutTarget(ctx, req.BankID, req.AccountID); err != nil {
		return nil, nil, err
	}
	return s.transition(ctx, reimbursementID, func(r *domain.Reimbursement) ([]domain.Event, error) {
		return r.Disburse(actor, req.BankID, req.AccountID, time.Now().UTC())
	})
}

func (s *reimbursementService) validatePayoutTarget(ctx context.Context, bankID, accountID string) error {
	bank, err := s.bankRepo.FindBankByID(ctx, bankID)
	if err != nil {
		return err
	}
	if bank.Status != domain.BankActive {
		return apperrors.NewValidationError("bank %s is inactive", bank.BankName)
	}
	account, err := s.bankRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.BankID != bankID {
		return apperrors.NewValidationError("account %s does not belong to bank %s", account.AccountNumber, bank.BankName)
	}
	if account.Status != domain.BankActive {
		return apperrors.NewValidationError("account %s is inactive", account.AccountNumber)
	}
	return nil
}

// BulkDisburse pays out several reimbursements from one account. Each id is
// processed independently; failures are reported per id and successful
// disbursements stand.
func (s *reimbursementService) BulkDisburse(ctx context.Context, actor domain.Actor, req dto.BulkDisburseRequest) (map[int64]error, []domain.Event, error) {
	if err := s.validatePayoutTarget(ctx, req.BankID, req.AccountID); err != nil {
		return nil, nil, err
	}

	results := make(map[int64]error, len(req.ReimbursementIDs))
	var events []domain.Event
	for _, id := range req.ReimbursementIDs {
		_, evs, err := s.transition(ctx, id, func(r *domain.Reimbursement) ([]domain.Event, error) {
			return r.Disburse(actor, req.BankID, req.AccountID, time.Now().UTC())
		})
		results[id] = err
		if err == nil {
			events = append(events, evs...)
		}
	}
	return results, events, nil
}

func (s *reimbursementService) transition(ctx context.Context, reimbursementID int64, fn func(r *domain.Reimbursement) ([]domain.Event, error)) (*domain.Reimbursement, []domain.Event, error) {
	var events []domain.Event
	reimb, err := s.reimbursementRepo.WithReimbursementLock(ctx, reimbursementID, func(r *domain.Reimbursement) error {
		evs, err := fn(r)
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
		s.LogInfo(ctx, "reimbursement transition",
			slog.Int64("reimbursement_id", reimbursementID),
			slog.String("event", string(ev.Type)),
			slog.String("stage", string(ev.Stage)),
			slog.String("actor_id", ev.ActorID))
	}
	return reimb, events, nil
}
