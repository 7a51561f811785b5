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

// limitService manages the organization-wide threshold singleton. Reads fall
// back to the documented default when no row exists, never to zero.
type limitService struct {
	BaseService
	limitRepo portsrepo.LimitConfigRepository
}

// NewLimitService creates a new limit service.
func NewLimitService(limitRepo portsrepo.LimitConfigRepository) portssvc.LimitSvcFacade {
	return &limitService{limitRepo: limitRepo}
}

var _ portssvc.LimitSvcFacade = (*limitService)(nil)

// GetLimit returns the current threshold, falling back to the default when no
// configuration row exists.
func (s *limitService) GetLimit(ctx context.Context) (domain.LimitConfig, error) {
	cfg, err := s.limitRepo.GetLimit(ctx)
	if err != nil {
		if isNotFound(err) {
			return domain.LimitConfig{Limit: domain.DefaultPurchaseLimit}, nil
		}
		return domain.LimitConfig{}, err
	}
	return *cfg, nil
}

// UpdateLimit sets the threshold. Admin only; takes effect on the next
// operation that fetches it.
func (s *limitService) UpdateLimit(ctx context.Context, actor domain.Actor, req dto.UpdateLimitRequest) (domain.LimitConfig, error) {
	if actor.Role != domain.RoleAdmin {
		return domain.LimitConfig{}, apperrors.NewForbiddenError("role %s cannot update the purchase limit", actor.Role)
	}
	if !req.Limit.IsPositive() {
		return domain.LimitConfig{}, apperrors.NewValidationError("limit must be positive")
	}
	cfg := domain.LimitConfig{
		Limit:     req.Limit,
		UpdatedBy: actor.UserID,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.limitRepo.UpsertLimit(ctx, cfg); err != nil {
		return domain.LimitConfig{}, err
	}
	s.LogInfo(ctx, "purchase limit updated",
		slog.String("limit", cfg.Limit.String()),
		slog.String("updated_by", actor.UserID))
	return cfg, nil
}
