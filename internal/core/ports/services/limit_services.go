package services

import (
	"context"

	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
	"github.com/temmy669/imprest-portal-back-up/internal/dto"
)

// LimitSvcFacade manages the organization-wide purchase request threshold.
// Reads fall back to the documented default when no configuration exists.
type LimitSvcFacade interface {
	// GetLimit returns the current threshold configuration.
	GetLimit(ctx context.Context) (domain.LimitConfig, error)

	// UpdateLimit sets the threshold. Admin only.
	UpdateLimit(ctx context.Context, actor domain.Actor, req dto.UpdateLimitRequest) (domain.LimitConfig, error)
}
