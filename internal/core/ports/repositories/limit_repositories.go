package repositories

import (
	"context"

	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
)

// LimitConfigRepository reads and upserts the organization-wide threshold
// singleton. GetLimit returns apperrors.ErrNotFound when the row is missing;
// callers fall back to domain.DefaultPurchaseLimit, never to zero.
type LimitConfigRepository interface {
	GetLimit(ctx context.Context) (*domain.LimitConfig, error)
	UpsertLimit(ctx context.Context, cfg domain.LimitConfig) error
}
