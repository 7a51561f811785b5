package services

import (
	"context"

	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
)

// NotificationDispatcher delivers workflow events after the owning transaction
// has committed. Dispatch is best effort and must never fail the request that
// produced the events.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, events []domain.Event)
}
