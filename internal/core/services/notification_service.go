package services

import (
	"context"
	"log/slog"

	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
	portssvc "github.com/temmy669/imprest-portal-back-up/internal/core/ports/services"
)

// logNotificationDispatcher records workflow events through the structured
// logger. Delivery channels (email, in-app) can be layered behind the same
// interface later; dispatch never fails the request that produced the events.
type logNotificationDispatcher struct {
	BaseService
}

// NewLogNotificationDispatcher creates the default dispatcher.
func NewLogNotificationDispatcher() portssvc.NotificationDispatcher {
	return &logNotificationDispatcher{}
}

var _ portssvc.NotificationDispatcher = (*logNotificationDispatcher)(nil)

func (d *logNotificationDispatcher) Dispatch(ctx context.Context, events []domain.Event) {
	for _, ev := range events {
		d.LogInfo(ctx, "workflow notification",
			slog.String("event", string(ev.Type)),
			slog.String("aggregate_type", string(ev.AggregateType)),
			slog.Int64("aggregate_id", ev.AggregateID),
			slog.String("stage", string(ev.Stage)),
			slog.String("actor_id", ev.ActorID))
	}
}
