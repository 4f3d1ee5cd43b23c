package app

import (
	"context"
	"log/slog"

	"github.com/neomorfeo/innledger/internal/domain"
)

// emit publishes a change event for a write that has already been committed.
// Delivery is best effort: a failure is logged and never undoes the write.
func emit(ctx context.Context, publisher domain.EventPublisher, event domain.ChangeEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "publishing change event failed",
			"entity", event.Entity,
			"change", event.Change,
			"tenant_id", event.TenantID,
			"error", err,
		)
	}
}
