package ports

import (
	"context"

	"github.com/cellarstock/inventory-auth/internal/core/domain"
)

// AuditRepository persists auth events.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}

// Auditor accepts auth events for asynchronous recording. Record must not block.
type Auditor interface {
	Record(event domain.AuthEvent)
}
