package ports

import (
	"context"
	"time"

	"maintenance/internal/core/domain/model/kernel"
)

// AuditEntry is one row of the audit trail.
type AuditEntry struct {
	EntityType string
	EntityID   kernel.UUID
	Action     string
	Details    map[string]any
	ActorID    kernel.UUID
	BranchID   *kernel.UUID
	At         time.Time
}

// AuditLog records who did what. Entries are written inside the caller's
// transaction.
type AuditLog interface {
	LogAction(ctx context.Context, entry AuditEntry) error
}
