package ports

import (
	"context"
	"time"

	"maintenance/internal/core/domain/model/approval"
	"maintenance/internal/core/domain/model/kernel"
)

// ApprovalRepository stores approval requests with their batch items.
type ApprovalRepository interface {
	// Add inserts a new request.
	Add(ctx context.Context, r *approval.Request) error

	// Get returns the request or an ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*approval.Request, error)

	// Update writes the request only if the stored status still equals
	// expected.
	Update(ctx context.Context, r *approval.Request, expected approval.Status) error

	// HasPending reports whether a PENDING request already covers subjectKey,
	// the assignment id or the sorted serials of a batch.
	HasPending(ctx context.Context, subjectKey string) (bool, error)

	// ListStalePending returns PENDING requests created before cutoff whose
	// last reminder, if any, is also older than cutoff.
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*approval.Request, error)
}
