package ports

import (
	"context"

	"maintenance/internal/core/domain/model/kernel"
)

// BranchDirectory resolves branch metadata.
type BranchDirectory interface {
	Get(ctx context.Context, id kernel.UUID) (kernel.Branch, error)
}

// CatalogPart is the current catalog entry of a spare part.
type CatalogPart struct {
	ID        kernel.UUID
	Name      string
	UnitPrice kernel.Money
}

// PartCatalog looks up spare parts. Unknown ids give an ObjectNotFoundError.
type PartCatalog interface {
	Get(ctx context.Context, id kernel.UUID) (CatalogPart, error)
}

// Notification is addressed to a branch, a user, or both.
type Notification struct {
	BranchID *kernel.UUID
	UserID   *kernel.UUID
	Type     string
	Title    string
	Message  string
	Link     string
}

// Notifier delivers notifications on a best-effort basis. Notify never blocks
// on delivery and never reports failure to the caller.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// PushSubscription is a browser web-push endpoint registered by a user.
type PushSubscription struct {
	UserID   kernel.UUID
	BranchID *kernel.UUID
	Endpoint string
	P256dh   string
	Auth     string
}

// SubscriptionStore keeps web-push subscriptions keyed by endpoint.
type SubscriptionStore interface {
	// Save inserts or replaces the subscription of sub.Endpoint.
	Save(ctx context.Context, sub PushSubscription) error

	ForUser(ctx context.Context, userID kernel.UUID) ([]PushSubscription, error)

	ForBranch(ctx context.Context, branchID kernel.UUID) ([]PushSubscription, error)

	// Delete drops an endpoint the push service reported as gone.
	Delete(ctx context.Context, endpoint string) error
}
