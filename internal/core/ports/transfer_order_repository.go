package ports

import (
	"context"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/transfer"
)

// TransferOrderRepository stores transfer orders with their items.
type TransferOrderRepository interface {
	// Add inserts the order and its items. Serial locks taken by another pending
	// order make it fail with a conflict.
	Add(ctx context.Context, o *transfer.Order) error

	// Get returns the order with its items or an ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*transfer.Order, error)

	// Update writes the order only if the stored order status still equals
	// expected. Items resolved by o are written only while they are still
	// PENDING in storage.
	Update(ctx context.Context, o *transfer.Order, expected transfer.Status) error

	// LockedSerials returns the subset of serials referenced by a pending item
	// of a PENDING order of the given type.
	LockedSerials(ctx context.Context, orderType transfer.Type, serials []string) ([]string, error)

	// ReservedQuantity sums the part quantity held by pending items of PENDING
	// orders leaving branchID.
	ReservedQuantity(ctx context.Context, partID, branchID kernel.UUID) (int, error)
}
