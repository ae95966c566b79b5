package ports

import (
	"context"

	"maintenance/internal/core/domain/model/kernel"
)

// InventoryRepository covers the non-machine stock a transfer order moves.
type InventoryRepository interface {
	// SimBranch returns the branch owning a SIM card.
	SimBranch(ctx context.Context, serial string) (kernel.UUID, error)

	// MoveSim changes the owner of a SIM card if it is still owned by from.
	MoveSim(ctx context.Context, serial string, from, to kernel.UUID) error

	PartStock(ctx context.Context, partID, branchID kernel.UUID) (int, error)

	// TakePartStock decrements stock only when at least quantity is on hand
	// and reports whether it did.
	TakePartStock(ctx context.Context, partID, branchID kernel.UUID, quantity int) (bool, error)

	AddPartStock(ctx context.Context, partID, branchID kernel.UUID, quantity int) error
}
