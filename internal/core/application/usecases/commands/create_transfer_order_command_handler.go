package commands

import (
	"context"
	"fmt"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/transfer"
	"maintenance/internal/core/ports"
	"maintenance/internal/pkg/errs"
)

// CreateTransferOrderCommandHandler stores a PENDING transfer order after
// checking every line against the source branch inventory.
type CreateTransferOrderCommandHandler struct {
	uowFactory TransferUoWFactory
	branches   ports.BranchDirectory
	catalog    ports.PartCatalog
	notifier   ports.Notifier
}

// NewCreateTransferOrderCommandHandler creates the handler.
func NewCreateTransferOrderCommandHandler(
	uowFactory TransferUoWFactory,
	branches ports.BranchDirectory,
	catalog ports.PartCatalog,
	notifier ports.Notifier,
) CreateTransferOrderCommandHandler {
	return CreateTransferOrderCommandHandler{
		uowFactory: uowFactory,
		branches:   branches,
		catalog:    catalog,
		notifier:   notifier,
	}
}

// Handle validates every line against the source branch inventory and stores
// a PENDING order. It returns the new order.
func (h CreateTransferOrderCommandHandler) Handle(ctx context.Context, cmd CreateTransferOrderCommand) (*transfer.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := requireBranch(cmd.Actor(), cmd.FromBranchID(), "create transfer order"); err != nil {
		return nil, err
	}

	source, err := h.branches.Get(ctx, cmd.FromBranchID())
	if err != nil {
		return nil, err
	}
	if _, err = h.branches.Get(ctx, cmd.ToBranchID()); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	items, err := h.snapshotItems(ctx, uow, cmd, source)
	if err != nil {
		return nil, err
	}

	orderRepo := uow.TransferOrderRepository()
	if cmd.Type().IsSerialized() {
		serials := make([]string, 0, len(items))
		for _, it := range items {
			serials = append(serials, it.Serial())
		}
		locked, lockErr := orderRepo.LockedSerials(ctx, cmd.Type(), serials)
		if lockErr != nil {
			return nil, lockErr
		}
		if len(locked) > 0 {
			return nil, errs.NewConflictError("transfer order",
				fmt.Sprintf("serials already in a pending order: %v", locked))
		}
	}

	at := now()
	order, err := transfer.NewOrder(kernel.NewUUID(), cmd.Type(), cmd.FromBranchID(), cmd.ToBranchID(),
		items, cmd.Notes(), cmd.Actor().ID(), at)
	if err != nil {
		return nil, err
	}

	if err = orderRepo.Add(ctx, order); err != nil {
		return nil, err
	}

	if err = uow.AuditLog().LogAction(ctx, ports.AuditEntry{
		EntityType: auditTransferOrder,
		EntityID:   order.ID(),
		Action:     "CREATE",
		Details:    map[string]any{"number": order.Number(), "type": order.Type(), "items": len(items)},
		ActorID:    cmd.Actor().ID(),
		BranchID:   branchRef(cmd.FromBranchID()),
		At:         at,
	}); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.notifier.Notify(ctx, ports.Notification{
		BranchID: branchRef(order.ToBranchID()),
		Type:     NotifyTransferCreated,
		Title:    "Incoming transfer order",
		Message:  fmt.Sprintf("Order %s with %d %s item(s) is on its way", order.Number(), len(items), order.Type()),
		Link:     "/transfer-orders/" + order.ID().String(),
	})

	return order, nil
}

func (h CreateTransferOrderCommandHandler) snapshotItems(
	ctx context.Context,
	uow TransferUoW,
	cmd CreateTransferOrderCommand,
	source kernel.Branch,
) ([]*transfer.Item, error) {
	items := make([]*transfer.Item, 0, len(cmd.Items()))
	requested := make(map[kernel.UUID]int)
	for _, in := range cmd.Items() {
		var (
			item *transfer.Item
			err  error
		)
		switch cmd.Type() {
		case transfer.TypeMachine:
			item, err = h.machineItem(ctx, uow.MachineRepository(), in.Serial, cmd.FromBranchID(), source)
		case transfer.TypeSim:
			item, err = h.simItem(ctx, uow.InventoryRepository(), in.Serial, cmd.FromBranchID())
		case transfer.TypeSparePart:
			item, err = h.partItem(ctx, uow, in, cmd.FromBranchID(), requested)
		}
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (h CreateTransferOrderCommandHandler) machineItem(
	ctx context.Context,
	repo ports.MachineRepository,
	serial string,
	from kernel.UUID,
	source kernel.Branch,
) (*transfer.Item, error) {
	m, err := repo.GetBySerial(ctx, serial)
	if err != nil {
		return nil, err
	}
	if !m.BranchID().IsEqual(from) {
		return nil, errs.NewConflictError("machine", fmt.Sprintf("machine %s is not owned by the source branch", serial))
	}

	leaving := m.Status().IsOutbound()
	if source.IsMaintenanceCenter() {
		leaving = leaving || m.Status().IsReturnable()
	}
	if !leaving {
		return nil, errs.NewConflictError("machine", fmt.Sprintf("machine %s cannot be shipped in %s status", serial, m.Status()))
	}

	return transfer.NewSerialItem(m.Serial(), fmt.Sprintf("%s %s", m.Manufacturer(), m.Model()))
}

func (h CreateTransferOrderCommandHandler) simItem(
	ctx context.Context,
	repo ports.InventoryRepository,
	serial string,
	from kernel.UUID,
) (*transfer.Item, error) {
	owner, err := repo.SimBranch(ctx, serial)
	if err != nil {
		return nil, err
	}
	if !owner.IsEqual(from) {
		return nil, errs.NewConflictError("sim card", fmt.Sprintf("SIM %s is not owned by the source branch", serial))
	}
	return transfer.NewSerialItem(serial, "SIM card")
}

// partItem checks one spare part line. Lines for the same part draw on one
// pool, so requested carries the quantity earlier lines of this order took.
func (h CreateTransferOrderCommandHandler) partItem(
	ctx context.Context,
	uow TransferUoW,
	in TransferItemInput,
	from kernel.UUID,
	requested map[kernel.UUID]int,
) (*transfer.Item, error) {
	part, err := h.catalog.Get(ctx, *in.PartID)
	if err != nil {
		return nil, err
	}

	stock, err := uow.InventoryRepository().PartStock(ctx, part.ID, from)
	if err != nil {
		return nil, err
	}
	reserved, err := uow.TransferOrderRepository().ReservedQuantity(ctx, part.ID, from)
	if err != nil {
		return nil, err
	}

	total := requested[part.ID] + in.Quantity
	if available := stock - reserved; available < total {
		return nil, errs.NewConflictError("spare part",
			fmt.Sprintf("%s: requested %d, available %d", part.Name, total, available))
	}
	requested[part.ID] = total

	return transfer.NewPartItem(part.ID, part.Name, in.Quantity)
}
