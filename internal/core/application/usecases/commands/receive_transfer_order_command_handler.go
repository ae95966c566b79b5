package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/machine"
	"maintenance/internal/core/domain/model/transfer"
	"maintenance/internal/core/ports"
	"maintenance/internal/pkg/errs"
)

// ReceiveTransferOrderCommandHandler resolves the items of a pending order at
// the destination branch and moves accepted inventory.
type ReceiveTransferOrderCommandHandler struct {
	uowFactory TransferUoWFactory
	branches   ports.BranchDirectory
	notifier   ports.Notifier
}

// NewReceiveTransferOrderCommandHandler creates the handler.
func NewReceiveTransferOrderCommandHandler(
	uowFactory TransferUoWFactory,
	branches ports.BranchDirectory,
	notifier ports.Notifier,
) ReceiveTransferOrderCommandHandler {
	return ReceiveTransferOrderCommandHandler{
		uowFactory: uowFactory,
		branches:   branches,
		notifier:   notifier,
	}
}

// Handle resolves the listed items and moves accepted inventory to the
// destination branch in one transaction.
func (h ReceiveTransferOrderCommandHandler) Handle(ctx context.Context, cmd ReceiveTransferOrderCommand) (*transfer.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.TransferOrderRepository()
	order, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	if err = requireBranch(cmd.Actor(), order.ToBranchID(), "receive transfer order"); err != nil {
		return nil, err
	}

	destination, err := h.branches.Get(ctx, order.ToBranchID())
	if err != nil {
		return nil, err
	}

	at := now()
	accepted, err := order.Receive(cmd.Decisions(), cmd.Actor().ID(), at)
	if err != nil {
		return nil, err
	}

	// Items are claimed before any inventory moves.
	if err = orderRepo.Update(ctx, order, transfer.StatusPending); err != nil {
		return nil, err
	}

	for _, item := range accepted {
		if err = h.moveItem(ctx, uow, order, item, destination, cmd.Actor().ID(), at); err != nil {
			return nil, err
		}
	}

	if err = uow.AuditLog().LogAction(ctx, ports.AuditEntry{
		EntityType: auditTransferOrder,
		EntityID:   order.ID(),
		Action:     "RECEIVE",
		Details:    map[string]any{"accepted": len(accepted), "status": order.Status()},
		ActorID:    cmd.Actor().ID(),
		BranchID:   branchRef(order.ToBranchID()),
		At:         at,
	}); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.notifier.Notify(ctx, ports.Notification{
		BranchID: branchRef(order.FromBranchID()),
		Type:     NotifyTransferReceived,
		Title:    "Transfer order received",
		Message:  fmt.Sprintf("%s accepted %d item(s) of order %s", destination.Name, len(accepted), order.Number()),
		Link:     "/transfer-orders/" + order.ID().String(),
	})

	return order, nil
}

func (h ReceiveTransferOrderCommandHandler) moveItem(
	ctx context.Context,
	uow TransferUoW,
	order *transfer.Order,
	item *transfer.Item,
	destination kernel.Branch,
	actorID kernel.UUID,
	at time.Time,
) error {
	switch order.Type() {
	case transfer.TypeMachine:
		return h.moveMachine(ctx, uow, order, item.Serial(), destination, actorID, at)
	case transfer.TypeSim:
		return uow.InventoryRepository().MoveSim(ctx, item.Serial(), order.FromBranchID(), order.ToBranchID())
	case transfer.TypeSparePart:
		inventory := uow.InventoryRepository()
		taken, err := inventory.TakePartStock(ctx, *item.PartID(), order.FromBranchID(), item.Quantity())
		if err != nil {
			return err
		}
		if !taken {
			return errs.NewConflictError("spare part",
				fmt.Sprintf("source branch no longer holds %d of %s", item.Quantity(), item.Description()))
		}
		return inventory.AddPartStock(ctx, *item.PartID(), order.ToBranchID(), item.Quantity())
	default:
		return errs.NewValueIsInvalidError("transfer type")
	}
}

// moveMachine transfers ownership and drives the lifecycle edge implied by
// the destination: intake at a maintenance center, or the return leg
// RETURNING -> STANDBY at a regular branch.
func (h ReceiveTransferOrderCommandHandler) moveMachine(
	ctx context.Context,
	uow TransferUoW,
	order *transfer.Order,
	serial string,
	destination kernel.Branch,
	actorID kernel.UUID,
	at time.Time,
) error {
	machines := uow.MachineRepository()
	m, err := machines.GetBySerial(ctx, serial)
	if err != nil {
		return err
	}
	if !m.BranchID().IsEqual(order.FromBranchID()) {
		return errs.NewConflictError("machine", fmt.Sprintf("machine %s left the source branch", serial))
	}

	expected := m.Status()
	tc := machine.TransitionContext{ActorID: actorID, Notes: "transfer order " + order.Number(), At: at}
	var entries []machine.StatusLog

	switch {
	case destination.IsMaintenanceCenter():
		entry, trErr := m.Transition(machine.ReceivedAtCenter, tc)
		if trErr != nil {
			return trErr
		}
		entries = append(entries, entry)
	case expected.IsReturnable():
		returning, trErr := m.Transition(machine.Returning, tc)
		if trErr != nil {
			return trErr
		}
		standby, trErr := m.Transition(machine.Standby, tc)
		if trErr != nil {
			return trErr
		}
		entries = append(entries, returning, standby)
		if err = h.closeAssignment(ctx, uow.AssignmentRepository(), m.ID(), actorID, at); err != nil {
			return err
		}
	}

	if err = m.MoveToBranch(order.ToBranchID()); err != nil {
		return err
	}
	return saveMachine(ctx, machines, m, expected, entries...)
}

func (h ReceiveTransferOrderCommandHandler) closeAssignment(
	ctx context.Context,
	repo ports.AssignmentRepository,
	machineID, actorID kernel.UUID,
	at time.Time,
) error {
	a, err := repo.FindLatestCompletedByMachine(ctx, machineID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	expected := a.Status()
	if err = a.MarkReturned(actorID, at); err != nil {
		return err
	}
	return repo.Update(ctx, a, expected)
}
