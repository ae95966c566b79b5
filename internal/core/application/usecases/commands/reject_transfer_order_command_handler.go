package commands

import (
	"context"
	"fmt"

	"maintenance/internal/core/domain/model/transfer"
	"maintenance/internal/core/ports"
)

// RejectTransferOrderCommandHandler refuses a whole order at the destination.
// Nothing moves and every serial lock is released.
type RejectTransferOrderCommandHandler struct {
	uowFactory TransferUoWFactory
	notifier   ports.Notifier
}

// NewRejectTransferOrderCommandHandler creates the handler.
func NewRejectTransferOrderCommandHandler(uowFactory TransferUoWFactory, notifier ports.Notifier) RejectTransferOrderCommandHandler {
	return RejectTransferOrderCommandHandler{uowFactory: uowFactory, notifier: notifier}
}

// Handle refuses a pending order at the destination. Items never moved, so
// ownership stays with the source branch.
func (h RejectTransferOrderCommandHandler) Handle(ctx context.Context, cmd RejectTransferOrderCommand) (*transfer.Order, error) {
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
	if err = requireBranch(cmd.Actor(), order.ToBranchID(), "reject transfer order"); err != nil {
		return nil, err
	}

	at := now()
	if err = order.Reject(cmd.Reason(), cmd.Actor().ID(), at); err != nil {
		return nil, err
	}
	if err = orderRepo.Update(ctx, order, transfer.StatusPending); err != nil {
		return nil, err
	}

	if err = uow.AuditLog().LogAction(ctx, ports.AuditEntry{
		EntityType: auditTransferOrder,
		EntityID:   order.ID(),
		Action:     "REJECT",
		Details:    map[string]any{"reason": cmd.Reason()},
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
		Type:     NotifyTransferRejected,
		Title:    "Transfer order rejected",
		Message:  fmt.Sprintf("Order %s was rejected: %s", order.Number(), cmd.Reason()),
		Link:     "/transfer-orders/" + order.ID().String(),
	})

	return order, nil
}

// CancelTransferOrderCommandHandler withdraws a pending order on the source
// side before any item was received.
type CancelTransferOrderCommandHandler struct {
	uowFactory TransferUoWFactory
	notifier   ports.Notifier
}

// NewCancelTransferOrderCommandHandler creates the handler.
func NewCancelTransferOrderCommandHandler(uowFactory TransferUoWFactory, notifier ports.Notifier) CancelTransferOrderCommandHandler {
	return CancelTransferOrderCommandHandler{uowFactory: uowFactory, notifier: notifier}
}

// Handle withdraws a pending order on the source side and releases its
// serial locks.
func (h CancelTransferOrderCommandHandler) Handle(ctx context.Context, cmd CancelTransferOrderCommand) (*transfer.Order, error) {
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
	if err = requireBranch(cmd.Actor(), order.FromBranchID(), "cancel transfer order"); err != nil {
		return nil, err
	}

	if err = order.Cancel(); err != nil {
		return nil, err
	}
	if err = orderRepo.Update(ctx, order, transfer.StatusPending); err != nil {
		return nil, err
	}

	if err = uow.AuditLog().LogAction(ctx, ports.AuditEntry{
		EntityType: auditTransferOrder,
		EntityID:   order.ID(),
		Action:     "CANCEL",
		ActorID:    cmd.Actor().ID(),
		BranchID:   branchRef(order.FromBranchID()),
		At:         now(),
	}); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.notifier.Notify(ctx, ports.Notification{
		BranchID: branchRef(order.ToBranchID()),
		Type:     NotifyTransferCancelled,
		Title:    "Transfer order cancelled",
		Message:  fmt.Sprintf("Order %s was cancelled by the sender", order.Number()),
		Link:     "/transfer-orders/" + order.ID().String(),
	})

	return order, nil
}
