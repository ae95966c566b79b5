package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"maintenance/internal/core/domain/model/assignment"
	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/ledger"
	"maintenance/internal/core/domain/services"
	"maintenance/internal/core/ports"
)

// CompletionResult is the completed assignment and the debt it opened, if
// any.
type CompletionResult struct {
	Assignment *assignment.Assignment
	Debt       *ledger.Debt
}

// CompleteAssignmentCommandHandler finishes a repair: it deducts the used
// parts from center stock, releases the machine for return and opens a debt
// for an approved cost.
type CompleteAssignmentCommandHandler struct {
	uowFactory  AssignmentUoWFactory
	coordinator services.RepairCoordinator
	notifier    ports.Notifier
	logger      *zap.Logger
}

// NewCompleteAssignmentCommandHandler creates the handler.
func NewCompleteAssignmentCommandHandler(
	uowFactory AssignmentUoWFactory,
	coordinator services.RepairCoordinator,
	notifier ports.Notifier,
	logger *zap.Logger,
) CompleteAssignmentCommandHandler {
	return CompleteAssignmentCommandHandler{
		uowFactory:  uowFactory,
		coordinator: coordinator,
		notifier:    notifier,
		logger:      logger,
	}
}

// Handle closes the repair, deducts the used parts from the center stock and
// opens a debt from the origin branch for an approved cost.
func (h CompleteAssignmentCommandHandler) Handle(ctx context.Context, cmd CompleteAssignmentCommand) (CompletionResult, error) {
	if err := cmd.Validate(); err != nil {
		return CompletionResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return CompletionResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	a, m, err := loadRepair(ctx, uow.AssignmentRepository(), uow.MachineRepository(), cmd.Actor(), cmd.AssignmentID(), "complete repair")
	if err != nil {
		return CompletionResult{}, err
	}

	expected := a.Status()
	at := now()
	if err = a.Complete(cmd.Actor().ID(), cmd.Notes(), at); err != nil {
		return CompletionResult{}, err
	}
	if err = saveRepair(ctx, uow, h.coordinator, a, expected, m, cmd.Actor().ID(), "repair completed", at); err != nil {
		return CompletionResult{}, err
	}

	if err = h.deductParts(ctx, uow.InventoryRepository(), a); err != nil {
		return CompletionResult{}, err
	}

	result := CompletionResult{Assignment: a}
	if amount := a.DebtAmount(); amount.IsPositive() && !a.OriginBranchID().IsEqual(a.BranchID()) {
		assignmentID := a.ID()
		debt, debtErr := ledger.OpenDebt(kernel.NewUUID(), a.OriginBranchID(), a.BranchID(), amount, a.Serial(), &assignmentID, at)
		if debtErr != nil {
			return CompletionResult{}, debtErr
		}
		if err = uow.DebtRepository().Add(ctx, debt); err != nil {
			return CompletionResult{}, err
		}
		if err = uow.AuditLog().LogAction(ctx, ports.AuditEntry{
			EntityType: auditDebt,
			EntityID:   debt.ID(),
			Action:     "OPEN",
			Details:    map[string]any{"amount": amount.String(), "serial": a.Serial()},
			ActorID:    cmd.Actor().ID(),
			BranchID:   branchRef(a.BranchID()),
			At:         at,
		}); err != nil {
			return CompletionResult{}, err
		}
		result.Debt = debt
	}

	if err = uow.AuditLog().LogAction(ctx, ports.AuditEntry{
		EntityType: auditAssignment,
		EntityID:   a.ID(),
		Action:     "COMPLETE",
		Details:    map[string]any{"totalCost": a.TotalCost().String(), "approvedCost": a.ApprovedCost().String()},
		ActorID:    cmd.Actor().ID(),
		BranchID:   branchRef(a.BranchID()),
		At:         at,
	}); err != nil {
		return CompletionResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return CompletionResult{}, err
	}

	h.notifier.Notify(ctx, ports.Notification{
		BranchID: branchRef(a.OriginBranchID()),
		Type:     NotifyRepairCompleted,
		Title:    "Repair completed",
		Message:  fmt.Sprintf("Machine %s is repaired and ready for return", a.Serial()),
		Link:     "/service-assignments/" + a.ID().String(),
	})
	if result.Debt != nil {
		h.notifier.Notify(ctx, ports.Notification{
			BranchID: branchRef(result.Debt.DebtorBranchID()),
			Type:     NotifyDebtOpened,
			Title:    "Repair payment due",
			Message:  fmt.Sprintf("%s is due for the repair of machine %s", result.Debt.Amount(), a.Serial()),
			Link:     "/pending-payments/" + result.Debt.ID().String(),
		})
	}

	return result, nil
}

// deductParts takes the used parts from the center stock. A part without
// enough stock is skipped and logged.
func (h CompleteAssignmentCommandHandler) deductParts(ctx context.Context, inventory ports.InventoryRepository, a *assignment.Assignment) error {
	for _, p := range a.Parts() {
		taken, err := inventory.TakePartStock(ctx, p.PartID, a.BranchID(), p.Quantity)
		if err != nil {
			return err
		}
		if !taken {
			h.logger.Warn("insufficient part stock, deduction skipped",
				zap.String("assignmentId", a.ID().String()),
				zap.String("partId", p.PartID.String()),
				zap.Int("quantity", p.Quantity),
			)
		}
	}
	return nil
}
