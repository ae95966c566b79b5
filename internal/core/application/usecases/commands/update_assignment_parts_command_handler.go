package commands

import (
	"context"

	"maintenance/internal/core/domain/model/assignment"
	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/services"
	"maintenance/internal/core/ports"
)

// UpdateAssignmentPartsCommandHandler prices the parts from the catalog and
// stores them on the assignment.
type UpdateAssignmentPartsCommandHandler struct {
	uowFactory  AssignmentUoWFactory
	catalog     ports.PartCatalog
	coordinator services.RepairCoordinator
}

// NewUpdateAssignmentPartsCommandHandler creates the handler.
func NewUpdateAssignmentPartsCommandHandler(
	uowFactory AssignmentUoWFactory,
	catalog ports.PartCatalog,
	coordinator services.RepairCoordinator,
) UpdateAssignmentPartsCommandHandler {
	return UpdateAssignmentPartsCommandHandler{uowFactory: uowFactory, catalog: catalog, coordinator: coordinator}
}

// Handle replaces the part list with catalog snapshots. Exceeding an approved
// cost resets the approval and sends the repair back to IN_PROGRESS.
func (h UpdateAssignmentPartsCommandHandler) Handle(ctx context.Context, cmd UpdateAssignmentPartsCommand) (*assignment.Assignment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	parts, err := h.snapshot(ctx, cmd.Parts())
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	a, m, err := loadRepair(ctx, uow.AssignmentRepository(), uow.MachineRepository(), cmd.Actor(), cmd.AssignmentID(), "update parts")
	if err != nil {
		return nil, err
	}

	expected := a.Status()
	at := now()
	if err = a.UpdateParts(parts, cmd.Actor().ID(), at); err != nil {
		return nil, err
	}
	if err = saveRepair(ctx, uow, h.coordinator, a, expected, m, cmd.Actor().ID(), "parts exceed the approved cost", at); err != nil {
		return nil, err
	}

	if err = uow.AuditLog().LogAction(ctx, ports.AuditEntry{
		EntityType: auditAssignment,
		EntityID:   a.ID(),
		Action:     "UPDATE_PARTS",
		Details:    map[string]any{"parts": len(parts), "totalCost": a.TotalCost().String()},
		ActorID:    cmd.Actor().ID(),
		BranchID:   branchRef(a.BranchID()),
		At:         at,
	}); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (h UpdateAssignmentPartsCommandHandler) snapshot(ctx context.Context, inputs []PartInput) ([]kernel.PartUsage, error) {
	parts := make([]kernel.PartUsage, 0, len(inputs))
	for _, in := range inputs {
		cp, err := h.catalog.Get(ctx, in.PartID)
		if err != nil {
			return nil, err
		}
		usage, err := kernel.NewPartUsage(cp.ID, cp.Name, in.Quantity, cp.UnitPrice)
		if err != nil {
			return nil, err
		}
		parts = append(parts, usage)
	}
	return parts, nil
}
