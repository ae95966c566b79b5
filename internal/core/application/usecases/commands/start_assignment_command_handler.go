package commands

import (
	"context"

	"maintenance/internal/core/domain/model/assignment"
	"maintenance/internal/core/domain/services"
	"maintenance/internal/core/ports"
)

// StartAssignmentCommandHandler moves an ASSIGNED repair to IN_PROGRESS.
type StartAssignmentCommandHandler struct {
	uowFactory  AssignmentUoWFactory
	coordinator services.RepairCoordinator
}

// NewStartAssignmentCommandHandler creates the handler.
func NewStartAssignmentCommandHandler(uowFactory AssignmentUoWFactory, coordinator services.RepairCoordinator) StartAssignmentCommandHandler {
	return StartAssignmentCommandHandler{uowFactory: uowFactory, coordinator: coordinator}
}

// Handle loads the assignment with its machine, starts it and saves both.
// Technicians may only start their own assignments.
func (h StartAssignmentCommandHandler) Handle(ctx context.Context, cmd StartAssignmentCommand) (*assignment.Assignment, error) {
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

	a, m, err := loadRepair(ctx, uow.AssignmentRepository(), uow.MachineRepository(), cmd.Actor(), cmd.AssignmentID(), "start repair")
	if err != nil {
		return nil, err
	}

	expected := a.Status()
	at := now()
	if err = a.Start(cmd.Actor().ID(), at); err != nil {
		return nil, err
	}
	if err = saveRepair(ctx, uow, h.coordinator, a, expected, m, cmd.Actor().ID(), "repair started", at); err != nil {
		return nil, err
	}

	if err = uow.AuditLog().LogAction(ctx, ports.AuditEntry{
		EntityType: auditAssignment,
		EntityID:   a.ID(),
		Action:     "START",
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
