package commands

import (
	"context"
	"errors"
	"fmt"

	"maintenance/internal/core/domain/model/assignment"
	"maintenance/internal/core/domain/services"
	"maintenance/internal/core/ports"
	"maintenance/internal/pkg/errs"
)

// AssignTechnicianCommandHandler opens a service assignment and moves the
// machine to ASSIGNED in one unit of work, then notifies the technician.
type AssignTechnicianCommandHandler struct {
	uowFactory  AssignmentUoWFactory
	branches    ports.BranchDirectory
	coordinator services.RepairCoordinator
	notifier    ports.Notifier
}

// NewAssignTechnicianCommandHandler creates the handler. The branch directory
// resolves the center, the coordinator keeps machine and assignment in step.
func NewAssignTechnicianCommandHandler(
	uowFactory AssignmentUoWFactory,
	branches ports.BranchDirectory,
	coordinator services.RepairCoordinator,
	notifier ports.Notifier,
) AssignTechnicianCommandHandler {
	return AssignTechnicianCommandHandler{
		uowFactory:  uowFactory,
		branches:    branches,
		coordinator: coordinator,
		notifier:    notifier,
	}
}

// Handle requires a center actor and a machine at RECEIVED_AT_CENTER or
// UNDER_INSPECTION without an open assignment. A second concurrent assignment
// for the same machine fails with a conflict.
func (h AssignTechnicianCommandHandler) Handle(ctx context.Context, cmd AssignTechnicianCommand) (*assignment.Assignment, error) {
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

	machines := uow.MachineRepository()
	m, err := machines.Get(ctx, cmd.MachineID())
	if err != nil {
		return nil, err
	}
	if err = requireBranch(cmd.Actor(), m.BranchID(), "assign technician"); err != nil {
		return nil, err
	}

	center, err := h.branches.Get(ctx, m.BranchID())
	if err != nil {
		return nil, err
	}
	if !center.IsMaintenanceCenter() {
		return nil, errs.NewPreconditionFailedError(fmt.Sprintf("machine %s is not at a maintenance center", m.Serial()))
	}

	assignments := uow.AssignmentRepository()
	active, err := assignments.FindActiveByMachine(ctx, m.ID())
	switch {
	case err == nil:
		return nil, errs.NewConflictError("machine",
			fmt.Sprintf("machine %s already has active assignment %s", m.Serial(), active.ID()))
	case !errors.Is(err, errs.ErrObjectNotFound):
		return nil, err
	}

	from := m.Status()
	at := now()
	a, entry, err := h.coordinator.Assign(m, center.ID, cmd.TechnicianID(), cmd.Actor().ID(), at)
	if err != nil {
		return nil, err
	}

	if err = assignments.Add(ctx, a); err != nil {
		return nil, err
	}
	if err = saveMachine(ctx, machines, m, from, entry); err != nil {
		return nil, err
	}

	if err = uow.AuditLog().LogAction(ctx, ports.AuditEntry{
		EntityType: auditAssignment,
		EntityID:   a.ID(),
		Action:     "ASSIGN",
		Details:    map[string]any{"serial": m.Serial(), "technicianId": cmd.TechnicianID().String()},
		ActorID:    cmd.Actor().ID(),
		BranchID:   branchRef(center.ID),
		At:         at,
	}); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	technicianID := cmd.TechnicianID()
	h.notifier.Notify(ctx, ports.Notification{
		UserID:  &technicianID,
		Type:    NotifyAssignment,
		Title:   "New repair assigned",
		Message: fmt.Sprintf("Machine %s (%s %s) is assigned to you", m.Serial(), m.Manufacturer(), m.Model()),
		Link:    "/service-assignments/" + a.ID().String(),
	})

	return a, nil
}
