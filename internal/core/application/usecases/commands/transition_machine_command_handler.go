package commands

import (
	"context"
	"fmt"

	"maintenance/internal/core/domain/model/machine"
	"maintenance/internal/core/ports"
	"maintenance/internal/pkg/errs"
)

// coordinatedTargets are driven by assignments and approvals and cannot be
// reached through a manual transition.
var coordinatedTargets = map[machine.Status]bool{
	machine.Assigned:         true,
	machine.PendingApproval:  true,
	machine.AwaitingApproval: true,
	machine.RepairApproved:   true,
	machine.RepairRejected:   true,
}

// TransitionMachineCommandHandler moves a machine along one manual edge of
// the lifecycle graph.
type TransitionMachineCommandHandler struct {
	uowFactory MachineUoWFactory
	branches   ports.BranchDirectory
}

// NewTransitionMachineCommandHandler creates the handler. The branch
// directory is consulted for intake transitions only.
func NewTransitionMachineCommandHandler(uowFactory MachineUoWFactory, branches ports.BranchDirectory) TransitionMachineCommandHandler {
	return TransitionMachineCommandHandler{uowFactory: uowFactory, branches: branches}
}

// Handle applies the transition, persists it with its log row and writes an
// audit entry in one unit of work. Edges owned by the repair workflow are
// forbidden, and only a maintenance center can hold a machine in
// RECEIVED_AT_CENTER.
func (h TransitionMachineCommandHandler) Handle(ctx context.Context, cmd TransitionMachineCommand) (*machine.Machine, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if coordinatedTargets[cmd.Target()] {
		return nil, errs.NewForbiddenError("transition machine",
			fmt.Sprintf("%s is set by the repair workflow", cmd.Target()))
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.MachineRepository()
	m, err := repo.Get(ctx, cmd.MachineID())
	if err != nil {
		return nil, err
	}
	if err = requireBranch(cmd.Actor(), m.BranchID(), "transition machine"); err != nil {
		return nil, err
	}
	if m.CurrentAssignmentID() != nil {
		return nil, errs.NewConflictError("machine",
			fmt.Sprintf("machine %s is linked to assignment %s", m.Serial(), m.CurrentAssignmentID()))
	}
	if cmd.Target() == machine.ReceivedAtCenter {
		branch, branchErr := h.branches.Get(ctx, m.BranchID())
		if branchErr != nil {
			return nil, branchErr
		}
		if !branch.IsMaintenanceCenter() {
			return nil, errs.NewPreconditionFailedError(
				fmt.Sprintf("machine %s is held by %s, which is not a maintenance center", m.Serial(), branch.Name))
		}
	}

	from := m.Status()
	at := now()
	if err = transitionMachine(ctx, repo, m, cmd.Target(), machine.TransitionContext{
		ActorID: cmd.Actor().ID(),
		Notes:   cmd.Notes(),
		At:      at,
	}); err != nil {
		return nil, err
	}

	if err = uow.AuditLog().LogAction(ctx, ports.AuditEntry{
		EntityType: auditMachine,
		EntityID:   m.ID(),
		Action:     "TRANSITION",
		Details:    map[string]any{"from": from.String(), "to": m.Status().String()},
		ActorID:    cmd.Actor().ID(),
		BranchID:   branchRef(m.BranchID()),
		At:         at,
	}); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return m, nil
}
