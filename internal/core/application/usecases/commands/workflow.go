package commands

import (
	"context"
	"fmt"
	"time"

	"maintenance/internal/core/domain/model/assignment"
	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/machine"
	"maintenance/internal/core/domain/services"
	"maintenance/internal/core/ports"
	"maintenance/internal/pkg/errs"
)

// Audit entity types.
const (
	auditMachine       = "machine"
	auditTransferOrder = "transfer_order"
	auditAssignment    = "service_assignment"
	auditApproval      = "approval_request"
	auditDebt          = "branch_debt"
)

// Notification types.
const (
	NotifyTransferCreated   = "TRANSFER_ORDER_CREATED"
	NotifyTransferReceived  = "TRANSFER_ORDER_RECEIVED"
	NotifyTransferRejected  = "TRANSFER_ORDER_REJECTED"
	NotifyTransferCancelled = "TRANSFER_ORDER_CANCELLED"
	NotifyAssignment        = "SERVICE_ASSIGNED"
	NotifyApprovalRequested = "APPROVAL_REQUESTED"
	NotifyApprovalAnswered  = "APPROVAL_RESPONDED"
	NotifyApprovalReminder  = "APPROVAL_REMINDER"
	NotifyRepairCompleted   = "REPAIR_COMPLETED"
	NotifyDebtOpened        = "DEBT_OPENED"
	NotifyDebtPaid          = "DEBT_PAID"
)

func now() time.Time {
	return time.Now().UTC()
}

func requireBranch(actor kernel.Actor, branchID kernel.UUID, action string) error {
	if !actor.CanAccessBranch(branchID) {
		return errs.NewForbiddenError(action, fmt.Sprintf("branch %s is outside the caller's branches", branchID))
	}
	return nil
}

func validateActor(actor kernel.Actor) error {
	if err := actor.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("actor", err)
	}
	return nil
}

// saveMachine persists m with a compare-and-swap on expected and appends the
// log entries produced since it was loaded.
func saveMachine(ctx context.Context, repo ports.MachineRepository, m *machine.Machine, expected machine.Status, entries ...machine.StatusLog) error {
	if err := repo.Update(ctx, m, expected); err != nil {
		return err
	}
	for _, entry := range entries {
		if err := repo.AppendLog(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// transitionMachine applies one edge and persists it.
func transitionMachine(ctx context.Context, repo ports.MachineRepository, m *machine.Machine, target machine.Status, tc machine.TransitionContext) error {
	from := m.Status()
	entry, err := m.Transition(target, tc)
	if err != nil {
		return err
	}
	return saveMachine(ctx, repo, m, from, entry)
}

func branchRef(id kernel.UUID) *kernel.UUID {
	return &id
}

// loadRepair fetches an assignment and its machine for a center-side action.
// A technician may only act on their own assignments.
func loadRepair(
	ctx context.Context,
	assignments ports.AssignmentRepository,
	machines ports.MachineRepository,
	actor kernel.Actor,
	assignmentID kernel.UUID,
	action string,
) (*assignment.Assignment, *machine.Machine, error) {
	a, err := assignments.Get(ctx, assignmentID)
	if err != nil {
		return nil, nil, err
	}
	if err = requireBranch(actor, a.BranchID(), action); err != nil {
		return nil, nil, err
	}
	if actor.Role() == kernel.RoleCenterTechnician && !a.TechnicianID().IsEqual(actor.ID()) {
		return nil, nil, errs.NewForbiddenError(action, "assignment belongs to another technician")
	}

	m, err := machines.Get(ctx, a.MachineID())
	if err != nil {
		return nil, nil, err
	}
	return a, m, nil
}

// saveRepair persists an assignment change and moves the machine to the
// status mapped from it.
func saveRepair(
	ctx context.Context,
	uow interface {
		MachineRepoFactory
		AssignmentRepoFactory
	},
	coordinator services.RepairCoordinator,
	a *assignment.Assignment,
	expected assignment.Status,
	m *machine.Machine,
	actorID kernel.UUID,
	notes string,
	at time.Time,
) error {
	from := m.Status()
	entry, err := coordinator.Sync(a, m, actorID, notes, at)
	if err != nil {
		return err
	}
	if entry != nil {
		if err = saveMachine(ctx, uow.MachineRepository(), m, from, *entry); err != nil {
			return err
		}
	}
	return uow.AssignmentRepository().Update(ctx, a, expected)
}
