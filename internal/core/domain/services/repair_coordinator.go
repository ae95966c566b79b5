package services

import (
	"fmt"
	"time"

	"maintenance/internal/core/domain/model/assignment"
	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/machine"
	"maintenance/internal/pkg/errs"
)

// MachineStatusFor is the fixed mapping from an open assignment's status to
// the status its machine must hold. Closed assignments (COMPLETED after the
// machine left the center, RETURNED) do not constrain the machine.
func MachineStatusFor(status assignment.Status) (machine.Status, bool) {
	switch status {
	case assignment.StatusAssigned:
		return machine.Assigned, true
	case assignment.StatusInProgress:
		return machine.InProgress, true
	case assignment.StatusPendingApproval:
		return machine.PendingApproval, true
	case assignment.StatusApproved:
		return machine.RepairApproved, true
	case assignment.StatusRejected:
		return machine.RepairRejected, true
	case assignment.StatusCompleted:
		return machine.ReadyForReturn, true
	default:
		return machine.Unknown, false
	}
}

// RepairCoordinator applies assignment changes together with the matching
// machine transition.
type RepairCoordinator struct{}

// NewRepairCoordinator creates the stateless coordinator.
func NewRepairCoordinator() RepairCoordinator {
	return RepairCoordinator{}
}

// Assign opens an assignment for a machine waiting at the center and moves the
// machine to ASSIGNED. The machine must be at RECEIVED_AT_CENTER or
// UNDER_INSPECTION and must not be linked to another assignment.
func (RepairCoordinator) Assign(
	m *machine.Machine,
	centerID, technicianID, actorID kernel.UUID,
	at time.Time,
) (*assignment.Assignment, machine.StatusLog, error) {
	if err := m.Validate(); err != nil {
		return nil, machine.StatusLog{}, err
	}
	if s := m.Status(); s != machine.ReceivedAtCenter && s != machine.UnderInspection {
		return nil, machine.StatusLog{}, errs.NewTransitionError("machine", s, machine.Assigned)
	}
	if m.CurrentAssignmentID() != nil {
		return nil, machine.StatusLog{}, errs.NewConflictError("machine",
			fmt.Sprintf("machine %s already has assignment %s", m.Serial(), m.CurrentAssignmentID()))
	}
	if !m.BranchID().IsEqual(centerID) {
		return nil, machine.StatusLog{}, errs.NewConflictError("machine",
			fmt.Sprintf("machine %s is not at this maintenance center", m.Serial()))
	}

	origin := m.BranchID()
	if m.OriginBranchID() != nil {
		origin = *m.OriginBranchID()
	}

	a, err := assignment.NewAssignment(kernel.NewUUID(), m.ID(), m.Serial(), technicianID, centerID, origin, actorID, at)
	if err != nil {
		return nil, machine.StatusLog{}, err
	}

	assignmentID := a.ID()
	entry, err := m.Transition(machine.Assigned, machine.TransitionContext{
		ActorID: actorID,
		Notes:   "technician assigned",
		At:      at,
		Payload: machine.TransitionPayload{AssignmentID: &assignmentID, TechnicianID: &technicianID},
	})
	if err != nil {
		return nil, machine.StatusLog{}, err
	}

	return a, entry, nil
}

// Sync moves the machine to the status mapped from the assignment. It
// returns nil when the machine already matches.
func (RepairCoordinator) Sync(a *assignment.Assignment, m *machine.Machine, actorID kernel.UUID, notes string, at time.Time) (*machine.StatusLog, error) {
	if !a.MachineID().IsEqual(m.ID()) {
		return nil, errs.NewValueIsInvalidErrorWithCause("machine",
			fmt.Errorf("assignment %s belongs to another machine", a.ID()))
	}

	target, ok := MachineStatusFor(a.Status())
	if !ok || m.Status() == target {
		return nil, nil
	}

	entry, err := m.Transition(target, machine.TransitionContext{ActorID: actorID, Notes: notes, At: at})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// IsConsistent reports whether an open assignment and its machine agree.
func (RepairCoordinator) IsConsistent(a *assignment.Assignment, m *machine.Machine) bool {
	target, ok := MachineStatusFor(a.Status())
	if !ok || a.Status() == assignment.StatusCompleted {
		return true
	}
	return m.Status() == target
}
