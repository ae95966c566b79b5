package assignment

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/pkg/errs"
	"maintenance/internal/pkg/guard"
)

var (
	ErrAssignmentIsNotConstructed = errors.New("Assignment must be created via NewAssignment or RestoreAssignment")
	ErrApprovalRequired           = errs.NewPreconditionFailedError("a repair with a cost cannot be completed before the cost is approved")
)

// Assignment is the service assignment aggregate.
type Assignment struct {
	id                kernel.UUID
	machineID         kernel.UUID
	serial            string
	technicianID      kernel.UUID
	branchID          kernel.UUID
	originBranchID    kernel.UUID
	status            Status
	parts             []kernel.PartUsage
	totalCost         kernel.Money
	approvalStatus    ApprovalStatus
	approvedCost      kernel.Money
	approvalRequestID *kernel.UUID
	notes             string
	logs              []LogEntry
	createdAt         time.Time
	startedAt         *time.Time
	completedAt       *time.Time
	version           int
	guard             guard.ConstructorGuard
}

// NewAssignment opens an assignment in ASSIGNED status.
//
// branchID is the maintenance center doing the work, originBranchID the
// branch that owns the machine and pays for the repair.
func NewAssignment(
	id, machineID kernel.UUID,
	serial string,
	technicianID, branchID, originBranchID kernel.UUID,
	actorID kernel.UUID,
	at time.Time,
) (*Assignment, error) {
	if err := errors.Join(
		id.Validate(),
		machineID.Validate(),
		technicianID.Validate(),
		branchID.Validate(),
		originBranchID.Validate(),
		actorID.Validate(),
	); err != nil {
		return nil, err
	}
	if serial == "" {
		return nil, errs.NewValueIsRequiredError("serial")
	}

	a := &Assignment{
		id:             id,
		machineID:      machineID,
		serial:         serial,
		technicianID:   technicianID,
		branchID:       branchID,
		originBranchID: originBranchID,
		status:         StatusAssigned,
		totalCost:      kernel.ZeroMoney(),
		approvalStatus: ApprovalNone,
		approvedCost:   kernel.ZeroMoney(),
		createdAt:      at,
		guard:          guard.NewConstructorGuard(),
	}
	a.appendLog(ActionAssigned, "", StatusAssigned, actorID, "", at)
	return a, nil
}

// RestoreAssignment rebuilds an assignment from persistence.
func RestoreAssignment(
	id, machineID kernel.UUID,
	serial string,
	technicianID, branchID, originBranchID kernel.UUID,
	status Status,
	parts []kernel.PartUsage,
	totalCost kernel.Money,
	approvalStatus ApprovalStatus,
	approvedCost kernel.Money,
	approvalRequestID *kernel.UUID,
	notes string,
	logs []LogEntry,
	createdAt time.Time,
	startedAt, completedAt *time.Time,
	version int,
) (*Assignment, error) {
	if err := errors.Join(id.Validate(), machineID.Validate(), technicianID.Validate()); err != nil {
		return nil, err
	}
	return &Assignment{
		id:                id,
		machineID:         machineID,
		serial:            serial,
		technicianID:      technicianID,
		branchID:          branchID,
		originBranchID:    originBranchID,
		status:            status,
		parts:             parts,
		totalCost:         totalCost,
		approvalStatus:    approvalStatus,
		approvedCost:      approvedCost,
		approvalRequestID: approvalRequestID,
		notes:             notes,
		logs:              logs,
		createdAt:         createdAt,
		startedAt:         startedAt,
		completedAt:       completedAt,
		version:           version,
		guard:             guard.NewConstructorGuard(),
	}, nil
}

func (a *Assignment) Validate() error {
	if a == nil {
		return ErrAssignmentIsNotConstructed
	}
	return a.guard.Validate(ErrAssignmentIsNotConstructed)
}

func (a *Assignment) ID() kernel.UUID                 { return a.id }
func (a *Assignment) MachineID() kernel.UUID          { return a.machineID }
func (a *Assignment) Serial() string                  { return a.serial }
func (a *Assignment) TechnicianID() kernel.UUID       { return a.technicianID }
func (a *Assignment) BranchID() kernel.UUID           { return a.branchID }
func (a *Assignment) OriginBranchID() kernel.UUID     { return a.originBranchID }
func (a *Assignment) Status() Status                  { return a.status }
func (a *Assignment) Parts() []kernel.PartUsage       { return slices.Clone(a.parts) }
func (a *Assignment) TotalCost() kernel.Money         { return a.totalCost }
func (a *Assignment) ApprovalStatus() ApprovalStatus  { return a.approvalStatus }
func (a *Assignment) ApprovedCost() kernel.Money      { return a.approvedCost }
func (a *Assignment) ApprovalRequestID() *kernel.UUID { return a.approvalRequestID }
func (a *Assignment) Notes() string                   { return a.notes }
func (a *Assignment) Logs() []LogEntry                { return slices.Clone(a.logs) }
func (a *Assignment) CreatedAt() time.Time            { return a.createdAt }
func (a *Assignment) StartedAt() *time.Time           { return a.startedAt }
func (a *Assignment) CompletedAt() *time.Time         { return a.completedAt }
func (a *Assignment) IsActive() bool                  { return a.status.IsActive() }

// Version counts stored changes. Persistence only accepts a change made on
// the latest version and advances it after the write.
func (a *Assignment) Version() int { return a.version }

func (a *Assignment) AdvanceVersion() { a.version++ }

// Start moves ASSIGNED -> IN_PROGRESS.
func (a *Assignment) Start(actorID kernel.UUID, at time.Time) error {
	if a.status != StatusAssigned {
		return a.illegal(StatusInProgress)
	}
	a.startedAt = &at
	a.setStatus(ActionStarted, StatusInProgress, actorID, "", at)
	return nil
}

// UpdateParts replaces the used parts and recomputes the total. An approval
// that no longer covers the new total is reset and the repair falls back to
// IN_PROGRESS.
func (a *Assignment) UpdateParts(parts []kernel.PartUsage, actorID kernel.UUID, at time.Time) error {
	switch a.status {
	case StatusPendingApproval:
		return errs.NewConflictError("service assignment", "parts cannot change while an approval is pending")
	case StatusCompleted, StatusReturned:
		return errs.NewConflictError("service assignment", fmt.Sprintf("parts cannot change in %s status", a.status))
	}
	for _, p := range parts {
		if err := p.Validate(); err != nil {
			return err
		}
	}

	a.parts = slices.Clone(parts)
	a.totalCost = kernel.TotalOf(parts)
	a.appendLog(ActionPartsUpdated, a.status, a.status, actorID, fmt.Sprintf("total %s", a.totalCost), at)

	if a.approvalStatus == ApprovalApproved && a.totalCost.GreaterThan(a.approvedCost) {
		a.approvalStatus = ApprovalNone
		a.approvedCost = kernel.ZeroMoney()
		a.approvalRequestID = nil
		a.setStatus(ActionApprovalReset, StatusInProgress, actorID,
			fmt.Sprintf("total %s exceeds the approved cost", a.totalCost), at)
	}
	return nil
}

// RequestApproval records a new approval request for cost.
func (a *Assignment) RequestApproval(requestID kernel.UUID, cost kernel.Money, actorID kernel.UUID, notes string, at time.Time) error {
	if a.status != StatusInProgress && a.status != StatusRejected {
		return a.illegal(StatusPendingApproval)
	}
	if err := requestID.Validate(); err != nil {
		return err
	}
	if !cost.IsPositive() {
		return errs.NewValueIsOutOfRangeError("cost", cost.String(), "0.01", "unbounded")
	}
	if a.totalCost.GreaterThan(cost) {
		return errs.NewValueIsOutOfRangeError("cost", cost.String(), a.totalCost.String(), "unbounded")
	}

	a.approvalStatus = ApprovalPending
	a.approvalRequestID = &requestID
	a.setStatus(ActionApprovalRequested, StatusPendingApproval, actorID, notes, at)
	return nil
}

// ApplyDecision records the origin branch's answer to the pending request.
func (a *Assignment) ApplyDecision(approved bool, cost kernel.Money, actorID kernel.UUID, reason string, at time.Time) error {
	if a.status != StatusPendingApproval || a.approvalStatus != ApprovalPending {
		target := StatusRejected
		if approved {
			target = StatusApproved
		}
		return a.illegal(target)
	}

	if approved {
		a.approvalStatus = ApprovalApproved
		a.approvedCost = cost
		a.setStatus(ActionApproved, StatusApproved, actorID, fmt.Sprintf("approved %s", cost), at)
		return nil
	}

	a.approvalStatus = ApprovalRejected
	a.approvedCost = kernel.ZeroMoney()
	a.setStatus(ActionRejected, StatusRejected, actorID, reason, at)
	return nil
}

// Complete closes the repair.
func (a *Assignment) Complete(actorID kernel.UUID, notes string, at time.Time) error {
	switch a.status {
	case StatusInProgress, StatusApproved, StatusRejected:
	default:
		return a.illegal(StatusCompleted)
	}
	if a.totalCost.IsPositive() && a.approvalStatus != ApprovalApproved {
		return ErrApprovalRequired
	}

	a.notes = notes
	a.completedAt = &at
	a.setStatus(ActionCompleted, StatusCompleted, actorID, notes, at)
	return nil
}

// DebtAmount is what the origin branch owes once the repair is completed.
// Only an approved cost produces a debt.
func (a *Assignment) DebtAmount() kernel.Money {
	if a.status != StatusCompleted || a.approvalStatus != ApprovalApproved {
		return kernel.ZeroMoney()
	}
	return a.approvedCost
}

// MarkReturned closes the record once the machine is back at its origin.
func (a *Assignment) MarkReturned(actorID kernel.UUID, at time.Time) error {
	if a.status != StatusCompleted {
		return a.illegal(StatusReturned)
	}
	a.setStatus(ActionReturned, StatusReturned, actorID, "", at)
	return nil
}

func (a *Assignment) setStatus(action string, to Status, actorID kernel.UUID, notes string, at time.Time) {
	from := a.status
	a.status = to
	a.appendLog(action, from, to, actorID, notes, at)
}

func (a *Assignment) appendLog(action string, from, to Status, actorID kernel.UUID, notes string, at time.Time) {
	a.logs = append(a.logs, LogEntry{
		ID:           kernel.NewUUID(),
		AssignmentID: a.id,
		Action:       action,
		FromStatus:   from,
		ToStatus:     to,
		ActorID:      actorID,
		Notes:        notes,
		CreatedAt:    at,
	})
}

func (a *Assignment) illegal(to Status) error {
	return errs.NewTransitionError("service assignment", a.status, to)
}
