package commands

import (
	"errors"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/pkg/errs"
	"maintenance/internal/pkg/guard"
)

var (
	ErrAssignTechnicianCommandIsNotConstructed = errors.New(
		"AssignTechnicianCommand must be created via NewAssignTechnicianCommand constructor",
	)
	ErrStartAssignmentCommandIsNotConstructed = errors.New(
		"StartAssignmentCommand must be created via NewStartAssignmentCommand constructor",
	)
	ErrUpdateAssignmentPartsCommandIsNotConstructed = errors.New(
		"UpdateAssignmentPartsCommand must be created via NewUpdateAssignmentPartsCommand constructor",
	)
	ErrRequestApprovalCommandIsNotConstructed = errors.New(
		"RequestApprovalCommand must be created via NewRequestApprovalCommand constructor",
	)
	ErrCompleteAssignmentCommandIsNotConstructed = errors.New(
		"CompleteAssignmentCommand must be created via NewCompleteAssignmentCommand constructor",
	)
)

// AssignTechnicianCommand hands a machine received at a maintenance center to
// one of its technicians.
type AssignTechnicianCommand struct {
	actor        kernel.Actor
	machineID    kernel.UUID
	technicianID kernel.UUID

	guard guard.ConstructorGuard
}

// NewAssignTechnicianCommand requires a valid actor, machine and technician.
func NewAssignTechnicianCommand(actor kernel.Actor, machineID, technicianID kernel.UUID) (AssignTechnicianCommand, error) {
	if err := errors.Join(validateActor(actor), machineID.Validate(), technicianID.Validate()); err != nil {
		return AssignTechnicianCommand{}, err
	}
	return AssignTechnicianCommand{
		actor:        actor,
		machineID:    machineID,
		technicianID: technicianID,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c AssignTechnicianCommand) Validate() error {
	return c.guard.Validate(ErrAssignTechnicianCommandIsNotConstructed)
}

func (c AssignTechnicianCommand) Actor() kernel.Actor       { return c.actor }
func (c AssignTechnicianCommand) MachineID() kernel.UUID    { return c.machineID }
func (c AssignTechnicianCommand) TechnicianID() kernel.UUID { return c.technicianID }

// StartAssignmentCommand marks the beginning of the repair work.
type StartAssignmentCommand struct {
	actor        kernel.Actor
	assignmentID kernel.UUID

	guard guard.ConstructorGuard
}

// NewStartAssignmentCommand requires a valid actor and assignment id.
func NewStartAssignmentCommand(actor kernel.Actor, assignmentID kernel.UUID) (StartAssignmentCommand, error) {
	if err := errors.Join(validateActor(actor), assignmentID.Validate()); err != nil {
		return StartAssignmentCommand{}, err
	}
	return StartAssignmentCommand{actor: actor, assignmentID: assignmentID, guard: guard.NewConstructorGuard()}, nil
}

func (c StartAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrStartAssignmentCommandIsNotConstructed)
}

func (c StartAssignmentCommand) Actor() kernel.Actor       { return c.actor }
func (c StartAssignmentCommand) AssignmentID() kernel.UUID { return c.assignmentID }

// PartInput references a catalog part. Name and price are taken from the
// catalog when the command is handled.
type PartInput struct {
	PartID   kernel.UUID
	Quantity int
}

// UpdateAssignmentPartsCommand replaces the spare parts used by a repair. Prices
// are taken from the catalog by the handler, the command only carries part ids
// and quantities.
type UpdateAssignmentPartsCommand struct {
	actor        kernel.Actor
	assignmentID kernel.UUID
	parts        []PartInput

	guard guard.ConstructorGuard
}

// NewUpdateAssignmentPartsCommand rejects non-positive quantities and parts
// listed twice. An empty list clears the parts.
func NewUpdateAssignmentPartsCommand(actor kernel.Actor, assignmentID kernel.UUID, parts []PartInput) (UpdateAssignmentPartsCommand, error) {
	if err := errors.Join(validateActor(actor), assignmentID.Validate()); err != nil {
		return UpdateAssignmentPartsCommand{}, err
	}
	for _, p := range parts {
		if err := p.PartID.Validate(); err != nil {
			return UpdateAssignmentPartsCommand{}, err
		}
		if p.Quantity <= 0 {
			return UpdateAssignmentPartsCommand{}, errs.NewValueIsOutOfRangeError("quantity", p.Quantity, 1, "unbounded")
		}
	}
	return UpdateAssignmentPartsCommand{
		actor:        actor,
		assignmentID: assignmentID,
		parts:        parts,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// Validate reports whether the command was built by its constructor.
func (c UpdateAssignmentPartsCommand) Validate() error {
	return c.guard.Validate(ErrUpdateAssignmentPartsCommandIsNotConstructed)
}

func (c UpdateAssignmentPartsCommand) Actor() kernel.Actor       { return c.actor }
func (c UpdateAssignmentPartsCommand) AssignmentID() kernel.UUID { return c.assignmentID }
func (c UpdateAssignmentPartsCommand) Parts() []PartInput        { return c.parts }

// RequestApprovalCommand asks the branch that owns the machine to approve the
// repair cost. A nil cost means the current parts total.
type RequestApprovalCommand struct {
	actor        kernel.Actor
	assignmentID kernel.UUID
	cost         *kernel.Money
	notes        string

	guard guard.ConstructorGuard
}

// NewRequestApprovalCommand builds an approval request for an assignment. A
// nil cost means the current parts total.
func NewRequestApprovalCommand(actor kernel.Actor, assignmentID kernel.UUID, cost *kernel.Money, notes string) (RequestApprovalCommand, error) {
	if err := errors.Join(validateActor(actor), assignmentID.Validate()); err != nil {
		return RequestApprovalCommand{}, err
	}
	if cost != nil && !cost.IsPositive() {
		return RequestApprovalCommand{}, errs.NewValueIsOutOfRangeError("cost", cost.String(), "0.01", "unbounded")
	}
	return RequestApprovalCommand{
		actor:        actor,
		assignmentID: assignmentID,
		cost:         cost,
		notes:        notes,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c RequestApprovalCommand) Validate() error {
	return c.guard.Validate(ErrRequestApprovalCommandIsNotConstructed)
}

func (c RequestApprovalCommand) Actor() kernel.Actor       { return c.actor }
func (c RequestApprovalCommand) AssignmentID() kernel.UUID { return c.assignmentID }
func (c RequestApprovalCommand) Cost() *kernel.Money       { return c.cost }
func (c RequestApprovalCommand) Notes() string             { return c.notes }

// CompleteAssignmentCommand closes a repair. The machine becomes ready to go
// back to its branch.
//
// Example:
//
//	cmd, err := NewCompleteAssignmentCommand(technician, assignmentID, "replaced card reader")
//	if err != nil {
//	    return err
//	}
//	result, err := handler.Handle(ctx, cmd)
//	if result.Debt != nil {
//	    // the origin branch now owes the approved cost
//	}
type CompleteAssignmentCommand struct {
	actor        kernel.Actor
	assignmentID kernel.UUID
	notes        string

	guard guard.ConstructorGuard
}

// NewCompleteAssignmentCommand requires a valid actor and assignment id.
func NewCompleteAssignmentCommand(actor kernel.Actor, assignmentID kernel.UUID, notes string) (CompleteAssignmentCommand, error) {
	if err := errors.Join(validateActor(actor), assignmentID.Validate()); err != nil {
		return CompleteAssignmentCommand{}, err
	}
	return CompleteAssignmentCommand{
		actor:        actor,
		assignmentID: assignmentID,
		notes:        notes,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c CompleteAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrCompleteAssignmentCommandIsNotConstructed)
}

func (c CompleteAssignmentCommand) Actor() kernel.Actor       { return c.actor }
func (c CompleteAssignmentCommand) AssignmentID() kernel.UUID { return c.assignmentID }
func (c CompleteAssignmentCommand) Notes() string             { return c.notes }
