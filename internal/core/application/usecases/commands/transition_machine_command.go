package commands

import (
	"errors"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/machine"
	"maintenance/internal/pkg/guard"
)

var ErrTransitionMachineCommandIsNotConstructed = errors.New(
	"TransitionMachineCommand must be created via NewTransitionMachineCommand constructor",
)

// TransitionMachineCommand moves a machine along one edge of the lifecycle
// graph by hand. Notes end up in the status log.
type TransitionMachineCommand struct {
	actor     kernel.Actor
	machineID kernel.UUID
	target    machine.Status
	notes     string

	guard guard.ConstructorGuard
}

// NewTransitionMachineCommand validates the target status and the ids.
func NewTransitionMachineCommand(actor kernel.Actor, machineID kernel.UUID, target machine.Status, notes string) (TransitionMachineCommand, error) {
	if err := errors.Join(validateActor(actor), machineID.Validate(), target.Validate()); err != nil {
		return TransitionMachineCommand{}, err
	}
	return TransitionMachineCommand{
		actor:     actor,
		machineID: machineID,
		target:    target,
		notes:     notes,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c TransitionMachineCommand) Validate() error {
	return c.guard.Validate(ErrTransitionMachineCommandIsNotConstructed)
}

func (c TransitionMachineCommand) Actor() kernel.Actor    { return c.actor }
func (c TransitionMachineCommand) MachineID() kernel.UUID { return c.machineID }
func (c TransitionMachineCommand) Target() machine.Status { return c.target }
func (c TransitionMachineCommand) Notes() string          { return c.notes }
