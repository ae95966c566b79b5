package commands

import (
	"errors"
	"strings"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/transfer"
	"maintenance/internal/pkg/errs"
	"maintenance/internal/pkg/guard"
)

var ErrCreateTransferOrderCommandIsNotConstructed = errors.New(
	"CreateTransferOrderCommand must be created via NewCreateTransferOrderCommand constructor",
)

// TransferItemInput is one requested line: a serial for machines and SIMs,
// a part and quantity for spare parts.
type TransferItemInput struct {
	Serial   string
	PartID   *kernel.UUID
	Quantity int
}

// CreateTransferOrderCommand ships machines, SIM cards or spare parts from one
// branch to another. Serialized types list serials, spare parts list part ids
// with quantities.
//
// Example:
//
//	cmd, err := NewCreateTransferOrderCommand(actor, transfer.TypeMachine, branchID, centerID,
//	    []TransferItemInput{{Serial: "POS-0001"}}, "screen broken")
//	if err != nil {
//	    return err
//	}
//	order, err := handler.Handle(ctx, cmd)
//	fmt.Println(order.Number())
type CreateTransferOrderCommand struct {
	actor        kernel.Actor
	orderType    transfer.Type
	fromBranchID kernel.UUID
	toBranchID   kernel.UUID
	items        []TransferItemInput
	notes        string

	guard guard.ConstructorGuard
}

// NewCreateTransferOrderCommand checks the shape of every line against the
// order type. Inventory is checked by the handler.
func NewCreateTransferOrderCommand(
	actor kernel.Actor,
	orderType transfer.Type,
	fromBranchID, toBranchID kernel.UUID,
	items []TransferItemInput,
	notes string,
) (CreateTransferOrderCommand, error) {
	var itemsErr error
	if len(items) == 0 {
		itemsErr = transfer.ErrItemsAreRequired
	}
	if err := errors.Join(
		validateActor(actor),
		orderType.Validate(),
		fromBranchID.Validate(),
		toBranchID.Validate(),
		itemsErr,
	); err != nil {
		return CreateTransferOrderCommand{}, err
	}

	for _, it := range items {
		if orderType.IsSerialized() && strings.TrimSpace(it.Serial) == "" {
			return CreateTransferOrderCommand{}, errs.NewValueIsRequiredError("serial")
		}
		if !orderType.IsSerialized() && it.PartID == nil {
			return CreateTransferOrderCommand{}, errs.NewValueIsRequiredError("partID")
		}
	}

	return CreateTransferOrderCommand{
		actor:        actor,
		orderType:    orderType,
		fromBranchID: fromBranchID,
		toBranchID:   toBranchID,
		items:        items,
		notes:        notes,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// Validate reports whether the command was built by its constructor.
func (c CreateTransferOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateTransferOrderCommandIsNotConstructed)
}

func (c CreateTransferOrderCommand) Actor() kernel.Actor        { return c.actor }
func (c CreateTransferOrderCommand) Type() transfer.Type        { return c.orderType }
func (c CreateTransferOrderCommand) FromBranchID() kernel.UUID  { return c.fromBranchID }
func (c CreateTransferOrderCommand) ToBranchID() kernel.UUID    { return c.toBranchID }
func (c CreateTransferOrderCommand) Items() []TransferItemInput { return c.items }
func (c CreateTransferOrderCommand) Notes() string              { return c.notes }
