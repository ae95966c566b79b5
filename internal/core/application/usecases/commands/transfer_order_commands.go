package commands

import (
	"errors"
	"strings"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/transfer"
	"maintenance/internal/pkg/guard"
)

var (
	ErrReceiveTransferOrderCommandIsNotConstructed = errors.New(
		"ReceiveTransferOrderCommand must be created via NewReceiveTransferOrderCommand constructor",
	)
	ErrRejectTransferOrderCommandIsNotConstructed = errors.New(
		"RejectTransferOrderCommand must be created via NewRejectTransferOrderCommand constructor",
	)
	ErrCancelTransferOrderCommandIsNotConstructed = errors.New(
		"CancelTransferOrderCommand must be created via NewCancelTransferOrderCommand constructor",
	)
)

// ReceiveTransferOrderCommand lists the decisions of the destination branch.
// No decisions means every pending item is accepted.
type ReceiveTransferOrderCommand struct {
	actor     kernel.Actor
	orderID   kernel.UUID
	decisions []transfer.Decision

	guard guard.ConstructorGuard
}

// NewReceiveTransferOrderCommand builds a receipt. An empty decision list
// accepts every pending item.
func NewReceiveTransferOrderCommand(actor kernel.Actor, orderID kernel.UUID, decisions []transfer.Decision) (ReceiveTransferOrderCommand, error) {
	if err := errors.Join(validateActor(actor), orderID.Validate()); err != nil {
		return ReceiveTransferOrderCommand{}, err
	}
	for _, d := range decisions {
		if err := d.ItemID.Validate(); err != nil {
			return ReceiveTransferOrderCommand{}, err
		}
	}
	return ReceiveTransferOrderCommand{
		actor:     actor,
		orderID:   orderID,
		decisions: decisions,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c ReceiveTransferOrderCommand) Validate() error {
	return c.guard.Validate(ErrReceiveTransferOrderCommandIsNotConstructed)
}

func (c ReceiveTransferOrderCommand) Actor() kernel.Actor            { return c.actor }
func (c ReceiveTransferOrderCommand) OrderID() kernel.UUID           { return c.orderID }
func (c ReceiveTransferOrderCommand) Decisions() []transfer.Decision { return c.decisions }

// RejectTransferOrderCommand refuses a whole order with a reason.
type RejectTransferOrderCommand struct {
	actor   kernel.Actor
	orderID kernel.UUID
	reason  string

	guard guard.ConstructorGuard
}

// NewRejectTransferOrderCommand trims the reason and requires it.
func NewRejectTransferOrderCommand(actor kernel.Actor, orderID kernel.UUID, reason string) (RejectTransferOrderCommand, error) {
	reason = strings.TrimSpace(reason)
	var reasonErr error
	if reason == "" {
		reasonErr = transfer.ErrReasonIsRequired
	}
	if err := errors.Join(validateActor(actor), orderID.Validate(), reasonErr); err != nil {
		return RejectTransferOrderCommand{}, err
	}
	return RejectTransferOrderCommand{
		actor:   actor,
		orderID: orderID,
		reason:  reason,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c RejectTransferOrderCommand) Validate() error {
	return c.guard.Validate(ErrRejectTransferOrderCommandIsNotConstructed)
}

func (c RejectTransferOrderCommand) Actor() kernel.Actor  { return c.actor }
func (c RejectTransferOrderCommand) OrderID() kernel.UUID { return c.orderID }
func (c RejectTransferOrderCommand) Reason() string       { return c.reason }

// CancelTransferOrderCommand withdraws an order on the source side.
type CancelTransferOrderCommand struct {
	actor   kernel.Actor
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewCancelTransferOrderCommand requires a valid actor and order id.
func NewCancelTransferOrderCommand(actor kernel.Actor, orderID kernel.UUID) (CancelTransferOrderCommand, error) {
	if err := errors.Join(validateActor(actor), orderID.Validate()); err != nil {
		return CancelTransferOrderCommand{}, err
	}
	return CancelTransferOrderCommand{actor: actor, orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c CancelTransferOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelTransferOrderCommandIsNotConstructed)
}

func (c CancelTransferOrderCommand) Actor() kernel.Actor  { return c.actor }
func (c CancelTransferOrderCommand) OrderID() kernel.UUID { return c.orderID }
