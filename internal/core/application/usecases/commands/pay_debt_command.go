package commands

import (
	"errors"
	"strings"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/ledger"
	"maintenance/internal/pkg/guard"
)

var ErrPayDebtCommandIsNotConstructed = errors.New("PayDebtCommand must be created via NewPayDebtCommand constructor")

// PayDebtCommand settles a branch debt against a bank receipt number.
type PayDebtCommand struct {
	actor         kernel.Actor
	debtID        kernel.UUID
	receiptNumber string

	guard guard.ConstructorGuard
}

// NewPayDebtCommand trims the receipt number and requires it.
func NewPayDebtCommand(actor kernel.Actor, debtID kernel.UUID, receiptNumber string) (PayDebtCommand, error) {
	receiptNumber = strings.TrimSpace(receiptNumber)
	var receiptErr error
	if receiptNumber == "" {
		receiptErr = ledger.ErrReceiptIsRequired
	}
	if err := errors.Join(validateActor(actor), debtID.Validate(), receiptErr); err != nil {
		return PayDebtCommand{}, err
	}
	return PayDebtCommand{
		actor:         actor,
		debtID:        debtID,
		receiptNumber: receiptNumber,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (c PayDebtCommand) Validate() error {
	return c.guard.Validate(ErrPayDebtCommandIsNotConstructed)
}

func (c PayDebtCommand) Actor() kernel.Actor   { return c.actor }
func (c PayDebtCommand) DebtID() kernel.UUID   { return c.debtID }
func (c PayDebtCommand) ReceiptNumber() string { return c.receiptNumber }
