package commands

import (
	"context"
	"fmt"

	"maintenance/internal/core/domain/model/ledger"
	"maintenance/internal/core/ports"
	"maintenance/internal/pkg/errs"
)

// PayDebtCommandHandler marks a debt PAID and writes the payment journal row.
// A receipt number can settle one debt only.
type PayDebtCommandHandler struct {
	uowFactory LedgerUoWFactory
	notifier   ports.Notifier
}

// NewPayDebtCommandHandler creates the handler.
func NewPayDebtCommandHandler(uowFactory LedgerUoWFactory, notifier ports.Notifier) PayDebtCommandHandler {
	return PayDebtCommandHandler{uowFactory: uowFactory, notifier: notifier}
}

// Handle settles a pending debt in full against a receipt number that has
// never been used before.
func (h PayDebtCommandHandler) Handle(ctx context.Context, cmd PayDebtCommand) (*ledger.Debt, error) {
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

	debts := uow.DebtRepository()
	debt, err := debts.Get(ctx, cmd.DebtID())
	if err != nil {
		return nil, err
	}
	if err = requireBranch(cmd.Actor(), debt.DebtorBranchID(), "pay debt"); err != nil {
		return nil, err
	}

	used, err := debts.ReceiptExists(ctx, cmd.ReceiptNumber())
	if err != nil {
		return nil, err
	}
	if used {
		return nil, errs.NewConflictError("payment", fmt.Sprintf("receipt %s is already recorded", cmd.ReceiptNumber()))
	}

	at := now()
	payment, err := debt.Pay(cmd.ReceiptNumber(), cmd.Actor().ID(), debt.DebtorBranchID(), at)
	if err != nil {
		return nil, err
	}
	if err = debts.Update(ctx, debt, ledger.StatusPendingPayment); err != nil {
		return nil, err
	}
	if err = debts.AddPayment(ctx, payment); err != nil {
		return nil, err
	}

	if err = uow.AuditLog().LogAction(ctx, ports.AuditEntry{
		EntityType: auditDebt,
		EntityID:   debt.ID(),
		Action:     "PAY",
		Details:    map[string]any{"receipt": payment.ReceiptNumber, "amount": payment.Amount.String()},
		ActorID:    cmd.Actor().ID(),
		BranchID:   branchRef(debt.DebtorBranchID()),
		At:         at,
	}); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.notifier.Notify(ctx, ports.Notification{
		BranchID: branchRef(debt.CreditorBranchID()),
		Type:     NotifyDebtPaid,
		Title:    "Repair payment received",
		Message:  fmt.Sprintf("%s paid for machine %s, receipt %s", payment.Amount, debt.MachineSerial(), payment.ReceiptNumber),
		Link:     "/pending-payments/" + debt.ID().String(),
	})

	return debt, nil
}
