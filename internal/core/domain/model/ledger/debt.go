package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/pkg/errs"
	"maintenance/internal/pkg/guard"
)

var (
	ErrDebtIsNotConstructed = errors.New("Debt must be created via OpenDebt or RestoreDebt")
	ErrReceiptIsRequired    = errs.NewValueIsRequiredError("receiptNumber")
)

// Status of a debt. A debt is paid in full or not at all.
type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusPaid           Status = "PAID"
)

// ParseStatus converts a stored value back to a Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPendingPayment, StatusPaid:
		return st, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("debt status", fmt.Errorf("%q is not a debt status", s))
	}
}

func (s Status) String() string {
	return string(s)
}

// Debt is money the debtor branch owes the creditor branch for one repair.
type Debt struct {
	id               kernel.UUID
	debtorBranchID   kernel.UUID
	creditorBranchID kernel.UUID
	machineSerial    string
	assignmentID     *kernel.UUID
	amount           kernel.Money
	paidAmount       kernel.Money
	remainingAmount  kernel.Money
	status           Status
	receiptNumber    string
	paidBy           *kernel.UUID
	paidAt           *time.Time
	createdAt        time.Time
	guard            guard.ConstructorGuard
}

// OpenDebt creates a PENDING_PAYMENT debt. The amount is rounded by
// kernel.RoundMoney through kernel.Money and must be positive.
func OpenDebt(
	id, debtorBranchID, creditorBranchID kernel.UUID,
	amount kernel.Money,
	machineSerial string,
	assignmentID *kernel.UUID,
	at time.Time,
) (*Debt, error) {
	if err := errors.Join(id.Validate(), debtorBranchID.Validate(), creditorBranchID.Validate()); err != nil {
		return nil, err
	}
	if debtorBranchID.IsEqual(creditorBranchID) {
		return nil, errs.NewValueIsInvalidErrorWithCause("creditorBranchID", errors.New("a branch cannot owe itself"))
	}
	if !amount.IsPositive() {
		return nil, errs.NewValueIsOutOfRangeError("amount", amount.String(), "0.01", "unbounded")
	}

	return &Debt{
		id:               id,
		debtorBranchID:   debtorBranchID,
		creditorBranchID: creditorBranchID,
		machineSerial:    machineSerial,
		assignmentID:     assignmentID,
		amount:           amount,
		paidAmount:       kernel.ZeroMoney(),
		remainingAmount:  amount,
		status:           StatusPendingPayment,
		createdAt:        at,
		guard:            guard.NewConstructorGuard(),
	}, nil
}

// RestoreDebt rebuilds a debt from storage without checking business rules.
func RestoreDebt(
	id, debtorBranchID, creditorBranchID kernel.UUID,
	machineSerial string,
	assignmentID *kernel.UUID,
	amount, paidAmount, remainingAmount kernel.Money,
	status Status,
	receiptNumber string,
	paidBy *kernel.UUID,
	paidAt *time.Time,
	createdAt time.Time,
) (*Debt, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return &Debt{
		id:               id,
		debtorBranchID:   debtorBranchID,
		creditorBranchID: creditorBranchID,
		machineSerial:    machineSerial,
		assignmentID:     assignmentID,
		amount:           amount,
		paidAmount:       paidAmount,
		remainingAmount:  remainingAmount,
		status:           status,
		receiptNumber:    receiptNumber,
		paidBy:           paidBy,
		paidAt:           paidAt,
		createdAt:        createdAt,
		guard:            guard.NewConstructorGuard(),
	}, nil
}

func (d *Debt) Validate() error {
	if d == nil {
		return ErrDebtIsNotConstructed
	}
	return d.guard.Validate(ErrDebtIsNotConstructed)
}

func (d *Debt) ID() kernel.UUID               { return d.id }
func (d *Debt) DebtorBranchID() kernel.UUID   { return d.debtorBranchID }
func (d *Debt) CreditorBranchID() kernel.UUID { return d.creditorBranchID }
func (d *Debt) MachineSerial() string         { return d.machineSerial }
func (d *Debt) AssignmentID() *kernel.UUID    { return d.assignmentID }
func (d *Debt) Amount() kernel.Money          { return d.amount }
func (d *Debt) PaidAmount() kernel.Money      { return d.paidAmount }
func (d *Debt) RemainingAmount() kernel.Money { return d.remainingAmount }
func (d *Debt) Status() Status                { return d.status }
func (d *Debt) ReceiptNumber() string         { return d.receiptNumber }
func (d *Debt) PaidBy() *kernel.UUID          { return d.paidBy }
func (d *Debt) PaidAt() *time.Time            { return d.paidAt }
func (d *Debt) CreatedAt() time.Time          { return d.createdAt }

// IsSettled checks the paid invariant: amount == paid and nothing remains.
func (d *Debt) IsSettled() bool {
	return d.amount.Equal(d.paidAmount) && d.remainingAmount.IsZero()
}

// Pay settles the debt in full and returns the journal entry to record.
func (d *Debt) Pay(receiptNumber string, payerID, payerBranchID kernel.UUID, at time.Time) (*Payment, error) {
	receiptNumber = strings.TrimSpace(receiptNumber)
	if receiptNumber == "" {
		return nil, ErrReceiptIsRequired
	}
	if d.status != StatusPendingPayment {
		return nil, errs.NewConflictError("branch debt", fmt.Sprintf("debt is already %s", d.status))
	}
	if err := payerID.Validate(); err != nil {
		return nil, errs.NewValueIsRequiredErrorWithCause("payer", err)
	}

	payment, err := NewPayment(kernel.NewUUID(), d.id, receiptNumber, d.remainingAmount, payerID, payerBranchID, at)
	if err != nil {
		return nil, err
	}

	d.paidAmount = d.amount
	d.remainingAmount = kernel.ZeroMoney()
	d.status = StatusPaid
	d.receiptNumber = receiptNumber
	d.paidBy = &payerID
	d.paidAt = &at
	return payment, nil
}
