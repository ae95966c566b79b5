package ledger

import (
	"time"

	"maintenance/internal/core/domain/model/kernel"
)

// Payment is one row of the payment journal.
type Payment struct {
	ID            kernel.UUID
	DebtID        kernel.UUID
	ReceiptNumber string
	Amount        kernel.Money
	PayerID       kernel.UUID
	BranchID      kernel.UUID
	CreatedAt     time.Time
}

// NewPayment requires a receipt number. Uniqueness is checked by storage.
func NewPayment(id, debtID kernel.UUID, receiptNumber string, amount kernel.Money, payerID, branchID kernel.UUID, at time.Time) (*Payment, error) {
	if receiptNumber == "" {
		return nil, ErrReceiptIsRequired
	}
	return &Payment{
		ID:            id,
		DebtID:        debtID,
		ReceiptNumber: receiptNumber,
		Amount:        amount,
		PayerID:       payerID,
		BranchID:      branchID,
		CreatedAt:     at,
	}, nil
}

// Scope selects which side of the ledger a summary looks at.
type Scope string

const (
	// ScopeOwedByBranch is what the caller's branches owe.
	ScopeOwedByBranch Scope = "OWED_BY_BRANCH"
	// ScopeOwedToCenter is what is owed to the caller's maintenance center.
	ScopeOwedToCenter Scope = "OWED_TO_CENTER"
)

// DefaultScope picks the scope matching the caller's branch type.
func DefaultScope(branchType kernel.BranchType) Scope {
	if branchType == kernel.BranchTypeMaintenanceCenter {
		return ScopeOwedToCenter
	}
	return ScopeOwedByBranch
}
