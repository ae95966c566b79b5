package ports

import (
	"context"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/ledger"
)

// DebtRepository stores branch debts and the payments that settle them.
type DebtRepository interface {
	// Add inserts a new debt.
	Add(ctx context.Context, d *ledger.Debt) error

	// Get returns the debt or an ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*ledger.Debt, error)

	// Update writes the debt only if the stored status still equals expected.
	Update(ctx context.Context, d *ledger.Debt, expected ledger.Status) error

	// ReceiptExists reports whether any payment already uses receiptNumber.
	ReceiptExists(ctx context.Context, receiptNumber string) (bool, error)

	// AddPayment appends a payment row. A second payment with the same receipt
	// number fails with a conflict.
	AddPayment(ctx context.Context, p *ledger.Payment) error
}
