package ledgerrepo

import (
	"context"
	"errors"
	"strings"

	"maintenance/internal/adapters/out/postgres/dbutil"
	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/ledger"
	"maintenance/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormDebtRepository implements ports.DebtRepository using GORM.
type GormDebtRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormDebtRepository creates a repository bound to db, usually a transaction.
func NewGormDebtRepository(db *gorm.DB, tracker aggregateTracker) *GormDebtRepository {
	return &GormDebtRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add opens a debt. An assignment can be billed once.
func (r *GormDebtRepository) Add(ctx context.Context, aggregate *ledger.Debt) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if dbutil.IsUniqueViolation(err) {
			return errs.NewConflictError("branch debt", "assignment is already billed")
		}
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update marks a debt paid under a status compare-and-swap.
func (r *GormDebtRepository) Update(ctx context.Context, aggregate *ledger.Debt, expected ledger.Status) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	err := dbutil.CompareAndSwap(ctx, r.db, dto.TableName(), dto.ID, expected.String(), map[string]any{
		"status":           dto.Status,
		"paid_amount":      dto.PaidAmount,
		"remaining_amount": dto.RemainingAmount,
		"receipt_number":   dto.ReceiptNumber,
		"paid_by":          dto.PaidBy,
		"paid_at":          dto.PaidAt,
	})
	if err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormDebtRepository) Get(ctx context.Context, id kernel.UUID) (*ledger.Debt, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto DebtDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("branch debt", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormDebtRepository) ReceiptExists(ctx context.Context, receiptNumber string) (bool, error) {
	receiptNumber = strings.TrimSpace(receiptNumber)
	if receiptNumber == "" {
		return false, ledger.ErrReceiptIsRequired
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&PaymentDTO{}).
		Where("receipt_number = ?", receiptNumber).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddPayment journals a payment. The unique index on receipt_number rejects a
// receipt used twice.
func (r *GormDebtRepository) AddPayment(ctx context.Context, p *ledger.Payment) error {
	if p == nil {
		return errs.NewValueIsRequiredError("payment")
	}

	dto := paymentFromDomain(p)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if dbutil.IsUniqueViolation(err) {
			return errs.NewConflictError("payment", "receipt number "+p.ReceiptNumber+" is already used")
		}
		return err
	}
	return nil
}
