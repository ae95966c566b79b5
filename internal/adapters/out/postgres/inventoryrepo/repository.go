package inventoryrepo

import (
	"context"
	"errors"
	"time"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInventoryRepository implements ports.InventoryRepository using GORM.
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a repository bound to db, usually a transaction.
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

func (r *GormInventoryRepository) SimBranch(ctx context.Context, serial string) (kernel.UUID, error) {
	var dto SimCardDTO
	if err := r.db.WithContext(ctx).First(&dto, "serial = ?", serial).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return kernel.UUID{}, errs.NewObjectNotFoundError("sim card", serial)
		}
		return kernel.UUID{}, err
	}
	return kernel.UUIDFromGoogle(dto.BranchID)
}

// MoveSim reassigns a SIM card still owned by from.
func (r *GormInventoryRepository) MoveSim(ctx context.Context, serial string, from, to kernel.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&SimCardDTO{}).
		Where("serial = ? AND branch_id = ?", serial, from.Bytes()).
		Updates(map[string]any{"branch_id": to.Bytes(), "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewConflictError("sim card", serial+" is not held by the source branch")
	}
	return nil
}

// PartStock returns the quantity on hand, zero when no stock row exists.
func (r *GormInventoryRepository) PartStock(ctx context.Context, partID, branchID kernel.UUID) (int, error) {
	var dto PartStockDTO
	err := r.db.WithContext(ctx).First(&dto, "part_id = ? AND branch_id = ?", partID.Bytes(), branchID.Bytes()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return dto.Quantity, nil
}

// TakePartStock decrements in one guarded statement, so stock never goes
// negative under concurrent takes.
func (r *GormInventoryRepository) TakePartStock(ctx context.Context, partID, branchID kernel.UUID, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, errs.NewValueIsOutOfRangeError("quantity", quantity, 1, "unbounded")
	}

	result := r.db.WithContext(ctx).
		Model(&PartStockDTO{}).
		Where("part_id = ? AND branch_id = ? AND quantity >= ?", partID.Bytes(), branchID.Bytes(), quantity).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity - ?", quantity),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// AddPartStock upserts the stock row of the branch and adds quantity.
func (r *GormInventoryRepository) AddPartStock(ctx context.Context, partID, branchID kernel.UUID, quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsOutOfRangeError("quantity", quantity, 1, "unbounded")
	}

	dto := PartStockDTO{
		PartID:    partID.Bytes(),
		BranchID:  branchID.Bytes(),
		Quantity:  quantity,
		UpdatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "part_id"}, {Name: "branch_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("part_stocks.quantity + excluded.quantity"),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).
		Create(&dto).Error
}
