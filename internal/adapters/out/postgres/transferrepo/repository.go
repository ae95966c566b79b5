package transferrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maintenance/internal/adapters/out/postgres/dbutil"
	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/transfer"
	"maintenance/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormTransferOrderRepository implements ports.TransferOrderRepository using
// GORM.
type GormTransferOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormTransferOrderRepository creates a repository bound to db, usually a transaction.
func NewGormTransferOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormTransferOrderRepository {
	return &GormTransferOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts the order with its items. A serial already locked by another
// pending order of the same type is reported as a conflict.
func (r *GormTransferOrderRepository) Add(ctx context.Context, aggregate *transfer.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Omit("Items").Create(&dto).Error; err != nil {
		return dbutil.Translate("transfer order", err)
	}
	if err := r.db.WithContext(ctx).Create(&dto.Items).Error; err != nil {
		if dbutil.IsUniqueViolation(err) {
			return errs.NewConflictError("transfer order", "a serial is already in a pending order")
		}
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update swaps the order status and claims every item resolved since the
// order was loaded. An item claim only succeeds while the row is still
// PENDING, so a stale copy of a partially received order cannot resolve an
// item a second time even though the order status itself did not change.
func (r *GormTransferOrderRepository) Update(ctx context.Context, aggregate *transfer.Order, expected transfer.Status) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	err := dbutil.CompareAndSwap(ctx, r.db, dto.TableName(), dto.ID, expected.String(), map[string]any{
		"status":           dto.Status,
		"received_by":      dto.ReceivedBy,
		"received_at":      dto.ReceivedAt,
		"rejection_reason": dto.RejectionReason,
		"updated_at":       time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	for _, item := range aggregate.ResolvedItems() {
		result := r.db.WithContext(ctx).
			Model(&ItemDTO{}).
			Where("id = ? AND order_id = ? AND status = ?", item.ID().Bytes(), dto.ID, transfer.ItemPending.String()).
			Updates(map[string]any{
				"status":   item.Status().String(),
				"lock_key": nil,
			})
		if result.Error != nil {
			return dbutil.Translate("transfer order item", result.Error)
		}
		if result.RowsAffected != 1 {
			return errs.NewConflictError("transfer order item",
				fmt.Sprintf("item %s of order %s was already resolved", item.ID(), aggregate.Number()))
		}
	}

	if aggregate.IsPending() {
		if err = r.ensurePendingItems(ctx, aggregate); err != nil {
			return err
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// ensurePendingItems rejects a copy that still counts items as pending which
// another writer already resolved. Items only ever leave PENDING, so equal
// counts mean equal sets.
func (r *GormTransferOrderRepository) ensurePendingItems(ctx context.Context, aggregate *transfer.Order) error {
	want := 0
	for _, it := range aggregate.Items() {
		if it.IsPending() {
			want++
		}
	}

	var stored int64
	err := r.db.WithContext(ctx).
		Model(&ItemDTO{}).
		Where("order_id = ? AND status = ?", aggregate.ID().Bytes(), transfer.ItemPending.String()).
		Count(&stored).Error
	if err != nil {
		return err
	}
	if int(stored) != want {
		return errs.NewConflictError("transfer order",
			fmt.Sprintf("order %s was received concurrently", aggregate.Number()))
	}
	return nil
}

// Get loads the order with its items in position order.
func (r *GormTransferOrderRepository) Get(ctx context.Context, id kernel.UUID) (*transfer.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("transfer order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormTransferOrderRepository) LockedSerials(ctx context.Context, orderType transfer.Type, serials []string) ([]string, error) {
	if len(serials) == 0 {
		return nil, nil
	}

	locked := make([]string, 0)
	err := r.db.WithContext(ctx).
		Table("transfer_order_items AS i").
		Joins("JOIN transfer_orders AS o ON o.id = i.order_id").
		Where("o.status = ? AND o.type = ? AND i.status = ? AND i.serial IN ?",
			transfer.StatusPending.String(), orderType.String(), transfer.ItemPending.String(), serials).
		Pluck("i.serial", &locked).Error
	if err != nil {
		return nil, err
	}
	return locked, nil
}

func (r *GormTransferOrderRepository) ReservedQuantity(ctx context.Context, partID, branchID kernel.UUID) (int, error) {
	var reserved int64
	err := r.db.WithContext(ctx).
		Table("transfer_order_items AS i").
		Joins("JOIN transfer_orders AS o ON o.id = i.order_id").
		Where("o.status = ? AND o.from_branch_id = ? AND i.status = ? AND i.part_id = ?",
			transfer.StatusPending.String(), branchID.Bytes(), transfer.ItemPending.String(), partID.Bytes()).
		Select("COALESCE(SUM(i.quantity), 0)").
		Row().Scan(&reserved)
	if err != nil {
		return 0, err
	}
	return int(reserved), nil
}
