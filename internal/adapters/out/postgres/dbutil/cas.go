// Package dbutil holds the persistence helpers shared by the repositories:
// optimistic status updates and driver error classification.
package dbutil

import (
	"context"
	"fmt"

	"maintenance/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompareAndSwap applies updates to the row of table identified by id only
// while its status column still holds expected.
//
// A lost race is reported as a ConflictError, a missing row as an
// ObjectNotFoundError.
//
// Example:
//
//	err := dbutil.CompareAndSwap(ctx, tx, "machines", id, "IN_TRANSIT", map[string]any{
//	    "status":     "RECEIVED_AT_CENTER",
//	    "updated_at": now,
//	})
func CompareAndSwap(
	ctx context.Context,
	db *gorm.DB,
	table string,
	id uuid.UUID,
	expected string,
	updates map[string]any,
) error {
	result := db.WithContext(ctx).
		Table(table).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	return swapResult(ctx, db, table, id, result, fmt.Sprintf("%s is no longer %s", id, expected))
}

// CompareAndSwapVersion is CompareAndSwap for rows that can change without a
// status change. The row must also still carry version, which is incremented.
func CompareAndSwapVersion(
	ctx context.Context,
	db *gorm.DB,
	table string,
	id uuid.UUID,
	expected string,
	version int,
	updates map[string]any,
) error {
	updates["version"] = gorm.Expr("version + 1")
	result := db.WithContext(ctx).
		Table(table).
		Where("id = ? AND status = ? AND version = ?", id, expected, version).
		Updates(updates)
	return swapResult(ctx, db, table, id, result,
		fmt.Sprintf("%s is no longer %s at version %d", id, expected, version))
}

func swapResult(ctx context.Context, db *gorm.DB, table string, id uuid.UUID, result *gorm.DB, lost string) error {
	if result.Error != nil {
		return Translate(table, result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Table(table).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError(table, id.String())
	}
	return errs.NewConflictError(table, lost)
}
