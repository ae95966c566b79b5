package assignmentrepo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"maintenance/internal/adapters/out/postgres/dbutil"
	"maintenance/internal/core/domain/model/assignment"
	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAssignmentRepository implements ports.AssignmentRepository using GORM.
type GormAssignmentRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormAssignmentRepository creates a repository bound to db, usually a transaction.
func NewGormAssignmentRepository(db *gorm.DB, tracker aggregateTracker) *GormAssignmentRepository {
	return &GormAssignmentRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts the assignment and its initial log. A second open assignment for
// the same machine violates the active key and is reported as a conflict.
func (r *GormAssignmentRepository) Add(ctx context.Context, aggregate *assignment.Assignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if dbutil.IsUniqueViolation(err) {
			return errs.NewConflictError("service assignment", "machine already has an open assignment")
		}
		return err
	}
	if err := r.appendLogs(ctx, aggregate); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves a change made on the stored version of the assignment. Two
// writers that loaded the same version cannot both win, even when neither
// changes the status.
func (r *GormAssignmentRepository) Update(ctx context.Context, aggregate *assignment.Assignment, expected assignment.Status) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	parts, err := json.Marshal(dto.Parts)
	if err != nil {
		return err
	}
	err = dbutil.CompareAndSwapVersion(ctx, r.db, dto.TableName(), dto.ID, expected.String(), dto.Version, map[string]any{
		"status":              dto.Status,
		"parts":               string(parts),
		"total_cost":          dto.TotalCost,
		"approval_status":     dto.ApprovalStatus,
		"approved_cost":       dto.ApprovedCost,
		"approval_request_id": dto.ApprovalRequestID,
		"notes":               dto.Notes,
		"active_key":          dto.ActiveKey,
		"started_at":          dto.StartedAt,
		"completed_at":        dto.CompletedAt,
		"updated_at":          time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	aggregate.AdvanceVersion()
	if err = r.appendLogs(ctx, aggregate); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// appendLogs writes the whole log and skips rows already stored.
func (r *GormAssignmentRepository) appendLogs(ctx context.Context, aggregate *assignment.Assignment) error {
	logs := logsFromDomain(aggregate.Logs())
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&logs).Error
}

// Get loads the assignment with its stored version.
func (r *GormAssignmentRepository) Get(ctx context.Context, id kernel.UUID) (*assignment.Assignment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.first(ctx, id.String(), "id = ?", id.Bytes())
}

func (r *GormAssignmentRepository) FindActiveByMachine(ctx context.Context, machineID kernel.UUID) (*assignment.Assignment, error) {
	if err := machineID.Validate(); err != nil {
		return nil, err
	}
	return r.first(ctx, "active for machine "+machineID.String(), "active_key = ?", machineID.String())
}

func (r *GormAssignmentRepository) FindLatestCompletedByMachine(ctx context.Context, machineID kernel.UUID) (*assignment.Assignment, error) {
	if err := machineID.Validate(); err != nil {
		return nil, err
	}
	return r.first(ctx, "completed for machine "+machineID.String(),
		"machine_id = ? AND status = ?", machineID.Bytes(), assignment.StatusCompleted.String())
}

func (r *GormAssignmentRepository) first(ctx context.Context, what string, query string, args ...any) (*assignment.Assignment, error) {
	var dto AssignmentDTO
	err := r.db.WithContext(ctx).
		Where(query, args...).
		Order("completed_at DESC").
		Order("created_at DESC").
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("service assignment", what)
		}
		return nil, err
	}

	var logs []LogDTO
	err = r.db.WithContext(ctx).
		Where("assignment_id = ?", dto.ID).
		Order("created_at").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}

	return toDomain(dto, logs)
}
