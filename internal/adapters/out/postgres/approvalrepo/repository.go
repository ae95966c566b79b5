package approvalrepo

import (
	"context"
	"errors"
	"time"

	"maintenance/internal/adapters/out/postgres/dbutil"
	"maintenance/internal/core/domain/model/approval"
	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormApprovalRepository implements ports.ApprovalRepository using GORM.
type GormApprovalRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormApprovalRepository creates a repository bound to db, usually a transaction.
func NewGormApprovalRepository(db *gorm.DB, tracker aggregateTracker) *GormApprovalRepository {
	return &GormApprovalRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormApprovalRepository) Add(ctx context.Context, aggregate *approval.Request) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if dbutil.IsUniqueViolation(err) {
			return errs.NewConflictError("approval request", "a pending request already exists for "+dto.SubjectKey)
		}
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update applies a decision or a reminder under a status compare-and-swap.
func (r *GormApprovalRepository) Update(ctx context.Context, aggregate *approval.Request, expected approval.Status) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	err := dbutil.CompareAndSwap(ctx, r.db, dto.TableName(), dto.ID, expected.String(), map[string]any{
		"status":           dto.Status,
		"responded_by":     dto.RespondedBy,
		"responded_at":     dto.RespondedAt,
		"rejection_reason": dto.RejectionReason,
		"last_reminded_at": dto.LastRemindedAt,
		"active_key":       dto.ActiveKey,
	})
	if err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get loads the request with its batch items.
func (r *GormApprovalRepository) Get(ctx context.Context, id kernel.UUID) (*approval.Request, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto RequestDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("approval request", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormApprovalRepository) HasPending(ctx context.Context, subjectKey string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&RequestDTO{}).
		Where("active_key = ?", subjectKey).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormApprovalRepository) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*approval.Request, error) {
	var dtos []RequestDTO
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", approval.StatusPending.String(), cutoff).
		Where("(last_reminded_at IS NULL OR last_reminded_at < ?)", cutoff).
		Order("created_at").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	requests := make([]*approval.Request, 0, len(dtos))
	for _, dto := range dtos {
		req, convErr := toDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		requests = append(requests, req)
	}
	return requests, nil
}
