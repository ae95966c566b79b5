package notificationrepo

import (
	"context"
	"time"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSubscriptionStore implements ports.SubscriptionStore.
type GormSubscriptionStore struct {
	db *gorm.DB
}

// NewGormSubscriptionStore creates a store on db.
func NewGormSubscriptionStore(db *gorm.DB) *GormSubscriptionStore {
	return &GormSubscriptionStore{db: db}
}

// Save registers the endpoint, replacing keys and owner of a known endpoint.
func (s *GormSubscriptionStore) Save(ctx context.Context, sub ports.PushSubscription) error {
	now := time.Now().UTC()
	dto := SubscriptionDTO{
		Endpoint:  sub.Endpoint,
		UserID:    sub.UserID.Bytes(),
		BranchID:  kernel.RawOptional(sub.BranchID),
		P256dh:    sub.P256dh,
		Auth:      sub.Auth,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "branch_id", "p256dh", "auth", "updated_at"}),
		}).
		Create(&dto).Error
}

func (s *GormSubscriptionStore) ForUser(ctx context.Context, userID kernel.UUID) ([]ports.PushSubscription, error) {
	return s.find(ctx, "user_id = ?", userID.Bytes())
}

func (s *GormSubscriptionStore) ForBranch(ctx context.Context, branchID kernel.UUID) ([]ports.PushSubscription, error) {
	return s.find(ctx, "branch_id = ?", branchID.Bytes())
}

// Delete forgets an endpoint the push service reported as gone.
func (s *GormSubscriptionStore) Delete(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&SubscriptionDTO{}, "endpoint = ?", endpoint).Error
}

func (s *GormSubscriptionStore) find(ctx context.Context, query string, args ...any) ([]ports.PushSubscription, error) {
	var dtos []SubscriptionDTO
	if err := s.db.WithContext(ctx).Where(query, args...).Find(&dtos).Error; err != nil {
		return nil, err
	}

	subs := make([]ports.PushSubscription, 0, len(dtos))
	for _, dto := range dtos {
		userID, err := kernel.UUIDFromGoogle(dto.UserID)
		if err != nil {
			return nil, err
		}
		branchID, err := kernel.OptionalUUID(dto.BranchID)
		if err != nil {
			return nil, err
		}
		subs = append(subs, ports.PushSubscription{
			UserID:   userID,
			BranchID: branchID,
			Endpoint: dto.Endpoint,
			P256dh:   dto.P256dh,
			Auth:     dto.Auth,
		})
	}
	return subs, nil
}
