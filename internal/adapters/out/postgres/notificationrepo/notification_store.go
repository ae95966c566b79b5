package notificationrepo

import (
	"context"
	"time"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/ports"

	"gorm.io/gorm"
)

// GormNotificationStore keeps the in-app notification inbox.
type GormNotificationStore struct {
	db *gorm.DB
}

// NewGormNotificationStore creates the in-app inbox on db.
func NewGormNotificationStore(db *gorm.DB) *GormNotificationStore {
	return &GormNotificationStore{db: db}
}

func (s *GormNotificationStore) Save(ctx context.Context, n ports.Notification) error {
	dto := NotificationDTO{
		ID:        kernel.NewUUID().Bytes(),
		BranchID:  kernel.RawOptional(n.BranchID),
		UserID:    kernel.RawOptional(n.UserID),
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		CreatedAt: time.Now().UTC(),
	}
	return s.db.WithContext(ctx).Create(&dto).Error
}
