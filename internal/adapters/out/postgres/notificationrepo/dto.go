// Package notificationrepo stores in-app notifications and the web push
// subscriptions used to deliver them to browsers.
package notificationrepo

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionDTO struct {
	Endpoint  string     `gorm:"type:text;primaryKey"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	BranchID  *uuid.UUID `gorm:"type:uuid;index"`
	P256dh    string     `gorm:"type:text;not null"`
	Auth      string     `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SubscriptionDTO) TableName() string {
	return "push_subscriptions"
}

type NotificationDTO struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BranchID  *uuid.UUID `gorm:"type:uuid;index"`
	UserID    *uuid.UUID `gorm:"type:uuid;index"`
	Type      string     `gorm:"column:type;type:varchar(64);not null"`
	Title     string     `gorm:"type:varchar(255);not null"`
	Message   string     `gorm:"type:text"`
	Link      string     `gorm:"type:text"`
	Read      bool       `gorm:"not null;default:false"`
	CreatedAt time.Time  `gorm:"index"`
}

func (NotificationDTO) TableName() string {
	return "notifications"
}
