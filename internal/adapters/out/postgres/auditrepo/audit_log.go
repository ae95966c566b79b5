// Package auditrepo writes the audit trail.
package auditrepo

import (
	"context"
	"time"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntryDTO is one audit_logs row. Details are stored as JSON.
type EntryDTO struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey"`
	EntityType string         `gorm:"type:varchar(32);not null;index:idx_audit_entity"`
	EntityID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_audit_entity"`
	Action     string         `gorm:"type:varchar(32);not null"`
	Details    map[string]any `gorm:"type:text;serializer:json"`
	ActorID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	BranchID   *uuid.UUID     `gorm:"type:uuid;index"`
	CreatedAt  time.Time      `gorm:"index"`
}

func (EntryDTO) TableName() string {
	return "audit_logs"
}

// GormAuditLog implements ports.AuditLog on the caller's transaction.
type GormAuditLog struct {
	db *gorm.DB
}

// NewGormAuditLog writes through db, usually the caller's transaction.
func NewGormAuditLog(db *gorm.DB) *GormAuditLog {
	return &GormAuditLog{db: db}
}

func (l *GormAuditLog) LogAction(ctx context.Context, entry ports.AuditEntry) error {
	at := entry.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	dto := EntryDTO{
		ID:         kernel.NewUUID().Bytes(),
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID.Bytes(),
		Action:     entry.Action,
		Details:    entry.Details,
		ActorID:    entry.ActorID.Bytes(),
		BranchID:   kernel.RawOptional(entry.BranchID),
		CreatedAt:  at,
	}
	return l.db.WithContext(ctx).Create(&dto).Error
}
