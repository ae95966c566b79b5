// Package directoryrepo serves the reference data the workflow reads but
// never writes: branches and the spare part catalog.
package directoryrepo

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BranchDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Type      string    `gorm:"column:type;type:varchar(32);not null"`
	CreatedAt time.Time
}

func (BranchDTO) TableName() string {
	return "branches"
}

type SparePartDTO struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name      string          `gorm:"type:varchar(255);not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CreatedAt time.Time
}

func (SparePartDTO) TableName() string {
	return "spare_parts"
}
