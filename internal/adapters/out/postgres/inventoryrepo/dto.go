// Package inventoryrepo stores the non-machine inventory moved by transfer
// orders: SIM cards by serial and spare part stock per branch.
package inventoryrepo

import (
	"time"

	"github.com/google/uuid"
)

type SimCardDTO struct {
	Serial    string    `gorm:"type:varchar(64);primaryKey"`
	BranchID  uuid.UUID `gorm:"type:uuid;not null;index"`
	UpdatedAt time.Time
}

func (SimCardDTO) TableName() string {
	return "sim_cards"
}

type PartStockDTO struct {
	PartID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	BranchID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Quantity  int       `gorm:"not null;check:quantity >= 0"`
	UpdatedAt time.Time
}

func (PartStockDTO) TableName() string {
	return "part_stocks"
}
