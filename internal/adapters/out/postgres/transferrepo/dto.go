// Package transferrepo persists transfer orders and their items.
package transferrepo

import (
	"time"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/transfer"

	"github.com/google/uuid"
)

type OrderDTO struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Number          string     `gorm:"type:varchar(32);not null;uniqueIndex"`
	Type            string     `gorm:"column:type;type:varchar(16);not null;index"`
	FromBranchID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	ToBranchID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Status          string     `gorm:"type:varchar(16);not null;index"`
	Notes           string     `gorm:"type:text"`
	CreatedBy       uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt       time.Time  `gorm:"index"`
	ReceivedBy      *uuid.UUID `gorm:"type:uuid"`
	ReceivedAt      *time.Time
	RejectionReason string `gorm:"type:text"`
	UpdatedAt       time.Time
	Items           []ItemDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderDTO) TableName() string {
	return "transfer_orders"
}

// ItemDTO is one order line. LockKey is set while a serialized line is
// pending in a pending order; its unique index keeps a serial out of two open
// orders of the same type.
type ItemDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	Position    int        `gorm:"not null"`
	Serial      string     `gorm:"type:varchar(64);index"`
	PartID      *uuid.UUID `gorm:"type:uuid;index"`
	Description string     `gorm:"type:text"`
	Quantity    int        `gorm:"not null"`
	Status      string     `gorm:"type:varchar(16);not null"`
	LockKey     *string    `gorm:"type:varchar(96);uniqueIndex"`
}

func (ItemDTO) TableName() string {
	return "transfer_order_items"
}

func lockKey(o *transfer.Order, it *transfer.Item) *string {
	if !o.IsPending() || !it.IsPending() || !o.Type().IsSerialized() {
		return nil
	}
	key := o.Type().String() + ":" + it.Serial()
	return &key
}

func fromDomain(o *transfer.Order) OrderDTO {
	orderID := o.ID().Bytes()
	items := make([]ItemDTO, 0, len(o.Items()))
	for i, it := range o.Items() {
		items = append(items, ItemDTO{
			ID:          it.ID().Bytes(),
			OrderID:     orderID,
			Position:    i,
			Serial:      it.Serial(),
			PartID:      kernel.RawOptional(it.PartID()),
			Description: it.Description(),
			Quantity:    it.Quantity(),
			Status:      it.Status().String(),
			LockKey:     lockKey(o, it),
		})
	}

	return OrderDTO{
		ID:              orderID,
		Number:          o.Number(),
		Type:            o.Type().String(),
		FromBranchID:    o.FromBranchID().Bytes(),
		ToBranchID:      o.ToBranchID().Bytes(),
		Status:          o.Status().String(),
		Notes:           o.Notes(),
		CreatedBy:       o.CreatedBy().Bytes(),
		CreatedAt:       o.CreatedAt(),
		ReceivedBy:      kernel.RawOptional(o.ReceivedBy()),
		ReceivedAt:      o.ReceivedAt(),
		RejectionReason: o.RejectionReason(),
		Items:           items,
	}
}

func toDomain(dto OrderDTO) (*transfer.Order, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}
	orderType, err := transfer.ParseType(dto.Type)
	if err != nil {
		return nil, err
	}
	status, err := transfer.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	from, err := kernel.UUIDFromGoogle(dto.FromBranchID)
	if err != nil {
		return nil, err
	}
	to, err := kernel.UUIDFromGoogle(dto.ToBranchID)
	if err != nil {
		return nil, err
	}
	createdBy, err := kernel.UUIDFromGoogle(dto.CreatedBy)
	if err != nil {
		return nil, err
	}
	receivedBy, err := kernel.OptionalUUID(dto.ReceivedBy)
	if err != nil {
		return nil, err
	}

	items := make([]*transfer.Item, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		it, itemErr := itemToDomain(itemDTO)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, it)
	}

	return transfer.RestoreOrder(
		id, dto.Number, orderType, from, to, items, status, dto.Notes,
		createdBy, dto.CreatedAt, receivedBy, dto.ReceivedAt, dto.RejectionReason,
	)
}

func itemToDomain(dto ItemDTO) (*transfer.Item, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}
	partID, err := kernel.OptionalUUID(dto.PartID)
	if err != nil {
		return nil, err
	}
	status, err := transfer.ParseItemStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	return transfer.RestoreItem(id, dto.Serial, partID, dto.Description, dto.Quantity, status), nil
}
