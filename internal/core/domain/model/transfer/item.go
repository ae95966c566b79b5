package transfer

import (
	"strings"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/pkg/errs"
)

// Item is one order line. Serialized types carry a serial, spare parts carry
// a part id and quantity.
type Item struct {
	id          kernel.UUID
	serial      string
	partID      *kernel.UUID
	description string
	quantity    int
	status      ItemStatus
	resolved    bool
}

// NewSerialItem snapshots a machine or SIM line.
func NewSerialItem(serial, description string) (*Item, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil, errs.NewValueIsRequiredError("serial")
	}
	return &Item{
		id:          kernel.NewUUID(),
		serial:      serial,
		description: description,
		quantity:    1,
		status:      ItemPending,
	}, nil
}

// NewPartItem snapshots a spare part line.
func NewPartItem(partID kernel.UUID, description string, quantity int) (*Item, error) {
	if err := partID.Validate(); err != nil {
		return nil, errs.NewValueIsRequiredErrorWithCause("partID", err)
	}
	if quantity <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("quantity", quantity, 1, "unbounded")
	}
	return &Item{
		id:          kernel.NewUUID(),
		partID:      &partID,
		description: description,
		quantity:    quantity,
		status:      ItemPending,
	}, nil
}

// RestoreItem rebuilds an item from storage. Restored items are not reported
// by Order.ResolvedItems until they are resolved again.
func RestoreItem(id kernel.UUID, serial string, partID *kernel.UUID, description string, quantity int, status ItemStatus) *Item {
	return &Item{
		id:          id,
		serial:      serial,
		partID:      partID,
		description: description,
		quantity:    quantity,
		status:      status,
	}
}

func (i *Item) ID() kernel.UUID {
	return i.id
}

func (i *Item) Serial() string {
	return i.serial
}

func (i *Item) PartID() *kernel.UUID {
	return i.partID
}

func (i *Item) Description() string {
	return i.description
}

func (i *Item) Quantity() int {
	return i.quantity
}

func (i *Item) Status() ItemStatus {
	return i.status
}

// IsPending reports whether the line still waits for the destination.
func (i *Item) IsPending() bool {
	return i.status == ItemPending
}

func (i *Item) resolve(status ItemStatus) {
	i.status = status
	i.resolved = true
}
