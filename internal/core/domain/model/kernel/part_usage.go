package kernel

import (
	"errors"
	"strings"

	"maintenance/internal/pkg/errs"
)

// PartUsage is a spare part line snapshotted from the catalog at the time it
// was recorded. Later catalog edits do not change it.
type PartUsage struct {
	PartID    UUID
	Name      string
	Quantity  int
	UnitPrice Money
}

// NewPartUsage trims the name and validates the line.
func NewPartUsage(partID UUID, name string, quantity int, unitPrice Money) (PartUsage, error) {
	p := PartUsage{PartID: partID, Name: strings.TrimSpace(name), Quantity: quantity, UnitPrice: unitPrice}
	if err := p.Validate(); err != nil {
		return PartUsage{}, err
	}
	return p, nil
}

func (p PartUsage) Validate() error {
	var nameErr, qtyErr error
	if p.Name == "" {
		nameErr = errs.NewValueIsRequiredError("part name")
	}
	if p.Quantity <= 0 {
		qtyErr = errs.NewValueIsOutOfRangeError("quantity", p.Quantity, 1, "unbounded")
	}
	return errors.Join(p.PartID.Validate(), nameErr, qtyErr)
}

// Total is the unit price times the quantity.
func (p PartUsage) Total() Money {
	return p.UnitPrice.Times(p.Quantity)
}

// TotalOf sums the line totals.
func TotalOf(parts []PartUsage) Money {
	total := ZeroMoney()
	for _, p := range parts {
		total = total.Add(p.Total())
	}
	return total
}
