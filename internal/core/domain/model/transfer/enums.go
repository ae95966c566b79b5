package transfer

import (
	"fmt"

	"maintenance/internal/pkg/errs"
)

// Type is the kind of inventory an order moves.
type Type string

const (
	TypeMachine   Type = "MACHINE"
	TypeSim       Type = "SIM"
	TypeSparePart Type = "SPARE_PART"
)

// ParseType converts a stored or requested value to a Type.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

func (t Type) Validate() error {
	switch t {
	case TypeMachine, TypeSim, TypeSparePart:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("transfer type", fmt.Errorf("%q is not a transfer type", string(t)))
	}
}

// IsSerialized reports whether items of this type are tracked by serial.
func (t Type) IsSerialized() bool {
	return t == TypeMachine || t == TypeSim
}

func (t Type) String() string {
	return string(t)
}

// Status is the order lifecycle: PENDING -> COMPLETED | REJECTED | CANCELLED.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus converts a stored value back to a Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusCompleted, StatusRejected, StatusCancelled:
		return st, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("transfer status", fmt.Errorf("%q is not a transfer status", s))
	}
}

func (s Status) String() string {
	return string(s)
}

// ItemStatus is the outcome of one order line. Lines start PENDING.
type ItemStatus string

const (
	ItemPending  ItemStatus = "PENDING"
	ItemAccepted ItemStatus = "ACCEPTED"
	ItemRejected ItemStatus = "REJECTED"
)

func ParseItemStatus(s string) (ItemStatus, error) {
	switch st := ItemStatus(s); st {
	case ItemPending, ItemAccepted, ItemRejected:
		return st, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("item status", fmt.Errorf("%q is not an item status", s))
	}
}

func (s ItemStatus) String() string {
	return string(s)
}
