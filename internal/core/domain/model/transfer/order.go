package transfer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/pkg/errs"
	"maintenance/internal/pkg/guard"
)

var (
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")
	ErrItemsAreRequired      = errs.NewValueIsRequiredError("items")
	ErrReasonIsRequired      = errs.NewValueIsRequiredError("reason")
	ErrSameBranch            = errs.NewValueIsInvalidErrorWithCause("toBranchID", errors.New("source and destination must differ"))
)

// Decision resolves one pending item during receipt.
type Decision struct {
	ItemID kernel.UUID
	Accept bool
}

// Order is a transfer order aggregate.
type Order struct {
	id              kernel.UUID
	number          string
	orderType       Type
	fromBranchID    kernel.UUID
	toBranchID      kernel.UUID
	items           []*Item
	status          Status
	notes           string
	createdBy       kernel.UUID
	createdAt       time.Time
	receivedBy      *kernel.UUID
	receivedAt      *time.Time
	rejectionReason string
	guard           guard.ConstructorGuard
}

// NewOrderNumber formats a human readable order number from the creation
// date and the order id.
func NewOrderNumber(id kernel.UUID, at time.Time) string {
	raw := id.Bytes()
	return fmt.Sprintf("TO-%s-%x", at.UTC().Format("20060102"), raw[:4])
}

// NewOrder creates a PENDING order. Duplicate serials within one order are
// rejected.
func NewOrder(
	id kernel.UUID,
	orderType Type,
	fromBranchID, toBranchID kernel.UUID,
	items []*Item,
	notes string,
	createdBy kernel.UUID,
	at time.Time,
) (*Order, error) {
	o := &Order{
		status:    StatusPending,
		notes:     strings.TrimSpace(notes),
		createdAt: at,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		id.Validate(),
		orderType.Validate(),
		fromBranchID.Validate(),
		toBranchID.Validate(),
		createdBy.Validate(),
		validateItems(orderType, items),
	); err != nil {
		return nil, err
	}
	if fromBranchID.IsEqual(toBranchID) {
		return nil, ErrSameBranch
	}

	o.id = id
	o.number = NewOrderNumber(id, at)
	o.orderType = orderType
	o.fromBranchID = fromBranchID
	o.toBranchID = toBranchID
	o.items = items
	o.createdBy = createdBy
	return o, nil
}

// RestoreOrder rebuilds an order with its items from storage.
func RestoreOrder(
	id kernel.UUID,
	number string,
	orderType Type,
	fromBranchID, toBranchID kernel.UUID,
	items []*Item,
	status Status,
	notes string,
	createdBy kernel.UUID,
	createdAt time.Time,
	receivedBy *kernel.UUID,
	receivedAt *time.Time,
	rejectionReason string,
) (*Order, error) {
	if err := errors.Join(id.Validate(), orderType.Validate(), fromBranchID.Validate(), toBranchID.Validate()); err != nil {
		return nil, err
	}
	return &Order{
		id:              id,
		number:          number,
		orderType:       orderType,
		fromBranchID:    fromBranchID,
		toBranchID:      toBranchID,
		items:           items,
		status:          status,
		notes:           notes,
		createdBy:       createdBy,
		createdAt:       createdAt,
		receivedBy:      receivedBy,
		receivedAt:      receivedAt,
		rejectionReason: rejectionReason,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

func validateItems(orderType Type, items []*Item) error {
	if len(items) == 0 {
		return ErrItemsAreRequired
	}
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it == nil {
			return ErrItemsAreRequired
		}
		if orderType.IsSerialized() {
			if it.serial == "" {
				return errs.NewValueIsRequiredError("serial")
			}
			if _, dup := seen[it.serial]; dup {
				return errs.NewValueIsInvalidErrorWithCause("items", fmt.Errorf("serial %s is listed twice", it.serial))
			}
			seen[it.serial] = struct{}{}
			continue
		}
		if it.partID == nil {
			return errs.NewValueIsRequiredError("partID")
		}
	}
	return nil
}

func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

func (o *Order) ID() kernel.UUID           { return o.id }
func (o *Order) Number() string            { return o.number }
func (o *Order) Type() Type                { return o.orderType }
func (o *Order) FromBranchID() kernel.UUID { return o.fromBranchID }
func (o *Order) ToBranchID() kernel.UUID   { return o.toBranchID }
func (o *Order) Items() []*Item            { return o.items }
func (o *Order) Status() Status            { return o.status }
func (o *Order) Notes() string             { return o.notes }
func (o *Order) CreatedBy() kernel.UUID    { return o.createdBy }
func (o *Order) CreatedAt() time.Time      { return o.createdAt }
func (o *Order) ReceivedBy() *kernel.UUID  { return o.receivedBy }
func (o *Order) ReceivedAt() *time.Time    { return o.receivedAt }
func (o *Order) RejectionReason() string   { return o.rejectionReason }
func (o *Order) IsPending() bool           { return o.status == StatusPending }

// HasAcceptedItems reports whether any item already moved to the destination.
func (o *Order) HasAcceptedItems() bool {
	for _, it := range o.items {
		if it.status == ItemAccepted {
			return true
		}
	}
	return false
}

// Receive resolves pending items. An empty decision list accepts every
// pending item; otherwise only the listed items are resolved and the rest stay
// pending. The returned slice holds the items accepted by this call.
func (o *Order) Receive(decisions []Decision, actorID kernel.UUID, at time.Time) ([]*Item, error) {
	if err := o.ensurePending("receive"); err != nil {
		return nil, err
	}

	if len(decisions) == 0 {
		decisions = make([]Decision, 0, len(o.items))
		for _, it := range o.items {
			if it.IsPending() {
				decisions = append(decisions, Decision{ItemID: it.id, Accept: true})
			}
		}
	}

	resolved := make(map[kernel.UUID]bool, len(decisions))
	for _, d := range decisions {
		it := o.item(d.ItemID)
		if it == nil {
			return nil, errs.NewObjectNotFoundError("transfer order item", d.ItemID.String())
		}
		if !it.IsPending() {
			return nil, errs.NewConflictError("transfer order item", fmt.Sprintf("item %s is already %s", it.id, it.status))
		}
		if _, dup := resolved[d.ItemID]; dup {
			return nil, errs.NewValueIsInvalidErrorWithCause("items", fmt.Errorf("item %s is listed twice", d.ItemID))
		}
		resolved[d.ItemID] = d.Accept
	}

	accepted := make([]*Item, 0, len(resolved))
	for _, it := range o.items {
		accept, ok := resolved[it.id]
		if !ok {
			continue
		}
		if accept {
			it.resolve(ItemAccepted)
			accepted = append(accepted, it)
		} else {
			it.resolve(ItemRejected)
		}
	}

	o.receivedBy = &actorID
	o.receivedAt = &at
	if o.pendingCount() == 0 {
		o.status = StatusCompleted
	}

	return accepted, nil
}

// Reject refuses the whole order. Nothing may have been accepted yet.
func (o *Order) Reject(reason string, actorID kernel.UUID, at time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonIsRequired
	}
	if err := o.ensureUntouched("reject"); err != nil {
		return err
	}

	for _, it := range o.items {
		it.resolve(ItemRejected)
	}
	o.status = StatusRejected
	o.rejectionReason = reason
	o.receivedBy = &actorID
	o.receivedAt = &at
	return nil
}

// Cancel withdraws the order on the source side.
func (o *Order) Cancel() error {
	if err := o.ensureUntouched("cancel"); err != nil {
		return err
	}
	for _, it := range o.items {
		it.resolve(ItemRejected)
	}
	o.status = StatusCancelled
	return nil
}

func (o *Order) ensurePending(action string) error {
	if o.status != StatusPending {
		return errs.NewConflictError("transfer order", fmt.Sprintf("cannot %s an order in %s status", action, o.status))
	}
	return nil
}

func (o *Order) ensureUntouched(action string) error {
	if err := o.ensurePending(action); err != nil {
		return err
	}
	if o.HasAcceptedItems() {
		return errs.NewConflictError("transfer order", fmt.Sprintf("cannot %s a partially received order", action))
	}
	return nil
}

// ResolvedItems returns the items that left PENDING since the order was
// created or restored. Persistence claims exactly these rows.
func (o *Order) ResolvedItems() []*Item {
	resolved := make([]*Item, 0, len(o.items))
	for _, it := range o.items {
		if it.resolved {
			resolved = append(resolved, it)
		}
	}
	return resolved
}

func (o *Order) item(id kernel.UUID) *Item {
	for _, it := range o.items {
		if it.id.IsEqual(id) {
			return it
		}
	}
	return nil
}

func (o *Order) pendingCount() int {
	n := 0
	for _, it := range o.items {
		if it.IsPending() {
			n++
		}
	}
	return n
}
