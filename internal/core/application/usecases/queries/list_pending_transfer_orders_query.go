package queries

import (
	"errors"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/transfer"
	"maintenance/internal/pkg/guard"
)

var ErrListPendingTransferOrdersQueryIsNotConstructed = errors.New(
	"ListPendingTransferOrdersQuery must be created via NewListPendingTransferOrdersQuery constructor",
)

// ListPendingTransferOrdersQuery lists PENDING orders leaving or entering the
// caller's branches.
//
// Example:
//
//	query, err := NewListPendingTransferOrdersQuery(actor, nil, &machineType)
//	if err != nil {
//	    return err
//	}
//	orders, err := NewListPendingTransferOrdersQueryHandler(db).Handle(ctx, query)
type ListPendingTransferOrdersQuery struct {
	actor    kernel.Actor
	branchID *kernel.UUID
	oType    *transfer.Type

	guard guard.ConstructorGuard
}

// NewListPendingTransferOrdersQuery narrows the list to one branch and one
// order type when they are given.
func NewListPendingTransferOrdersQuery(actor kernel.Actor, branchID *kernel.UUID, orderType *transfer.Type) (ListPendingTransferOrdersQuery, error) {
	if err := actor.Validate(); err != nil {
		return ListPendingTransferOrdersQuery{}, err
	}
	if orderType != nil {
		if err := orderType.Validate(); err != nil {
			return ListPendingTransferOrdersQuery{}, err
		}
	}
	return ListPendingTransferOrdersQuery{
		actor:    actor,
		branchID: branchID,
		oType:    orderType,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (q ListPendingTransferOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListPendingTransferOrdersQueryIsNotConstructed)
}
