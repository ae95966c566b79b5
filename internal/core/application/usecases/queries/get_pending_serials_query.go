package queries

import (
	"context"
	"errors"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/transfer"
	"maintenance/internal/pkg/guard"

	"gorm.io/gorm"
)

var ErrGetPendingSerialsQueryIsNotConstructed = errors.New(
	"GetPendingSerialsQuery must be created via NewGetPendingSerialsQuery constructor",
)

// GetPendingSerialsQuery returns the serials locked by pending order lines,
// so clients can hide them from new orders.
type GetPendingSerialsQuery struct {
	actor    kernel.Actor
	branchID *kernel.UUID
	oType    transfer.Type

	guard guard.ConstructorGuard
}

// NewGetPendingSerialsQuery validates the order type. A nil branchID covers
// every branch the actor may see.
func NewGetPendingSerialsQuery(actor kernel.Actor, branchID *kernel.UUID, orderType transfer.Type) (GetPendingSerialsQuery, error) {
	if err := errors.Join(actor.Validate(), orderType.Validate()); err != nil {
		return GetPendingSerialsQuery{}, err
	}
	return GetPendingSerialsQuery{actor: actor, branchID: branchID, oType: orderType, guard: guard.NewConstructorGuard()}, nil
}

func (q GetPendingSerialsQuery) Validate() error {
	return q.guard.Validate(ErrGetPendingSerialsQueryIsNotConstructed)
}

// GetPendingSerialsQueryHandler reads the serial lock column of order items.
type GetPendingSerialsQueryHandler struct {
	db *gorm.DB
}

// NewGetPendingSerialsQueryHandler creates the handler.
func NewGetPendingSerialsQueryHandler(db *gorm.DB) GetPendingSerialsQueryHandler {
	return GetPendingSerialsQueryHandler{db: db}
}

// Handle returns the locked serials sorted and without duplicates.
func (h GetPendingSerialsQueryHandler) Handle(ctx context.Context, query GetPendingSerialsQuery) ([]string, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if !query.oType.IsSerialized() {
		return []string{}, nil
	}

	scope, scopeArgs, err := branchCondition(query.actor, query.branchID, "o.from_branch_id", "o.to_branch_id")
	if err != nil {
		return nil, err
	}
	args := append([]any{transfer.StatusPending.String(), transfer.ItemPending.String(), query.oType.String()}, scopeArgs...)

	serials := make([]string, 0)
	err = h.db.WithContext(ctx).Raw(`
		SELECT DISTINCT i.serial
		FROM transfer_order_items i
		JOIN transfer_orders o ON o.id = i.order_id
		`+where("o.status = ?", "i.status = ?", "o.type = ?", scope)+`
		ORDER BY i.serial
	`, args...).Scan(&serials).Error
	if err != nil {
		return nil, err
	}
	return serials, nil
}
