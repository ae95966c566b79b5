package queries

import (
	"context"

	"maintenance/internal/core/domain/model/transfer"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListPendingTransferOrdersQueryHandler reads orders and items in two queries.
type ListPendingTransferOrdersQueryHandler struct {
	db *gorm.DB
}

// NewListPendingTransferOrdersQueryHandler creates the handler.
func NewListPendingTransferOrdersQueryHandler(db *gorm.DB) ListPendingTransferOrdersQueryHandler {
	return ListPendingTransferOrdersQueryHandler{db: db}
}

// Handle returns the orders oldest first with their items.
func (h ListPendingTransferOrdersQueryHandler) Handle(ctx context.Context, query ListPendingTransferOrdersQuery) ([]TransferOrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	scope, args, err := branchCondition(query.actor, query.branchID, "from_branch_id", "to_branch_id")
	if err != nil {
		return nil, err
	}
	typeCond := ""
	if query.oType != nil {
		typeCond = "type = ?"
		args = append(args, query.oType.String())
	}
	args = append([]any{transfer.StatusPending.String()}, args...)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			number,
			type,
			from_branch_id,
			to_branch_id,
			status,
			notes,
			created_by,
			created_at
		FROM transfer_orders
		`+where("status = ?", scope, typeCond)+`
		ORDER BY created_at, number
	`, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]TransferOrderView, 0)
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var o TransferOrderView
		if err = rows.Scan(
			&o.ID,
			&o.Number,
			&o.Type,
			&o.FromBranchID,
			&o.ToBranchID,
			&o.Status,
			&o.Notes,
			&o.CreatedBy,
			&o.CreatedAt,
		); err != nil {
			return nil, err
		}
		o.Items = make([]TransferItemView, 0)
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	var items []transferItemRow
	if err = h.db.WithContext(ctx).Raw(`
		SELECT id, order_id, serial, part_id, description, quantity, status
		FROM transfer_order_items
		WHERE order_id IN ?
		ORDER BY position
	`, ids).Scan(&items).Error; err != nil {
		return nil, err
	}
	for _, it := range items {
		i := index[it.OrderID]
		orders[i].Items = append(orders[i].Items, it.TransferItemView)
	}

	return orders, nil
}

type transferItemRow struct {
	TransferItemView
	OrderID uuid.UUID
}
