package queries

import (
	"context"
	"errors"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/pkg/errs"
	"maintenance/internal/pkg/guard"

	"gorm.io/gorm"
)

var ErrListEntitiesQueryIsNotConstructed = errors.New("ListEntitiesQuery must be created via NewListEntitiesQuery constructor")

const maxEntitiesPage = 500

var entityTables = map[kernel.EntityKind]string{
	kernel.EntityMachine:       "machines",
	kernel.EntityTransferOrder: "transfer_orders",
	kernel.EntityAssignment:    "service_assignments",
	kernel.EntityApprovalReq:   "approval_requests",
	kernel.EntityBranchDebt:    "branch_debts",
	kernel.EntityPayment:       "payments",
	kernel.EntityMachineLog:    "machine_status_logs",
	kernel.EntityAssignmentLog: "assignment_logs",
}

// ListEntitiesQuery pages through the raw rows of one workflow entity for
// administrators.
type ListEntitiesQuery struct {
	kind   kernel.EntityKind
	limit  int
	offset int

	guard guard.ConstructorGuard
}

// NewListEntitiesQuery rejects unknown kinds and page sizes
// outside 1..maxEntitiesPage.
//
// Example:
//
//	query, err := NewListEntitiesQuery(kernel.EntityMachine, 50, 0)
//	if err != nil {
//	    return err
//	}
//	rows, err := NewListEntitiesQueryHandler(db).Handle(ctx, query)
func NewListEntitiesQuery(kind kernel.EntityKind, limit, offset int) (ListEntitiesQuery, error) {
	if _, ok := entityTables[kind]; !ok {
		return ListEntitiesQuery{}, errs.NewValueIsInvalidError("entity kind")
	}
	if limit <= 0 || limit > maxEntitiesPage {
		return ListEntitiesQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, maxEntitiesPage)
	}
	if offset < 0 {
		return ListEntitiesQuery{}, errs.NewValueIsOutOfRangeError("offset", offset, 0, "unbounded")
	}
	return ListEntitiesQuery{kind: kind, limit: limit, offset: offset, guard: guard.NewConstructorGuard()}, nil
}

func (q ListEntitiesQuery) Validate() error {
	return q.guard.Validate(ErrListEntitiesQueryIsNotConstructed)
}

// ListEntitiesQueryHandler reads whole rows as column maps.
type ListEntitiesQueryHandler struct {
	db *gorm.DB
}

// NewListEntitiesQueryHandler creates the handler.
func NewListEntitiesQueryHandler(db *gorm.DB) ListEntitiesQueryHandler {
	return ListEntitiesQueryHandler{db: db}
}

// Handle returns one page, newest rows first.
func (h ListEntitiesQueryHandler) Handle(ctx context.Context, query ListEntitiesQuery) ([]map[string]any, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows := make([]map[string]any, 0)
	err := h.db.WithContext(ctx).
		Table(entityTables[query.kind]).
		Order("created_at DESC").
		Limit(query.limit).
		Offset(query.offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
