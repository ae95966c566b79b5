package queries

import (
	"context"
	"errors"

	"maintenance/internal/core/domain/model/approval"
	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/pkg/guard"

	"gorm.io/gorm"
)

var ErrListApprovalsQueryIsNotConstructed = errors.New("ListApprovalsQuery must be created via NewListApprovalsQuery constructor")

// ListApprovalsQuery lists approval requests raised by or addressed to the
// caller's branches, newest first.
type ListApprovalsQuery struct {
	actor  kernel.Actor
	status *approval.Status

	guard guard.ConstructorGuard
}

// NewListApprovalsQuery filters by status when one is given.
func NewListApprovalsQuery(actor kernel.Actor, status *approval.Status) (ListApprovalsQuery, error) {
	if err := actor.Validate(); err != nil {
		return ListApprovalsQuery{}, err
	}
	return ListApprovalsQuery{actor: actor, status: status, guard: guard.NewConstructorGuard()}, nil
}

func (q ListApprovalsQuery) Validate() error {
	return q.guard.Validate(ErrListApprovalsQueryIsNotConstructed)
}

// ListApprovalsQueryHandler reads the approval request table directly.
type ListApprovalsQueryHandler struct {
	db *gorm.DB
}

// NewListApprovalsQueryHandler creates the handler.
func NewListApprovalsQueryHandler(db *gorm.DB) ListApprovalsQueryHandler {
	return ListApprovalsQueryHandler{db: db}
}

// Handle returns the requests visible to the actor.
func (h ListApprovalsQueryHandler) Handle(ctx context.Context, query ListApprovalsQuery) ([]ApprovalView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	scope, args, err := branchCondition(query.actor, nil, "requester_branch_id", "target_branch_id")
	if err != nil {
		return nil, err
	}
	statusCond := ""
	if query.status != nil {
		statusCond = "status = ?"
		args = append(args, query.status.String())
	}

	views := make([]ApprovalView, 0)
	err = h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			subject_kind,
			subject_key,
			assignment_id,
			requester_branch_id,
			target_branch_id,
			cost,
			notes,
			status,
			rejection_reason,
			created_at,
			responded_at
		FROM approval_requests
		`+where(scope, statusCond)+`
		ORDER BY created_at DESC
	`, args...).Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}
