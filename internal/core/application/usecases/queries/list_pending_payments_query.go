package queries

import (
	"context"
	"errors"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/ledger"
	"maintenance/internal/pkg/errs"
	"maintenance/internal/pkg/guard"

	"gorm.io/gorm"
)

var (
	ErrListPendingPaymentsQueryIsNotConstructed = errors.New(
		"ListPendingPaymentsQuery must be created via NewListPendingPaymentsQuery constructor",
	)
	ErrGetPaymentSummaryQueryIsNotConstructed = errors.New(
		"GetPaymentSummaryQuery must be created via NewGetPaymentSummaryQuery constructor",
	)
)

func scopeColumn(scope ledger.Scope) (string, error) {
	switch scope {
	case ledger.ScopeOwedByBranch:
		return "debtor_branch_id", nil
	case ledger.ScopeOwedToCenter:
		return "creditor_branch_id", nil
	default:
		return "", errs.NewValueIsInvalidError("scope")
	}
}

// ListPendingPaymentsQuery lists debts on one side of the ledger.
type ListPendingPaymentsQuery struct {
	actor  kernel.Actor
	scope  ledger.Scope
	status *ledger.Status

	guard guard.ConstructorGuard
}

// NewListPendingPaymentsQuery validates the scope. A nil status lists
// debts in every status.
func NewListPendingPaymentsQuery(actor kernel.Actor, scope ledger.Scope, status *ledger.Status) (ListPendingPaymentsQuery, error) {
	if err := actor.Validate(); err != nil {
		return ListPendingPaymentsQuery{}, err
	}
	if _, err := scopeColumn(scope); err != nil {
		return ListPendingPaymentsQuery{}, err
	}
	return ListPendingPaymentsQuery{actor: actor, scope: scope, status: status, guard: guard.NewConstructorGuard()}, nil
}

func (q ListPendingPaymentsQuery) Validate() error {
	return q.guard.Validate(ErrListPendingPaymentsQueryIsNotConstructed)
}

// ListPendingPaymentsQueryHandler reads the branch debt table directly.
type ListPendingPaymentsQueryHandler struct {
	db *gorm.DB
}

// NewListPendingPaymentsQueryHandler creates the handler.
func NewListPendingPaymentsQueryHandler(db *gorm.DB) ListPendingPaymentsQueryHandler {
	return ListPendingPaymentsQueryHandler{db: db}
}

// Handle returns the debts newest first.
func (h ListPendingPaymentsQueryHandler) Handle(ctx context.Context, query ListPendingPaymentsQuery) ([]DebtView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	column, err := scopeColumn(query.scope)
	if err != nil {
		return nil, err
	}
	scope, args, err := branchCondition(query.actor, nil, column)
	if err != nil {
		return nil, err
	}
	statusCond := ""
	if query.status != nil {
		statusCond = "status = ?"
		args = append(args, query.status.String())
	}

	views := make([]DebtView, 0)
	err = h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			debtor_branch_id,
			creditor_branch_id,
			machine_serial,
			amount,
			paid_amount,
			remaining_amount,
			status,
			receipt_number,
			created_at,
			paid_at
		FROM branch_debts
		`+where(scope, statusCond)+`
		ORDER BY created_at DESC
	`, args...).Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

// GetPaymentSummaryQuery totals the outstanding debts on one side of the
// ledger.
type GetPaymentSummaryQuery struct {
	actor kernel.Actor
	scope ledger.Scope

	guard guard.ConstructorGuard
}

// NewGetPaymentSummaryQuery validates the actor and the scope.
func NewGetPaymentSummaryQuery(actor kernel.Actor, scope ledger.Scope) (GetPaymentSummaryQuery, error) {
	if err := actor.Validate(); err != nil {
		return GetPaymentSummaryQuery{}, err
	}
	if _, err := scopeColumn(scope); err != nil {
		return GetPaymentSummaryQuery{}, err
	}
	return GetPaymentSummaryQuery{actor: actor, scope: scope, guard: guard.NewConstructorGuard()}, nil
}

func (q GetPaymentSummaryQuery) Validate() error {
	return q.guard.Validate(ErrGetPaymentSummaryQueryIsNotConstructed)
}

// GetPaymentSummaryQueryHandler sums debts in the database.
type GetPaymentSummaryQueryHandler struct {
	db *gorm.DB
}

// NewGetPaymentSummaryQueryHandler creates the handler.
func NewGetPaymentSummaryQueryHandler(db *gorm.DB) GetPaymentSummaryQueryHandler {
	return GetPaymentSummaryQueryHandler{db: db}
}

func (h GetPaymentSummaryQueryHandler) Handle(ctx context.Context, query GetPaymentSummaryQuery) (PaymentSummary, error) {
	if err := query.Validate(); err != nil {
		return PaymentSummary{}, err
	}

	column, err := scopeColumn(query.scope)
	if err != nil {
		return PaymentSummary{}, err
	}
	scope, scopeArgs, err := branchCondition(query.actor, nil, column)
	if err != nil {
		return PaymentSummary{}, err
	}
	args := append([]any{ledger.StatusPendingPayment.String()}, scopeArgs...)

	summary := PaymentSummary{Scope: string(query.scope)}
	row := h.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(remaining_amount), 0), COUNT(*)
		FROM branch_debts
		`+where("status = ?", scope), args...).Row()
	if err = row.Scan(&summary.OutstandingTotal, &summary.OutstandingCount); err != nil {
		return PaymentSummary{}, err
	}
	summary.OutstandingTotal = kernel.RoundMoney(summary.OutstandingTotal)
	return summary, nil
}
