package http

import (
	"net/http"

	"maintenance/internal/core/application/usecases/commands"
	"maintenance/internal/core/application/usecases/queries"
	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/ledger"
	"maintenance/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// scopeOf reads the scope query parameter. When it is absent the scope
// follows the type of the caller's home branch.
func (s *Server) scopeOf(c echo.Context, actor kernel.Actor) (ledger.Scope, error) {
	raw, err := queryString(c, "scope")
	if err != nil {
		return "", err
	}
	switch scope := ledger.Scope(raw); scope {
	case ledger.ScopeOwedByBranch, ledger.ScopeOwedToCenter:
		return scope, nil
	case "":
	default:
		return "", errs.NewValueIsInvalidError("scope")
	}

	if actor.BranchID() == nil {
		return ledger.ScopeOwedToCenter, nil
	}
	branch, err := s.branches.Get(c.Request().Context(), *actor.BranchID())
	if err != nil {
		return "", err
	}
	return ledger.DefaultScope(branch.Type), nil
}

// ListPendingPayments handles GET /api/v1/pending-payments.
func (s *Server) ListPendingPayments(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	scope, err := s.scopeOf(c, actor)
	if err != nil {
		return err
	}
	rawStatus, err := queryString(c, "status")
	if err != nil {
		return err
	}
	var status *ledger.Status
	if rawStatus != "" {
		st, err := ledger.ParseStatus(rawStatus)
		if err != nil {
			return err
		}
		status = &st
	}

	query, err := queries.NewListPendingPaymentsQuery(actor, scope, status)
	if err != nil {
		return err
	}
	debts, err := s.h.PendingPayments.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, debts)
}

// GetPaymentSummary handles GET /api/v1/pending-payments/summary.
func (s *Server) GetPaymentSummary(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	scope, err := s.scopeOf(c, actor)
	if err != nil {
		return err
	}

	query, err := queries.NewGetPaymentSummaryQuery(actor, scope)
	if err != nil {
		return err
	}
	summary, err := s.h.PaymentSummary.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// PayDebt handles PUT /api/v1/pending-payments/:id/pay.
func (s *Server) PayDebt(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req payDebtRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewPayDebtCommand(actor, id, req.ReceiptNumber)
	if err != nil {
		return err
	}
	debt, err := s.h.PayDebt.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, debtResponse(debt))
}
