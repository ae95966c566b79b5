package http

import (
	"net/http"

	"maintenance/internal/core/application/usecases/commands"
	"maintenance/internal/core/application/usecases/queries"
	"maintenance/internal/core/domain/model/approval"
	"maintenance/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// ListApprovals handles GET /api/v1/maintenance-approvals.
func (s *Server) ListApprovals(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	rawStatus, err := queryString(c, "status")
	if err != nil {
		return err
	}
	var status *approval.Status
	if rawStatus != "" {
		st, err := approval.ParseStatus(rawStatus)
		if err != nil {
			return err
		}
		status = &st
	}

	query, err := queries.NewListApprovalsQuery(actor, status)
	if err != nil {
		return err
	}
	requests, err := s.h.Approvals.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, requests)
}

// CreateBatchApproval handles POST /api/v1/maintenance-approvals.
func (s *Server) CreateBatchApproval(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req batchApprovalRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	cost := kernel.ZeroMoney()
	if req.Cost != nil {
		if cost, err = kernel.MoneyFromString(*req.Cost); err != nil {
			return err
		}
	}

	cmd, err := commands.NewCreateBatchApprovalCommand(actor, req.Serials, cost, req.Notes)
	if err != nil {
		return err
	}
	r, err := s.h.CreateBatchApproval.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, approvalResponseOf(r))
}

// ApproveRequest handles PUT /api/v1/maintenance-approvals/:id/approve.
func (s *Server) ApproveRequest(c echo.Context) error {
	var req optionalReasonRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return s.respond(c, approval.Approve, req.Reason)
}

// RejectRequest handles PUT /api/v1/maintenance-approvals/:id/reject.
func (s *Server) RejectRequest(c echo.Context) error {
	var req reasonRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return s.respond(c, approval.Reject, req.Reason)
}

func (s *Server) respond(c echo.Context, decision approval.Decision, reason string) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	cmd, err := commands.NewRespondApprovalCommand(actor, id, decision, reason)
	if err != nil {
		return err
	}
	r, err := s.h.RespondApproval.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, approvalResponseOf(r))
}
