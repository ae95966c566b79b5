package http

import (
	"net/http"

	"maintenance/internal/core/application/usecases/commands"
	"maintenance/internal/core/application/usecases/queries"
	"maintenance/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// AssignTechnician handles POST /api/v1/service-assignments.
func (s *Server) AssignTechnician(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req assignTechnicianRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	machineID, err := kernel.UUIDFromGoogle(req.MachineID)
	if err != nil {
		return err
	}
	technicianID, err := kernel.UUIDFromGoogle(req.TechnicianID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewAssignTechnicianCommand(actor, machineID, technicianID)
	if err != nil {
		return err
	}
	a, err := s.h.AssignTechnician.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, assignmentResponseOf(a))
}

// ListMyAssignments handles GET /api/v1/service-assignments/mine.
func (s *Server) ListMyAssignments(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	query, err := queries.NewGetMyAssignmentsQuery(actor.ID())
	if err != nil {
		return err
	}
	assignments, err := s.h.MyAssignments.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, assignments)
}

// StartAssignment handles PUT /api/v1/service-assignments/:id/start.
func (s *Server) StartAssignment(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	cmd, err := commands.NewStartAssignmentCommand(actor, id)
	if err != nil {
		return err
	}
	a, err := s.h.StartAssignment.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, assignmentResponseOf(a))
}

// UpdateAssignmentParts handles PUT /api/v1/service-assignments/:id/update-parts.
func (s *Server) UpdateAssignmentParts(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req updatePartsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	parts := make([]commands.PartInput, 0, len(req.Parts))
	for _, p := range req.Parts {
		partID, err := kernel.UUIDFromGoogle(p.PartID)
		if err != nil {
			return err
		}
		parts = append(parts, commands.PartInput{PartID: partID, Quantity: p.Quantity})
	}

	cmd, err := commands.NewUpdateAssignmentPartsCommand(actor, id, parts)
	if err != nil {
		return err
	}
	a, err := s.h.UpdateParts.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, assignmentResponseOf(a))
}

// RequestApproval handles POST /api/v1/service-assignments/:id/request-approval.
// The cost defaults to the assignment total.
func (s *Server) RequestApproval(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req requestApprovalRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	var cost *kernel.Money
	if req.Cost != nil {
		m, err := kernel.MoneyFromString(*req.Cost)
		if err != nil {
			return err
		}
		cost = &m
	}

	cmd, err := commands.NewRequestApprovalCommand(actor, id, cost, req.Notes)
	if err != nil {
		return err
	}
	r, err := s.h.RequestApproval.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, approvalResponseOf(r))
}

// CompleteAssignment handles PUT /api/v1/service-assignments/:id/complete.
func (s *Server) CompleteAssignment(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req notesRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewCompleteAssignmentCommand(actor, id, req.Notes)
	if err != nil {
		return err
	}
	result, err := s.h.CompleteAssignment.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	resp := completionResponse{Assignment: assignmentResponseOf(result.Assignment)}
	if result.Debt != nil {
		debt := debtResponse(result.Debt)
		resp.Debt = &debt
	}
	return c.JSON(http.StatusOK, resp)
}
