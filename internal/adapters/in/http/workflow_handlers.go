package http

import (
	"net/http"

	"maintenance/internal/core/application/usecases/commands"
	"maintenance/internal/core/application/usecases/queries"
	"maintenance/internal/core/domain/model/machine"

	"github.com/labstack/echo/v4"
)

// TransitionMachine handles POST /api/v1/machine-workflow/:id/transition.
func (s *Server) TransitionMachine(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req transitionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	target, err := machine.ParseStatus(req.Status)
	if err != nil {
		return err
	}

	cmd, err := commands.NewTransitionMachineCommand(actor, id, target, req.Notes)
	if err != nil {
		return err
	}
	m, err := s.h.TransitionMachine.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, machineResponseOf(m))
}

// GetKanban handles GET /api/v1/machine-workflow/kanban.
func (s *Server) GetKanban(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	centerID, err := queryUUID(c, "centerId")
	if err != nil {
		return err
	}

	query, err := queries.NewGetKanbanQuery(actor, centerID)
	if err != nil {
		return err
	}
	board, err := s.h.Kanban.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, board)
}
