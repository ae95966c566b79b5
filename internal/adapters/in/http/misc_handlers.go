package http

import (
	"net/http"

	"maintenance/internal/core/application/usecases/commands"
	"maintenance/internal/core/application/usecases/queries"
	"maintenance/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

const defaultEntitiesPage = 100

// RegisterPushSubscription handles POST /api/v1/push-subscriptions.
func (s *Server) RegisterPushSubscription(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req pushSubscriptionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewRegisterPushSubscriptionCommand(actor, req.Endpoint, req.Keys.P256dh, req.Keys.Auth)
	if err != nil {
		return err
	}
	if err := s.h.RegisterPush.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusCreated)
}

// ListEntities handles GET /api/v1/admin/entities/:kind.
func (s *Server) ListEntities(c echo.Context) error {
	kind, err := kernel.ParseEntityKind(c.Param("kind"))
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit", defaultEntitiesPage)
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return err
	}

	query, err := queries.NewListEntitiesQuery(kind, limit, offset)
	if err != nil {
		return err
	}
	rows, err := s.h.Entities.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}

// Health handles GET /health.
func (s *Server) Health(c echo.Context) error {
	return c.String(http.StatusOK, "Healthy")
}
