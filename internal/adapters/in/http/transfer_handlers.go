package http

import (
	"net/http"

	"maintenance/internal/core/application/usecases/commands"
	"maintenance/internal/core/application/usecases/queries"
	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/transfer"

	"github.com/labstack/echo/v4"
)

// CreateTransferOrder handles POST /api/v1/transfer-orders.
func (s *Server) CreateTransferOrder(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req createTransferOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	orderType, err := transfer.ParseType(req.Type)
	if err != nil {
		return err
	}
	from, err := kernel.UUIDFromGoogle(req.FromBranchID)
	if err != nil {
		return err
	}
	to, err := kernel.UUIDFromGoogle(req.ToBranchID)
	if err != nil {
		return err
	}
	items := make([]commands.TransferItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		partID, err := kernel.OptionalUUID(it.PartID)
		if err != nil {
			return err
		}
		items = append(items, commands.TransferItemInput{Serial: it.Serial, PartID: partID, Quantity: it.Quantity})
	}

	cmd, err := commands.NewCreateTransferOrderCommand(actor, orderType, from, to, items, req.Notes)
	if err != nil {
		return err
	}
	order, err := s.h.CreateTransferOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, transferOrderResponse(order))
}

// ListPendingTransferOrders handles GET /api/v1/transfer-orders/pending.
func (s *Server) ListPendingTransferOrders(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	branchID, err := queryUUID(c, "branchId")
	if err != nil {
		return err
	}
	rawType, err := queryString(c, "type")
	if err != nil {
		return err
	}
	var orderType *transfer.Type
	if rawType != "" {
		t, err := transfer.ParseType(rawType)
		if err != nil {
			return err
		}
		orderType = &t
	}

	query, err := queries.NewListPendingTransferOrdersQuery(actor, branchID, orderType)
	if err != nil {
		return err
	}
	orders, err := s.h.PendingTransferOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

// ListPendingSerials handles GET /api/v1/transfer-orders/pending-serials.
func (s *Server) ListPendingSerials(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	branchID, err := queryUUID(c, "branchId")
	if err != nil {
		return err
	}
	rawType, err := queryString(c, "type")
	if err != nil {
		return err
	}
	orderType, err := transfer.ParseType(rawType)
	if err != nil {
		return err
	}

	query, err := queries.NewGetPendingSerialsQuery(actor, branchID, orderType)
	if err != nil {
		return err
	}
	serials, err := s.h.PendingSerials.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, serials)
}

// ReceiveTransferOrder handles POST /api/v1/transfer-orders/:id/receive.
// Without decisions every pending item is accepted.
func (s *Server) ReceiveTransferOrder(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req receiveTransferOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	decisions := make([]transfer.Decision, 0, len(req.Decisions))
	for _, d := range req.Decisions {
		itemID, err := kernel.UUIDFromGoogle(d.ItemID)
		if err != nil {
			return err
		}
		decisions = append(decisions, transfer.Decision{ItemID: itemID, Accept: d.Accept})
	}

	cmd, err := commands.NewReceiveTransferOrderCommand(actor, id, decisions)
	if err != nil {
		return err
	}
	order, err := s.h.ReceiveTransferOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transferOrderResponse(order))
}

// RejectTransferOrder handles POST /api/v1/transfer-orders/:id/reject.
func (s *Server) RejectTransferOrder(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req reasonRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewRejectTransferOrderCommand(actor, id, req.Reason)
	if err != nil {
		return err
	}
	order, err := s.h.RejectTransferOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transferOrderResponse(order))
}

// CancelTransferOrder handles POST /api/v1/transfer-orders/:id/cancel.
func (s *Server) CancelTransferOrder(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	cmd, err := commands.NewCancelTransferOrderCommand(actor, id)
	if err != nil {
		return err
	}
	order, err := s.h.CancelTransferOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transferOrderResponse(order))
}
