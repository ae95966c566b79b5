package commands

import (
	"context"
	"fmt"

	"maintenance/internal/core/domain/model/approval"
	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/services"
	"maintenance/internal/core/ports"
	"maintenance/internal/pkg/errs"
)

// RequestApprovalCommandHandler opens an approval request for a repair and
// moves assignment and machine to PENDING_APPROVAL.
type RequestApprovalCommandHandler struct {
	uowFactory  AssignmentUoWFactory
	coordinator services.RepairCoordinator
	notifier    ports.Notifier
}

// NewRequestApprovalCommandHandler creates the handler.
func NewRequestApprovalCommandHandler(
	uowFactory AssignmentUoWFactory,
	coordinator services.RepairCoordinator,
	notifier ports.Notifier,
) RequestApprovalCommandHandler {
	return RequestApprovalCommandHandler{uowFactory: uowFactory, coordinator: coordinator, notifier: notifier}
}

// Handle asks the machine's origin branch to approve the repair cost.
func (h RequestApprovalCommandHandler) Handle(ctx context.Context, cmd RequestApprovalCommand) (*approval.Request, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	a, m, err := loadRepair(ctx, uow.AssignmentRepository(), uow.MachineRepository(), cmd.Actor(), cmd.AssignmentID(), "request approval")
	if err != nil {
		return nil, err
	}

	subject, err := approval.AssignmentSubject(a.ID(), m.ID())
	if err != nil {
		return nil, err
	}

	approvals := uow.ApprovalRepository()
	pending, err := approvals.HasPending(ctx, subject.Key())
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, errs.NewConflictError("approval request",
			fmt.Sprintf("machine %s already has a pending approval request", m.Serial()))
	}

	cost := a.TotalCost()
	if cmd.Cost() != nil {
		cost = *cmd.Cost()
	}

	expected := a.Status()
	at := now()
	requestID := kernel.NewUUID()
	if err = a.RequestApproval(requestID, cost, cmd.Actor().ID(), cmd.Notes(), at); err != nil {
		return nil, err
	}

	req, err := approval.NewRequest(requestID, subject, a.BranchID(), a.OriginBranchID(), cost, a.Parts(),
		cmd.Notes(), cmd.Actor().ID(), at)
	if err != nil {
		return nil, err
	}
	if err = approvals.Add(ctx, req); err != nil {
		return nil, err
	}

	if err = saveRepair(ctx, uow, h.coordinator, a, expected, m, cmd.Actor().ID(), "approval requested", at); err != nil {
		return nil, err
	}

	if err = uow.AuditLog().LogAction(ctx, ports.AuditEntry{
		EntityType: auditApproval,
		EntityID:   req.ID(),
		Action:     "CREATE",
		Details:    map[string]any{"subject": subject.Key(), "cost": cost.String()},
		ActorID:    cmd.Actor().ID(),
		BranchID:   branchRef(a.BranchID()),
		At:         at,
	}); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.notifier.Notify(ctx, ports.Notification{
		BranchID: branchRef(req.TargetBranchID()),
		Type:     NotifyApprovalRequested,
		Title:    "Repair approval requested",
		Message:  fmt.Sprintf("Repair of machine %s needs approval for %s", m.Serial(), cost),
		Link:     "/maintenance-approvals/" + req.ID().String(),
	})

	return req, nil
}
