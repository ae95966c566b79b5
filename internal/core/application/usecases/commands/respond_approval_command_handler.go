package commands

import (
	"context"
	"fmt"
	"time"

	"maintenance/internal/core/domain/model/approval"
	"maintenance/internal/core/domain/model/machine"
	"maintenance/internal/core/domain/services"
	"maintenance/internal/core/ports"
	"maintenance/internal/pkg/errs"
)

// RespondApprovalCommandHandler records the decision on an approval request and
// applies it to the assignment or to every machine of a batch.
type RespondApprovalCommandHandler struct {
	uowFactory  ApprovalUoWFactory
	coordinator services.RepairCoordinator
	notifier    ports.Notifier
}

// NewRespondApprovalCommandHandler creates the handler.
func NewRespondApprovalCommandHandler(
	uowFactory ApprovalUoWFactory,
	coordinator services.RepairCoordinator,
	notifier ports.Notifier,
) RespondApprovalCommandHandler {
	return RespondApprovalCommandHandler{uowFactory: uowFactory, coordinator: coordinator, notifier: notifier}
}

// Handle records the target branch's decision and applies it to the subject.
// Only the first answer wins; a concurrent second answer fails on the status
// compare-and-swap.
func (h RespondApprovalCommandHandler) Handle(ctx context.Context, cmd RespondApprovalCommand) (*approval.Request, error) {
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

	approvals := uow.ApprovalRepository()
	req, err := approvals.Get(ctx, cmd.RequestID())
	if err != nil {
		return nil, err
	}
	if err = requireBranch(cmd.Actor(), req.TargetBranchID(), "respond to approval request"); err != nil {
		return nil, err
	}

	at := now()
	if err = req.Respond(cmd.Decision(), cmd.Actor().ID(), cmd.Reason(), at); err != nil {
		return nil, err
	}
	if err = approvals.Update(ctx, req, approval.StatusPending); err != nil {
		return nil, err
	}

	switch req.Subject().Kind() {
	case approval.SubjectAssignment:
		err = h.applyToAssignment(ctx, uow, req, cmd, at)
	case approval.SubjectBatch:
		err = h.applyToBatch(ctx, uow.MachineRepository(), req, cmd, at)
	default:
		err = errs.NewValueIsInvalidError("approval subject")
	}
	if err != nil {
		return nil, err
	}

	if err = uow.AuditLog().LogAction(ctx, ports.AuditEntry{
		EntityType: auditApproval,
		EntityID:   req.ID(),
		Action:     string(cmd.Decision()),
		Details:    map[string]any{"subject": req.Subject().Key(), "reason": cmd.Reason()},
		ActorID:    cmd.Actor().ID(),
		BranchID:   branchRef(req.TargetBranchID()),
		At:         at,
	}); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Request for %s was approved", req.Subject().Key())
	if cmd.Decision() == approval.Reject {
		message = fmt.Sprintf("Request for %s was rejected: %s", req.Subject().Key(), cmd.Reason())
	}
	h.notifier.Notify(ctx, ports.Notification{
		BranchID: branchRef(req.RequesterBranchID()),
		Type:     NotifyApprovalAnswered,
		Title:    "Approval answered",
		Message:  message,
		Link:     "/maintenance-approvals/" + req.ID().String(),
	})

	return req, nil
}

func (h RespondApprovalCommandHandler) applyToAssignment(
	ctx context.Context,
	uow ApprovalUoW,
	req *approval.Request,
	cmd RespondApprovalCommand,
	at time.Time,
) error {
	a, err := uow.AssignmentRepository().Get(ctx, *req.Subject().AssignmentID())
	if err != nil {
		return err
	}
	m, err := uow.MachineRepository().Get(ctx, a.MachineID())
	if err != nil {
		return err
	}

	expected := a.Status()
	if err = a.ApplyDecision(cmd.Decision() == approval.Approve, req.Cost(), cmd.Actor().ID(), cmd.Reason(), at); err != nil {
		return err
	}
	return saveRepair(ctx, uow, h.coordinator, a, expected, m, cmd.Actor().ID(), "approval "+string(req.Status()), at)
}

// applyToBatch moves every machine of the batch out of AWAITING_APPROVAL.
// Batch decisions never open a debt.
func (h RespondApprovalCommandHandler) applyToBatch(
	ctx context.Context,
	machines ports.MachineRepository,
	req *approval.Request,
	cmd RespondApprovalCommand,
	at time.Time,
) error {
	target := machine.RepairApproved
	if cmd.Decision() == approval.Reject {
		target = machine.RepairRejected
	}
	tc := machine.TransitionContext{ActorID: cmd.Actor().ID(), Notes: cmd.Reason(), At: at}
	for _, serial := range req.Subject().Serials() {
		m, err := machines.GetBySerial(ctx, serial)
		if err != nil {
			return err
		}
		if err = transitionMachine(ctx, machines, m, target, tc); err != nil {
			return err
		}
	}
	return nil
}
