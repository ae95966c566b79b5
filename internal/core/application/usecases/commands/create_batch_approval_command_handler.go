package commands

import (
	"context"
	"fmt"

	"maintenance/internal/core/domain/model/approval"
	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/core/domain/model/machine"
	"maintenance/internal/core/ports"
	"maintenance/internal/pkg/errs"
)

// CreateBatchApprovalCommandHandler creates a batch approval request and moves
// every listed machine from UNDER_INSPECTION to AWAITING_APPROVAL.
type CreateBatchApprovalCommandHandler struct {
	uowFactory ApprovalUoWFactory
	notifier   ports.Notifier
}

// NewCreateBatchApprovalCommandHandler creates the handler.
func NewCreateBatchApprovalCommandHandler(uowFactory ApprovalUoWFactory, notifier ports.Notifier) CreateBatchApprovalCommandHandler {
	return CreateBatchApprovalCommandHandler{uowFactory: uowFactory, notifier: notifier}
}

// Handle groups inspected machines of one origin branch into a single
// approval request and moves them to AWAITING_APPROVAL.
func (h CreateBatchApprovalCommandHandler) Handle(ctx context.Context, cmd CreateBatchApprovalCommand) (*approval.Request, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	subject, err := approval.BatchSubject(cmd.Serials())
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	approvals := uow.ApprovalRepository()
	pending, err := approvals.HasPending(ctx, subject.Key())
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, errs.NewConflictError("approval request", "these machines already have a pending approval request")
	}

	machines := uow.MachineRepository()
	batch := make([]*machine.Machine, 0, len(subject.Serials()))
	var center, origin *kernel.UUID
	for _, serial := range subject.Serials() {
		m, getErr := machines.GetBySerial(ctx, serial)
		if getErr != nil {
			return nil, getErr
		}
		if err = requireBranch(cmd.Actor(), m.BranchID(), "request batch approval"); err != nil {
			return nil, err
		}
		if m.Status() != machine.UnderInspection {
			return nil, errs.NewTransitionError("machine", m.Status(), machine.AwaitingApproval)
		}
		if m.OriginBranchID() == nil {
			return nil, errs.NewPreconditionFailedError(fmt.Sprintf("machine %s has no origin branch", serial))
		}
		if center == nil {
			center, origin = branchRef(m.BranchID()), m.OriginBranchID()
		}
		if !center.IsEqual(m.BranchID()) || !origin.IsEqual(*m.OriginBranchID()) {
			return nil, errs.NewValueIsInvalidErrorWithCause("serials",
				fmt.Errorf("machine %s belongs to another branch than the rest of the batch", serial))
		}
		batch = append(batch, m)
	}

	at := now()
	req, err := approval.NewRequest(kernel.NewUUID(), subject, *center, *origin, cmd.Cost(), nil,
		cmd.Notes(), cmd.Actor().ID(), at)
	if err != nil {
		return nil, err
	}
	if err = approvals.Add(ctx, req); err != nil {
		return nil, err
	}

	tc := machine.TransitionContext{ActorID: cmd.Actor().ID(), Notes: "batch approval requested", At: at}
	for _, m := range batch {
		if err = transitionMachine(ctx, machines, m, machine.AwaitingApproval, tc); err != nil {
			return nil, err
		}
	}

	if err = uow.AuditLog().LogAction(ctx, ports.AuditEntry{
		EntityType: auditApproval,
		EntityID:   req.ID(),
		Action:     "CREATE",
		Details:    map[string]any{"subject": subject.Key(), "machines": len(batch)},
		ActorID:    cmd.Actor().ID(),
		BranchID:   center,
		At:         at,
	}); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.notifier.Notify(ctx, ports.Notification{
		BranchID: origin,
		Type:     NotifyApprovalRequested,
		Title:    "Repair approval requested",
		Message:  fmt.Sprintf("%d inspected machine(s) need your approval", len(batch)),
		Link:     "/maintenance-approvals/" + req.ID().String(),
	})

	return req, nil
}
