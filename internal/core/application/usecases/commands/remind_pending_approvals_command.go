package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maintenance/internal/core/domain/model/approval"
	"maintenance/internal/core/ports"
	"maintenance/internal/pkg/errs"
	"maintenance/internal/pkg/guard"
)

var ErrRemindPendingApprovalsCommandIsNotConstructed = errors.New(
	"RemindPendingApprovalsCommand must be created via NewRemindPendingApprovalsCommand constructor",
)

// RemindPendingApprovalsCommand selects approval requests left PENDING longer
// than OlderThan, at most Limit per run.
type RemindPendingApprovalsCommand struct {
	olderThan time.Duration
	limit     int

	guard guard.ConstructorGuard
}

// NewRemindPendingApprovalsCommand requires a positive age and limit.
func NewRemindPendingApprovalsCommand(olderThan time.Duration, limit int) (RemindPendingApprovalsCommand, error) {
	if olderThan <= 0 {
		return RemindPendingApprovalsCommand{}, errs.NewValueIsOutOfRangeError("olderThan", olderThan, "1ns", "unbounded")
	}
	if limit <= 0 {
		return RemindPendingApprovalsCommand{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, "unbounded")
	}
	return RemindPendingApprovalsCommand{olderThan: olderThan, limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (c RemindPendingApprovalsCommand) Validate() error {
	return c.guard.Validate(ErrRemindPendingApprovalsCommandIsNotConstructed)
}

// RemindPendingApprovalsCommandHandler re-notifies target branches about stale
// approval requests. Requests never expire.
type RemindPendingApprovalsCommandHandler struct {
	uowFactory ApprovalUoWFactory
	notifier   ports.Notifier
}

// NewRemindPendingApprovalsCommandHandler creates the handler.
func NewRemindPendingApprovalsCommandHandler(uowFactory ApprovalUoWFactory, notifier ports.Notifier) RemindPendingApprovalsCommandHandler {
	return RemindPendingApprovalsCommandHandler{uowFactory: uowFactory, notifier: notifier}
}

// Handle re-notifies target branches about requests left PENDING longer than
// olderThan and returns how many were reminded. Requests never expire.
func (h RemindPendingApprovalsCommandHandler) Handle(ctx context.Context, cmd RemindPendingApprovalsCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	at := now()
	approvals := uow.ApprovalRepository()
	stale, err := approvals.ListStalePending(ctx, at.Add(-cmd.olderThan), cmd.limit)
	if err != nil {
		return 0, err
	}

	reminded := make([]*approval.Request, 0, len(stale))
	for _, req := range stale {
		req.MarkReminded(at)
		if err = approvals.Update(ctx, req, approval.StatusPending); err != nil {
			if errors.Is(err, errs.ErrConflict) {
				continue
			}
			return 0, err
		}
		reminded = append(reminded, req)
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	for _, req := range reminded {
		h.notifier.Notify(ctx, ports.Notification{
			BranchID: branchRef(req.TargetBranchID()),
			Type:     NotifyApprovalReminder,
			Title:    "Approval still pending",
			Message:  fmt.Sprintf("Request for %s has been waiting since %s", req.Subject().Key(), req.CreatedAt().Format(time.DateOnly)),
			Link:     "/maintenance-approvals/" + req.ID().String(),
		})
	}
	return len(reminded), nil
}
