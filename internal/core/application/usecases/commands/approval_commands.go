package commands

import (
	"errors"
	"strings"

	"maintenance/internal/core/domain/model/approval"
	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/pkg/errs"
	"maintenance/internal/pkg/guard"
)

var (
	ErrCreateBatchApprovalCommandIsNotConstructed = errors.New(
		"CreateBatchApprovalCommand must be created via NewCreateBatchApprovalCommand constructor",
	)
	ErrRespondApprovalCommandIsNotConstructed = errors.New(
		"RespondApprovalCommand must be created via NewRespondApprovalCommand constructor",
	)
)

// CreateBatchApprovalCommand asks the branches owning a group of inspected
// machines to approve their repair in one request.
//
// Example:
//
//	cmd, err := NewCreateBatchApprovalCommand(actor, []string{"SN-1", "SN-2"}, kernel.MustMoney("120"), "screens")
//	if err != nil {
//	    return err
//	}
//	req, err := handler.Handle(ctx, cmd)
type CreateBatchApprovalCommand struct {
	actor   kernel.Actor
	serials []string
	cost    kernel.Money
	notes   string

	guard guard.ConstructorGuard
}

// NewCreateBatchApprovalCommand asks for approval of several inspected
// machines at once. The cost is informative and may be zero.
func NewCreateBatchApprovalCommand(actor kernel.Actor, serials []string, cost kernel.Money, notes string) (CreateBatchApprovalCommand, error) {
	if err := validateActor(actor); err != nil {
		return CreateBatchApprovalCommand{}, err
	}
	if len(serials) == 0 {
		return CreateBatchApprovalCommand{}, errs.NewValueIsRequiredError("serials")
	}
	return CreateBatchApprovalCommand{
		actor:   actor,
		serials: serials,
		cost:    cost,
		notes:   notes,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate reports whether the command was built by its constructor.
func (c CreateBatchApprovalCommand) Validate() error {
	return c.guard.Validate(ErrCreateBatchApprovalCommandIsNotConstructed)
}

func (c CreateBatchApprovalCommand) Actor() kernel.Actor { return c.actor }
func (c CreateBatchApprovalCommand) Serials() []string   { return c.serials }
func (c CreateBatchApprovalCommand) Cost() kernel.Money  { return c.cost }
func (c CreateBatchApprovalCommand) Notes() string       { return c.notes }

// RespondApprovalCommand carries the decision of the target branch on one
// approval request. A rejection must give a reason.
type RespondApprovalCommand struct {
	actor     kernel.Actor
	requestID kernel.UUID
	decision  approval.Decision
	reason    string

	guard guard.ConstructorGuard
}

// NewRespondApprovalCommand validates the actor and request id and requires a
// non-empty reason when the decision is a rejection.
func NewRespondApprovalCommand(actor kernel.Actor, requestID kernel.UUID, decision approval.Decision, reason string) (RespondApprovalCommand, error) {
	if err := errors.Join(validateActor(actor), requestID.Validate()); err != nil {
		return RespondApprovalCommand{}, err
	}
	reason = strings.TrimSpace(reason)
	switch decision {
	case approval.Approve:
	case approval.Reject:
		if reason == "" {
			return RespondApprovalCommand{}, approval.ErrReasonIsRequired
		}
	default:
		return RespondApprovalCommand{}, errs.NewValueIsInvalidError("decision")
	}
	return RespondApprovalCommand{
		actor:     actor,
		requestID: requestID,
		decision:  decision,
		reason:    reason,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c RespondApprovalCommand) Validate() error {
	return c.guard.Validate(ErrRespondApprovalCommandIsNotConstructed)
}

func (c RespondApprovalCommand) Actor() kernel.Actor         { return c.actor }
func (c RespondApprovalCommand) RequestID() kernel.UUID      { return c.requestID }
func (c RespondApprovalCommand) Decision() approval.Decision { return c.decision }
func (c RespondApprovalCommand) Reason() string              { return c.reason }
