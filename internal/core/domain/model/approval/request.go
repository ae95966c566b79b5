package approval

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/pkg/errs"
	"maintenance/internal/pkg/guard"
)

var (
	ErrRequestIsNotConstructed = errors.New("Request must be created via NewRequest or RestoreRequest")
	ErrReasonIsRequired        = errs.NewValueIsRequiredError("rejection reason")
)

// Status is the state of an approval request. Only PENDING can change.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// ParseStatus converts a stored value back to a Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("approval status", fmt.Errorf("%q is not an approval status", s))
	}
}

func (s Status) String() string {
	return string(s)
}

// Decision is the answer of the target branch.
type Decision string

const (
	Approve Decision = "APPROVE"
	Reject  Decision = "REJECT"
)

// Request is the approval request aggregate.
type Request struct {
	id                kernel.UUID
	subject           Subject
	requesterBranchID kernel.UUID
	targetBranchID    kernel.UUID
	cost              kernel.Money
	parts             []kernel.PartUsage
	notes             string
	status            Status
	requestedBy       kernel.UUID
	createdAt         time.Time
	respondedBy       *kernel.UUID
	respondedAt       *time.Time
	rejectionReason   string
	lastRemindedAt    *time.Time
	guard             guard.ConstructorGuard
}

// NewRequest opens a PENDING request from the center (requester) to the
// machine owner (target).
func NewRequest(
	id kernel.UUID,
	subject Subject,
	requesterBranchID, targetBranchID kernel.UUID,
	cost kernel.Money,
	parts []kernel.PartUsage,
	notes string,
	requestedBy kernel.UUID,
	at time.Time,
) (*Request, error) {
	if err := errors.Join(
		id.Validate(),
		requesterBranchID.Validate(),
		targetBranchID.Validate(),
		requestedBy.Validate(),
	); err != nil {
		return nil, err
	}
	if subject.kind == "" {
		return nil, errs.NewValueIsRequiredError("subject")
	}
	if subject.kind == SubjectAssignment && !cost.IsPositive() {
		return nil, errs.NewValueIsOutOfRangeError("cost", cost.String(), "0.01", "unbounded")
	}

	return &Request{
		id:                id,
		subject:           subject,
		requesterBranchID: requesterBranchID,
		targetBranchID:    targetBranchID,
		cost:              cost,
		parts:             slices.Clone(parts),
		notes:             strings.TrimSpace(notes),
		status:            StatusPending,
		requestedBy:       requestedBy,
		createdAt:         at,
		guard:             guard.NewConstructorGuard(),
	}, nil
}

// RestoreRequest rebuilds a request from storage without checking business
// rules.
func RestoreRequest(
	id kernel.UUID,
	subject Subject,
	requesterBranchID, targetBranchID kernel.UUID,
	cost kernel.Money,
	parts []kernel.PartUsage,
	notes string,
	status Status,
	requestedBy kernel.UUID,
	createdAt time.Time,
	respondedBy *kernel.UUID,
	respondedAt *time.Time,
	rejectionReason string,
	lastRemindedAt *time.Time,
) (*Request, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return &Request{
		id:                id,
		subject:           subject,
		requesterBranchID: requesterBranchID,
		targetBranchID:    targetBranchID,
		cost:              cost,
		parts:             parts,
		notes:             notes,
		status:            status,
		requestedBy:       requestedBy,
		createdAt:         createdAt,
		respondedBy:       respondedBy,
		respondedAt:       respondedAt,
		rejectionReason:   rejectionReason,
		lastRemindedAt:    lastRemindedAt,
		guard:             guard.NewConstructorGuard(),
	}, nil
}

func (r *Request) Validate() error {
	if r == nil {
		return ErrRequestIsNotConstructed
	}
	return r.guard.Validate(ErrRequestIsNotConstructed)
}

func (r *Request) ID() kernel.UUID                { return r.id }
func (r *Request) Subject() Subject               { return r.subject }
func (r *Request) RequesterBranchID() kernel.UUID { return r.requesterBranchID }
func (r *Request) TargetBranchID() kernel.UUID    { return r.targetBranchID }
func (r *Request) Cost() kernel.Money             { return r.cost }
func (r *Request) Parts() []kernel.PartUsage      { return slices.Clone(r.parts) }
func (r *Request) Notes() string                  { return r.notes }
func (r *Request) Status() Status                 { return r.status }
func (r *Request) RequestedBy() kernel.UUID       { return r.requestedBy }
func (r *Request) CreatedAt() time.Time           { return r.createdAt }
func (r *Request) RespondedBy() *kernel.UUID      { return r.respondedBy }
func (r *Request) RespondedAt() *time.Time        { return r.respondedAt }
func (r *Request) RejectionReason() string        { return r.rejectionReason }
func (r *Request) LastRemindedAt() *time.Time     { return r.lastRemindedAt }
func (r *Request) IsPending() bool                { return r.status == StatusPending }

// Respond records the decision. A request is answered exactly once; any
// later answer is a conflict and leaves the request unchanged.
func (r *Request) Respond(decision Decision, actorID kernel.UUID, reason string, at time.Time) error {
	if r.status != StatusPending {
		return errs.NewConflictError("approval request", fmt.Sprintf("request was already %s", r.status))
	}
	if err := actorID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("actorID", err)
	}

	switch decision {
	case Approve:
		r.status = StatusApproved
	case Reject:
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return ErrReasonIsRequired
		}
		r.status = StatusRejected
		r.rejectionReason = reason
	default:
		return errs.NewValueIsInvalidErrorWithCause("decision", fmt.Errorf("%q is not a decision", string(decision)))
	}

	r.respondedBy = &actorID
	r.respondedAt = &at
	return nil
}

// MarkReminded stamps the last time the target branch was reminded.
func (r *Request) MarkReminded(at time.Time) {
	r.lastRemindedAt = &at
}
