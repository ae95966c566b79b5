package assignment

import (
	"fmt"

	"maintenance/internal/pkg/errs"
)

// Status is the lifecycle state of a service assignment.
type Status string

const (
	StatusAssigned        Status = "ASSIGNED"
	StatusInProgress      Status = "IN_PROGRESS"
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusApproved        Status = "APPROVED"
	StatusRejected        Status = "REJECTED"
	StatusCompleted       Status = "COMPLETED"
	// StatusReturned is set once the repaired machine is back at its origin.
	StatusReturned Status = "RETURNED"
)

// ParseStatus converts a stored value back to a Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusAssigned, StatusInProgress, StatusPendingApproval, StatusApproved,
		StatusRejected, StatusCompleted, StatusReturned:
		return st, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("assignment status", fmt.Errorf("%q is not an assignment status", s))
	}
}

func (s Status) String() string {
	return string(s)
}

// IsActive reports whether the repair is still open.
func (s Status) IsActive() bool {
	return s != StatusCompleted && s != StatusReturned
}

// ApprovalStatus tracks the cost approval of an assignment independently of
// its work status.
type ApprovalStatus string

const (
	ApprovalNone     ApprovalStatus = "NONE"
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

func ParseApprovalStatus(s string) (ApprovalStatus, error) {
	switch st := ApprovalStatus(s); st {
	case ApprovalNone, ApprovalPending, ApprovalApproved, ApprovalRejected:
		return st, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("approval status", fmt.Errorf("%q is not an approval status", s))
	}
}

func (s ApprovalStatus) String() string {
	return string(s)
}
