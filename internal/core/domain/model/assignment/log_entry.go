package assignment

import (
	"time"

	"maintenance/internal/core/domain/model/kernel"
)

// Log actions.
const (
	ActionAssigned          = "ASSIGNED"
	ActionStarted           = "STARTED"
	ActionPartsUpdated      = "PARTS_UPDATED"
	ActionApprovalRequested = "APPROVAL_REQUESTED"
	ActionApproved          = "APPROVED"
	ActionRejected          = "REJECTED"
	ActionApprovalReset     = "APPROVAL_RESET"
	ActionCompleted         = "COMPLETED"
	ActionReturned          = "RETURNED"
)

// LogEntry is an append-only record of one action on an assignment.
type LogEntry struct {
	ID           kernel.UUID
	AssignmentID kernel.UUID
	Action       string
	FromStatus   Status
	ToStatus     Status
	ActorID      kernel.UUID
	Notes        string
	CreatedAt    time.Time
}
