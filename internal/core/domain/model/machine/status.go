package machine

import (
	"fmt"

	"maintenance/internal/pkg/errs"
)

// Status is the lifecycle state of a machine.
//
//	NEW ─┬─> STANDBY ─┬─> IN_TRANSIT ──> RECEIVED_AT_CENTER ─┬─> ASSIGNED ──> IN_PROGRESS ──> PENDING_APPROVAL
//	     │            └──────────────────────^                └─> UNDER_INSPECTION ──> AWAITING_APPROVAL
//	     └─> SOLD                 REPAIR_APPROVED / REPAIR_REJECTED ──> READY_FOR_RETURN ──> RETURNING ──> STANDBY
//
// The complete edge list is in legalEdges.
type Status int

const (
	Unknown Status = iota
	New
	Standby
	InTransit
	ReceivedAtCenter
	Assigned
	UnderInspection
	AwaitingApproval
	PendingApproval
	InProgress
	RepairApproved
	RepairRejected
	ReadyForReturn
	Returning
	Sold
)

var statusNames = map[Status]string{
	New:              "NEW",
	Standby:          "STANDBY",
	InTransit:        "IN_TRANSIT",
	ReceivedAtCenter: "RECEIVED_AT_CENTER",
	Assigned:         "ASSIGNED",
	UnderInspection:  "UNDER_INSPECTION",
	AwaitingApproval: "AWAITING_APPROVAL",
	PendingApproval:  "PENDING_APPROVAL",
	InProgress:       "IN_PROGRESS",
	RepairApproved:   "REPAIR_APPROVED",
	RepairRejected:   "REPAIR_REJECTED",
	ReadyForReturn:   "READY_FOR_RETURN",
	Returning:        "RETURNING",
	Sold:             "SOLD",
}

var legalEdges = map[Status][]Status{
	New:              {Standby, InTransit, ReceivedAtCenter, Sold},
	Standby:          {InTransit, ReceivedAtCenter, Sold},
	InTransit:        {ReceivedAtCenter, Standby},
	ReceivedAtCenter: {Assigned, UnderInspection, Returning},
	UnderInspection:  {Assigned, AwaitingApproval, ReadyForReturn},
	Assigned:         {InProgress, ReceivedAtCenter},
	InProgress:       {PendingApproval, ReadyForReturn},
	AwaitingApproval: {RepairApproved, RepairRejected},
	PendingApproval:  {RepairApproved, RepairRejected},
	RepairApproved:   {InProgress, ReadyForReturn},
	RepairRejected:   {PendingApproval, ReadyForReturn, Returning},
	ReadyForReturn:   {Returning, InTransit},
	Returning:        {Standby},
	Sold:             {},
}

// ParseStatus converts the persisted name back into a Status.
func ParseStatus(s string) (Status, error) {
	for st, name := range statusNames {
		if name == s {
			return st, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("machine status", fmt.Errorf("%q is not a machine status", s))
}

// AllStatuses lists the valid statuses in lifecycle order.
func AllStatuses() []Status {
	out := make([]Status, 0, len(statusNames))
	for s := New; s <= Sold; s++ {
		out = append(out, s)
	}
	return out
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("machine status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// CanTransitionTo reports whether s -> target is an edge of the graph.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range legalEdges[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Successors returns the legal targets from s.
func (s Status) Successors() []Status {
	return append([]Status(nil), legalEdges[s]...)
}

// IsTerminal reports whether no edge leaves s.
func (s Status) IsTerminal() bool {
	return s == Sold
}

// IsOutbound reports whether a machine in s may be shipped by its owner
// branch to another branch.
func (s Status) IsOutbound() bool {
	return s == New || s == Standby
}

// IsReturnable reports whether a machine in s may be shipped back from the
// maintenance center to its origin branch.
func (s Status) IsReturnable() bool {
	return s == ReadyForReturn
}

// IsAtCenter reports whether s is one of the states a machine holds while it
// sits at the maintenance center.
func (s Status) IsAtCenter() bool {
	switch s {
	case ReceivedAtCenter, Assigned, UnderInspection, AwaitingApproval, PendingApproval,
		InProgress, RepairApproved, RepairRejected, ReadyForReturn:
		return true
	default:
		return false
	}
}
