package kernel

import (
	"fmt"

	"maintenance/internal/pkg/errs"
)

// EntityKind is the closed set of workflow entities exposed through the
// admin read endpoints.
type EntityKind string

const (
	EntityMachine       EntityKind = "machines"
	EntityTransferOrder EntityKind = "transfer-orders"
	EntityAssignment    EntityKind = "service-assignments"
	EntityApprovalReq   EntityKind = "maintenance-approvals"
	EntityBranchDebt    EntityKind = "branch-debts"
	EntityPayment       EntityKind = "payments"
	EntityMachineLog    EntityKind = "machine-status-logs"
	EntityAssignmentLog EntityKind = "assignment-logs"
)

// AllEntityKinds lists the entities exposed to the admin listing.
func AllEntityKinds() []EntityKind {
	return []EntityKind{
		EntityMachine,
		EntityTransferOrder,
		EntityAssignment,
		EntityApprovalReq,
		EntityBranchDebt,
		EntityPayment,
		EntityMachineLog,
		EntityAssignmentLog,
	}
}

// ParseEntityKind matches the path segment used by the admin listing.
func ParseEntityKind(s string) (EntityKind, error) {
	for _, k := range AllEntityKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", errs.NewValueIsInvalidErrorWithCause("entity kind", fmt.Errorf("%q is not an exposed entity", s))
}

func (k EntityKind) String() string {
	return string(k)
}
