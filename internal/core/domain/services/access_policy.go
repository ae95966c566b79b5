package services

import (
	"maps"

	"maintenance/internal/core/domain/model/kernel"
)

// Resource names one guarded group of operations.
type Resource string

const (
	ResourceTransferCreate    Resource = "transfer_orders.create"
	ResourceTransferRead      Resource = "transfer_orders.read"
	ResourceTransferReceive   Resource = "transfer_orders.receive"
	ResourceTransferReject    Resource = "transfer_orders.reject"
	ResourceTransferCancel    Resource = "transfer_orders.cancel"
	ResourceWorkflowRead      Resource = "machine_workflow.read"
	ResourceWorkflowTransit   Resource = "machine_workflow.transition"
	ResourceAssignmentCreate  Resource = "service_assignments.create"
	ResourceAssignmentWork    Resource = "service_assignments.work"
	ResourceAssignmentRead    Resource = "service_assignments.read"
	ResourceApprovalCreate    Resource = "maintenance_approvals.create"
	ResourceApprovalRespond   Resource = "maintenance_approvals.respond"
	ResourceApprovalRead      Resource = "maintenance_approvals.read"
	ResourcePaymentPay        Resource = "pending_payments.pay"
	ResourcePaymentRead       Resource = "pending_payments.read"
	ResourceAdminRead         Resource = "admin.read"
	ResourcePushSubscriptions Resource = "push_subscriptions.manage"
)

// Grants maps a role to the resources it may or may not use.
type Grants map[kernel.Role]map[Resource]bool

// DefaultGrants is the built-in permission table. Global roles are allowed
// everything regardless of this table unless an override denies it.
func DefaultGrants() Grants {
	return Grants{
		kernel.RoleCenterManager: {
			ResourceTransferCreate:    true,
			ResourceTransferRead:      true,
			ResourceTransferReceive:   true,
			ResourceTransferReject:    true,
			ResourceTransferCancel:    true,
			ResourceWorkflowRead:      true,
			ResourceWorkflowTransit:   true,
			ResourceAssignmentCreate:  true,
			ResourceAssignmentWork:    true,
			ResourceAssignmentRead:    true,
			ResourceApprovalCreate:    true,
			ResourceApprovalRead:      true,
			ResourcePaymentRead:       true,
			ResourcePushSubscriptions: true,
		},
		kernel.RoleCenterTechnician: {
			ResourceTransferRead:      true,
			ResourceWorkflowRead:      true,
			ResourceWorkflowTransit:   true,
			ResourceAssignmentWork:    true,
			ResourceAssignmentRead:    true,
			ResourceApprovalRead:      true,
			ResourcePushSubscriptions: true,
		},
		kernel.RoleBranchManager: {
			ResourceTransferCreate:    true,
			ResourceTransferRead:      true,
			ResourceTransferReceive:   true,
			ResourceTransferReject:    true,
			ResourceTransferCancel:    true,
			ResourceWorkflowRead:      true,
			ResourceApprovalRespond:   true,
			ResourceApprovalRead:      true,
			ResourcePaymentPay:        true,
			ResourcePaymentRead:       true,
			ResourcePushSubscriptions: true,
		},
		kernel.RoleBranchStaff: {
			ResourceTransferCreate:    true,
			ResourceTransferRead:      true,
			ResourceTransferReceive:   true,
			ResourceWorkflowRead:      true,
			ResourceApprovalRead:      true,
			ResourcePaymentRead:       true,
			ResourcePushSubscriptions: true,
		},
	}
}

// AccessPolicy resolves permissions over two immutable tables. An override
// entry wins over a default entry; a missing entry denies unless the role is
// global.
type AccessPolicy struct {
	defaults  Grants
	overrides Grants
}

// NewAccessPolicy copies both grant tables.
func NewAccessPolicy(defaults, overrides Grants) AccessPolicy {
	return AccessPolicy{defaults: cloneGrants(defaults), overrides: cloneGrants(overrides)}
}

// Resolve reports whether role may use resource.
func (p AccessPolicy) Resolve(role kernel.Role, resource Resource) bool {
	if allowed, ok := p.overrides[role][resource]; ok {
		return allowed
	}
	if allowed, ok := p.defaults[role][resource]; ok {
		return allowed
	}
	return role.IsGlobal()
}

func cloneGrants(g Grants) Grants {
	out := make(Grants, len(g))
	for role, resources := range g {
		out[role] = maps.Clone(resources)
	}
	return out
}
