package kernel

import (
	"fmt"

	"maintenance/internal/pkg/errs"
)

// Role is the job function of an authenticated user.
type Role string

const (
	RoleSuperAdmin       Role = "SUPER_ADMIN"
	RoleManagement       Role = "MANAGEMENT"
	RoleCenterManager    Role = "CENTER_MANAGER"
	RoleCenterTechnician Role = "CENTER_TECHNICIAN"
	RoleBranchManager    Role = "BRANCH_MANAGER"
	RoleBranchStaff      Role = "BRANCH_STAFF"
)

var knownRoles = map[Role]struct{}{
	RoleSuperAdmin:       {},
	RoleManagement:       {},
	RoleCenterManager:    {},
	RoleCenterTechnician: {},
	RoleBranchManager:    {},
	RoleBranchStaff:      {},
}

// AllRoles lists every role in a stable order.
func AllRoles() []Role {
	return []Role{
		RoleSuperAdmin,
		RoleManagement,
		RoleCenterManager,
		RoleCenterTechnician,
		RoleBranchManager,
		RoleBranchStaff,
	}
}

func (r Role) Validate() error {
	if _, ok := knownRoles[r]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", string(r)))
	}
	return nil
}

// IsGlobal reports whether the role sees every branch.
func (r Role) IsGlobal() bool {
	return r == RoleSuperAdmin || r == RoleManagement
}

func (r Role) String() string {
	return string(r)
}
