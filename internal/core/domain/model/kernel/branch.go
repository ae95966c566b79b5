package kernel

import (
	"fmt"

	"maintenance/internal/pkg/errs"
)

// BranchType separates regular branches from maintenance centers.
type BranchType string

const (
	BranchTypeBranch            BranchType = "BRANCH"
	BranchTypeMaintenanceCenter BranchType = "MAINTENANCE_CENTER"
)

func (t BranchType) Validate() error {
	if t != BranchTypeBranch && t != BranchTypeMaintenanceCenter {
		return errs.NewValueIsInvalidErrorWithCause("branch type", fmt.Errorf("%q is not a branch type", string(t)))
	}
	return nil
}

// Branch is a read-only view of an organizational unit.
type Branch struct {
	ID   UUID
	Name string
	Type BranchType
}

func (b Branch) IsMaintenanceCenter() bool {
	return b.Type == BranchTypeMaintenanceCenter
}
