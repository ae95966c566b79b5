package kernel

import (
	"errors"
	"slices"

	"maintenance/internal/pkg/errs"
)

// Actor is the authenticated caller of an operation.
//
// A non-global actor may act on its home branch and on any branch listed in
// its authorized set. Global roles act on every branch.
type Actor struct {
	id         UUID
	name       string
	role       Role
	branchID   *UUID
	authorized []UUID
}

// NewActor builds the caller identity. Branch-bound roles need a home branch,
// which is always part of the authorized set.
func NewActor(id UUID, name string, role Role, branchID *UUID, authorized []UUID) (Actor, error) {
	if err := errors.Join(id.Validate(), role.Validate()); err != nil {
		return Actor{}, err
	}
	if branchID == nil && !role.IsGlobal() {
		return Actor{}, errs.NewValueIsRequiredError("branchID")
	}

	set := make([]UUID, 0, len(authorized)+1)
	if branchID != nil {
		set = append(set, *branchID)
	}
	for _, b := range authorized {
		if err := b.Validate(); err != nil {
			return Actor{}, err
		}
		if !slices.ContainsFunc(set, b.IsEqual) {
			set = append(set, b)
		}
	}

	return Actor{id: id, name: name, role: role, branchID: branchID, authorized: set}, nil
}

func (a Actor) ID() UUID {
	return a.id
}

func (a Actor) Name() string {
	return a.name
}

func (a Actor) Role() Role {
	return a.role
}

// BranchID is the actor's home branch; nil for global users without one.
func (a Actor) BranchID() *UUID {
	return a.branchID
}

// IsGlobal reports whether the role sees every branch.
func (a Actor) IsGlobal() bool {
	return a.role.IsGlobal()
}

// CanAccessBranch reports whether the actor may act on behalf of branchID.
func (a Actor) CanAccessBranch(branchID UUID) bool {
	if a.IsGlobal() {
		return true
	}
	return slices.ContainsFunc(a.authorized, branchID.IsEqual)
}

// BranchScope returns the branches list queries are restricted to.
// A nil result means no restriction.
func (a Actor) BranchScope() []UUID {
	if a.IsGlobal() {
		return nil
	}
	return slices.Clone(a.authorized)
}

func (a Actor) Validate() error {
	return errors.Join(a.id.Validate(), a.role.Validate())
}
