package queries

import (
	"fmt"
	"strings"

	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/pkg/errs"

	"github.com/google/uuid"
)

// branchCondition restricts rows to the branches the actor may see. With an
// explicit branch filter the actor must be authorized for it. The condition
// matches when any of the columns references an allowed branch. An empty
// condition means no restriction.
func branchCondition(actor kernel.Actor, filter *kernel.UUID, columns ...string) (string, []any, error) {
	var ids []uuid.UUID
	switch {
	case filter != nil:
		if !actor.CanAccessBranch(*filter) {
			return "", nil, errs.NewForbiddenError("read branch data", fmt.Sprintf("branch %s is outside the caller's branches", filter))
		}
		ids = []uuid.UUID{filter.Bytes()}
	case actor.IsGlobal():
		return "", nil, nil
	default:
		for _, id := range actor.BranchScope() {
			ids = append(ids, id.Bytes())
		}
		if len(ids) == 0 {
			return "", nil, errs.NewForbiddenError("read branch data", "caller has no branch")
		}
	}

	parts := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for _, col := range columns {
		parts = append(parts, col+" IN ?")
		args = append(args, ids)
	}
	return "(" + strings.Join(parts, " OR ") + ")", args, nil
}

// where joins non-empty conditions with AND.
func where(conditions ...string) string {
	nonEmpty := conditions[:0]
	for _, c := range conditions {
		if c != "" {
			nonEmpty = append(nonEmpty, c)
		}
	}
	if len(nonEmpty) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(nonEmpty, " AND ")
}
