package queries

import (
	"context"
	"errors"

	"maintenance/internal/core/domain/model/assignment"
	"maintenance/internal/core/domain/model/kernel"
	"maintenance/internal/pkg/guard"

	"gorm.io/gorm"
)

var ErrGetMyAssignmentsQueryIsNotConstructed = errors.New(
	"GetMyAssignmentsQuery must be created via NewGetMyAssignmentsQuery constructor",
)

// GetMyAssignmentsQuery lists a technician's assignments that are not yet
// RETURNED.
type GetMyAssignmentsQuery struct {
	technicianID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetMyAssignmentsQuery requires the technician id.
func NewGetMyAssignmentsQuery(technicianID kernel.UUID) (GetMyAssignmentsQuery, error) {
	if err := technicianID.Validate(); err != nil {
		return GetMyAssignmentsQuery{}, err
	}
	return GetMyAssignmentsQuery{technicianID: technicianID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetMyAssignmentsQuery) Validate() error {
	return q.guard.Validate(ErrGetMyAssignmentsQueryIsNotConstructed)
}

// GetMyAssignmentsQueryHandler reads the assignment table directly.
type GetMyAssignmentsQueryHandler struct {
	db *gorm.DB
}

// NewGetMyAssignmentsQueryHandler creates the handler.
func NewGetMyAssignmentsQueryHandler(db *gorm.DB) GetMyAssignmentsQueryHandler {
	return GetMyAssignmentsQueryHandler{db: db}
}

// Handle returns the assignments newest first.
func (h GetMyAssignmentsQueryHandler) Handle(ctx context.Context, query GetMyAssignmentsQuery) ([]AssignmentView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	views := make([]AssignmentView, 0)
	err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			machine_id,
			serial,
			technician_id,
			branch_id,
			origin_branch_id,
			status,
			total_cost,
			approval_status,
			approved_cost,
			created_at,
			completed_at
		FROM service_assignments
		WHERE technician_id = ? AND status <> ?
		ORDER BY created_at DESC
	`, query.technicianID.Bytes(), assignment.StatusReturned.String()).Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}
